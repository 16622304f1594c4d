package pokeapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"lessons/internal/domain/pokemon"
)

func newFakePokeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v2/pokemon/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("id") {
		case "25", "pikachu":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":25,"name":"pikachu","sprites":{"front_default":"https://img.example/25.png","back_default":null}}`))
		case "500":
			http.Error(w, "boom", http.StatusInternalServerError)
		case "garbage":
			w.Write([]byte(`<html>not json</html>`))
		default:
			http.Error(w, "Not Found", http.StatusNotFound)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// TestClient_Fetch_Found verifies a 2xx response is decoded into a record.
func TestClient_Fetch_Found(t *testing.T) {
	srv := newFakePokeAPI(t)
	c := NewClient(srv.URL+"/", srv.Client())

	p, err := c.Fetch(context.Background(), "25")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "pikachu" || p.SpriteURL != "https://img.example/25.png" || p.ID != "25" {
		t.Errorf("unexpected record: %+v", p)
	}
}

// TestClient_Fetch_Failures verifies every failure mode maps to a sentinel.
func TestClient_Fetch_Failures(t *testing.T) {
	srv := newFakePokeAPI(t)
	c := NewClient(srv.URL, srv.Client())

	tests := []struct {
		id   string
		want error
	}{
		{id: "99999", want: pokemon.ErrNotFound},
		{id: "500", want: pokemon.ErrUnavailable},
		{id: "garbage", want: pokemon.ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if _, err := c.Fetch(context.Background(), tt.id); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

// TestClient_Fetch_NetworkFailure verifies an unreachable host is reported as unavailable.
func TestClient_Fetch_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := NewClient(base, nil)
	if _, err := c.Fetch(context.Background(), "25"); !errors.Is(err, pokemon.ErrUnavailable) {
		t.Errorf("got %v, want ErrUnavailable", err)
	}
}

// TestClient_Fetch_CancelledContext verifies an abandoned request does not produce a record.
func TestClient_Fetch_CancelledContext(t *testing.T) {
	srv := newFakePokeAPI(t)
	c := NewClient(srv.URL, srv.Client())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Fetch(ctx, "25"); err == nil {
		t.Error("expected an error for a cancelled context")
	}
}
