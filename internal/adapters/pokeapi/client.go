// Package pokeapi is the read-only remote data source behind lesson 04.
package pokeapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"lessons/internal/domain/pokemon"
)

// DefaultBaseURL is the public PokéAPI host.
const DefaultBaseURL = "https://pokeapi.co"

// DefaultTimeout bounds a single fetch.
const DefaultTimeout = 10 * time.Second

// maxBody caps how much of a response body is read.
const maxBody = 4 << 20

// Client fetches one Pokémon per call. It never caches and never retries.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for baseURL.
// PRE: baseURL is an absolute http(s) URL without a trailing path; httpClient may be nil
// POST: returns a client using DefaultTimeout when httpClient is nil
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// detailResponse is the subset of /api/v2/pokemon/{id} the lesson renders.
type detailResponse struct {
	Name    string `json:"name"`
	Sprites struct {
		FrontDefault string `json:"front_default"`
	} `json:"sprites"`
}

// Fetch issues one GET to <base>/api/v2/pokemon/<id>.
// PRE: id is non-empty
// POST: returns the record on 2xx; pokemon.ErrNotFound on 404;
// an error wrapping pokemon.ErrUnavailable for every other failure
func (c *Client) Fetch(ctx context.Context, id string) (pokemon.Pokemon, error) {
	endpoint := c.baseURL + "/api/v2/pokemon/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return pokemon.Pokemon{}, fmt.Errorf("%w: build request: %v", pokemon.ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return pokemon.Pokemon{}, fmt.Errorf("%w: %v", pokemon.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return pokemon.Pokemon{}, pokemon.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return pokemon.Pokemon{}, fmt.Errorf("%w: status %d", pokemon.ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return pokemon.Pokemon{}, fmt.Errorf("%w: read body: %v", pokemon.ErrUnavailable, err)
	}
	var detail detailResponse
	if err := json.Unmarshal(body, &detail); err != nil {
		return pokemon.Pokemon{}, fmt.Errorf("%w: decode body: %v", pokemon.ErrUnavailable, err)
	}
	if detail.Name == "" {
		return pokemon.Pokemon{}, fmt.Errorf("%w: response has no name", pokemon.ErrUnavailable)
	}
	return pokemon.Pokemon{
		ID:        id,
		Name:      detail.Name,
		SpriteURL: detail.Sprites.FrontDefault,
	}, nil
}
