package browser_test

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	_ "modernc.org/sqlite"

	"lessons/internal/adapters/email"
	web "lessons/internal/adapters/http"
	"lessons/internal/adapters/http/perf"
	"lessons/internal/adapters/pokeapi"
	"lessons/internal/adapters/storage"
	contactStore "lessons/internal/adapters/storage/contact"
	"lessons/internal/adapters/storage/kv"
)

// testApp holds the running test server and Playwright handles.
type testApp struct {
	BaseURL string
	DB      *sql.DB
	Server  *http.Server
	PW      *playwright.Playwright
	Browser playwright.Browser
	Stores  *web.Stores
}

// newFakePokeAPI serves pikachu as id 25 and 404 for everything else.
func newFakePokeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v2/pokemon/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "25" {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":25,"name":"pikachu","sprites":{"front_default":null}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// newTestApp creates a fully wired app with a temp SQLite DB and starts an HTTP server.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	tmpDir := t.TempDir()
	db, err := storage.Open(context.Background(), filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}

	resourcePath := filepath.Join(tmpDir, "server-resource.txt")
	if err := os.WriteFile(resourcePath, []byte("Rendered on the server."), 0o644); err != nil {
		t.Fatalf("failed to write server resource: %v", err)
	}

	stores := &web.Stores{
		KVStore:      kv.NewSQLiteStore(db),
		ContactStore: contactStore.NewSQLiteStore(db),
	}
	web.SetEmailSender(email.NewNoopSender(), "")

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	pokeAPI := newFakePokeAPI(t)
	app := web.NewMux(stores, web.Options{
		CSRFKey: []byte("0123456789abcdef0123456789abcdef"),
		TrustedOrigins: []string{
			fmt.Sprintf("127.0.0.1:%d", port),
			fmt.Sprintf("localhost:%d", port),
		},
		RateLimitPerSecond:  1000,
		PokemonSource:       pokeapi.NewClient(pokeAPI.URL, pokeAPI.Client()),
		ServerResourcePath:  resourcePath,
		ServerResourceDelay: 10 * time.Millisecond,
	}, perf.NewCollector(100))

	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: app.Handler,
	}
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("test server error: %v", err)
		}
	}()

	// Wait for server to be ready
	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	for i := 0; i < 50; i++ {
		resp, err := http.Get(baseURL + "/healthz")
		if err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	pw, err := playwright.Run()
	if err != nil {
		srv.Close()
		db.Close()
		t.Skipf("playwright driver unavailable: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		pw.Stop()
		srv.Close()
		db.Close()
		t.Skipf("chromium unavailable: %v", err)
	}

	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
		app.Visitors.Close()
		db.Close()
	})

	return &testApp{
		BaseURL: baseURL,
		DB:      db,
		Server:  srv,
		PW:      pw,
		Browser: browser,
		Stores:  stores,
	}
}

// newPage creates a new browser page (tab) in its own context so every page is a fresh visitor.
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	bctx, err := a.Browser.NewContext()
	if err != nil {
		t.Fatalf("failed to create browser context: %v", err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { bctx.Close() })
	return page
}

// goTo navigates and fails the test on a navigation error.
func (a *testApp) goTo(t *testing.T, page playwright.Page, path string) playwright.Response {
	t.Helper()
	resp, err := page.Goto(a.BaseURL + path)
	if err != nil {
		t.Fatalf("failed to navigate to %s: %v", path, err)
	}
	return resp
}

// textOf returns the trimmed text of the first element with the given test id.
func textOf(t *testing.T, page playwright.Page, testID string) string {
	t.Helper()
	text, err := byTestID(page, testID).TextContent()
	if err != nil {
		t.Fatalf("failed to read %s: %v", testID, err)
	}
	return strings.TrimSpace(text)
}

func byTestID(page playwright.Page, testID string) playwright.Locator {
	return page.Locator(`[data-testid="` + testID + `"]`).First()
}

// click presses the first element with the given test id and waits for the next load.
func click(t *testing.T, page playwright.Page, testID string) {
	t.Helper()
	if err := byTestID(page, testID).Click(); err != nil {
		t.Fatalf("failed to click %s: %v", testID, err)
	}
	if err := page.WaitForLoadState(); err != nil {
		t.Fatalf("page did not settle after clicking %s: %v", testID, err)
	}
}
