package browser_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	"lessons/internal/domain/counter"
)

// TestSmoke_NavigationCrawl verifies every lesson route loads with the expected status.
func TestSmoke_NavigationCrawl(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	app := newTestApp(t)

	routes := []struct {
		path       string
		wantStatus int
	}{
		{path: "/", wantStatus: 200},
		{path: "/01-componentes", wantStatus: 200},
		{path: "/02-use-state", wantStatus: 200},
		{path: "/03-use-effect", wantStatus: 200},
		{path: "/04-pokemon", wantStatus: 200},
		{path: "/04-pokemon/25", wantStatus: 200},
		{path: "/04-pokemon/9999", wantStatus: 404},
		{path: "/05-server-client", wantStatus: 200},
		{path: "/06-server-action", wantStatus: 200},
		{path: "/06-server-action/alt", wantStatus: 200},
		{path: "/no-such-lesson", wantStatus: 404},
	}

	for _, route := range routes {
		t.Run(fmt.Sprintf("GET %s", route.path), func(t *testing.T) {
			page := app.newPage(t)
			resp := app.goTo(t, page, route.path)
			if resp.Status() != route.wantStatus {
				t.Errorf("%s: got status %d, want %d", route.path, resp.Status(), route.wantStatus)
			}
		})
	}
}

// TestSmoke_NoConsoleErrors verifies pages with scripts load without JavaScript errors
func TestSmoke_NoConsoleErrors(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	app := newTestApp(t)
	page := app.newPage(t)

	var errors []string
	page.On("console", func(msg playwright.ConsoleMessage) {
		if msg.Type() == "error" {
			errors = append(errors, msg.Text())
		}
	})

	for _, path := range []string{"/", "/05-server-client", "/06-server-action/alt"} {
		app.goTo(t, page, path)
		page.WaitForTimeout(500)
	}

	if len(errors) > 0 {
		t.Errorf("console errors found: %v", errors)
	}
}

// TestUseState_IncrementAndReset walks the counter through increment and reset.
func TestUseState_IncrementAndReset(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	app := newTestApp(t)
	page := app.newPage(t)
	app.goTo(t, page, "/02-use-state")

	if got := textOf(t, page, "count"); got != "0" {
		t.Fatalf("initial count = %q, want 0", got)
	}
	if disabled, _ := byTestID(page, "reset").IsDisabled(); !disabled {
		t.Error("reset should be disabled at zero")
	}

	click(t, page, "increment")
	click(t, page, "increment")
	if got := textOf(t, page, "count"); got != "2" {
		t.Fatalf("count after two increments = %q, want 2", got)
	}

	click(t, page, "reset")
	if got := textOf(t, page, "count"); got != "0" {
		t.Errorf("count after reset = %q, want 0", got)
	}
}

// TestUseEffect_RestoresPersistedValue checks a stored 7 is shown and then advanced to 8.
func TestUseEffect_RestoresPersistedValue(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	app := newTestApp(t)
	if err := app.Stores.KVStore.Set(context.Background(), counter.PersistKey, "7"); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	page := app.newPage(t)
	app.goTo(t, page, "/03-use-effect")
	if got := textOf(t, page, "count"); got != "7" {
		t.Fatalf("restored count = %q, want 7", got)
	}

	click(t, page, "increment")
	if got := textOf(t, page, "count"); got != "8" {
		t.Fatalf("count after increment = %q, want 8", got)
	}

	stored, ok, err := app.Stores.KVStore.Get(context.Background(), counter.PersistKey)
	if err != nil || !ok || stored != "8" {
		t.Errorf("stored value = %q (ok=%v, err=%v), want 8", stored, ok, err)
	}
}

// TestUseEffect_DemoLifecycle shows, clicks and hides the demo component.
func TestUseEffect_DemoLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	app := newTestApp(t)
	page := app.newPage(t)
	app.goTo(t, page, "/03-use-effect")

	click(t, page, "demo-toggle")
	click(t, page, "demo-click")
	if got := textOf(t, page, "demo-clicks"); got != "1" {
		t.Fatalf("clicks = %q, want 1", got)
	}

	click(t, page, "demo-toggle")
	events := textOf(t, page, "demo-events")
	for _, want := range []string{"mounted", "count changed to 1", "cleanup for count 1", "unmounted"} {
		if !strings.Contains(events, want) {
			t.Errorf("event log missing %q:\n%s", want, events)
		}
	}
}

// TestTheme_ToggleIsSharedAcrossLessons flips the theme and checks another lesson sees it.
func TestTheme_ToggleIsSharedAcrossLessons(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	app := newTestApp(t)
	page := app.newPage(t)
	app.goTo(t, page, "/")

	if got := textOf(t, page, "current-theme"); got != "light" {
		t.Fatalf("initial theme = %q, want light", got)
	}
	click(t, page, "theme-toggle")
	if got := textOf(t, page, "current-theme"); got != "dark" {
		t.Fatalf("theme after toggle = %q, want dark", got)
	}

	app.goTo(t, page, "/02-use-state")
	attr, err := page.Locator("html").GetAttribute("data-theme")
	if err != nil || attr != "dark" {
		t.Errorf("data-theme on another lesson = %q (err=%v), want dark", attr, err)
	}
}

// TestPokemon_SearchAndNotFound submits the search form for a known and an unknown number.
func TestPokemon_SearchAndNotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	app := newTestApp(t)
	page := app.newPage(t)
	app.goTo(t, page, "/04-pokemon")

	if err := byTestID(page, "pokemon-id").Fill("25"); err != nil {
		t.Fatalf("fill id: %v", err)
	}
	click(t, page, "pokemon-go")
	if got := textOf(t, page, "pokemon-name"); got != "pikachu" {
		t.Fatalf("name = %q, want pikachu", got)
	}

	resp := app.goTo(t, page, "/04-pokemon/9999")
	if resp.Status() != 404 {
		t.Errorf("status = %d, want 404", resp.Status())
	}
	if visible, _ := byTestID(page, "not-found").IsVisible(); !visible {
		t.Error("not-found message should be visible")
	}
}

// TestServerClient_ClientTicks checks the server content renders and the client counter advances.
func TestServerClient_ClientTicks(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	app := newTestApp(t)
	page := app.newPage(t)
	app.goTo(t, page, "/05-server-client")

	if got := textOf(t, page, "server-content"); got != "Rendered on the server." {
		t.Errorf("server content = %q", got)
	}
	page.WaitForTimeout(float64((1500 * time.Millisecond).Milliseconds()))
	if got := textOf(t, page, "client-seconds"); got == "0" {
		t.Error("client seconds should have advanced")
	}
}

// TestContact_FormAndJSONVariants submits both contact variants and checks both were stored.
func TestContact_FormAndJSONVariants(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	app := newTestApp(t)
	page := app.newPage(t)

	app.goTo(t, page, "/06-server-action")
	byTestID(page, "contact-name").Fill("Ada")
	byTestID(page, "contact-email").Fill("ada@example.com")
	byTestID(page, "contact-message").Fill("Hello from the form")
	click(t, page, "contact-submit")
	if visible, _ := byTestID(page, "contact-sent").IsVisible(); !visible {
		t.Fatal("confirmation should be visible after submitting the form")
	}

	app.goTo(t, page, "/06-server-action/alt")
	byTestID(page, "contact-name").Fill("Grace")
	byTestID(page, "contact-message").Fill("Hello from fetch")
	if err := byTestID(page, "contact-submit").Click(); err != nil {
		t.Fatalf("submit: %v", err)
	}
	status := byTestID(page, "contact-status")
	if err := status.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(5000),
	}); err != nil {
		t.Fatalf("status never shown: %v", err)
	}
	if got := textOf(t, page, "contact-status"); got != "Thanks, your message was sent." {
		t.Errorf("status = %q", got)
	}

	recent, err := app.Stores.ContactStore.ListRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("stored %d submissions, want 2", len(recent))
	}
}
