package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"lessons/internal/application/orchestrators"
	"lessons/internal/application/projections"
	"lessons/internal/application/viewstate"
	"lessons/internal/domain/lesson"
)

// counterView feeds the "counter" partial.
type counterView struct {
	Action string // form action prefix, e.g. "/02-use-state"
	State  viewstate.CounterState
}

// handleHome renders the lesson index with the theme toggle.
func handleHome(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, http.StatusOK, "home.html", lessonFor("", "Home"), nil)
}

// handleThemeToggle flips the visitor's theme and returns to the page it was posted from.
func handleThemeToggle(w http.ResponseWriter, r *http.Request) {
	if _, err := orchestrators.ExecuteToggleTheme(r.Context()); err != nil {
		if errors.Is(err, viewstate.ErrNoThemeProvider) {
			themeMisuse(w, r, err)
			return
		}
		internalError(w, err)
		return
	}
	http.Redirect(w, r, safeReturn(r.FormValue("return")), http.StatusSeeOther)
}

// handleComponents renders three variants of the same button partial.
func handleComponents(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, http.StatusOK, "components.html", lessonFor("01-componentes", "Components"), lesson.DemoButtons())
}

// handleUseState renders the in-memory counter.
func handleUseState(w http.ResponseWriter, r *http.Request) {
	tree, err := visitorTree(r)
	if err != nil {
		internalError(w, err)
		return
	}
	var state viewstate.CounterState
	if err := tree.WithCounter(func(u *viewstate.CounterUnit) { state = u.State() }); err != nil {
		treeError(w, r, err)
		return
	}
	renderPage(w, r, http.StatusOK, "use_state.html", lessonFor("02-use-state", "Local state"),
		counterView{Action: "/02-use-state", State: state})
}

// handleUseStateAction applies increment or reset and redirects back.
func handleUseStateAction(w http.ResponseWriter, r *http.Request) {
	action, err := orchestrators.ParseCounterAction(r.PathValue("action"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	tree, err := visitorTree(r)
	if err != nil {
		internalError(w, err)
		return
	}
	if _, err := orchestrators.ExecuteCounterAction(r.Context(), orchestrators.CounterActionInput{Action: action},
		orchestrators.CounterActionDeps{Tree: tree}); err != nil {
		treeError(w, r, err)
		return
	}
	http.Redirect(w, r, "/02-use-state", http.StatusSeeOther)
}

// useEffectData is what use_effect.html renders.
type useEffectData struct {
	Counter counterView
	Load    viewstate.LoadOutcome
	Demo    viewstate.EffectDemoState
}

// handleUseEffect renders the persistent counter (mounting it on first visit) and the effect demo.
func handleUseEffect(w http.ResponseWriter, r *http.Request) {
	tree, err := visitorTree(r)
	if err != nil {
		internalError(w, err)
		return
	}
	var data useEffectData
	err = tree.WithPersistentCounter(r.Context(), func(u *viewstate.PersistentCounterUnit) {
		s := u.State()
		data.Counter = counterView{Action: "/03-use-effect", State: s.CounterState}
		data.Load = s.Load
	})
	if err == nil {
		err = tree.WithEffectDemo(func(u *viewstate.EffectDemoUnit) { data.Demo = u.State() })
	}
	if err != nil {
		treeError(w, r, err)
		return
	}
	renderPage(w, r, http.StatusOK, "use_effect.html", lessonFor("03-use-effect", "Effects"), data)
}

// handleUseEffectAction applies increment or reset to the persistent counter.
func handleUseEffectAction(w http.ResponseWriter, r *http.Request) {
	action, err := orchestrators.ParseCounterAction(r.PathValue("action"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	tree, err := visitorTree(r)
	if err != nil {
		internalError(w, err)
		return
	}
	if _, err := orchestrators.ExecutePersistentCounterAction(r.Context(), orchestrators.CounterActionInput{Action: action},
		orchestrators.CounterActionDeps{Tree: tree}); err != nil {
		treeError(w, r, err)
		return
	}
	http.Redirect(w, r, "/03-use-effect", http.StatusSeeOther)
}

// handleEffectDemoAction shows, hides or clicks the effect demo.
func handleEffectDemoAction(w http.ResponseWriter, r *http.Request) {
	action, err := orchestrators.ParseDemoAction(r.PathValue("action"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	tree, err := visitorTree(r)
	if err != nil {
		internalError(w, err)
		return
	}
	if _, err := orchestrators.ExecuteEffectDemoAction(r.Context(), orchestrators.EffectDemoInput{Action: action},
		orchestrators.CounterActionDeps{Tree: tree}); err != nil {
		treeError(w, r, err)
		return
	}
	http.Redirect(w, r, "/03-use-effect#demo", http.StatusSeeOther)
}

// treeError handles a failed trigger. A tree torn down by the sweeper while the
// request was in flight sends the visitor back to the page, which mounts a new one.
func treeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, viewstate.ErrTornDown) {
		slog.Debug("visitor_tree_gone", "path", r.URL.Path)
		http.Redirect(w, r, r.URL.Path, http.StatusSeeOther)
		return
	}
	internalError(w, err)
}

// handlePokemonSearch renders the id input, or redirects to the detail page when ?id= is set.
func handlePokemonSearch(w http.ResponseWriter, r *http.Request) {
	if id := strings.TrimSpace(r.URL.Query().Get("id")); id != "" {
		http.Redirect(w, r, "/04-pokemon/"+url.PathEscape(id), http.StatusSeeOther)
		return
	}
	renderPage(w, r, http.StatusOK, "pokemon_search.html", lessonFor("04-pokemon", "Remote data"), 1)
}

// handlePokemonDetail fetches one record. Every failure renders the not-found page.
func handlePokemonDetail(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryPokemonDetail(r.Context(),
		projections.PokemonDetailQuery{ID: r.PathValue("id")},
		projections.PokemonDetailDeps{Source: pokemonSource})
	if err != nil {
		// The visitor is gone; there is nobody to render for.
		return
	}
	l := lessonFor("04-pokemon", "Remote data")
	if !result.Found {
		renderPage(w, r, http.StatusNotFound, "pokemon_not_found.html", l, r.PathValue("id"))
		return
	}
	renderPage(w, r, http.StatusOK, "pokemon_detail.html", l, result.Pokemon)
}

// handleServerClient renders the server-read file next to the ticking client component.
func handleServerClient(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryServerResource(r.Context(), serverResource)
	if err != nil {
		return
	}
	renderPage(w, r, http.StatusOK, "server_client.html", lessonFor("05-server-client", "Server and client rendering"), result)
}

// handleNotFound renders the site's 404 page for unknown paths.
func handleNotFound(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, http.StatusNotFound, "not_found.html", offCatalog("Not found"), r.URL.Path)
}
