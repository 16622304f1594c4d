package web

import (
	"embed"
	"io/fs"
	"net/http"
	"os"
	"time"

	"lessons/internal/adapters/email"
	"lessons/internal/adapters/http/middleware"
	"lessons/internal/adapters/http/perf"
	contactStore "lessons/internal/adapters/storage/contact"
	"lessons/internal/adapters/storage/kv"
	"lessons/internal/application/projections"
	"lessons/internal/application/viewstate"
	"lessons/internal/domain/lesson"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Stores holds all storage dependencies.
type Stores struct {
	KVStore      kv.Store
	ContactStore contactStore.Store
}

// Options configures NewMux.
type Options struct {
	CSRFKey            []byte // 32 bytes
	SecureCookies      bool
	TrustedOrigins     []string
	RateLimitPerSecond int
	VisitorTTL         time.Duration
	SlowRequest        time.Duration

	PokemonSource       projections.PokemonSource
	ServerResourcePath  string
	ServerResourceDelay time.Duration
}

// App is the wired HTTP surface plus the background state main has to run.
type App struct {
	Handler  http.Handler
	Visitors *middleware.VisitorStore
	Limiter  *middleware.RateLimiter
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global visitor store (set by NewMux)
var visitors *middleware.VisitorStore

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Lesson catalog used for navigation and page titles
var catalog = lesson.DefaultCatalog()

var pokemonSource projections.PokemonSource

var serverResource projections.ServerResourceDeps

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender

// Where contact notifications go
var contactInbox string

// SetEmailSender sets the sender and inbox used for contact notifications.
// An empty inbox disables notifications.
func SetEmailSender(sender email.Sender, inbox string) {
	emailSender = sender
	contactInbox = inbox
}

// NewMux wires HTTP handlers for the lesson site.
func NewMux(s *Stores, opts Options, collector *perf.Collector) *App {
	stores = s
	perfCollector = collector
	pokemonSource = opts.PokemonSource
	serverResource = projections.ServerResourceDeps{
		ReadFile: os.ReadFile,
		Path:     opts.ServerResourcePath,
		Delay:    opts.ServerResourceDelay,
		Now:      time.Now,
	}
	visitors = middleware.NewVisitorStore(opts.VisitorTTL, func() *viewstate.Tree {
		return viewstate.NewTree(s.KVStore, time.Now)
	})

	mux := http.NewServeMux()
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	registerRoutes(mux)

	rps := opts.RateLimitPerSecond
	if rps <= 0 {
		rps = 10
	}
	limiter := middleware.NewRateLimiter(rps)

	// Apply middleware: Timing -> RateLimit -> Visitors -> CSRF -> SecurityHeaders -> ThemeScope -> Mux
	handler := middleware.Chain(mux,
		middleware.ThemeScope,
		middleware.SecurityHeaders,
		middleware.CSRF(opts.CSRFKey, opts.SecureCookies, opts.TrustedOrigins),
		middleware.Visitors(visitors, opts.SecureCookies),
		middleware.RateLimit(limiter),
		middleware.Timing(collector, opts.SlowRequest),
	)
	return &App{Handler: handler, Visitors: visitors, Limiter: limiter}
}

func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", handleHome)
	mux.HandleFunc("POST /theme/toggle", handleThemeToggle)

	mux.HandleFunc("GET /01-componentes", handleComponents)

	mux.HandleFunc("GET /02-use-state", handleUseState)
	mux.HandleFunc("POST /02-use-state/{action}", handleUseStateAction)

	mux.HandleFunc("GET /03-use-effect", handleUseEffect)
	mux.HandleFunc("POST /03-use-effect/{action}", handleUseEffectAction)
	mux.HandleFunc("POST /03-use-effect/demo/{action}", handleEffectDemoAction)

	mux.HandleFunc("GET /04-pokemon", handlePokemonSearch)
	mux.HandleFunc("GET /04-pokemon/{id}", handlePokemonDetail)

	mux.HandleFunc("GET /05-server-client", handleServerClient)

	mux.HandleFunc("GET /06-server-action", handleContactForm)
	mux.HandleFunc("POST /06-server-action", handleContactSubmit)
	mux.HandleFunc("GET /06-server-action/alt", handleContactAlt)
	mux.HandleFunc("POST /api/contact", handleContactAPI)

	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /debug/perf", handlePerf)

	mux.HandleFunc("/", handleNotFound)
}
