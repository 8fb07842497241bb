package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/chart"
	"fintrack/internal/core"
	"fintrack/internal/dashboard"
	applog "fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/ports"
	"fintrack/internal/registry"
	"fintrack/internal/services"
	"fintrack/internal/table"
	appweb "fintrack/web"
)

// Pinger is implemented by backends that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options tunes the server. Zero values take the defaults.
type Options struct {
	PageSize    int
	SearchDelay time.Duration
	CacheTTL    time.Duration
	Location    *time.Location
	// MaxSessions bounds the number of live table sessions.
	MaxSessions int
	// TrustedProxies are extra CIDRs allowed to set forwarding headers.
	TrustedProxies []string
}

func (o Options) withDefaults() Options {
	if o.PageSize <= 0 {
		o.PageSize = table.DefaultPageSize
	}
	if o.SearchDelay <= 0 {
		o.SearchDelay = table.DefaultSearchDelay
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = 5 * time.Minute
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.MaxSessions <= 0 {
		o.MaxSessions = 500
	}
	return o
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	Transactions services.TransactionStore
	Accounts     ports.AccountReader
	Dashboard    *dashboard.Service
	Categories   *registry.Categories
	Health       Pinger
	Clock        core.Clock
	Logger       *applog.Logger
}

type Server struct {
	http.Server
	templates *template.Template
	opts      Options

	transactions services.TransactionStore
	accounts     ports.AccountReader
	dashboard    *dashboard.Service
	categories   *registry.Categories
	health       Pinger
	clock        core.Clock
	logger       *applog.Logger
	events       *applog.StructuredLogger

	aggregator *chart.Aggregator
	sessions   *sessionStore
	caches     *cache.Manager

	limiter *ratelimit.Limiter
	ips     *security.ClientIPResolver
	tracer  *trace.Middleware

	started      time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes, templates and caches. A template parse
// failure is logged and every page then answers 500.
func NewServer(addr string, opts Options, deps Deps) *Server {
	opts = opts.withDefaults()
	if deps.Clock == nil {
		deps.Clock = core.SystemClock{}
	}
	if deps.Categories == nil {
		deps.Categories = registry.DefaultCategories()
	}
	if deps.Logger == nil {
		deps.Logger = applog.New(applog.DefaultConfig())
	}
	logger := deps.Logger.WithComponent(applog.ComponentHTTP)

	chartCache := cache.NewLRUCache[chart.Result](200, opts.CacheTTL)
	sessionCache := cache.NewLRUCache[*viewSession](opts.MaxSessions, 30*time.Minute)

	s := &Server{
		opts:         opts,
		transactions: deps.Transactions,
		accounts:     deps.Accounts,
		dashboard:    deps.Dashboard,
		categories:   deps.Categories,
		health:       deps.Health,
		clock:        deps.Clock,
		logger:       logger,
		events:       applog.NewStructuredLogger(logger),
		aggregator:   chart.NewAggregator(chart.WithLocation(opts.Location), chart.WithCache(chartCache)),
		sessions:     newSessionStore(sessionCache, opts.PageSize, opts.SearchDelay),
		caches:       cache.NewManager(logger.Logger),
		limiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		ips:          security.NewClientIPResolver(),
		started:      time.Now(),
	}
	for _, cidr := range opts.TrustedProxies {
		if err := s.ips.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", "cidr", cidr, applog.FieldError, err)
		}
	}
	s.tracer = trace.NewMiddleware(logger, s.ips.ClientIP)

	s.caches.Register("chart", chartCache)
	s.caches.Register("sessions", sessionCache)
	s.caches.StartCleanup(10 * time.Minute)

	t, err := template.New("").Funcs(s.templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", applog.FieldError, err)
		t = nil
	}
	s.templates = t

	mux := http.NewServeMux()
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /accounts/{id}", s.handleAccount)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /ui/chart", s.handleChartPartial)
	mux.HandleFunc("GET /api/chart", s.handleChartJSON)

	mux.HandleFunc("GET /ui/transactions", s.handleTable)
	mux.HandleFunc("POST /ui/transactions/sort", s.handleTableSort)
	mux.HandleFunc("POST /ui/transactions/select", s.handleTableSelect)
	mux.HandleFunc("POST /ui/transactions/select-page", s.handleTableSelectPage)
	mux.HandleFunc("POST /ui/transactions/select-all", s.handleTableSelectAll)
	mux.HandleFunc("POST /ui/transactions/clear-selection", s.handleTableClearSelection)
	mux.HandleFunc("POST /ui/transactions/clear-filters", s.handleTableClearFilters)
	mux.HandleFunc("POST /ui/transactions/search", s.handleTableSearch)
	mux.HandleFunc("POST /ui/transactions/delete", s.handleTableDelete)
	mux.HandleFunc("GET /api/transactions", s.handleTransactionsJSON)

	mux.HandleFunc("POST /transactions", s.handleCreateTransaction)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	onLimit := func(w http.ResponseWriter, r *http.Request) {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			applog.FieldClientIP, s.ips.ClientIP(r), applog.FieldPath, r.URL.Path)
		ErrorResponse(http.StatusTooManyRequests, "Too many requests, slow down").
			Header("Retry-After", "60").
			TriggerErrorNotification("Too many requests, slow down").
			Write(w)
	}

	var h http.Handler = mux
	h = s.limiter.Middleware(s.ips.ClientIP, onLimit)(h)
	h = headers.Middleware(h)
	h = s.tracer.Middleware(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown stops the background cleanups and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"money":         core.FormatMoney,
		"categoryLabel": s.categories.LabelOf,
		"categoryColor": s.categories.ColorOf,
		"date": func(t time.Time) string {
			return t.In(s.opts.Location).Format("Jan 02, 2006")
		},
		"month": func(t time.Time) string {
			return t.Format("January 2006")
		},
	}
}

// render executes a named template into a buffer first so a failing template
// never leaves a half written 200 behind.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any, b *HTMXResponseBuilder) {
	if s.templates == nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		InternalServerError("templates not loaded").Write(w)
		return
	}

	var buf strings.Builder
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			applog.FieldError, err, "template", name)
		InternalServerError("Rendering failed").Write(w)
		return
	}
	if b == nil {
		b = NewHTMXResponse()
	}
	b.BodyHTML(buf.String()).Write(w)
}
