package http

import (
	"html/template"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/geocoder89/todohub/internal/http/handlers"
	"github.com/geocoder89/todohub/internal/http/middlewares"
	"github.com/geocoder89/todohub/internal/http/views"
	"github.com/geocoder89/todohub/internal/observability"
	"github.com/geocoder89/todohub/internal/session"
)

type Deps struct {
	Env string

	Sessions middlewares.SessionRegistry
	Tokens   *session.TokenManager
	// SecureCookies sets the Secure flag on the session cookie.
	SecureCookies bool

	Prom     *observability.Prom
	Gatherer prometheus.Gatherer

	// AuthLimiter throttles posts to the sign-in forms.
	AuthLimiter *middlewares.RateLimiter

	BackendTimeout time.Duration
	MaxBodyBytes   int64
	PageSize       int

	Checks       []handlers.Check
	ShuttingDown func() bool

	// Templates overrides the embedded page templates.
	Templates *template.Template
}

func NewRouter(log *slog.Logger, d Deps) *gin.Engine {
	if d.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	tmpl := d.Templates
	if tmpl == nil {
		tmpl = views.MustLoad()
	}
	r.SetHTMLTemplate(tmpl)

	// middleware
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(otelgin.Middleware("todohub"))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())

	// health + metrics, no browser session
	h := handlers.NewHealthHandler(d.ShuttingDown, d.Checks...)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	maxBody := d.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}

	pages := r.Group("/")
	pages.Use(middlewares.MaxBodyBytes(maxBody, handlers.RespondError))
	pages.Use(middlewares.Sessions(middlewares.SessionConfig{
		Secure:   d.SecureCookies,
		Tokens:   d.Tokens,
		Registry: d.Sessions,
		Logger:   log,
	}))
	pages.Use(middlewares.CSRF(d.Tokens, handlers.RespondError))

	limiter := d.AuthLimiter
	if limiter == nil {
		limiter = middlewares.NewRateLimiter(20, time.Minute, handlers.RespondError)
	}
	throttle := limiter.Middleware(middlewares.KeyByIP)

	opts := handlers.Options{
		Timeout:  d.BackendTimeout,
		Logger:   log,
		PageSize: d.PageSize,
	}
	if d.Prom != nil {
		opts.OnDroppedSubmit = d.Prom.IncDroppedSubmit
	}

	authHandler := handlers.NewAuthHandler(opts)
	todosHandler := handlers.NewTodosHandler(opts)
	profileHandler := handlers.NewProfileHandler(opts)

	pages.GET("/", authHandler.Home)

	// reachable from the recovery email whatever the login state
	pages.GET("/password-reset", authHandler.PasswordResetPage)
	pages.POST("/password-reset", throttle, authHandler.PasswordReset)

	guest := pages.Group("/", middlewares.RequireGuest())
	guest.GET("/login", authHandler.LoginPage)
	guest.POST("/login", throttle, authHandler.Login)
	guest.GET("/register", authHandler.RegisterPage)
	guest.POST("/register", throttle, authHandler.Register)
	guest.GET("/password-reset-request", authHandler.PasswordResetRequestPage)
	guest.POST("/password-reset-request", throttle, authHandler.PasswordResetRequest)

	authed := pages.Group("/", middlewares.RequireAuth())
	authed.GET("/todos", todosHandler.List)
	authed.POST("/todos/hide-completed", todosHandler.ToggleHideCompleted)
	authed.POST("/todos/:id/toggle", todosHandler.Toggle)
	authed.GET("/todos/:id/delete", todosHandler.DeletePage)
	authed.POST("/todos/:id/delete", todosHandler.Delete)
	authed.GET("/edit-todo", todosHandler.EditPage)
	authed.POST("/edit-todo", todosHandler.Save)
	authed.GET("/edit-todo/:id", todosHandler.EditPage)
	authed.POST("/edit-todo/:id", todosHandler.Save)

	authed.GET("/profile", profileHandler.Page)
	authed.POST("/profile", profileHandler.Update)
	authed.GET("/profile/password-reset", profileHandler.PasswordResetPage)
	authed.POST("/profile/password-reset", profileHandler.PasswordReset)

	authed.GET("/logout", authHandler.LogoutPage)
	authed.POST("/logout", authHandler.Logout)

	r.NoRoute(func(c *gin.Context) {
		handlers.RespondNotFound(c, "Page not found")
	})

	return r
}
