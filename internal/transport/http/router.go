package http

import (
	"context"
	"net/http"

	"github.com/documentor-api/internal/config"
	"github.com/documentor-api/internal/domain"
	"github.com/documentor-api/internal/transport/http/handler"
	appmiddleware "github.com/documentor-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router. ctx bounds the
// rate limiter's background sweeper.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) (http.Handler, error) {
	pages, err := handler.NewPages()
	if err != nil {
		return nil, err
	}
	svc := newServices(cfg, deps)

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(appmiddleware.Metrics(deps.Metrics.HTTPRequests, deps.Metrics.HTTPDuration))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10, on the endpoints that send or check codes.
	sensitiveRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(5), 10)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(handler.AuthHandlerDeps{
		Service:        svc.auth,
		Pages:          pages,
		CookieMaxAge:   cfg.CookieMaxAge,
		CookieSecure:   cfg.CookieSecure,
		ResendCooldown: cfg.OTPResendCooldown,
	})
	userH := handler.NewUserHandler(svc.users)
	appH := handler.NewAppHandler(svc.apps)
	packageH := handler.NewPackageHandler(svc.packages)
	apiDocH := handler.NewAPIDocHandler(svc.apiDocs)
	transactionH := handler.NewTransactionHandler(svc.transactions)
	subscriptionH := handler.NewSubscriptionHandler(svc.subscriptions)
	activityH := handler.NewActivityHandler(svc.activity)
	dashboardH := handler.NewDashboardHandler(svc.dashboard, pages)
	convertH := handler.NewConvertHandler(svc.converter, cfg.ConvertMaxUploadBytes)

	pageSession := appmiddleware.PageSession(svc.auth, cfg.CookieSecure)
	apiSession := appmiddleware.APISession(svc.auth)
	adminOnly := appmiddleware.RequireRole(domain.RoleAdmin)

	// ── Public routes ────────────────────────────────────────────────────
	r.Get("/health-check/{action}", healthH.Ping)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	r.Get("/login", authH.LoginPage)
	r.Get("/logout", authH.Logout)
	r.Group(func(r chi.Router) {
		r.Use(sensitiveRL.Limit)
		r.Post("/send-otp", authH.SendOTP)
		r.Post("/verify-otp", authH.VerifyOTP)
		r.Post("/complete-registration", authH.CompleteRegistration)
	})

	// ── Pages behind a session ───────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(pageSession)
		r.Get("/", authH.Home)
		r.With(adminOnly).Get("/admin", dashboardH.Page)
	})

	r.With(apiSession).Post("/api/v1/convert", convertH.Convert)

	// ── Admin API ────────────────────────────────────────────────────────
	r.Route("/admin/api", func(r chi.Router) {
		r.Use(apiSession, adminOnly)

		r.Get("/dashboard", dashboardH.Counts)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userH.List)
			r.Post("/", userH.Create)
			r.Get("/{id}", userH.Get)
			r.Put("/{id}", userH.Update)
			r.Patch("/{id}/status", userH.SetStatus)
			r.Patch("/{id}/toggle", userH.Toggle)
			r.Delete("/{id}", userH.Delete)
		})
		r.Route("/apps", func(r chi.Router) {
			r.Get("/", appH.List)
			r.Post("/", appH.Create)
			r.Get("/{id}", appH.Get)
			r.Put("/{id}", appH.Update)
			r.Patch("/{id}/status", appH.SetStatus)
			r.Delete("/{id}", appH.Delete)
		})
		r.Route("/packages", func(r chi.Router) {
			r.Get("/", packageH.List)
			r.Post("/", packageH.Create)
			r.Get("/{id}", packageH.Get)
			r.Put("/{id}", packageH.Update)
			r.Patch("/{id}/status", packageH.SetStatus)
			r.Delete("/{id}", packageH.Delete)
		})
		r.Route("/api-docs", func(r chi.Router) {
			r.Get("/", apiDocH.List)
			r.Post("/", apiDocH.Create)
			r.Get("/{id}", apiDocH.Get)
			r.Put("/{id}", apiDocH.Update)
			r.Patch("/{id}/status", apiDocH.SetStatus)
			r.Delete("/{id}", apiDocH.Delete)
		})
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", transactionH.List)
			r.Post("/", transactionH.Create)
			r.Get("/{id}", transactionH.Get)
			r.Patch("/{id}/status", transactionH.UpdateStatus)
		})
		r.Route("/subscriptions", func(r chi.Router) {
			r.Get("/", subscriptionH.List)
			r.Post("/", subscriptionH.Create)
			r.Get("/{id}", subscriptionH.Get)
			r.Patch("/{id}/status", subscriptionH.UpdateStatus)
			r.Post("/{id}/cancel", subscriptionH.Cancel)
		})
		r.Get("/histories", activityH.ListHistories)
		r.Get("/histories/{id}", activityH.GetHistory)
		r.Get("/logs", activityH.ListLogs)
		r.Get("/logs/{id}", activityH.GetLog)
	})

	return r, nil
}
