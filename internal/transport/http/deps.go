package http

import (
	"time"

	"github.com/documentor-api/internal/application/activity"
	"github.com/documentor-api/internal/application/apidoc"
	"github.com/documentor-api/internal/application/app"
	"github.com/documentor-api/internal/application/auth"
	"github.com/documentor-api/internal/application/billing"
	"github.com/documentor-api/internal/application/converter"
	"github.com/documentor-api/internal/application/dashboard"
	"github.com/documentor-api/internal/application/notification"
	"github.com/documentor-api/internal/application/otp"
	"github.com/documentor-api/internal/application/user"
	"github.com/documentor-api/internal/config"
	"github.com/documentor-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/documentor-api/internal/infrastructure/jwt"
	"github.com/documentor-api/internal/infrastructure/kv"
	"github.com/documentor-api/internal/infrastructure/metrics"
	s3infra "github.com/documentor-api/internal/infrastructure/s3"
	"github.com/prometheus/client_golang/prometheus"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo         *dynamo.UserRepo
	AppRepo          *dynamo.AppRepo
	PackageRepo      *dynamo.PackageRepo
	APIDocRepo       *dynamo.APIDocRepo
	TransactionRepo  *dynamo.TransactionRepo
	SubscriptionRepo *dynamo.SubscriptionRepo
	HistoryRepo      *dynamo.HistoryRepo
	LogRepo          *dynamo.LogRepo
	KV               kv.Store
	Notifier         notification.Service
	JWTProvider      *jwtinfra.Provider
	S3Store          *s3infra.Store
	Metrics          *metrics.Metrics
	Gatherer         prometheus.Gatherer
	Clock            func() time.Time
}

type services struct {
	auth          auth.Service
	users         user.Service
	apps          app.Service
	packages      billing.PackageService
	transactions  billing.TransactionService
	subscriptions billing.SubscriptionService
	apiDocs       apidoc.Service
	activity      activity.Service
	converter     converter.Service
	dashboard     dashboard.Service
}

func newServices(cfg *config.Config, d *Deps) *services {
	clock := d.Clock
	if clock == nil {
		clock = time.Now
	}
	activitySvc := activity.NewService(activity.ServiceDeps{
		LogRepo:     d.LogRepo,
		HistoryRepo: d.HistoryRepo,
		Clock:       clock,
	})
	packageSvc := billing.NewPackageService(d.PackageRepo, clock)
	subscriptionSvc := billing.NewSubscriptionService(d.SubscriptionRepo, packageSvc, clock)

	return &services{
		auth: auth.NewService(auth.ServiceDeps{
			OTPStore: otp.NewStore(otp.StoreDeps{
				KV:          d.KV,
				TTL:         cfg.OTPTTL,
				MaxAttempts: cfg.OTPMaxAttempts,
				HashCost:    cfg.OTPHashCost,
				Clock:       clock,
			}),
			Guard:    otp.NewGuard(d.KV, cfg.OTPResendCooldown),
			Tokens:   d.JWTProvider,
			UserRepo: d.UserRepo,
			Notifier: d.Notifier,
			Metrics:  d.Metrics,
			Audit:    activitySvc,
			Policy: auth.RedirectPolicy{
				AdminRedirect:   cfg.AdminRedirect,
				DeepLinkSchemes: cfg.DeepLinkSchemes,
				AllowedOrigins:  cfg.AllowedOrigins,
			},
			OTPValidity: cfg.OTPTTL,
			Clock:       clock,
		}),
		users:         user.NewService(user.ServiceDeps{UserRepo: d.UserRepo, Clock: clock}),
		apps:          app.NewService(app.ServiceDeps{AppRepo: d.AppRepo, UserRepo: d.UserRepo, Clock: clock}),
		packages:      packageSvc,
		transactions:  billing.NewTransactionService(d.TransactionRepo, subscriptionSvc, clock),
		subscriptions: subscriptionSvc,
		apiDocs:       apidoc.NewService(d.APIDocRepo, clock),
		activity:      activitySvc,
		converter: converter.NewService(converter.ServiceDeps{
			Store:     d.S3Store,
			Activity:  activitySvc,
			Metrics:   d.Metrics,
			Digitizer: converter.EchoDigitizer{},
			Clock:     clock,
		}),
		dashboard: dashboard.NewService(dashboard.Sources{
			Users:         d.UserRepo,
			Apps:          d.AppRepo,
			Packages:      d.PackageRepo,
			Subscriptions: d.SubscriptionRepo,
			Transactions:  d.TransactionRepo,
			Histories:     d.HistoryRepo,
			Logs:          d.LogRepo,
		}),
	}
}
