package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/audit"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/auth"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/billing"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/quota"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/tenant"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/application/usecase"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/domain/repository"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/infrastructure/memory"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/lavanderia-enterprise-api/internal/infrastructure/pdf"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/infrastructure/postgres"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/infrastructure/scheduler"
	"github.com/jhoicas/lavanderia-enterprise-api/internal/infrastructure/stripebilling"
	httpRouter "github.com/jhoicas/lavanderia-enterprise-api/internal/interfaces/http"
	"github.com/jhoicas/lavanderia-enterprise-api/pkg/config"
	"github.com/jhoicas/lavanderia-enterprise-api/pkg/logger"
)

// storage repositorios del driver configurado.
type storage struct {
	accounts repository.EnterpriseAccountRepository
	branches repository.BranchRepository
	usage    repository.UsageRepository
	logs     repository.APILogRepository
	tx       usecase.BranchTxRunner
	close    func()
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	if cfg.Storage.Driver == "memory" {
		store := memory.NewStore()
		return &storage{
			accounts: store.Accounts(),
			branches: store.Branches(),
			usage:    store.Usage(),
			logs:     store.APILogs(),
			tx:       store.TxRunner(),
			close:    func() {},
		}, nil
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &storage{
		accounts: postgres.NewEnterpriseAccountRepository(pool),
		branches: postgres.NewBranchRepository(pool),
		usage:    postgres.NewUsageRepository(pool),
		logs:     postgres.NewAPILogRepository(pool),
		tx:       postgres.NewTxRunner(pool),
		close:    pool.Close,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer store.close()

	m := metrics.New()

	var dirOpts []tenant.Option
	if cfg.Auth.CacheTTL > 0 {
		dirOpts = append(dirOpts, tenant.WithCache(cfg.Auth.CacheSize, cfg.Auth.CacheTTL))
	}
	dir := tenant.NewDirectory(store.accounts, dirOpts...)

	// Rastro de auditoría: cola acotada, se descarta y se cuenta al llenarse.
	recorder := audit.NewRecorder(store.logs, cfg.Audit.BufferSize, log.Component("audit"), m.AuditDropped)
	recorder.Start()

	authn := auth.NewAuthenticator(dir,
		auth.WithAuditSink(recorder),
		auth.WithLookupTimeout(cfg.Auth.LookupTimeout),
		auth.WithLogger(log.Component("auth")),
		auth.WithOutcomeHook(func(o auth.Outcome) { m.AuthOutcome(string(o)) }),
	)
	loc := cfg.Quota.Location()
	tracker := quota.NewTracker(store.usage,
		quota.WithLocation(loc),
		quota.WithLogger(log.Component("quota")),
		quota.WithAsyncTimeout(cfg.Quota.IncrementTimeout),
		quota.WithDecisionHook(m.QuotaDecision),
	)
	gate := auth.NewGate(authn, tracker, cfg.Quota.IncrementTimeout)

	enterpriseUC := usecase.NewEnterpriseUseCase(store.tx, store.accounts, dir, authn)
	branchUC := usecase.NewBranchUseCase(store.tx, store.branches, dir)
	reportUC := quota.NewReportUseCase(dir, tracker)
	auditUC := audit.NewUseCase(dir, store.logs, cfg.Audit.Retention())
	statementUC := billing.NewStatementUseCase(dir, tracker, infrapdf.NewMarotoPDFGenerator())

	// Stripe: sin STRIPE_SECRET_KEY la sincronización por operador responde 503.
	var provider billing.SubscriptionProvider
	if cfg.Stripe.Enabled() {
		provider = stripebilling.NewClient(cfg.Stripe.SecretKey, nil)
	}
	planSyncUC := billing.NewPlanSyncUseCase(dir, provider, log.Component("billing"))

	jobs := scheduler.New(log.Component("scheduler"), loc)
	if cfg.Audit.RetentionDays > 0 {
		retentionLog := log.Component("audit-retention")
		err := jobs.Add("audit-retention", cfg.Audit.RetentionSchedule, 5*time.Minute, func(ctx context.Context) error {
			res, err := auditUC.Purge(ctx)
			if err != nil {
				return err
			}
			retentionLog.Info().Int64("deleted", res.Deleted).Time("cutoff", res.Cutoff).Msg("retención de auditoría aplicada")
			return nil
		})
		if err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.Audit.RetentionSchedule).Msg("programar retención de auditoría")
		}
	}
	jobs.Start()

	// Immutable: los strings de Params/Path se guardan más allá del request (sucursales,
	// auditoría asíncrona) y no deben apuntar al buffer de fasthttp.
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		Immutable:    true,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(httpRouter.RequestLogger(log.Component("http"), m))
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if cfg.HTTP.SwaggerEnabled {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Lavandería Enterprise API",
		}))
	}

	err = httpRouter.Router(app, httpRouter.RouterDeps{
		Gate:         gate,
		APIKeyHeader: cfg.Auth.APIKeyHeader,
		JWTSecret:    cfg.JWT.Secret,
		JWTIssuer:    cfg.JWT.Issuer,
		EnterpriseUC: enterpriseUC,
		BranchUC:     branchUC,
		ReportUC:     reportUC,
		StatementUC:  statementUC,
		AuditUC:      auditUC,
		PlanSyncUC:   planSyncUC,
		Webhook:      stripebilling.NewWebhookVerifier(cfg.Stripe.WebhookSecret),
		RateLimiter:  httpRouter.NewIPRateLimiter(cfg.RateLimit.PublicRPS, cfg.RateLimit.PublicBurst),
		Metrics:      m.Handler(),
		Logger:       log.Component("enterprise"),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("registrar rutas")
	}

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if err := jobs.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del scheduler")
	}
	// Incrementos de cuentas ilimitadas y auditoría pendientes antes de cerrar el pool.
	tracker.Wait()
	if err := recorder.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("vaciado de auditoría")
	}

	log.Info().Msg("aplicación detenida")
}
