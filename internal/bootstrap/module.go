package bootstrap

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/maverickins/claims-intake/internal/bootstrap/config"
	"github.com/maverickins/claims-intake/internal/bootstrap/database"
	"github.com/maverickins/claims-intake/internal/bootstrap/logging"
	"github.com/maverickins/claims-intake/internal/domain/claim"
	"github.com/maverickins/claims-intake/internal/infrastructure/cache"
	"github.com/maverickins/claims-intake/internal/infrastructure/notify"
	"github.com/maverickins/claims-intake/internal/infrastructure/payments"
	sqliterepo "github.com/maverickins/claims-intake/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "github.com/maverickins/claims-intake/internal/infrastructure/persistence/sqlite/uow"
	"github.com/maverickins/claims-intake/internal/infrastructure/policy"
	"github.com/maverickins/claims-intake/internal/infrastructure/vision"
	"github.com/maverickins/claims-intake/internal/infrastructure/weather"
	"github.com/maverickins/claims-intake/internal/ports"
	"github.com/maverickins/claims-intake/internal/usecase/pipeline"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewAuditRepository,
			fx.As(new(ports.AuditRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			cache.NewSQLiteCache,
			fx.As(new(ports.Cache)),
		),
	),
	fx.Provide(providePolicyRegistry),
	fx.Provide(provideVisionEstimator),
	fx.Provide(provideWeatherHistory),
	fx.Provide(providePaymentGateway),
	fx.Provide(provideOutcomeNotifier),
	fx.Provide(providePipelineConfig),
	fx.Provide(pipeline.NewService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

func providePolicyRegistry(cfg config.Config) ports.PolicyRegistry {
	return policy.NewStaticRegistry(cfg.Policy)
}

func provideVisionEstimator() ports.VisionEstimator {
	return vision.NewHeuristicEstimator()
}

func provideWeatherHistory(cfg config.Config, kv ports.Cache) ports.WeatherHistory {
	return weather.NewOpenWeatherClient(cfg.Weather, kv)
}

func providePaymentGateway(cfg config.Config) ports.PaymentGateway {
	if cfg.Payments.Mode == "stripe" {
		return payments.NewStripeGateway(cfg.Payments)
	}
	return payments.NewSandboxGateway()
}

func provideOutcomeNotifier(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (ports.OutcomeNotifier, error) {
	if cfg.Notify.URL == "" {
		return nil, nil
	}

	pub, err := notify.NewNATSPublisher(cfg.Notify)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			pub.Close()
			return nil
		},
	})

	logging.Info(ctx, "outcome notifier enabled", slog.String("subject", cfg.Notify.Subject))
	return pub, nil
}

func providePipelineConfig(cfg config.Config) (pipeline.Config, error) {
	min, err := decimal.NewFromString(cfg.Assessor.MinEstimate)
	if err != nil {
		return pipeline.Config{}, err
	}
	max, err := decimal.NewFromString(cfg.Assessor.MaxEstimate)
	if err != nil {
		return pipeline.Config{}, err
	}
	threshold, err := decimal.NewFromString(cfg.Rules.ApprovalThreshold)
	if err != nil {
		return pipeline.Config{}, err
	}

	return pipeline.Config{
		Bounds:            claim.EstimateBounds{Min: min, Max: max},
		ApprovalThreshold: threshold,
		PolicyTimeout:     cfg.Policy.Timeout,
		WeatherTimeout:    cfg.Weather.Timeout,
		PayoutTimeout:     cfg.Payments.Timeout,
	}, nil
}
