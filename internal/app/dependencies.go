package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	"github.com/vladislavdragonenkov/checkout/internal/metrics"
	"github.com/vladislavdragonenkov/checkout/internal/storage/memory"
	"github.com/vladislavdragonenkov/checkout/internal/storage/postgres"
)

// Dependencies содержит зависимости приложения.
type Dependencies struct {
	Carts     domain.CartRepository
	Catalog   domain.CatalogRepository
	Inventory domain.InventoryRepository
	Orders    domain.OrderRepository
	Discounts domain.DiscountRepository
	Outbox    domain.OutboxRepository
	Timeline  domain.TimelineRepository

	// Store не nil только для postgres-драйвера; нужен для health-проб
	// и закрытия подключения.
	Store *postgres.Store

	Logger  *log.Entry
	Metrics *metrics.CheckoutMetrics
}

// NewDependencies собирает зависимости по выбранному драйверу хранилища.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	deps := &Dependencies{
		Logger:  logger,
		Metrics: metrics.NewCheckoutMetrics(),
	}

	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if cfg.PostgresAutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("apply migrations: %w", err)
			}
		}

		contents := postgres.NewContentRepository(store)
		deps.Store = store
		deps.Carts = postgres.NewCartRepository(store)
		deps.Catalog = contents
		deps.Inventory = contents
		deps.Orders = postgres.NewOrderRepository(store)
		deps.Discounts = postgres.NewDiscountRepository(store)
		deps.Outbox = postgres.NewOutboxRepository(store)
		deps.Timeline = postgres.NewTimelineRepository(store)
		logger.Info("postgres storage initialized")

	case StorageDriverMemory, "":
		// NOTE: in-memory хранилище предназначено для разработки и демо.
		catalog := memory.NewCatalogStore()
		deps.Carts = memory.NewCartRepository()
		deps.Catalog = catalog
		deps.Inventory = catalog
		deps.Orders = memory.NewOrderRepository()
		deps.Discounts = memory.NewDiscountRepository()
		deps.Outbox = memory.NewOutboxRepository()
		deps.Timeline = memory.NewTimelineRepository()
		logger.Info("in-memory storage initialized")

	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.StorageDriver)
	}

	return deps, nil
}

// Close освобождает ресурсы зависимостей.
func (d *Dependencies) Close() {
	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			d.Logger.WithError(err).Warn("failed to close postgres store")
		}
	}
}
