package container

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"eshop/mapper/internal/ai"
	"eshop/mapper/internal/cache"
	"eshop/mapper/internal/client"
	"eshop/mapper/internal/config"
	"eshop/mapper/internal/domain"
	"eshop/mapper/internal/events"
	"eshop/mapper/internal/repository"
	"eshop/mapper/internal/service"
	"eshop/mapper/internal/state"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components
type Container struct {
	Config       *config.Config
	Client       client.TaxonomyClient
	Cache        *cache.TaxonomyCache
	Repository   repository.ProductRepository
	Events       events.Publisher
	StateManager state.StateManager

	Service *service.Service

	db    *pgxpool.Pool
	redis *redis.Client
}

// New creates a new container with all dependencies initialized
func New(cfg *config.Config) (*Container, error) {
	container := &Container{
		Config: cfg,
	}

	db, err := pgxpool.New(context.Background(),
		fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.User,
			cfg.Database.Password,
			cfg.Database.Name,
		))
	if err != nil {
		return nil, err
	}
	container.db = db
	container.Repository = repository.NewProductRepository(db)

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
	})

	// Test connection
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info("✅ Connected to Redis successfully")

	container.redis = rdb
	container.Events = events.NewRedisPublisher(rdb)
	container.StateManager = state.NewRedisStateManager(rdb)

	taxonomyClient := client.NewTaxonomyClient(cfg.Sources)
	container.Client = taxonomyClient
	container.Cache = cache.New(taxonomyClient, cfg.Cache.TTL())

	var classifier ai.Classifier
	if cfg.AI.APIKey != "" {
		classifier = ai.NewClassifier(cfg.AI)
	} else {
		log.Warn("⚠️ No AI API key configured, category verification is disabled")
	}

	container.Service = service.NewService(
		container.Cache,
		classifier,
		container.Repository,
		container.Events,
		container.StateManager,
		cfg.Batch.CheckpointInterval,
		cfg.AI.MaxCandidates,
	)

	return container, nil
}

// Run executes one mapping batch: products in from the input file,
// mapped products out to the output file and the database.
func (c *Container) Run(ctx context.Context) error {
	platforms, err := c.Config.Batch.RequestedPlatforms()
	if err != nil {
		return err
	}

	var products []domain.ProductForMapping

	// Warm the taxonomy cache while the input file loads.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c.Cache.Get(gctx, platforms)
		return nil
	})
	g.Go(func() error {
		loaded, loadErr := loadProducts(c.Config.Batch.InputFile)
		if loadErr != nil {
			return loadErr
		}
		products = loaded
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	result, err := c.Service.BatchMapProducts(ctx, service.BatchRequest{
		Products:          products,
		Platforms:         platforms,
		UseAI:             c.Config.Batch.UseAI,
		OverwriteExisting: c.Config.Batch.OverwriteExisting,
		OnProgress: func(processed int) {
			if processed%100 == 0 {
				log.Infof("🔄 Mapped %d products so far", processed)
			}
		},
	})
	if result != nil {
		if writeErr := writeResult(c.Config.Batch.OutputFile, result); writeErr != nil {
			log.Errorf("❌ Failed to write output file: %v", writeErr)
		}
		log.Infof("✅ Run %s: %d/%d products processed, mapped per platform: %v",
			result.RunID, result.Stats.Processed, result.Stats.Total, result.Stats.Mapped)
	}
	return err
}

func loadProducts(path string) ([]domain.ProductForMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read products file: %w", err)
	}

	var products []domain.ProductForMapping
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products file: %w", err)
	}
	return products, nil
}

func writeResult(path string, result *service.BatchResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize result: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	c.db.Close()
	c.redis.Close()

	log.Info("Container shut down successfully")
	return nil
}
