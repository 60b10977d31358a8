package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/Lixing-Zhang/cuenta/internal/config"
	"github.com/Lixing-Zhang/cuenta/internal/feed"
	"github.com/Lixing-Zhang/cuenta/internal/repository"
)

// Sources holds the configured product and store repositories
type Sources struct {
	Products repository.ProductRepository
	Stores   repository.StoreRepository

	db *sql.DB
}

// Close releases the database connection, if any
func (s *Sources) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Open wires the repositories selected by cfg. Product feeds are loaded into
// memory for the memory source and upserted for the SQL sources.
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Sources, error) {
	var (
		awsCfg aws.Config
		err    error
	)
	if cfg.UsesAWS() {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
	}

	stores, err := openStores(cfg, awsCfg)
	if err != nil {
		return nil, err
	}

	loaderOpts := []feed.Option{feed.WithLogger(log.With("component", "feed"))}
	if cfg.UsesAWS() {
		loaderOpts = append(loaderOpts, feed.WithS3Client(s3.NewFromConfig(awsCfg)))
	}
	loader := feed.NewLoader(loaderOpts...)

	src := &Sources{Stores: stores}

	switch cfg.Products.Source {
	case config.ProductSourceMemory:
		if len(cfg.Products.FeedURLs) == 0 {
			log.Info("serving sample product catalog")
			src.Products = repository.NewSeededProductRepository()
			return src, nil
		}

		products, err := loader.Load(ctx, cfg.Products.FeedURLs)
		if err != nil {
			return nil, fmt.Errorf("failed to load product feeds: %w", err)
		}
		src.Products = repository.NewInMemoryProductRepository(products)
		return src, nil

	case config.ProductSourceSQLite, config.ProductSourcePostgres:
		repo, db, err := openSQL(ctx, cfg)
		if err != nil {
			return nil, err
		}
		src.Products, src.db = repo, db

		if len(cfg.Products.FeedURLs) > 0 {
			if _, err := ImportFeeds(ctx, loader, repo, cfg.Products.FeedURLs, log); err != nil {
				db.Close()
				return nil, err
			}
		}
		return src, nil

	default:
		return nil, fmt.Errorf("unsupported product source %q", cfg.Products.Source)
	}
}

func openStores(cfg *config.Config, awsCfg aws.Config) (repository.StoreRepository, error) {
	switch cfg.Stores.Source {
	case config.StoreSourceEmbedded:
		return repository.NewEmbeddedStoreRepository(), nil
	case config.StoreSourceFile:
		return repository.NewFileStoreRepository(cfg.Stores.File), nil
	case config.StoreSourceDynamoDB:
		return repository.NewDynamoDBStoreRepository(dynamodb.NewFromConfig(awsCfg), cfg.Stores.Table), nil
	default:
		return nil, fmt.Errorf("unsupported store source %q", cfg.Stores.Source)
	}
}

func openSQL(ctx context.Context, cfg *config.Config) (*repository.SQLProductRepository, *sql.DB, error) {
	dialect := repository.DialectSQLite
	if cfg.Products.Source == config.ProductSourcePostgres {
		dialect = repository.DialectPostgres
	}

	db, err := repository.OpenDB(ctx, dialect, cfg.Products.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}

	repo := repository.NewSQLProductRepository(db, dialect)
	if err := repo.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return repo, db, nil
}

// ImportFeeds loads feeds and upserts them into repo, returning the number of products written
func ImportFeeds(ctx context.Context, loader *feed.Loader, repo *repository.SQLProductRepository, sources []string, log *slog.Logger) (int, error) {
	if len(sources) == 0 {
		return 0, feed.ErrNoSources
	}

	products, err := loader.Load(ctx, sources)
	if err != nil {
		return 0, fmt.Errorf("failed to load product feeds: %w", err)
	}

	n, err := repo.Upsert(ctx, products)
	if err != nil {
		return 0, fmt.Errorf("failed to import products: %w", err)
	}

	log.Info("imported product feeds", "sources", len(sources), "products", n)
	return n, nil
}
