package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"golang.org/x/time/rate"

	"github.com/kidsevents/marketplace_backend/internal/config"
	"github.com/kidsevents/marketplace_backend/internal/logging"
	"github.com/kidsevents/marketplace_backend/internal/repository/minio"
	"github.com/kidsevents/marketplace_backend/internal/repository/ports"
	"github.com/kidsevents/marketplace_backend/internal/repository/postgres"
	"github.com/kidsevents/marketplace_backend/internal/service"
	transport "github.com/kidsevents/marketplace_backend/internal/transport/http"
	"github.com/kidsevents/marketplace_backend/internal/util"
)

func main() {
	cfg := config.Load()

	if cfg.LogstashTCPAddr != "" {
		writer, err := logging.NewLogstashWriter(logging.LogstashConfig{Addr: cfg.LogstashTCPAddr})
		if err != nil {
			log.Fatalf("logstash: %v", err)
		}
		defer writer.Close()
		log.SetOutput(io.MultiWriter(os.Stdout, writer))
	}

	db, err := postgres.New(cfg.DatabaseURL, postgres.PoolConfig{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer db.Close()

	var media ports.ObjectURLResolver
	if cfg.MinIOEnabled() {
		client, err := minio.NewClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
		if err != nil {
			log.Fatalf("minio: %v", err)
		}
		checkCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := minio.CheckBucket(checkCtx, client, cfg.MinIOBucketMedia); err != nil {
			log.Printf("Warning: minio bucket check failed: %v", err)
		}
		cancel()
		media = minio.NewURLResolver(client, cfg.MinIOBucketMedia, cfg.MinIOPublicURL)
	}

	debug, closeDebug := buildDebugSink(cfg)
	defer closeDebug()

	catalog := service.NewProfileCatalogService(service.ProfileCatalogDeps{
		Profiles:        postgres.NewProfileRepo(db),
		Services:        postgres.NewServiceRepo(db),
		Reviews:         postgres.NewReviewRepo(db),
		ExternalReviews: postgres.NewExternalReviewRepo(db),
		Media:           media,
		Debug:           debug,
	}, service.ProfileCatalogConfig{
		TTL:          cfg.ProfilesCacheTTL,
		FetchTimeout: cfg.ProfilesFetchTimeout,
	})

	admin, err := buildAdminCredentials(cfg)
	if err != nil {
		log.Fatalf("admin credentials: %v", err)
	}

	var refreshLimiter *rate.Limiter
	if cfg.ProfilesRefreshRPS > 0 {
		refreshLimiter = rate.NewLimiter(rate.Limit(cfg.ProfilesRefreshRPS), 1)
	}

	e := transport.NewRouter(cfg.AllowOrigins)
	transport.RegisterProfiles(e, catalog, refreshLimiter, admin)
	transport.RegisterSwagger(e, "docs/swagger.yaml")

	if cfg.ProfilesWarmup {
		go func() {
			if _, err := catalog.PublicProfiles(context.Background(), true); err != nil {
				log.Printf("profiles: warm-up failed: %v", err)
			}
		}()
	}

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
}

// buildDebugSink returns a no-op sink unless DEBUG_LOG is set. Events then go
// to the process log and, when configured, to Elasticsearch.
func buildDebugSink(cfg config.Config) (logging.DebugSink, func()) {
	if !cfg.DebugLog {
		return logging.NopSink{}, func() {}
	}
	sinks := logging.MultiSink{logging.NewLogSink(nil)}
	if len(cfg.ElasticsearchURLs) == 0 {
		return sinks, func() {}
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: cfg.ElasticsearchURLs})
	if err != nil {
		log.Printf("Warning: elasticsearch debug sink disabled: %v", err)
		return sinks, func() {}
	}
	esSink := logging.NewElasticsearchSink(es, logging.ElasticsearchSinkConfig{Index: cfg.DebugLogIndex})
	sinks = append(sinks, esSink)
	return sinks, func() {
		esSink.Close()
		if dropped := esSink.Dropped(); dropped > 0 {
			log.Printf("debug sink: %d events dropped", dropped)
		}
	}
}

func buildAdminCredentials(cfg config.Config) (transport.AdminCredentials, error) {
	var creds transport.AdminCredentials
	if cfg.AdminJWTSecret != "" {
		creds.Tokens = util.NewJWTManager(cfg.AdminJWTSecret, time.Hour)
	}
	if cfg.AdminAPIKeyHash != "" {
		key, err := util.ParseAPIKey(cfg.AdminAPIKeyHash, cfg.AdminAPIKeySalt)
		if err != nil {
			return creds, err
		}
		creds.APIKey = key
	}
	if creds.Tokens == nil && creds.APIKey == nil {
		log.Printf("Warning: no admin credentials configured, cache invalidation is disabled")
	}
	return creds, nil
}
