package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/bryanwahyu/booklens/internal/application"
	appbooks "github.com/bryanwahyu/booklens/internal/application/books"
	"github.com/bryanwahyu/booklens/internal/config"
	domain "github.com/bryanwahyu/booklens/internal/domain/books"
	mysqlp "github.com/bryanwahyu/booklens/internal/infra/db/mysql"
	postgresp "github.com/bryanwahyu/booklens/internal/infra/db/postgres"
	sqlitep "github.com/bryanwahyu/booklens/internal/infra/db/sqlite"
	"github.com/bryanwahyu/booklens/internal/infra/httpserver"
	"github.com/bryanwahyu/booklens/internal/infra/storage"
	"github.com/bryanwahyu/booklens/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checkers := map[string]middleware.HealthChecker{}

	// init blob stores
	uploads, analyses, err := openStores(ctx, cfg, checkers)
	if err != nil {
		log.Fatalf("storage init error: %v", err)
	}

	// init record repository
	records, db, err := openRecords(ctx, cfg, analyses)
	if err != nil {
		log.Fatalf("records init error: %v", err)
	}
	if db != nil {
		defer db.Close()
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
	}

	svc := &appbooks.Service{
		Uploads: uploads,
		Records: records,
		Clock:   application.SystemClock{},
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	limiter := middleware.NewRateLimiter(cfg.Limits.RateLimitCapacity, cfg.Limits.RateLimitRefill)
	go limiter.Run(ctx, 5*time.Minute, 10*time.Minute)

	handler := httpserver.NewRouter(svc, httpserver.Options{
		MaxUploadBytes: cfg.MaxUploadBytes(),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Metrics:        middleware.NewMetrics(reg),
		Gatherer:       reg,
		RateLimiter:    limiter,
		Checkers:       checkers,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("server listening on %s storage=%s records=%s", addr, cfg.Storage.Driver, cfg.Records.Driver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	<-ctx.Done()
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

// openStores returns the upload store and the store analysis documents go to
// when the blob records driver is used.
func openStores(ctx context.Context, cfg *config.Config, checkers map[string]middleware.HealthChecker) (domain.BlobStore, domain.BlobStore, error) {
	switch cfg.Storage.Driver {
	case "minio":
		cli, err := storage.NewMinioClient(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			return nil, nil, err
		}
		uploads := storage.NewMinio(cli, cfg.Minio.BucketName, "uploads")
		checkers["storage"] = uploads
		return uploads, storage.NewMinio(cli, cfg.Minio.BucketName, "analysis"), nil

	case "memory":
		log.Println("memory storage driver: uploads and analyses are lost on restart")
		uploads := storage.NewMemory()
		checkers["storage"] = uploads
		return uploads, storage.NewMemory(), nil

	default:
		uploads, err := storage.NewLocal(cfg.Storage.UploadDir)
		if err != nil {
			return nil, nil, err
		}
		analyses, err := storage.NewLocal(cfg.Storage.AnalysisDir)
		if err != nil {
			return nil, nil, err
		}
		checkers["uploads"] = uploads
		checkers["analyses"] = analyses
		return uploads, analyses, nil
	}
}

// openRecords picks the record repository; db is nil for the blob driver.
func openRecords(ctx context.Context, cfg *config.Config, analyses domain.BlobStore) (domain.Repository, *sql.DB, error) {
	switch cfg.Records.Driver {
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("mysql connect: %w", err)
		}
		repo := mysqlp.NewRecordRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("mysql schema: %w", err)
		}
		return repo, db, nil

	case "postgres":
		db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("postgres connect: %w", err)
		}
		repo := postgresp.NewRecordRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("postgres schema: %w", err)
		}
		return repo, db, nil

	case "sqlite":
		db, err := sqlitep.Open(cfg.Records.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return sqlitep.NewRecordRepository(db), db, nil

	default:
		return storage.NewRecordRepository(analyses), nil, nil
	}
}
