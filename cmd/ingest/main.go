// ingest ejecuta una pasada de ingesta de hojas de cálculo y termina.
//
// Uso: go run ./cmd/ingest [directorio ...]
// Sin argumentos usa LEADS_DIRS. Imprime el resultado en JSON por stdout.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jhoicas/Leadius-api/internal/application/ingestion"
	"github.com/jhoicas/Leadius-api/internal/infrastructure/objectstore"
	"github.com/jhoicas/Leadius-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Leadius-api/internal/infrastructure/redislock"
	"github.com/jhoicas/Leadius-api/internal/infrastructure/spreadsheet"
	"github.com/jhoicas/Leadius-api/pkg/config"
	"github.com/jhoicas/Leadius-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Output: os.Stderr})

	dirs := cfg.Ingestion.SourceDirs
	if len(os.Args) > 1 {
		dirs = os.Args[1:]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	sqlDB := postgres.SQLDB(pool)
	if err := postgres.Migrate(ctx, sqlDB); err != nil {
		fmt.Fprintf(os.Stderr, "Migraciones: %v\n", err)
		os.Exit(1)
	}
	_ = sqlDB.Close()

	rdb, err := redislock.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("redis no disponible, se usa lock local")
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}

	var remote ingestion.RemoteSource
	if cfg.S3.Enabled() {
		client, err := objectstore.NewS3Client(ctx, cfg.S3)
		if err != nil {
			log.Warn().Err(err).Msg("cliente S3, se ingesta solo desde disco")
		} else {
			remote = objectstore.NewS3Source(client, cfg.S3.Bucket, cfg.S3.Prefix, log)
		}
	}

	scanner := ingestion.NewScanner(postgres.NewLeadRepository(pool), spreadsheet.NewFileReader(),
		redislock.New(rdb), remote, ingestion.Config{
			SourceDirs:     dirs,
			MinPhoneLength: cfg.Ingestion.MinPhoneLength,
			LockTTL:        cfg.Ingestion.LockTTL,
		}, log)

	res, err := scanner.IngestNow(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ingesta: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir resultado: %v\n", err)
		os.Exit(1)
	}
}
