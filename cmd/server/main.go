package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solar-catalog-api/internal/catalog"
	"solar-catalog-api/internal/config"
	"solar-catalog-api/internal/database"
	"solar-catalog-api/internal/electrical"
	"solar-catalog-api/internal/handler"
	"solar-catalog-api/internal/kits"
	"solar-catalog-api/internal/matching"
	"solar-catalog-api/internal/observability"
	"solar-catalog-api/internal/repository"
	"solar-catalog-api/internal/service"
)

func main() {
	// Carregar config
	cfg := config.Load()

	// Logger estruturado
	logger := observability.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	slog.Info("iniciando solar-catalog-api")

	ratio, err := electrical.RatioProfile(cfg.Pipeline.RatioProfile)
	if err != nil {
		slog.Error("configuracao invalida", "error", err)
		os.Exit(1)
	}

	params, err := catalog.LoadParams(cfg.ParamsFile)
	if err != nil {
		slog.Error("falha ao carregar parametros eletricos", "file", cfg.ParamsFile, "error", err)
		os.Exit(1)
	}
	slog.Info("parametros eletricos carregados", "inverters", len(params.Inverters), "modules", len(params.Modules))

	// Fonte do catalogo: banco quando configurado, senao arquivos do normalize
	var source service.CatalogSource
	var pinger handler.Pinger
	if cfg.Database.Enabled {
		slog.Info("conectando ao banco de dados", "host", cfg.Database.Host, "database", cfg.Database.Name)
		db, err := database.Connect(context.Background(), database.FromConfig(cfg.Database))
		if err != nil {
			slog.Error("falha ao conectar banco", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		slog.Info("conexao com banco estabelecida")

		if err := database.RunMigrations(context.Background(), db); err != nil {
			slog.Error("falha ao executar migrations", "error", err)
			os.Exit(1)
		}

		source = service.NewRepoSource(
			repository.NewSkuRepo(db),
			repository.NewKitRepo(db),
			repository.NewManufacturerRepo(db),
			repository.NewRunRepo(db),
		)
		pinger = db
	} else {
		slog.Info("lendo catalogo de arquivos", "dir", cfg.CatalogDir)
		source = service.NewDirSource(cfg.CatalogDir)
	}

	// Service
	validator := electrical.NewValidator(electrical.Config{
		CellTempMin:  cfg.Pipeline.CellTempMin,
		CellTempMax:  cfg.Pipeline.CellTempMax,
		SafetyMargin: cfg.Pipeline.SafetyMargin,
	})
	catalogSvc := service.NewCatalogService(
		source,
		validator,
		matching.NewManufacturerNormalizer(cfg.Pipeline.ManufacturerAliases),
		service.Options{
			Kits: kits.Config{
				DefaultTolerance: cfg.Pipeline.KitCapacityTolerance,
				DefaultLimit:     cfg.Pipeline.KitMatchLimit,
			},
			Ratio:  ratio,
			Params: params,
		},
		logger,
	)

	// Handlers
	var metrics http.Handler
	if cfg.MetricsEnabled {
		observability.Register()
		metrics = observability.Handler()
	}
	r := handler.NewRouter(
		handler.NewHealthHandler(pinger),
		handler.NewCatalogHandler(catalogSvc, logger),
		metrics,
	)

	// Server
	srv := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		slog.Info("servidor iniciado", "port", cfg.APIPort)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("erro no servidor", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("encerrando servidor...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("erro ao encerrar servidor", "error", err)
	}

	slog.Info("servidor encerrado")
}
