package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"quiknote-be/internal/bootstrap"
	"quiknote-be/internal/config"
	"quiknote-be/internal/server"
	"quiknote-be/internal/tracer"
	"quiknote-be/pkg/database"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database (board placements only; optional)
	var gormDB *gorm.DB
	if cfg.Database.Connection != "" {
		var err error
		gormDB, err = database.NewGormDBFromDSN(cfg.Database.Connection, cfg.App.Environment != "production")
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Close()

	shutdownTracer := tracer.Init(cfg.Tracing, container.Logger)
	defer shutdownTracer(context.Background())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Start Background Services
	if err := container.ConsumerService.Consume(ctx); err != nil {
		log.Panicf("Unable to start change consumer: %v", err)
	}
	if err := container.ResyncService.Start(); err != nil {
		log.Panicf("Invalid STORE_RESYNC_SCHEDULE: %v", err)
	}
	defer container.ResyncService.Stop()

	// 5. Run Server until a signal arrives
	srv := server.New(cfg, container)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Run)
	g.Go(func() error {
		<-gctx.Done()
		return srv.Shutdown()
	})

	if err := g.Wait(); err != nil {
		container.Logger.Error("Main", "Server stopped with error", map[string]interface{}{"error": err})
	}
	container.Logger.Info("Main", "Server stopped", nil)
}
