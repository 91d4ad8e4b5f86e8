package main

import (
	"github.com/elquelo/elquelo/config"
	"github.com/elquelo/elquelo/models"
	"github.com/elquelo/elquelo/resolver"
	"github.com/elquelo/elquelo/routes"
	"github.com/elquelo/elquelo/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Event{},
		&models.EventMember{},
		&models.QR{},
		&models.Destination{},
		&models.Scan{},
		&models.Order{},
	)

	sweeper := resolver.NewSweeper(db, utils.Sugar, func(code string) {
		utils.CacheDelete(utils.RedirectCacheKey(code))
	})

	if cfg.SweepEnabled {
		if _, err := resolver.StartScheduler(sweeper, cfg.SweepCronSpec, utils.Sugar); err != nil {
			utils.Sugar.Fatalf("failed to start sweep scheduler: %v", err)
		}
	}

	r := routes.SetupRouter(db, sweeper)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
