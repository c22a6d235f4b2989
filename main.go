package main

import (
	"cleanblog/config"
	"cleanblog/models"
	"cleanblog/routes"
	"cleanblog/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	utils.InitRedis(cfg)

	db := config.InitDatabase(cfg, &models.Post{}, &models.ContactMessage{})

	r := routes.SetupRouter(db, cfg, utils.NewSMTPMailer(cfg))

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
