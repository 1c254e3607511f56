package main

import (
	"flag"
	"log/slog"
	"os"

	"payslip-agent-backend/config"
	"payslip-agent-backend/dao"
	"payslip-agent-backend/router"
	"payslip-agent-backend/service/imagestore"
	"payslip-agent-backend/service/mq"
	"payslip-agent-backend/service/titler"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := config.Load(*configPath); err != nil {
		slog.Error("Failed to load config", "err", err)
		os.Exit(1)
	}

	if err := dao.Init(config.Cfg); err != nil {
		slog.Error("Failed to init store", "err", err)
		os.Exit(1)
	}
	defer dao.Default.Close()

	if err := imagestore.Init(); err != nil {
		slog.Error("Failed to init image store", "err", err)
		os.Exit(1)
	}

	if err := titler.Init(dao.Default); err != nil {
		slog.Error("Failed to init session titler", "err", err)
		os.Exit(1)
	}

	if err := mq.Init(); err != nil {
		slog.Error("Failed to init MQ", "err", err)
		os.Exit(1)
	}
	defer mq.Shutdown()

	if mq.Ready() {
		if err := mq.Run(titler.HandleTitleMessage); err != nil {
			slog.Error("Failed to start MQ", "err", err)
			os.Exit(1)
		}
	} else {
		titler.Instance.Run()
	}

	r := router.Register()
	if err := r.Run(":" + config.Cfg.Server.Port); err != nil {
		slog.Error("Server exited", "err", err)
		os.Exit(1)
	}
}
