package main

import (
	"flag"
	"os"
	"path/filepath"

	"escrowd/config"
	"escrowd/native/escrow"
	"escrowd/observability/logging"
	"escrowd/rpc"
	"escrowd/storage"
)

func main() {
	configPath := flag.String("config", "./config.toml", "path to the escrowd config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Setup("escrowd", "").Error("load config", "path", *configPath, "err", err)
		os.Exit(1)
	}

	log := logging.Setup("escrowd", cfg.Environment)

	db, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "escrows"))
	if err != nil {
		log.Error("open database", "datadir", cfg.DataDir, "err", err)
		os.Exit(1)
	}
	defer db.Close()

	registry := escrow.NewRegistry(db)
	engine := escrow.NewEngine(registry, escrow.AccountValidator{})
	engine.SetLegacyFundsCheck(cfg.LegacyFundsCheck)
	engine.SetRejectDeadlineShortening(cfg.RejectDeadlineShortening)
	query := escrow.NewQuery(registry)

	server := rpc.NewServer(engine, query, log)
	if err := server.Start(cfg.RPCAddress); err != nil {
		log.Error("rpc server stopped", "err", err)
		os.Exit(1)
	}
}
