package main

import (
	"go.uber.org/zap"

	"github.com/radieske/bet-ledger-engine/internal/shared/config"
	"github.com/radieske/bet-ledger-engine/internal/shared/db"
	"github.com/radieske/bet-ledger-engine/internal/shared/logger"
)

// Aplica o schema do banco. Idempotente: pode rodar quantas vezes quiser.
func main() {
	cfg := config.Load()
	log, err := logger.New("migrate", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	if err := db.Migrate(pg); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}
	log.Info("schema aplicado")
}
