package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"vacation-bot/internal/config"
	"vacation-bot/internal/engine"
	"vacation-bot/internal/scheduler"
	"vacation-bot/internal/store"
	"vacation-bot/internal/telegram"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	st, err := newStore(cfg)
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}

	eng := engine.New(st, cfg.AdminUserID)

	bot, err := telegram.New(cfg.TelegramBotToken, eng)
	if err != nil {
		log.Fatalf("failed to create bot: %v", err)
	}

	if cfg.BackupCron != "" && cfg.AdminUserID != 0 {
		sched := scheduler.New(cfg.BackupCron)
		sched.SetBackupFunction(func() error {
			name, data, err := st.Export()
			if err != nil {
				return err
			}
			return bot.SendDocument(cfg.AdminUserID, name, data)
		})
		if err := sched.Start(); err != nil {
			log.Fatalf("failed to start scheduler: %v", err)
		}
		defer sched.Stop()
	}

	bot.Start(context.Background())
}

func newStore(cfg *config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendSheets:
		return store.NewSheetsStore(context.Background(), cfg.SheetsSpreadsheetID, cfg.SheetsCredentialsJSON, cfg.SheetsTokenJSON)
	default:
		return store.NewExcelStore(cfg.DataFilePath)
	}
}
