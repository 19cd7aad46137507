package config

import (
	"log"

	"github.com/caarlos0/env/v6"
)

type StoreBackend string

const (
	BackendExcel  StoreBackend = "excel"
	BackendSheets StoreBackend = "sheets"
)

type Config struct {
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN,required"`
	AdminUserID      int64  `env:"ADMIN_USER"`

	// Storage
	StoreBackend StoreBackend `env:"STORE_BACKEND" envDefault:"excel"`
	DataFilePath string       `env:"DATA_FILE_PATH" envDefault:"data/data.xlsx"`

	// Google Sheets backend
	SheetsSpreadsheetID   string `env:"SHEETS_SPREADSHEET_ID"`
	SheetsCredentialsJSON string `env:"SHEETS_CREDENTIALS_JSON"`
	SheetsTokenJSON       string `env:"SHEETS_TOKEN_JSON"`

	// Nightly table backup to the admin chat; empty disables it
	BackupCron string `env:"BACKUP_CRON" envDefault:"0 21 * * *"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}
