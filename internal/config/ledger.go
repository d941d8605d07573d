package config

import "github.com/joho/godotenv"

// LedgerConfig is the subset of settings the standalone ledger consumer
// needs.  Unlike Load it requires nothing, so the consumer can run on a host
// without database credentials.
type LedgerConfig struct {
	RabbitURL string
	Dir       string
	LogLevel  string
	LogFormat string
}

func LoadLedgerConfig() LedgerConfig {
	_ = godotenv.Load()
	return LedgerConfig{
		RabbitURL: rabbitURL(),
		Dir:       envStr("BOOKING_LEDGER_DIR", "logs"),
		LogLevel:  envStr("LOG_LEVEL", "info"),
		LogFormat: envStr("LOG_FORMAT", "json"),
	}
}
