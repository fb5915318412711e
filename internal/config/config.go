package config

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Bot      BotConfig
	Wallet   WalletConfig
	Shop     ShopConfig
}

type ServerConfig struct {
	Port int
	Env  string // "development", "production"
}

type DatabaseConfig struct {
	Driver string // "sqlite" or "mysql"
	Path   string // sqlite file path
	Host   string
	Port   string
	Name   string
	User   string
	Pass   string
}

type RedisConfig struct {
	Addr string
	Pass string
	DB   int
}

type BotConfig struct {
	Token         string
	WebhookURL    string
	AdminIDs      []int64
	ReportChannel string
}

type WalletConfig struct {
	BaseURL  string
	APIKey   string
	PriceURL string
}

type ShopConfig struct {
	Currency       string // fiat currency for price display and stats ("usd", "eur", ...)
	CurrencySymbol string
	PageSize       int
	BroadcastDelay time.Duration
}

// Load reads configuration from .env file and environment variables.
func Load() (*Config, error) {
	// Load .env file (ignore error if missing)
	_ = godotenv.Load()

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("APP_PORT", 8080)
	viper.SetDefault("APP_ENV", "production")
	viper.SetDefault("DB_DRIVER", "sqlite")
	viper.SetDefault("DB_PATH", "shop.db")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "3306")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("WALLET_PRICE_URL", "https://api.coingecko.com/api/v3")
	viper.SetDefault("SHOP_CURRENCY", "usd")
	viper.SetDefault("SHOP_CURRENCY_SYMBOL", "$")
	viper.SetDefault("SHOP_PAGE_SIZE", 10)
	viper.SetDefault("SHOP_BROADCAST_DELAY", "1500ms")

	delay, err := time.ParseDuration(viper.GetString("SHOP_BROADCAST_DELAY"))
	if err != nil {
		delay = 1500 * time.Millisecond
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetInt("APP_PORT"),
			Env:  viper.GetString("APP_ENV"),
		},
		Database: DatabaseConfig{
			Driver: viper.GetString("DB_DRIVER"),
			Path:   viper.GetString("DB_PATH"),
			Host:   viper.GetString("DB_HOST"),
			Port:   viper.GetString("DB_PORT"),
			Name:   viper.GetString("DB_NAME"),
			User:   viper.GetString("DB_USER"),
			Pass:   viper.GetString("DB_PASS"),
		},
		Redis: RedisConfig{
			Addr: viper.GetString("REDIS_ADDR"),
			Pass: viper.GetString("REDIS_PASS"),
			DB:   viper.GetInt("REDIS_DB"),
		},
		Bot: BotConfig{
			Token:         viper.GetString("BOT_TOKEN"),
			WebhookURL:    viper.GetString("BOT_WEBHOOK_URL"),
			AdminIDs:      parseAdminIDs(viper.GetString("BOT_ADMIN_IDS")),
			ReportChannel: viper.GetString("BOT_REPORT_CHANNEL"),
		},
		Wallet: WalletConfig{
			BaseURL:  viper.GetString("WALLET_API_URL"),
			APIKey:   viper.GetString("WALLET_API_KEY"),
			PriceURL: viper.GetString("WALLET_PRICE_URL"),
		},
		Shop: ShopConfig{
			Currency:       viper.GetString("SHOP_CURRENCY"),
			CurrencySymbol: viper.GetString("SHOP_CURRENCY_SYMBOL"),
			PageSize:       viper.GetInt("SHOP_PAGE_SIZE"),
			BroadcastDelay: delay,
		},
	}

	if cfg.Bot.Token == "" {
		log.Println("WARNING: BOT_TOKEN is not set")
	}
	if len(cfg.Bot.AdminIDs) == 0 {
		log.Println("WARNING: BOT_ADMIN_IDS is not set; nobody can reach the admin menu")
	}

	return cfg, nil
}

// parseAdminIDs parses a comma-separated list of Telegram IDs.
func parseAdminIDs(raw string) []int64 {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			log.Printf("WARNING: skipping malformed admin id %q", part)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// DSN returns the MySQL DSN string for GORM.
func (d *DatabaseConfig) DSN() string {
	return d.User + ":" + d.Pass + "@tcp(" + d.Host + ":" + d.Port + ")/" + d.Name + "?charset=utf8mb4&parseTime=True&loc=Local"
}
