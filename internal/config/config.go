package config

import (
	"fmt"
	"log"
	"time"

	"edu-game-server/shared/utils"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит конфигурацию сервиса прогресса и секций
type Config struct {
	// Настройки сервера
	Port        string   `envconfig:"SERVER_PORT" default:"8080"`
	ServiceName string   `envconfig:"SERVICE_NAME" default:"edu-game-server"`
	LogLevel    string   `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string   `envconfig:"LOG_ENCODING" default:"json"`
	CORSOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	// Настройки PostgreSQL
	DBHost        string        `envconfig:"DB_HOST" required:"true"`
	DBPort        string        `envconfig:"DB_PORT" default:"5432"`
	DBUser        string        `envconfig:"DB_USER" required:"true"`
	DBName        string        `envconfig:"DB_NAME" required:"true"`
	DBSSLMode     string        `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns    int32         `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	DBIdleTimeout time.Duration `envconfig:"DB_MAX_IDLE_MINUTES" default:"5m"`
	RunMigrations bool          `envconfig:"RUN_MIGRATIONS" default:"true"`
	// Секретное поле БЕЗ envconfig тега
	DBPassword string

	// Проекции (пустое значение отключает)
	RedisAddr   string `envconfig:"REDIS_ADDR"`
	RedisDB     int    `envconfig:"REDIS_DB" default:"0"`
	RabbitMQURL string `envconfig:"RABBITMQ_URL"`

	// Игровые константы
	TotalQuests  int           `envconfig:"TOTAL_QUESTS" default:"25"`
	MaxStage     int           `envconfig:"MAX_STAGE" default:"10"`
	StoreTimeout time.Duration `envconfig:"STORE_TIMEOUT" default:"5s"`

	// Каталог Docker secrets
	SecretsDir string `envconfig:"SECRETS_DIR" default:"/run/secrets"`

	// Секреты без envconfig тега. Пустой InterServiceSecret отключает проверку токена.
	RedisPassword      string
	InterServiceSecret string
}

// Validate проверяет игровые константы.
func (c *Config) Validate() error {
	if c.TotalQuests <= 0 {
		return fmt.Errorf("TOTAL_QUESTS must be positive, got %d", c.TotalQuests)
	}
	if c.MaxStage < 1 {
		return fmt.Errorf("MAX_STAGE must be >= 1, got %d", c.MaxStage)
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive, got %s", c.StoreTimeout)
	}
	return nil
}

// LoadConfig загружает конфигурацию из переменных окружения и секретов
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Обязательный секрет
	var loadErr error
	cfg.DBPassword, loadErr = utils.ReadSecretFrom(cfg.SecretsDir, "db_password")
	if loadErr != nil {
		return nil, loadErr
	}

	// Необязательные секреты
	cfg.InterServiceSecret, loadErr = utils.ReadOptionalSecret(cfg.SecretsDir, "inter_service_jwt_secret")
	if loadErr != nil {
		return nil, loadErr
	}
	cfg.RedisPassword, loadErr = utils.ReadOptionalSecret(cfg.SecretsDir, "redis_password")
	if loadErr != nil {
		return nil, loadErr
	}

	log.Printf("Конфигурация загружена (секреты из файлов):")
	log.Printf("  Port: %s", cfg.Port)
	log.Printf("  LogLevel: %s", cfg.LogLevel)
	log.Printf("  DB: postgres://%s:***@%s:%s/%s?sslmode=%s", cfg.DBUser, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBSSLMode)
	log.Printf("  DB Max Conns: %d", cfg.DBMaxConns)
	log.Printf("  Redis: %s", orDisabled(cfg.RedisAddr))
	log.Printf("  RabbitMQ configured: %t", cfg.RabbitMQURL != "")
	log.Printf("  TotalQuests: %d, MaxStage: %d, StoreTimeout: %s", cfg.TotalQuests, cfg.MaxStage, cfg.StoreTimeout)
	log.Printf("  Inter-service auth: %t", cfg.InterServiceSecret != "")

	return &cfg, nil
}

func orDisabled(v string) string {
	if v == "" {
		return "[отключено]"
	}
	return v
}
