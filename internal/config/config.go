package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Ananth-NQI/clinicbot-backend/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App       App          `mapstructure:"app"`
	API       API          `mapstructure:"api"`
	Database  Database     `mapstructure:"database"`
	Redis     Redis        `mapstructure:"redis"`
	Transport Transport    `mapstructure:"transport"`
	Webhook   Webhook      `mapstructure:"webhook"`
	Responder Responder    `mapstructure:"responder"`
	Log       Log          `mapstructure:"log"`
	Seed      []SeedTenant `mapstructure:"seed" validate:"dive"`
}

type App struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type API struct {
	Port         string        `mapstructure:"port" validate:"required"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	AllowOrigins string        `mapstructure:"allow_origins"`
}

type Database struct {
	Driver          string        `mapstructure:"driver" validate:"oneof=postgres mysql memory"`
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

type Redis struct {
	Enabled   bool          `mapstructure:"enabled"`
	URL       string        `mapstructure:"url" validate:"required_if=Enabled true"`
	TenantTTL time.Duration `mapstructure:"tenant_ttl"`
}

type Transport struct {
	Driver     string        `mapstructure:"driver" validate:"oneof=gateway twilio"`
	BaseURL    string        `mapstructure:"base_url" validate:"required_if=Driver gateway"`
	SendPath   string        `mapstructure:"send_path"`
	Timeout    time.Duration `mapstructure:"timeout"`
	TwilioFrom string        `mapstructure:"twilio_from" validate:"required_if=Driver twilio"`
}

type Webhook struct {
	SignatureHeader string `mapstructure:"signature_header" validate:"required"`
	DigestHeader    string `mapstructure:"digest_header" validate:"required"`
	RequireDigest   bool   `mapstructure:"require_digest"`
}

type Responder struct {
	DefaultCurrency string `mapstructure:"default_currency"`
	// intent name -> Arabic trigger substrings
	ArabicTriggers map[string][]string `mapstructure:"arabic_triggers"`
}

type Log struct {
	Level       string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Development bool   `mapstructure:"development"`
}

// SeedTenant provisions one clinic with its session at startup
type SeedTenant struct {
	ClinicName        string               `mapstructure:"clinic_name" validate:"required"`
	Email             string               `mapstructure:"email"`
	WebhookSecret     string               `mapstructure:"webhook_secret" validate:"required"`
	APICredential     string               `mapstructure:"api_credential" validate:"required"`
	ProviderSessionID string               `mapstructure:"provider_session_id"`
	PhoneNumber       string               `mapstructure:"phone_number"`
	Language          string               `mapstructure:"language" validate:"omitempty,oneof=en ar bilingual"`
	GreetingEn        string               `mapstructure:"greeting_en"`
	GreetingAr        string               `mapstructure:"greeting_ar"`
	AddressEn         string               `mapstructure:"address_en"`
	AddressAr         string               `mapstructure:"address_ar"`
	MapURL            string               `mapstructure:"map_url"`
	Phone             string               `mapstructure:"phone"`
	Currency          string               `mapstructure:"currency"`
	WorkingHours      models.WorkingHours  `mapstructure:"working_hours"`
	Services          []models.ServiceItem `mapstructure:"services"`
	Keywords          []models.KeywordRule `mapstructure:"keywords"`
}

// Load reads ./config/config.yml when present, then environment overrides
// (DATABASE_HOST overrides database.host). A local .env is loaded first.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	return decode(v)
}

// LoadFile reads the given config file plus environment overrides
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "clinicbot")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")

	v.SetDefault("api.port", "8080")
	v.SetDefault("api.read_timeout", 10*time.Second)
	v.SetDefault("api.write_timeout", 30*time.Second)
	v.SetDefault("api.allow_origins", "*")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "clinicbot")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.tenant_ttl", 5*time.Minute)

	v.SetDefault("transport.driver", "gateway")
	v.SetDefault("transport.base_url", "http://localhost:3000")
	v.SetDefault("transport.send_path", "/api/messages/send")
	v.SetDefault("transport.timeout", 15*time.Second)
	v.SetDefault("transport.twilio_from", "")

	v.SetDefault("webhook.signature_header", "X-Webhook-Signature")
	v.SetDefault("webhook.digest_header", "X-Webhook-Digest")
	v.SetDefault("webhook.require_digest", true)

	v.SetDefault("responder.default_currency", "USD")
	v.SetDefault("responder.arabic_triggers", DefaultArabicTriggers())

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// DefaultArabicTriggers returns the built-in Arabic trigger words per intent
func DefaultArabicTriggers() map[string][]string {
	return map[string][]string{
		"greeting": {"مرحبا", "السلام", "اهلا", "أهلا", "مساعدة"},
		"location": {"موقع", "عنوان", "وين", "أين", "اين"},
		"hours":    {"ساعات", "مواعيد", "دوام", "متى", "مفتوح"},
		"pricing":  {"سعر", "اسعار", "أسعار", "تكلفة", "خدمات", "قائمة"},
		"booking":  {"حجز", "موعد", "احجز"},
		"contact":  {"اتصال", "اتصل", "رقم", "هاتف"},
		"human":    {"موظف", "شخص", "انسان", "إنسان", "تحدث"},
	}
}
