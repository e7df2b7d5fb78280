package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DatabaseConfig PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int    `yaml:"max_conns"`
	MaxIdle  int    `yaml:"max_idle"`
}

// GetDSN builds a lib/pq key/value connection string.
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig Redis settings
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// SMTPConfig outbound mail settings
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// MQTTConfig broker used to publish assignment reports (disabled by default)
type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Topic    string `yaml:"topic"`
	QoS      byte   `yaml:"qos"`
}

// NotifyConfig where admin reports go
type NotifyConfig struct {
	AdminRecipients []string `yaml:"admin_recipients"`
	Stream          string   `yaml:"stream"`
	WebhookURL      string   `yaml:"webhook_url"`
}

// Config fact-registration settings
type Config struct {
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	DBEnabled bool           `yaml:"db_enabled"`
	Database  DatabaseConfig `yaml:"database"`
	Redis     RedisConfig    `yaml:"redis"`
	Log       struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	SMTP   SMTPConfig   `yaml:"smtp"`
	MQTT   MQTTConfig   `yaml:"mqtt"`
	Notify NotifyConfig `yaml:"notify"`
	Event  struct {
		Name     string `yaml:"name"`
		Timezone string `yaml:"timezone"`
	} `yaml:"event"`
	VerificationTTLMinutes int `yaml:"verification_ttl_minutes"`
}

func defaults() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = ":8080"
	cfg.DBEnabled = true
	cfg.Database = DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		Database: "fact",
		SSLMode:  "disable",
	}
	cfg.Redis.Addr = "localhost:6379"
	cfg.Log.Level = "info"
	cfg.Log.Format = "json"
	cfg.SMTP.Host = "localhost"
	cfg.SMTP.Port = 587
	cfg.MQTT.Broker = "tcp://localhost:1883"
	cfg.MQTT.ClientID = "fact-registration"
	cfg.MQTT.Topic = "fact/admin/reports"
	cfg.Notify.AdminRecipients = []string{"fact.it@psauiuc.org"}
	cfg.Notify.Stream = "fact:admin-reports"
	cfg.Event.Name = "FACT 2024"
	cfg.Event.Timezone = "America/Chicago"
	cfg.VerificationTTLMinutes = 15
	return cfg
}

// Load reads CONFIG_FILE (optional YAML) and then applies environment overrides.
func Load() *Config {
	cfg, err := LoadFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: ignoring %s: %v\n", os.Getenv("CONFIG_FILE"), err)
		cfg = defaults()
	}
	applyEnv(cfg)
	return cfg
}

// LoadFile returns defaults overlaid with the YAML file at path. An empty path yields the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := defaults()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", cfg.HTTP.Addr)

	cfg.DBEnabled = getEnv("DB_ENABLED", strconv.FormatBool(cfg.DBEnabled)) == "true"
	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = parseInt(getEnv("DB_PORT", ""), cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Database = getEnv("DB_NAME", cfg.Database.Database)
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", cfg.Database.SSLMode)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", ""), cfg.Redis.DB)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)

	cfg.SMTP.Host = getEnv("SMTP_HOST", cfg.SMTP.Host)
	cfg.SMTP.Port = parseInt(getEnv("SMTP_PORT", ""), cfg.SMTP.Port)
	cfg.SMTP.Username = getEnv("SMTP_USERNAME", cfg.SMTP.Username)
	cfg.SMTP.Password = getEnv("SMTP_PASSWORD", cfg.SMTP.Password)
	// EMAIL_HOST_USER is accepted as the sender for older deployments
	cfg.SMTP.From = getEnv("MAIL_FROM", getEnv("EMAIL_HOST_USER", cfg.SMTP.From))

	cfg.MQTT.Enabled = getEnv("MQTT_ENABLED", strconv.FormatBool(cfg.MQTT.Enabled)) == "true"
	cfg.MQTT.Broker = getEnv("MQTT_BROKER", cfg.MQTT.Broker)
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", cfg.MQTT.ClientID)
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", cfg.MQTT.Username)
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", cfg.MQTT.Password)
	cfg.MQTT.Topic = getEnv("MQTT_TOPIC", cfg.MQTT.Topic)

	if v := getEnv("MAIL_ADMIN_RECIPIENTS", ""); v != "" {
		cfg.Notify.AdminRecipients = splitList(v)
	}
	cfg.Notify.Stream = getEnv("NOTIFY_STREAM", cfg.Notify.Stream)
	cfg.Notify.WebhookURL = getEnv("WEBHOOK_URL", cfg.Notify.WebhookURL)

	cfg.Event.Name = getEnv("EVENT_NAME", cfg.Event.Name)
	cfg.Event.Timezone = getEnv("EVENT_TIMEZONE", cfg.Event.Timezone)
	cfg.VerificationTTLMinutes = parseInt(getEnv("VERIFICATION_TTL_MINUTES", ""), cfg.VerificationTTLMinutes)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
