package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	DBDriver      string
	DBPath        string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	RedisHost     string
	RedisPort     string
	SessionSecret string
	GinMode       string
	Port          string
	LogLevel      string
	OpenAIAPIKey  string
	ServiceName   string
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	MailFrom      string
	AppBaseURL    string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("db_driver", "sqlite")
	v.SetDefault("db_path", "issues.db")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "3306")
	v.SetDefault("db_user", "issueuser")
	v.SetDefault("db_password", "issuepassword")
	v.SetDefault("db_name", "issue_tracker")
	v.SetDefault("redis_host", "")
	v.SetDefault("redis_port", "6379")
	v.SetDefault("session_secret", "default-secret-key-change-me")
	v.SetDefault("gin_mode", "debug")
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("otel_service_name", "issue-tracker-api")
	v.SetDefault("smtp_host", "")
	v.SetDefault("smtp_port", "587")
	v.SetDefault("smtp_username", "")
	v.SetDefault("smtp_password", "")
	v.SetDefault("mail_from", "issues@localhost")
	v.SetDefault("app_base_url", "http://localhost:8080")
}

// Load reads configuration from the environment, falling back to defaults.
func Load() *Config {
	cfg, _ := LoadFile("")
	return cfg
}

// LoadFile is like Load but also reads the given YAML file. Environment
// variables still take precedence over file values.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}
	return FromViper(v), nil
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		DBDriver:      strings.ToLower(v.GetString("db_driver")),
		DBPath:        v.GetString("db_path"),
		DBHost:        v.GetString("db_host"),
		DBPort:        v.GetString("db_port"),
		DBUser:        v.GetString("db_user"),
		DBPassword:    v.GetString("db_password"),
		DBName:        v.GetString("db_name"),
		RedisHost:     v.GetString("redis_host"),
		RedisPort:     v.GetString("redis_port"),
		SessionSecret: v.GetString("session_secret"),
		GinMode:       v.GetString("gin_mode"),
		Port:          v.GetString("port"),
		LogLevel:      v.GetString("log_level"),
		OpenAIAPIKey:  v.GetString("openai_api_key"),
		ServiceName:   v.GetString("otel_service_name"),
		SMTPHost:      v.GetString("smtp_host"),
		SMTPPort:      v.GetString("smtp_port"),
		SMTPUsername:  v.GetString("smtp_username"),
		SMTPPassword:  v.GetString("smtp_password"),
		MailFrom:      v.GetString("mail_from"),
		AppBaseURL:    v.GetString("app_base_url"),
	}
}
