package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	S3       S3Config       `mapstructure:"s3"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Review   ReviewConfig   `mapstructure:"review"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	Log      LogConfig      `mapstructure:"log"`
	Otel     OtelConfig     `mapstructure:"otel"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Mode    string `mapstructure:"mode"` // gin mode: debug | release | test
	// CORSOrigins lists allowed browser origins. Empty allows any origin.
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
	// Timeout bounds every single store call.
	Timeout time.Duration `mapstructure:"timeout"`
}

type S3Config struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// JWTConfig holds the shared secret used to verify bearer tokens issued by the auth service.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

// LLMConfig configures the OpenAI-compatible chat completions endpoint.
type LLMConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	APIKey        string        `mapstructure:"api_key"`
	Model         string        `mapstructure:"model"`
	FallbackModel string        `mapstructure:"fallback_model"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Temperature   float64       `mapstructure:"temperature"`
	MaxRetries    int           `mapstructure:"max_retries"`
}

// ReviewConfig controls the weekly rewrite batch and the nightly catch-up sweep.
// Schedules use the six-field cron format (seconds first).
type ReviewConfig struct {
	WeeklySchedule  string        `mapstructure:"weekly_schedule"`
	CatchUpSchedule string        `mapstructure:"catchup_schedule"`
	Concurrency     int           `mapstructure:"concurrency"`
	UserTimeout     time.Duration `mapstructure:"user_timeout"`
}

type CalendarConfig struct {
	SessionHour  int `mapstructure:"session_hour"`
	HorizonWeeks int `mapstructure:"horizon_weeks"`
}

type LogConfig struct {
	Mode string `mapstructure:"mode"` // dev | prod
}

type OtelConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	ServiceName string  `mapstructure:"service_name"`
	Endpoint    string  `mapstructure:"endpoint"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

// RedisConfig enables the cross-replica job lease. An empty Addr keeps the scheduler local.
type RedisConfig struct {
	Addr       string `mapstructure:"addr"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	LockPrefix string `mapstructure:"lock_prefix"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS, llm.api_key -> LLM_API_KEY
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	err = v.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		// Running on defaults and env vars only.
		err = nil
	} else if err != nil {
		return
	}

	err = v.Unmarshal(&config)
	if err != nil {
		return
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors_origins", []string{})
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "coach_core")
	v.SetDefault("database.timeout", "5s")
	v.SetDefault("s3.enabled", false)
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.fallback_model", "")
	v.SetDefault("llm.timeout", "90s")
	v.SetDefault("llm.temperature", 0.4)
	v.SetDefault("llm.max_retries", 2)
	v.SetDefault("review.weekly_schedule", "0 0 20 * * 0") // Sunday 20:00
	v.SetDefault("review.catchup_schedule", "0 30 3 * * *")
	v.SetDefault("review.concurrency", 4)
	v.SetDefault("review.user_timeout", "3m")
	v.SetDefault("calendar.session_hour", 18)
	v.SetDefault("calendar.horizon_weeks", 2)
	v.SetDefault("log.mode", "dev")
	v.SetDefault("otel.enabled", false)
	v.SetDefault("otel.service_name", "coach-core")
	v.SetDefault("otel.endpoint", "")
	v.SetDefault("otel.sample_ratio", 0.1)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.lock_prefix", "coach-core:jobs:")
}
