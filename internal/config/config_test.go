package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Address != ":8080" || cfg.Database.Name != "coach_core" {
		t.Errorf("server/database = %q / %q", cfg.Server.Address, cfg.Database.Name)
	}
	if cfg.Database.Timeout != 5*time.Second || cfg.LLM.Timeout != 90*time.Second {
		t.Errorf("timeouts = %v / %v", cfg.Database.Timeout, cfg.LLM.Timeout)
	}
	if cfg.Review.WeeklySchedule != "0 0 20 * * 0" || cfg.Review.Concurrency != 4 {
		t.Errorf("review = %+v", cfg.Review)
	}
	if cfg.Calendar.SessionHour != 18 || cfg.Calendar.HorizonWeeks != 2 {
		t.Errorf("calendar = %+v", cfg.Calendar)
	}
	if cfg.S3.Enabled || cfg.Otel.Enabled || cfg.Redis.Addr != "" {
		t.Error("optional integrations must default to off")
	}
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
server:
  address: ":7000"
review:
  concurrency: 8
  weekly_schedule: ""
calendar:
  session_hour: 7
`)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SERVER_ADDRESS", ":9090")
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"env beats file", cfg.Server.Address, ":9090"},
		{"file beats default", cfg.Review.Concurrency, 8},
		{"file disables job", cfg.Review.WeeklySchedule, ""},
		{"file hour", cfg.Calendar.SessionHour, 7},
		{"env only", cfg.LLM.APIKey, "sk-test"},
		{"redis from env", cfg.Redis.Addr, "localhost:6379"},
		{"untouched default", cfg.Review.CatchUpSchedule, "0 30 3 * * *"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}
