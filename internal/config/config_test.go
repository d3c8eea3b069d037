package config

import (
	"testing"
)

func validConfig() Config {
	return Config{
		BotToken:      "123:abc",
		ChatID:        -100123,
		TriggerSecret: "s",
		PublicURL:     "https://bot.example.org",
		Port:          5000,
		PDFURL:        "https://example.org/book.pdf",
		PublishDays:   []string{"TUE", "THU", "SAT"},
		PublishAt:     "10:00",
		Timezone:      "Europe/Kyiv",
	}
}

func TestValidateOK(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Storage.Driver = "file"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate error: %v", err)
	}
}

func TestValidateFailures(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "no sources", mutate: func(c *Config) { c.PDFURL, c.DJVUURL = "", "" }},
		{name: "bad port", mutate: func(c *Config) { c.Port = 70000 }},
		{name: "bad publish time", mutate: func(c *Config) { c.PublishAt = "25:00" }},
		{name: "no days", mutate: func(c *Config) { c.PublishDays = nil }},
		{name: "bad day", mutate: func(c *Config) { c.PublishDays = []string{"TUE", "SOMEDAY"} }},
		{name: "bad storage driver", mutate: func(c *Config) { c.Storage.Driver = "redis" }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Storage.Driver = "file"
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestParseHHMM(t *testing.T) {
	t.Parallel()
	h, m, err := ParseHHMM("23:15")
	if err != nil {
		t.Fatalf("ParseHHMM error: %v", err)
	}
	if h != 23 || m != 15 {
		t.Fatalf("unexpected result: %d:%d", h, m)
	}

	for _, bad := range []string{"24:00", "10:60", "ten", "10", "-1:30"} {
		if _, _, err := ParseHHMM(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("CHAT_ID", "-100456")
	t.Setenv("TRIGGER_SECRET", "hush")
	t.Setenv("PUBLIC_URL", "https://bot.example.org")
	t.Setenv("PDF_URL", "https://example.org/book.pdf")
	t.Setenv("PUBLISH_DAYS", "MON,WED")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.ChatID != -100456 {
		t.Fatalf("ChatID = %d, want -100456", cfg.ChatID)
	}
	if cfg.Port != 5000 {
		t.Fatalf("Port default = %d, want 5000", cfg.Port)
	}
	if len(cfg.PublishDays) != 2 || cfg.PublishDays[0] != "MON" {
		t.Fatalf("PublishDays = %v", cfg.PublishDays)
	}
	if cfg.Storage.Driver != "file" {
		t.Fatalf("Storage.Driver default = %q, want file", cfg.Storage.Driver)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("CHAT_ID", "")
	t.Setenv("TRIGGER_SECRET", "")
	t.Setenv("PUBLIC_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when required variables are missing")
	}
}
