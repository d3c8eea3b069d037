// Package config loads chessbot configuration from the environment.
//
// All required values missing or invalid abort startup; there are no
// runtime fallbacks for credentials or target identifiers.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Telegram credentials and target chat.
	BotToken string `env:"BOT_TOKEN,required,notEmpty"`
	ChatID   int64  `env:"CHAT_ID,required,notEmpty"`

	// TriggerSecret guards POST /trigger-puzzle/{secret}.
	TriggerSecret string `env:"TRIGGER_SECRET,required,notEmpty"`

	// PublicURL is the externally reachable base URL used for webhook
	// registration (no trailing slash).
	PublicURL string `env:"PUBLIC_URL,required,notEmpty"`
	Port      int    `env:"PORT" envDefault:"5000"`

	PuzzlesURL string `env:"PUZZLES_URL" envDefault:"https://raw.githubusercontent.com/AntonRomashov87/Chess_puzzles/main/puzzles.json"`

	// Source documents. At least one must be set.
	PDFURL  string `env:"PDF_URL"`
	DJVUURL string `env:"DJVU_URL"`

	// DataDir holds downloaded sources, rendered page directories and the
	// cursor store.
	DataDir string `env:"DATA_DIR" envDefault:"./data"`

	// Weekly publication slots.
	PublishDays []string `env:"PUBLISH_DAYS" envSeparator:"," envDefault:"TUE,THU,SAT"`
	PublishAt   string   `env:"PUBLISH_AT" envDefault:"10:00"`
	Timezone    string   `env:"TIMEZONE" envDefault:"Europe/Kyiv"`

	RenderDPI int `env:"RENDER_DPI" envDefault:"144"`

	// HTTPTimeout bounds every outbound network call (puzzle fetch,
	// source download, Bot API requests).
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`

	Storage StorageConfig
	Logging LoggingConfig
}

// StorageConfig selects the cursor-store backend.
//
// Driver values:
//   - "file":   one small text file per document (default)
//   - "sqlite": single SQLite database file
type StorageConfig struct {
	Driver      string        `env:"STORAGE_DRIVER" envDefault:"file"`
	Path        string        `env:"STORAGE_PATH"`
	BusyTimeout time.Duration `env:"STORAGE_BUSY_TIMEOUT" envDefault:"5s"`
}

type LoggingConfig struct {
	Level       string `env:"LOG_LEVEL" envDefault:"info"`
	Console     bool   `env:"LOG_CONSOLE" envDefault:"true"`
	File        string `env:"LOG_FILE"`
	FileMaxSize int    `env:"LOG_MAX_SIZE_MB" envDefault:"50"`
	FileBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
	FileMaxAge  int    `env:"LOG_MAX_AGE_DAYS" envDefault:"30"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.PDFURL) == "" && strings.TrimSpace(c.DJVUURL) == "" {
		return errors.New("at least one of PDF_URL or DJVU_URL must be set")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if _, _, err := ParseHHMM(c.PublishAt); err != nil {
		return fmt.Errorf("invalid PUBLISH_AT %q: %w", c.PublishAt, err)
	}
	if len(c.PublishDays) == 0 {
		return errors.New("PUBLISH_DAYS must not be empty")
	}
	for _, d := range c.PublishDays {
		if !validWeekday(d) {
			return fmt.Errorf("invalid weekday %q in PUBLISH_DAYS", d)
		}
	}
	switch strings.ToLower(strings.TrimSpace(c.Storage.Driver)) {
	case "file", "sqlite", "sqlite3":
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	return nil
}

// ParseHHMM parses a wall-clock "HH:MM" time of day.
func ParseHHMM(s string) (hour, minute int, err error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, 0, errors.New("expected HH:MM")
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, errors.New("hour out of range")
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, errors.New("minute out of range")
	}
	return h, m, nil
}

var weekdays = map[string]bool{
	"SUN": true, "MON": true, "TUE": true, "WED": true,
	"THU": true, "FRI": true, "SAT": true,
}

func validWeekday(d string) bool {
	return weekdays[strings.ToUpper(strings.TrimSpace(d))]
}
