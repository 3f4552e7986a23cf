package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/Growfam/fc26-sniping/internal/domain"
)

// Config holds every sniper tunable. Immutable after Get returns.
type Config struct {
	SearchInterval time.Duration
	BuyDelay       time.Duration

	MaxPurchases    int64
	MaxActiveSales  int
	MinCoinsReserve int64

	AutoSell     bool
	SellMarkup   decimal.Decimal
	SellDuration time.Duration

	PauseAfterPurchases int
	PauseDuration       time.Duration
	MaxSearchesPerHour  int

	AutoRelist     bool
	RelistInterval time.Duration

	JournalDir string
	ListenAddr string

	Targets []TargetSpec
}

// TargetSpec is the declarative form of an acquisition target.
type TargetSpec struct {
	Name        string              `yaml:"name"`
	MaxBuyPrice int64               `yaml:"max_buy_price"`
	SellPrice   int64               `yaml:"sell_price,omitempty"`
	Priority    int                 `yaml:"priority,omitempty"`
	Disabled    bool                `yaml:"disabled,omitempty"`
	Filter      domain.SearchFilter `yaml:"filter"`
}

// Target materializes the spec into a registry target.
func (s TargetSpec) Target() *domain.Target {
	return &domain.Target{
		Name:        s.Name,
		Filter:      s.Filter,
		MaxBuyPrice: s.MaxBuyPrice,
		SellPrice:   s.SellPrice,
		Enabled:     !s.Disabled,
		Priority:    s.Priority,
	}
}

type configTmp struct {
	SearchInterval      time.Duration `yaml:"search_interval,omitempty"`
	BuyDelay            time.Duration `yaml:"buy_delay,omitempty"`
	MaxPurchases        int64         `yaml:"max_purchases,omitempty"`
	MaxActiveSales      int           `yaml:"max_active_sales,omitempty"`
	MinCoinsReserve     int64         `yaml:"min_coins_reserve,omitempty"`
	AutoSell            *bool         `yaml:"auto_sell,omitempty"`
	SellMarkupStr       string        `yaml:"sell_markup,omitempty"`
	SellDuration        time.Duration `yaml:"sell_duration,omitempty"`
	PauseAfterPurchases int           `yaml:"pause_after_purchases,omitempty"`
	PauseDuration       time.Duration `yaml:"pause_duration,omitempty"`
	MaxSearchesPerHour  int           `yaml:"max_searches_per_hour,omitempty"`
	AutoRelist          *bool         `yaml:"auto_relist,omitempty"`
	RelistInterval      time.Duration `yaml:"relist_interval,omitempty"`
	JournalDir          string        `yaml:"journal_dir,omitempty"`
	ListenAddr          string        `yaml:"listen_addr,omitempty"`
	Targets             []TargetSpec  `yaml:"targets"`
}

// Default returns the configuration with stock tunables and no targets.
func Default() Config {
	return Config{
		SearchInterval:      3 * time.Second,
		BuyDelay:            200 * time.Millisecond,
		MaxPurchases:        100,
		MaxActiveSales:      50,
		MinCoinsReserve:     10000,
		AutoSell:            true,
		SellMarkup:          decimal.NewFromFloat(1.10),
		SellDuration:        time.Hour,
		PauseAfterPurchases: 5,
		PauseDuration:       30 * time.Second,
		MaxSearchesPerHour:  500,
		AutoRelist:          true,
		RelistInterval:      5 * time.Minute,
		JournalDir:          "./journal",
		ListenAddr:          ":8080",
	}
}

// Get parses flags and loads the yaml config.
func Get() (Config, error) {
	path := flag.String("config", "config.yaml", "path to yaml config")
	listen := flag.String("listen", "", "status server address, overrides config")
	flag.Parse()

	cfg, err := Load(*path)
	if err != nil {
		return Config{}, err
	}
	if *listen != "" {
		cfg.ListenAddr = *listen
	}
	return cfg, nil
}

// Load reads, merges with defaults and validates the yaml file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var tmp configTmp
	if err := yaml.Unmarshal(data, &tmp); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg := Default()
	if tmp.SearchInterval > 0 {
		cfg.SearchInterval = tmp.SearchInterval
	}
	if tmp.BuyDelay > 0 {
		cfg.BuyDelay = tmp.BuyDelay
	}
	if tmp.MaxPurchases > 0 {
		cfg.MaxPurchases = tmp.MaxPurchases
	}
	if tmp.MaxActiveSales > 0 {
		cfg.MaxActiveSales = tmp.MaxActiveSales
	}
	if tmp.MinCoinsReserve > 0 {
		cfg.MinCoinsReserve = tmp.MinCoinsReserve
	}
	if tmp.AutoSell != nil {
		cfg.AutoSell = *tmp.AutoSell
	}
	if tmp.SellMarkupStr != "" {
		markup, err := decimal.NewFromString(tmp.SellMarkupStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid sell_markup %q: %w", tmp.SellMarkupStr, err)
		}
		cfg.SellMarkup = markup
	}
	if tmp.SellDuration > 0 {
		cfg.SellDuration = tmp.SellDuration
	}
	if tmp.PauseAfterPurchases > 0 {
		cfg.PauseAfterPurchases = tmp.PauseAfterPurchases
	}
	if tmp.PauseDuration > 0 {
		cfg.PauseDuration = tmp.PauseDuration
	}
	if tmp.MaxSearchesPerHour > 0 {
		cfg.MaxSearchesPerHour = tmp.MaxSearchesPerHour
	}
	if tmp.AutoRelist != nil {
		cfg.AutoRelist = *tmp.AutoRelist
	}
	if tmp.RelistInterval > 0 {
		cfg.RelistInterval = tmp.RelistInterval
	}
	if tmp.JournalDir != "" {
		cfg.JournalDir = tmp.JournalDir
	}
	if tmp.ListenAddr != "" {
		cfg.ListenAddr = tmp.ListenAddr
	}
	cfg.Targets = tmp.Targets

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.SellMarkup.LessThanOrEqual(decimal.NewFromInt(0)) {
		return fmt.Errorf("sell_markup must be positive, got %s", c.SellMarkup)
	}
	if c.MinCoinsReserve < 0 {
		return fmt.Errorf("min_coins_reserve must not be negative, got %d", c.MinCoinsReserve)
	}
	for i, t := range c.Targets {
		if t.Name == "" {
			return fmt.Errorf("target %d: name is required", i)
		}
		if t.MaxBuyPrice <= 0 {
			return fmt.Errorf("target %q: max_buy_price must be positive", t.Name)
		}
	}
	return nil
}
