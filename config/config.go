package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"casinobot/database"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken string
	GuildID      string // Guild to register slash commands in; empty registers globally

	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// NATS configuration; empty keeps events on the in-process bus
	NATSServers string

	// Blackjack table configuration
	Blackjack BlackjackConfig

	// Casino security (wager fee) configuration
	Security SecurityConfig

	// Environment
	Environment string // "development", "production" or "test"
}

// BlackjackConfig holds table limits and timers
type BlackjackConfig struct {
	MinBet             int64
	MaxPlayers         int
	TurnTimeout        time.Duration
	LobbyTimeout       time.Duration
	ResultsGracePeriod time.Duration
}

// SecurityConfig holds the tier table used to price wager fees
type SecurityConfig struct {
	WindowHours    int
	TierThresholds []int64
	TierFeePcts    []float64 // percent, e.g. 2 means 2%
	TierLabels     []string
	MaxFeePct      float64 // percent
	CasinoTypes    []string
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("blackjack_min_bet", 100)
	v.SetDefault("blackjack_max_players", 6)
	v.SetDefault("blackjack_turn_timeout", "60s")
	v.SetDefault("blackjack_lobby_timeout", "5m")
	v.SetDefault("blackjack_results_grace", "15s")

	v.SetDefault("security_window_hours", 24)
	v.SetDefault("security_tier_thresholds", "0,50000,150000,300000,600000")
	v.SetDefault("security_tier_fees", "0,2,4,6,8")
	v.SetDefault("security_tier_labels", "Standard,Watched,Elevated,High,Critical")
	v.SetDefault("security_max_fee_pct", 10)
	v.SetDefault("security_casino_types", "blackjack_bet,blackjack_payout,blackjack_push,blackjack_refund")
}

// load loads configuration from environment variables
func load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	config := &Config{
		DiscordToken: v.GetString("discord_token"),
		GuildID:      v.GetString("guild_id"),
		DatabaseURL:  v.GetString("database_url"),
		DatabaseName: v.GetString("database_name"),
		NATSServers:  v.GetString("nats_servers"),
		Environment:  v.GetString("environment"),
		Blackjack: BlackjackConfig{
			MinBet:             v.GetInt64("blackjack_min_bet"),
			MaxPlayers:         v.GetInt("blackjack_max_players"),
			TurnTimeout:        v.GetDuration("blackjack_turn_timeout"),
			LobbyTimeout:       v.GetDuration("blackjack_lobby_timeout"),
			ResultsGracePeriod: v.GetDuration("blackjack_results_grace"),
		},
		Security: SecurityConfig{
			WindowHours: v.GetInt("security_window_hours"),
			MaxFeePct:   v.GetFloat64("security_max_fee_pct"),
			TierLabels:  splitList(v.GetString("security_tier_labels")),
			CasinoTypes: splitList(v.GetString("security_casino_types")),
		},
	}

	thresholds, err := parseInt64List(v.GetString("security_tier_thresholds"))
	if err != nil {
		return nil, fmt.Errorf("invalid SECURITY_TIER_THRESHOLDS: %w", err)
	}
	fees, err := parseFloatList(v.GetString("security_tier_fees"))
	if err != nil {
		return nil, fmt.Errorf("invalid SECURITY_TIER_FEES: %w", err)
	}
	config.Security.TierThresholds = thresholds
	config.Security.TierFeePcts = fees

	if err := config.Security.Validate(); err != nil {
		return nil, err
	}

	if config.Environment != "test" {
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}

// Validate checks the tier table is usable: aligned slices and ascending thresholds
func (s SecurityConfig) Validate() error {
	if len(s.TierThresholds) == 0 {
		return fmt.Errorf("at least one security tier is required")
	}
	if len(s.TierThresholds) != len(s.TierFeePcts) {
		return fmt.Errorf("security tier thresholds (%d) and fees (%d) must have the same length", len(s.TierThresholds), len(s.TierFeePcts))
	}
	for i := 1; i < len(s.TierThresholds); i++ {
		if s.TierThresholds[i] <= s.TierThresholds[i-1] {
			return fmt.Errorf("security tier thresholds must be strictly ascending")
		}
	}
	if s.MaxFeePct < 0 {
		return fmt.Errorf("max fee percent cannot be negative")
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseInt64List(raw string) ([]int64, error) {
	var out []int64
	for _, part := range splitList(raw) {
		value, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, value)
	}
	return out, nil
}

func parseFloatList(raw string) ([]float64, error) {
	var out []float64
	for _, part := range splitList(raw) {
		value, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, value)
	}
	return out, nil
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment: "test",
		Blackjack: BlackjackConfig{
			MinBet:             100,
			MaxPlayers:         6,
			TurnTimeout:        60 * time.Second,
			LobbyTimeout:       5 * time.Minute,
			ResultsGracePeriod: 15 * time.Second,
		},
		Security: SecurityConfig{
			WindowHours:    24,
			TierThresholds: []int64{0, 50000, 150000, 300000, 600000},
			TierFeePcts:    []float64{0, 2, 4, 6, 8},
			TierLabels:     []string{"Standard", "Watched", "Elevated", "High", "Critical"},
			MaxFeePct:      10,
			CasinoTypes:    []string{"blackjack_bet", "blackjack_payout", "blackjack_push", "blackjack_refund"},
		},
	}
}
