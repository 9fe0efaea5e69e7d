package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/anchal00/blackjack/internal/logger"
	"github.com/joho/godotenv"
)

const (
	MinBet            = 10
	MinStartChips     = 10
	MaxSeats          = 8
	NewAccountBalance = 1000
)

// Timings holds every deadline and inter-phase delay a table session arms.
type Timings struct {
	BetDeadline  time.Duration
	TurnDeadline time.Duration
	VoteDeadline time.Duration
	DealDelay    time.Duration
	AdvanceDelay time.Duration
	ResultDelay  time.Duration
}

func DefaultTimings() Timings {
	return Timings{
		BetDeadline:  60 * time.Second,
		TurnDeadline: 15 * time.Second,
		VoteDeadline: 30 * time.Second,
		DealDelay:    800 * time.Millisecond,
		AdvanceDelay: 400 * time.Millisecond,
		ResultDelay:  2500 * time.Millisecond,
	}
}

type Config struct {
	Port        string
	Database    string
	BotToken    string
	TokenSecret string
	StaticDir   string
	Production  bool
	Timings     Timings
}

// Load reads the .env file if present and builds the Config from the environment.
func Load(log logger.Logger) *Config {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file loaded, using process environment")
	}
	return FromEnv(log)
}

func FromEnv(log logger.Logger) *Config {
	cfg := &Config{
		Port:      firstNonEmpty(os.Getenv("BLACKJACK_PORT"), os.Getenv("PORT"), "3000"),
		Database:  firstNonEmpty(os.Getenv("BLACKJACK_DB"), "blackjack"),
		BotToken:  os.Getenv("BOT_TOKEN"),
		StaticDir: firstNonEmpty(os.Getenv("BLACKJACK_STATIC_DIR"), "public"),
		Timings:   DefaultTimings(),
	}
	env := firstNonEmpty(os.Getenv("BLACKJACK_ENV"), os.Getenv("NODE_ENV"), "development")
	cfg.Production = strings.EqualFold(env, "production")
	cfg.TokenSecret = firstNonEmpty(os.Getenv("BLACKJACK_TOKEN_SECRET"), "blackjack:"+cfg.BotToken)

	cfg.Timings.BetDeadline = seconds(log, "BLACKJACK_BET_SECONDS", cfg.Timings.BetDeadline)
	cfg.Timings.TurnDeadline = seconds(log, "BLACKJACK_TURN_SECONDS", cfg.Timings.TurnDeadline)
	cfg.Timings.VoteDeadline = seconds(log, "BLACKJACK_VOTE_SECONDS", cfg.Timings.VoteDeadline)
	return cfg
}

func seconds(log logger.Logger, key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if len(raw) == 0 {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Warn(fmt.Sprintf("Invalid value %q for %s, using %s", raw, key, fallback))
		return fallback
	}
	return time.Duration(n) * time.Second
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if len(strings.TrimSpace(v)) != 0 {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
