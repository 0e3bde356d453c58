package profile

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/czdate/plugin/dateparser"
	"github.com/hrygo/czdate/server/timezone"
)

// Oracle drivers.
const (
	DriverDateparser = "dateparser"
	DriverBuiltin    = "builtin"
	DriverSidecar    = "sidecar"
	DriverLLM        = "llm"
)

// Profile is the configuration to start the server and the CLI.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Version is the current version of server
	Version string
	// Timezone decides what "today" is for relative dates
	Timezone string // CZDATE_TIMEZONE (default: Europe/Prague)

	// Recognizer
	Driver          string // CZDATE_ORACLE: dateparser, builtin, sidecar or llm (default: dateparser)
	Fallback        bool   // CZDATE_ORACLE_FALLBACK: answer from builtin when the oracle fails
	SidecarURL      string // CZDATE_SIDECAR_URL
	LLMBaseURL      string // CZDATE_LLM_BASE_URL (default: https://api.openai.com/v1)
	LLMAPIKey       string // CZDATE_LLM_API_KEY
	LLMModel        string // CZDATE_LLM_MODEL (default: gpt-4o-mini)
	PreferDatesFrom string // CZDATE_PREFER_DATES_FROM: future, past or current_period (default: future)
	DateOrder       string // CZDATE_DATE_ORDER: DMY or MDY (default: DMY)

	// Cache; capacity 0 disables it
	CacheCapacity int           // CZDATE_CACHE_CAPACITY (default: 0)
	CacheTTL      time.Duration // CZDATE_CACHE_TTL (default: 10m)

	// Limits
	RateLimit        float64 // CZDATE_RATE_LIMIT requests per second per client (default: 10)
	RateBurst        int     // CZDATE_RATE_BURST (default: 20)
	BatchConcurrency int     // CZDATE_BATCH_CONCURRENCY (default: 4)
	MaxBatchSize     int     // CZDATE_MAX_BATCH_SIZE (default: 100)
	MaxTextLength    int     // CZDATE_MAX_TEXT_LENGTH in characters (default: 10000)
}

// IsDev reports whether the server runs in development mode.
func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// Settings returns the resolution policy for the recognizer.
func (p *Profile) Settings() dateparser.Settings {
	s := dateparser.DefaultSettings()
	if p.PreferDatesFrom != "" {
		s.PreferDatesFrom = dateparser.DatePreference(p.PreferDatesFrom)
	}
	if p.DateOrder != "" {
		s.DateOrder = dateparser.DateOrder(p.DateOrder)
	}
	return s
}

// Location returns the parsed timezone, falling back to UTC.
func (p *Profile) Location() *time.Location {
	loc, _ := timezone.ParseTimezone(p.Timezone)
	return loc
}

// FromEnv overrides fields from CZDATE_* environment variables that are set.
func (p *Profile) FromEnv() error {
	setString := func(key string, dst *string) {
		if val := strings.TrimSpace(os.Getenv(key)); val != "" {
			*dst = val
		}
	}

	var errs []string
	setInt := func(key string, dst *int) {
		if val := strings.TrimSpace(os.Getenv(key)); val != "" {
			n, err := strconv.Atoi(val)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s=%q is not an integer", key, val))
				return
			}
			*dst = n
		}
	}

	setString("CZDATE_MODE", &p.Mode)
	setString("CZDATE_ADDR", &p.Addr)
	setInt("CZDATE_PORT", &p.Port)
	setString("CZDATE_TIMEZONE", &p.Timezone)

	setString("CZDATE_ORACLE", &p.Driver)
	if val := strings.TrimSpace(os.Getenv("CZDATE_ORACLE_FALLBACK")); val != "" {
		p.Fallback = val == "true" || val == "1"
	}
	setString("CZDATE_SIDECAR_URL", &p.SidecarURL)
	setString("CZDATE_LLM_BASE_URL", &p.LLMBaseURL)
	setString("CZDATE_LLM_API_KEY", &p.LLMAPIKey)
	setString("CZDATE_LLM_MODEL", &p.LLMModel)
	setString("CZDATE_PREFER_DATES_FROM", &p.PreferDatesFrom)
	setString("CZDATE_DATE_ORDER", &p.DateOrder)

	setInt("CZDATE_CACHE_CAPACITY", &p.CacheCapacity)
	if val := strings.TrimSpace(os.Getenv("CZDATE_CACHE_TTL")); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			errs = append(errs, fmt.Sprintf("CZDATE_CACHE_TTL=%q is not a duration", val))
		} else {
			p.CacheTTL = d
		}
	}

	if val := strings.TrimSpace(os.Getenv("CZDATE_RATE_LIMIT")); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			errs = append(errs, fmt.Sprintf("CZDATE_RATE_LIMIT=%q is not a number", val))
		} else {
			p.RateLimit = f
		}
	}
	setInt("CZDATE_RATE_BURST", &p.RateBurst)
	setInt("CZDATE_BATCH_CONCURRENCY", &p.BatchConcurrency)
	setInt("CZDATE_MAX_BATCH_SIZE", &p.MaxBatchSize)
	setInt("CZDATE_MAX_TEXT_LENGTH", &p.MaxTextLength)

	if len(errs) > 0 {
		return errors.Errorf("invalid environment: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Validate fills defaults and rejects inconsistent settings.
func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}
	if p.Port == 0 {
		p.Port = 8081
	}
	if p.Port < 0 || p.Port > 65535 {
		return errors.Errorf("invalid port %d", p.Port)
	}

	if p.Timezone == "" {
		p.Timezone = timezone.TimezonePrague
	}
	if _, err := timezone.ParseTimezone(p.Timezone); err != nil {
		return errors.Wrap(err, "invalid timezone")
	}

	p.Driver = strings.ToLower(p.Driver)
	switch p.Driver {
	case "":
		p.Driver = DriverDateparser
	case DriverDateparser, DriverBuiltin:
	case DriverSidecar:
		if p.SidecarURL == "" {
			return errors.New("sidecar oracle requires a sidecar URL")
		}
	case DriverLLM:
		if p.LLMAPIKey == "" {
			return errors.New("llm oracle requires an API key")
		}
	default:
		return errors.Errorf("unknown oracle driver %q (valid: dateparser, builtin, sidecar, llm)", p.Driver)
	}

	switch dateparser.DatePreference(p.PreferDatesFrom) {
	case "", dateparser.PreferFuture, dateparser.PreferPast, dateparser.PreferCurrentPeriod:
	default:
		return errors.Errorf("invalid date preference %q (valid: future, past, current_period)", p.PreferDatesFrom)
	}
	switch dateparser.DateOrder(strings.ToUpper(p.DateOrder)) {
	case "":
	case dateparser.OrderDMY, dateparser.OrderMDY:
		p.DateOrder = strings.ToUpper(p.DateOrder)
	default:
		return errors.Errorf("invalid date order %q (valid: DMY, MDY)", p.DateOrder)
	}

	if p.CacheCapacity < 0 {
		return errors.Errorf("cache capacity must not be negative, got %d", p.CacheCapacity)
	}
	if p.CacheTTL <= 0 {
		p.CacheTTL = 10 * time.Minute
	}
	if p.RateLimit <= 0 {
		p.RateLimit = 10
	}
	if p.RateBurst <= 0 {
		p.RateBurst = 20
	}
	if p.BatchConcurrency <= 0 {
		p.BatchConcurrency = 4
	}
	if p.MaxBatchSize <= 0 {
		p.MaxBatchSize = 100
	}
	if p.MaxTextLength <= 0 {
		p.MaxTextLength = 10000
	}
	return nil
}
