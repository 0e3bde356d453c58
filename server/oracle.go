package server

import (
	"log/slog"

	"github.com/pkg/errors"

	"github.com/hrygo/czdate/internal/profile"
	"github.com/hrygo/czdate/plugin/cache"
	"github.com/hrygo/czdate/plugin/dateparser"
	"github.com/hrygo/czdate/plugin/recognizer"
)

// NewOracle builds the recognizer chain described by the profile:
// the selected driver, an optional builtin fallback and an optional cache.
// The rule-based builtin recognizer needs no locale data or network and serves
// as the offline fallback.
// The returned cache service is nil when caching is disabled; the caller closes it.
func NewOracle(p *profile.Profile, logger *slog.Logger) (dateparser.Oracle, *cache.Service, error) {
	loc := p.Location()
	builtin := recognizer.NewBuiltin(loc)

	var oracle dateparser.Oracle
	switch p.Driver {
	case profile.DriverDateparser, "":
		oracle = recognizer.NewGoDateparser(loc)
	case profile.DriverBuiltin:
		oracle = builtin
	case profile.DriverSidecar:
		oracle = recognizer.NewSidecar(p.SidecarURL, loc)
	case profile.DriverLLM:
		oracle = recognizer.NewLLM(recognizer.LLMConfig{
			APIKey:  p.LLMAPIKey,
			BaseURL: p.LLMBaseURL,
			Model:   p.LLMModel,
		}, loc)
	default:
		return nil, nil, errors.Errorf("unknown oracle driver %q", p.Driver)
	}

	if p.Fallback && p.Driver != profile.DriverBuiltin {
		oracle = recognizer.NewFallback(oracle, builtin, logger)
	}

	if p.CacheCapacity == 0 {
		return oracle, nil, nil
	}
	store := cache.NewService(cache.Config{
		Capacity: p.CacheCapacity,
		TTL:      p.CacheTTL,
	})
	return recognizer.NewCached(oracle, store, p.CacheTTL, loc), store, nil
}

// NewParser builds an ExtendedParser over NewOracle.
func NewParser(p *profile.Profile, logger *slog.Logger) (*dateparser.ExtendedParser, *cache.Service, error) {
	oracle, store, err := NewOracle(p, logger)
	if err != nil {
		return nil, nil, err
	}
	parser := dateparser.NewExtendedParser(oracle,
		dateparser.WithSettings(p.Settings()),
		dateparser.WithLogger(logger),
	)
	return parser, store, nil
}
