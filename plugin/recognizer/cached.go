package recognizer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hrygo/czdate/plugin/cache"
	"github.com/hrygo/czdate/plugin/dateparser"
)

// Cache key prefixes, usable with cache.Store.Invalidate ("search:*").
const (
	searchKeyPrefix = "search:"
	parseKeyPrefix  = "parse:"
)

// Cached remembers oracle answers. Keys include the reference day, so relative
// expressions such as "zitra" are never served from a previous day.
type Cached struct {
	oracle   dateparser.Oracle
	store    cache.Store
	ttl      time.Duration
	timezone *time.Location
	now      func() time.Time
}

// NewCached wraps oracle with store. A non-positive ttl selects the store default.
func NewCached(oracle dateparser.Oracle, store cache.Store, ttl time.Duration, timezone *time.Location) *Cached {
	if timezone == nil {
		timezone = time.Local
	}
	return &Cached{
		oracle:   oracle,
		store:    store,
		ttl:      ttl,
		timezone: timezone,
		now:      time.Now,
	}
}

// cachedHit is the stored form of a dateparser.Hit; dates keep their zone name out.
type cachedHit struct {
	Text string `json:"text"`
	Date string `json:"date"`
}

type cachedParse struct {
	Found bool   `json:"found"`
	Date  string `json:"date,omitempty"`
}

// Search implements dateparser.Oracle.
func (c *Cached) Search(ctx context.Context, text string, settings dateparser.Settings) ([]dateparser.Hit, error) {
	key := c.key(searchKeyPrefix, text, settings)

	if data, ok := c.store.Get(ctx, key); ok {
		var stored []cachedHit
		if err := json.Unmarshal(data, &stored); err == nil {
			if hits, ok := c.decodeHits(stored); ok {
				return hits, nil
			}
		}
		slog.Warn("discarding unreadable cache entry", "key", key)
	}

	hits, err := c.oracle.Search(ctx, text, settings)
	if err != nil {
		return nil, err
	}

	stored := make([]cachedHit, len(hits))
	for i, h := range hits {
		stored[i] = cachedHit{Text: h.Text, Date: h.Date.Format(isoDate)}
	}
	c.put(ctx, key, stored)
	return hits, nil
}

// Resolve implements dateparser.Oracle.
func (c *Cached) Resolve(ctx context.Context, text string, settings dateparser.Settings) (time.Time, bool, error) {
	key := c.key(parseKeyPrefix, text, settings)

	if data, ok := c.store.Get(ctx, key); ok {
		var stored cachedParse
		if err := json.Unmarshal(data, &stored); err == nil {
			if !stored.Found {
				return time.Time{}, false, nil
			}
			if d, err := time.ParseInLocation(isoDate, stored.Date, c.timezone); err == nil {
				return d, true, nil
			}
		}
		slog.Warn("discarding unreadable cache entry", "key", key)
	}

	d, ok, err := c.oracle.Resolve(ctx, text, settings)
	if err != nil {
		return time.Time{}, false, err
	}

	stored := cachedParse{Found: ok}
	if ok {
		stored.Date = d.Format(isoDate)
	}
	c.put(ctx, key, stored)
	return d, ok, nil
}

func (c *Cached) decodeHits(stored []cachedHit) ([]dateparser.Hit, bool) {
	hits := make([]dateparser.Hit, len(stored))
	for i, h := range stored {
		d, err := time.ParseInLocation(isoDate, h.Date, c.timezone)
		if err != nil {
			return nil, false
		}
		hits[i] = dateparser.Hit{Text: h.Text, Date: d}
	}
	return hits, true
}

func (c *Cached) put(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		slog.Warn("failed to store oracle answer", "key", key, "error", err)
	}
}

// key hashes everything the answer depends on.
func (c *Cached) key(prefix, text string, settings dateparser.Settings) string {
	settingsJSON, _ := json.Marshal(settings)
	today := c.now().In(c.timezone).Format(isoDate)

	h := sha256.New()
	h.Write([]byte(today))
	h.Write([]byte{0})
	h.Write(settingsJSON)
	h.Write([]byte{0})
	h.Write([]byte(text))
	return prefix + hex.EncodeToString(h.Sum(nil))
}

var _ dateparser.Oracle = (*Cached)(nil)
