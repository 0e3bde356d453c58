package recognizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/czdate/plugin/dateparser"
)

// DefaultSidecarTimeout bounds one sidecar round trip.
const DefaultSidecarTimeout = 10 * time.Second

// Sidecar calls an external date recognition service over HTTP.
//
// The service exposes two JSON endpoints:
//
//	POST {base}/search  {"text": "...", "settings": {...}} -> {"dates": [{"text": "...", "date": "2026-12-23"}]}
//	POST {base}/parse   {"text": "...", "settings": {...}} -> {"date": "2026-12-23"} or {"date": null}
type Sidecar struct {
	searchURL string
	parseURL  string
	http      *http.Client
	timezone  *time.Location
}

// NewSidecar creates a client for the service at baseURL (e.g. "http://dateparser:8001").
func NewSidecar(baseURL string, timezone *time.Location) *Sidecar {
	if timezone == nil {
		timezone = time.Local
	}
	baseURL = strings.TrimRight(baseURL, "/")
	return &Sidecar{
		searchURL: baseURL + "/search",
		parseURL:  baseURL + "/parse",
		http: &http.Client{
			Timeout: DefaultSidecarTimeout,
		},
		timezone: timezone,
	}
}

type sidecarRequest struct {
	Text     string              `json:"text"`
	Settings dateparser.Settings `json:"settings"`
}

type sidecarSearchResponse struct {
	Dates []sidecarHit `json:"dates"`
}

type sidecarHit struct {
	Text string `json:"text"`
	Date string `json:"date"`
}

type sidecarParseResponse struct {
	Date *string `json:"date"`
}

// Search implements dateparser.Oracle.
func (s *Sidecar) Search(ctx context.Context, text string, settings dateparser.Settings) ([]dateparser.Hit, error) {
	var result sidecarSearchResponse
	if err := s.post(ctx, s.searchURL, sidecarRequest{Text: text, Settings: settings}, &result); err != nil {
		return nil, err
	}

	hits := make([]dateparser.Hit, 0, len(result.Dates))
	for _, h := range result.Dates {
		d, err := parseISODate(h.Date, s.timezone)
		if err != nil {
			return nil, err
		}
		hits = append(hits, dateparser.Hit{Text: h.Text, Date: d})
	}
	return hits, nil
}

// Resolve implements dateparser.Oracle.
func (s *Sidecar) Resolve(ctx context.Context, text string, settings dateparser.Settings) (time.Time, bool, error) {
	var result sidecarParseResponse
	if err := s.post(ctx, s.parseURL, sidecarRequest{Text: text, Settings: settings}, &result); err != nil {
		return time.Time{}, false, err
	}
	if result.Date == nil || *result.Date == "" {
		return time.Time{}, false, nil
	}

	d, err := parseISODate(*result.Date, s.timezone)
	if err != nil {
		return time.Time{}, false, err
	}
	return d, true, nil
}

func (s *Sidecar) post(ctx context.Context, url string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "failed to marshal sidecar request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to build sidecar request")
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("sidecar unreachable: %w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Wrapf(ErrUnavailable, "sidecar returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode sidecar response: %w: %w", ErrUnavailable, err)
	}

	slog.Debug("dateparser sidecar call completed",
		"url", url,
		"latency_ms", time.Since(start).Milliseconds())
	return nil
}

var _ dateparser.Oracle = (*Sidecar)(nil)
