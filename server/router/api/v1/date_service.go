package v1

import (
	"context"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/hrygo/czdate/plugin/calendar"
	"github.com/hrygo/czdate/plugin/dateparser"
	"github.com/hrygo/czdate/plugin/recognizer"
	apierrors "github.com/hrygo/czdate/server/internal/errors"
	"github.com/hrygo/czdate/server/internal/observability"
)

// TextRequest is the body of the single-text endpoints.
type TextRequest struct {
	Text string `json:"text"`
}

// ParseResponse carries the date the whole text denotes, or null.
type ParseResponse struct {
	Date       *dateparser.Date `json:"date"`
	Normalized string           `json:"normalized"`
}

// BatchSearchRequest is the body of the batch endpoint.
type BatchSearchRequest struct {
	Texts []string `json:"texts"`
}

// BatchSearchResponse holds one result per input text, in input order.
type BatchSearchResponse struct {
	Results []dateparser.SearchResult `json:"results"`
}

// ExportRequest is the body of the iCalendar export endpoint.
type ExportRequest struct {
	Text    string `json:"text"`
	Summary string `json:"summary"`
}

// ParseDate resolves a text that is a single date expression.
// POST /api/v1/dates/parse
func (s *APIV1Service) ParseDate(c echo.Context) error {
	var req TextRequest
	if err := s.bindText(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	date, ok, err := s.Parser.Parse(ctx, req.Text)
	if err != nil {
		return s.fail(ctx, err)
	}

	resp := ParseResponse{Normalized: dateparser.Normalize(req.Text)}
	if ok {
		resp.Date = &date
		s.Metrics.RecordDates(1)
	}
	return c.JSON(http.StatusOK, resp)
}

// SearchDates finds all dates in a text and labels range boundaries.
// POST /api/v1/dates/search
func (s *APIV1Service) SearchDates(c echo.Context) error {
	var req TextRequest
	if err := s.bindText(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	result, err := s.Parser.Search(ctx, req.Text)
	if err != nil {
		return s.fail(ctx, err)
	}

	s.logSearch(ctx, req.Text, len(result.Dates))
	s.Metrics.RecordDates(len(result.Dates))
	return c.JSON(http.StatusOK, result)
}

// BatchSearchDates runs SearchDates over many texts concurrently.
// POST /api/v1/dates/batch-search
func (s *APIV1Service) BatchSearchDates(c echo.Context) error {
	var req BatchSearchRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.InvalidArgument("malformed request body")
	}
	if len(req.Texts) == 0 {
		return apierrors.InvalidArgument("texts must not be empty")
	}
	if len(req.Texts) > s.Profile.MaxBatchSize {
		return apierrors.InvalidArgument("too many texts").WithContext("max", s.Profile.MaxBatchSize)
	}
	for i, text := range req.Texts {
		if err := s.checkLength(text); err != nil {
			return err.WithContext("index", i)
		}
	}

	results := make([]dateparser.SearchResult, len(req.Texts))
	g, ctx := errgroup.WithContext(c.Request().Context())
	g.SetLimit(s.Profile.BatchConcurrency)
	for i, text := range req.Texts {
		i, text := i, text
		g.Go(func() error {
			result, err := s.Parser.Search(ctx, text)
			if err != nil {
				return errors.Wrapf(err, "text %d", i)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return s.fail(c.Request().Context(), err)
	}

	total := 0
	for _, r := range results {
		total += len(r.Dates)
	}
	s.Metrics.RecordDates(total)
	return c.JSON(http.StatusOK, BatchSearchResponse{Results: results})
}

// ExportDates returns the dates of a text as an iCalendar document.
// POST /api/v1/dates/export
func (s *APIV1Service) ExportDates(c echo.Context) error {
	var req ExportRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.InvalidArgument("malformed request body")
	}
	if err := s.checkLength(req.Text); err != nil {
		return err
	}

	ctx := c.Request().Context()
	spans, err := s.Parser.SearchDates(ctx, req.Text)
	if err != nil {
		return s.fail(ctx, err)
	}

	data, err := calendar.Encode(spans, req.Summary, time.Now())
	if err != nil {
		return apierrors.Internal(err)
	}
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", data)
}

func (s *APIV1Service) bindText(c echo.Context, req *TextRequest) error {
	if err := c.Bind(req); err != nil {
		return apierrors.InvalidArgument("malformed request body")
	}
	if err := s.checkLength(req.Text); err != nil {
		return err
	}
	return nil
}

func (s *APIV1Service) checkLength(text string) *apierrors.DateError {
	if n := utf8.RuneCountInString(text); n > s.Profile.MaxTextLength {
		return apierrors.InvalidArgument("text too long").
			WithContext("length", n).
			WithContext("max", s.Profile.MaxTextLength)
	}
	return nil
}

// fail classifies err and logs it with the request fields.
func (s *APIV1Service) fail(ctx context.Context, err error) error {
	dateErr := apierrors.Classify(err, isOracleUnavailable)
	if rc, ok := observability.FromContext(ctx); ok {
		rc.Debug("date operation failed", slog.String(observability.LogFieldErrorCode, string(dateErr.Code)))
	}
	return dateErr
}

func (s *APIV1Service) logSearch(ctx context.Context, text string, found int) {
	if rc, ok := observability.FromContext(ctx); ok {
		rc.Debug("dates searched",
			slog.Int(observability.LogFieldTextLen, utf8.RuneCountInString(text)),
			slog.Int(observability.LogFieldDateCount, found))
	}
}

func isOracleUnavailable(err error) bool {
	return errors.Is(err, recognizer.ErrUnavailable)
}
