package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/hrygo/czdate/internal/profile"
	"github.com/hrygo/czdate/plugin/cache"
	"github.com/hrygo/czdate/plugin/dateparser"
	apierrors "github.com/hrygo/czdate/server/internal/errors"
	"github.com/hrygo/czdate/server/internal/observability"
	czmiddleware "github.com/hrygo/czdate/server/middleware"
)

// maxBodySize bounds request bodies; MaxTextLength is checked separately in characters.
const maxBodySize = "2M"

// APIV1Service serves the date API.
type APIV1Service struct {
	Profile *profile.Profile
	Parser  *dateparser.ExtendedParser
	Metrics *observability.Metrics
	// Cache is nil when caching is disabled.
	Cache *cache.Service

	logger      *slog.Logger
	rateLimiter *czmiddleware.RateLimiter
}

// NewAPIV1Service creates the API service. A nil logger selects slog.Default().
func NewAPIV1Service(p *profile.Profile, parser *dateparser.ExtendedParser, metrics *observability.Metrics, store *cache.Service, logger *slog.Logger) *APIV1Service {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.GlobalMetrics()
	}
	return &APIV1Service{
		Profile:     p,
		Parser:      parser,
		Metrics:     metrics,
		Cache:       store,
		logger:      logger,
		rateLimiter: czmiddleware.NewRateLimiter(p.RateLimit, p.RateBurst),
	}
}

// RegisterRoutes registers middleware and handlers on the echo instance.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo) {
	e.HTTPErrorHandler = s.errorHandler

	e.Use(middleware.Recover())
	e.Use(czmiddleware.RequestLog(s.logger, s.Metrics))

	e.GET("/healthz", s.Healthz)

	api := e.Group("/api/v1",
		middleware.CORS(),
		middleware.BodyLimit(maxBodySize),
		s.rateLimiter.Middleware(),
	)
	api.POST("/dates/parse", s.ParseDate)
	api.POST("/dates/search", s.SearchDates)
	api.POST("/dates/batch-search", s.BatchSearchDates)
	api.POST("/dates/export", s.ExportDates)
	api.GET("/system/metrics", s.GetMetrics)
}

// RateLimiter exposes the limiter so the server can prune idle clients.
func (s *APIV1Service) RateLimiter() *czmiddleware.RateLimiter {
	return s.rateLimiter
}

// Healthz reports liveness.
// GET /healthz
func (s *APIV1Service) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.Profile.Version,
		"oracle":  s.Profile.Driver,
	})
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Code    apierrors.ErrorCode `json:"code"`
	Message string              `json:"message"`
}

func (s *APIV1Service) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	resp := ErrorResponse{Code: apierrors.ErrCodeInternal, Message: "internal error"}
	status := http.StatusInternalServerError

	var he *echo.HTTPError
	switch {
	case asHTTPError(err, &he):
		status = he.Code
		resp.Message = http.StatusText(he.Code)
		if msg, ok := he.Message.(string); ok {
			resp.Message = msg
		}
		resp.Code = codeForStatus(he.Code)
	default:
		dateErr := apierrors.Classify(err, isOracleUnavailable)
		status = dateErr.HTTPStatus()
		resp.Code = dateErr.Code
		resp.Message = dateErr.Message
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, resp)
	}
	if err != nil {
		s.logger.Error("failed to write error response", "error", err)
	}
}

func asHTTPError(err error, target **echo.HTTPError) bool {
	he, ok := err.(*echo.HTTPError)
	if ok {
		*target = he
	}
	return ok
}

func codeForStatus(status int) apierrors.ErrorCode {
	switch {
	case status == http.StatusTooManyRequests:
		return apierrors.ErrCodeRateLimitExceeded
	case status >= 400 && status < 500:
		return apierrors.ErrCodeInvalidArgument
	default:
		return apierrors.ErrCodeInternal
	}
}
