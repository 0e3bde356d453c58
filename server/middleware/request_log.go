package middleware

import (
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"

	apierrors "github.com/hrygo/czdate/server/internal/errors"
	"github.com/hrygo/czdate/server/internal/observability"
)

// HeaderRequestID carries the request ID in both directions.
const HeaderRequestID = "X-Request-ID"

// RequestLog attaches an observability.RequestContext to every request, logs
// its outcome and records it in metrics under the route's operation name.
func RequestLog(logger *slog.Logger, metrics *observability.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			operation := OperationName(c.Path())

			rc := observability.NewRequestContextWithID(logger, req.Header.Get(HeaderRequestID), operation, c.RealIP())
			c.Response().Header().Set(HeaderRequestID, rc.RequestID)
			c.SetRequest(req.WithContext(observability.WithRequestContext(req.Context(), rc)))

			err := next(c)

			status := c.Response().Status
			if err != nil {
				status = statusOf(err)
			}
			failed := status >= 500

			if metrics != nil && operation != "" {
				metrics.Record(operation, rc.Duration(), failed)
			}

			attrs := []slog.Attr{
				slog.Int(observability.LogFieldStatus, status),
				slog.Int64(observability.LogFieldDuration, rc.DurationMs()),
			}
			if err != nil {
				attrs = append(attrs, slog.String(observability.LogFieldErrorCode, string(apierrors.GetCodeFromError(err, apierrors.ErrCodeInternal))))
				if failed {
					rc.Error("request failed", err, attrs...)
				} else {
					rc.Warn("request rejected", append(attrs, slog.String("error", err.Error()))...)
				}
			} else {
				rc.Debug("request completed", attrs...)
			}
			return err
		}
	}
}

// OperationName derives a metrics label from a route path:
// "/api/v1/dates/search" becomes "dates.search".
func OperationName(path string) string {
	path = strings.TrimPrefix(path, "/api/v1/")
	path = strings.Trim(path, "/")
	return strings.ReplaceAll(path, "/", ".")
}

func statusOf(err error) int {
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code
	}
	return apierrors.HTTPStatus(apierrors.GetCodeFromError(err, apierrors.ErrCodeInternal))
}
