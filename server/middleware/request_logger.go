package middleware

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/tapqyr/analytics/server/internal/observability"
)

// HeaderRequestID carries the request ID in both directions.
const HeaderRequestID = echo.HeaderXRequestID

// RequestLogger attaches an observability.RequestContext to every request,
// logs the outcome and records it in metrics.
func RequestLogger(logger *slog.Logger, metrics *observability.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			route := c.Path()
			if route == "" {
				route = req.URL.Path
			}

			reqCtx := observability.NewRequestContextWithID(logger, req.Header.Get(HeaderRequestID), route, c.Param("userId"))
			c.SetRequest(req.WithContext(observability.WithRequestContext(req.Context(), reqCtx)))
			c.Response().Header().Set(HeaderRequestID, reqCtx.RequestID)

			err := next(c)
			if err != nil {
				// Let echo write the error so the logged status is final.
				c.Error(err)
			}

			status := c.Response().Status
			duration := reqCtx.Duration()
			if metrics != nil {
				metrics.Record(route, reqCtx.StartTime, duration, status >= 500)
			}

			attrs := []slog.Attr{
				slog.String(observability.LogFieldMethod, req.Method),
				slog.Int(observability.LogFieldStatus, status),
				slog.Int64(observability.LogFieldDuration, duration.Milliseconds()),
				slog.String(observability.LogFieldRemoteIP, c.RealIP()),
			}
			switch {
			case status >= 500:
				reqCtx.Warn("request failed", attrs...)
			case route == "/healthz":
				reqCtx.Debug("request completed", attrs...)
			default:
				reqCtx.Info("request completed", attrs...)
			}
			return nil
		}
	}
}
