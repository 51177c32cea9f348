package http

import (
	"encoding/json"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/kidsevents/marketplace_backend/internal/logging"
)

type requestLogLine struct {
	Time      string `json:"time"`
	RequestID string `json:"request_id,omitempty"`
	RemoteIP  string `json:"ip"`
	LatencyMS int64  `json:"latency_ms"`
	Request   struct {
		Method string `json:"method"`
		URI    string `json:"uri"`
	} `json:"request"`
	Response struct {
		Status int    `json:"status"`
		Error  string `json:"error,omitempty"`
	} `json:"response"`
}

// registerLogging writes one JSON line per request and puts the request id on
// the request context for the service debug events.
func registerLogging(e *echo.Echo) {
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Response().Header().Get(echo.HeaderXRequestID)
			if id != "" {
				req := c.Request()
				c.SetRequest(req.WithContext(logging.WithRequestID(req.Context(), id)))
			}
			return next(c)
		}
	})

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			var line requestLogLine
			line.Time = v.StartTime.Format(time.RFC3339)
			line.RequestID = v.RequestID
			line.RemoteIP = v.RemoteIP
			line.LatencyMS = v.Latency.Milliseconds()
			line.Request.Method = v.Method
			line.Request.URI = v.URI
			line.Response.Status = v.Status
			if v.Error != nil {
				line.Response.Error = v.Error.Error()
			}

			buf, err := json.Marshal(line)
			if err != nil {
				return err
			}
			log.Println(string(buf))
			return nil
		},
	}))
}
