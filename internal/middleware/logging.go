package middleware

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const redacted = "REDACTED"

var sensitiveParams = []string{"token", "access_token"}

// AccessLogger is gin's request logger with credentials masked in the query.
func AccessLogger() gin.HandlerFunc {
	return gin.LoggerWithConfig(gin.LoggerConfig{Formatter: AccessLogFormatter})
}

// AccessLogFormatter mirrors gin's default line but never prints query tokens.
func AccessLogFormatter(p gin.LogFormatterParams) string {
	if p.Latency > time.Minute {
		p.Latency = p.Latency.Truncate(time.Second)
	}
	return fmt.Sprintf("[GIN] %v | %3d | %13v | %15s | %-7s %#v\n%s",
		p.TimeStamp.Format("2006/01/02 - 15:04:05"),
		p.StatusCode,
		p.Latency,
		p.ClientIP,
		p.Method,
		redactPath(p.Path),
		p.ErrorMessage,
	)
}

// redactPath masks sensitive query values in a "path?query" string.
func redactPath(path string) string {
	base, rawQuery, found := strings.Cut(path, "?")
	if !found {
		return path
	}
	q, err := url.ParseQuery(rawQuery)
	if err != nil {
		// unparseable query: drop it rather than risk echoing a token
		return base + "?" + redacted
	}
	changed := false
	for _, k := range sensitiveParams {
		if _, ok := q[k]; ok {
			q.Set(k, redacted)
			changed = true
		}
	}
	if !changed {
		return path
	}
	return base + "?" + q.Encode()
}
