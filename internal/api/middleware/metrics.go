package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/gin-gonic/gin"
)

var durationBuckets = metrics.ExponentialBuckets(1e-3, 5, 6)

// MeterRequests counts requests and records their duration per route and
// status in set. Unmatched routes share one label so unknown paths cannot
// grow the set without bound.
func MeterRequests(set *metrics.Set) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		labels := joinQuote("{method=", c.Request.Method, ",path=", route, ",status=", strconv.Itoa(c.Writer.Status()), "}")
		set.GetOrCreateCounter("http_requests_total" + labels).Inc()
		set.GetOrCreatePrometheusHistogramExt("http_request_duration_seconds"+labels, durationBuckets).UpdateDuration(start)
	}
}

// joinQuote concatenates parts, quoting every second one as a label value.
func joinQuote(parts ...string) string {
	var b strings.Builder
	for i, part := range parts {
		if i%2 == 1 {
			b.WriteString(strconv.Quote(part))
			continue
		}
		b.WriteString(part)
	}
	return b.String()
}
