package fastly

import (
	"fmt"

	"github.com/marcus/fastly-stats/internal/dateparse"
)

// DefaultGranularity is the bucket size used when the caller does not pick one.
const DefaultGranularity = "minute"

// TimeRange bounds a stats query. Empty bounds are omitted from the request.
// The ordering of From and To is left to the API.
type TimeRange struct {
	From string
	To   string
}

// StatsQuery describes a GET /stats/service/{service} request.
type StatsQuery struct {
	Service string
	By      string
	Range   TimeRange
}

// StatsPath builds the historical stats path for a service. Bounds given as
// RFC 3339 timestamps are converted to epoch seconds; all other values,
// including the service ID and granularity, are inserted verbatim.
func StatsPath(service, by string, r TimeRange) string {
	if by == "" {
		by = DefaultGranularity
	}
	path := fmt.Sprintf("/stats/service/%s?by=%s", service, by)
	if r.From != "" {
		path += "&from=" + dateparse.Normalize(r.From)
	}
	if r.To != "" {
		path += "&to=" + dateparse.Normalize(r.To)
	}
	return path
}

// SummaryPath builds the stats summary path for a service.
func SummaryPath(service string) string {
	return fmt.Sprintf("/service/%s/stats/summary", service)
}

// Path returns the request path for q.
func (q StatsQuery) Path() string {
	return StatsPath(q.Service, q.By, q.Range)
}
