package middleware

import (
	"net/http"
	"sync/atomic"
)

// RequestStats counts served requests by outcome. Auth and rate limit
// rejections are also counted on their own.
type RequestStats struct {
	requests     atomic.Int64
	clientErrors atomic.Int64
	serverErrors atomic.Int64
	unauthorized atomic.Int64
	rateLimited  atomic.Int64
}

// RequestSnapshot is a point-in-time copy of RequestStats.
type RequestSnapshot struct {
	Requests     int64 `json:"requests"`
	ClientErrors int64 `json:"client_errors"`
	ServerErrors int64 `json:"server_errors"`
	Unauthorized int64 `json:"unauthorized"`
	RateLimited  int64 `json:"rate_limited"`
}

// Errors is the number of requests answered with a 4xx or 5xx status.
func (s RequestSnapshot) Errors() int64 {
	return s.ClientErrors + s.ServerErrors
}

// NewRequestStats creates an empty set of request counters.
func NewRequestStats() *RequestStats {
	return &RequestStats{}
}

// Middleware counts a request on arrival and classifies it by its final
// status once the handler returns.
func (s *RequestStats) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)
		s.record(rw.statusCode)
	})
}

func (s *RequestStats) record(status int) {
	switch {
	case status >= 500:
		s.serverErrors.Add(1)
	case status >= 400:
		s.clientErrors.Add(1)
		switch status {
		case http.StatusUnauthorized:
			s.unauthorized.Add(1)
		case http.StatusTooManyRequests:
			s.rateLimited.Add(1)
		}
	}
}

func (s *RequestStats) Snapshot() RequestSnapshot {
	return RequestSnapshot{
		Requests:     s.requests.Load(),
		ClientErrors: s.clientErrors.Load(),
		ServerErrors: s.serverErrors.Load(),
		Unauthorized: s.unauthorized.Load(),
		RateLimited:  s.rateLimited.Load(),
	}
}
