// Package server exposes a read-only HTTP endpoint for fetching signed
// validity windows from a publication backend, for relying parties that
// prefer pulling over mirroring the publication root themselves.
package server

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Mindburn-Labs/mtc/pkg/publish"
)

// Server serves signed validity windows out of a Publisher.
type Server struct {
	publisher   publish.Publisher
	limiter     *GlobalRateLimiter
	authorize   func(*http.Request) error
}

// New builds a Server reading from publisher. authorize, if non-nil, is
// called for every request before dispatch; returning an error denies
// the request with 401.
func New(publisher publish.Publisher, rps, burst int, authorize func(*http.Request) error) *Server {
	return &Server{
		publisher: publisher,
		limiter:   NewGlobalRateLimiter(rps, burst),
		authorize: authorize,
	}
}

// Handler returns the server's routed http.Handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/batches/latest/signed-validity-window", s.handleLatest)
	mux.HandleFunc("/batches/", s.handleBatch)
	return s.limiter.Middleware(s.withAuth(mux))
}

func (s *Server) withAuth(next http.Handler) http.Handler {
	if s.authorize == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := s.authorize(r); err != nil {
			writeUnauthorized(w, err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	batchNumber, err := s.publisher.GetLatest(r.Context())
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no published batches: %v", err))
		return
	}
	s.writeWindow(w, r, batchNumber)
}

// handleBatch serves /batches/{b}/signed-validity-window.
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 3 || parts[0] != "batches" || parts[2] != "signed-validity-window" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	batchNumber, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid batch number")
		return
	}
	s.writeWindow(w, r, uint32(batchNumber))
}

func (s *Server) writeWindow(w http.ResponseWriter, r *http.Request, batchNumber uint32) {
	data, err := s.publisher.GetSignedValidityWindow(r.Context(), batchNumber)
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("batch %d: %v", batchNumber, err))
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, message)
}

// rateLimitConfig holds the rate limiter settings.
type rateLimitConfig struct {
	rps   rate.Limit
	burst int
}

// GlobalRateLimiter manages per-IP token-bucket rate limiters so one
// caller hammering the fetch endpoint cannot starve others.
type GlobalRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	config   rateLimitConfig
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewGlobalRateLimiter creates a limiter allowing rps requests/sec per
// IP with the given burst.
func NewGlobalRateLimiter(rps, burst int) *GlobalRateLimiter {
	rl := &GlobalRateLimiter{
		visitors: make(map[string]*visitor),
		config:   rateLimitConfig{rps: rate.Limit(rps), burst: burst},
	}
	go rl.cleanupVisitors()
	return rl
}

func (rl *GlobalRateLimiter) getVisitor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[ip]
	if !ok {
		limiter := rate.NewLimiter(rl.config.rps, rl.config.burst)
		rl.visitors[ip] = &visitor{limiter: limiter, lastSeen: time.Now()}
		return limiter
	}
	v.lastSeen = time.Now()
	return v.limiter
}

func (rl *GlobalRateLimiter) cleanupVisitors() {
	for {
		time.Sleep(time.Minute)
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastSeen) > 3*time.Minute {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// Middleware enforces per-IP rate limits ahead of next.
func (rl *GlobalRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = strings.Trim(r.RemoteAddr, "[]")
		}
		if !rl.getVisitor(ip).Allow() {
			w.Header().Set("Retry-After", "5")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
