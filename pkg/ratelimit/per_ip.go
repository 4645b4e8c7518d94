package ratelimit

import (
	"math"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Default per-IP limiter values.
const (
	DefaultRate            = 100
	DefaultCleanupInterval = 1 * time.Minute
	DefaultEntryTTL        = 1 * time.Minute
)

// PerIPConfig configures a PerIPLimiter.
type PerIPConfig struct {
	Rate            float64       // requests per second
	Burst           int           // maximum bucket capacity
	TrustedProxies  []string      // CIDR ranges or single IPs of trusted proxies
	CleanupInterval time.Duration // how often idle clients are dropped
	EntryTTL        time.Duration // how long a client is kept without activity
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// PerIPLimiter keeps one token bucket per client IP.
type PerIPLimiter struct {
	limit           rate.Limit
	burst           int
	mu              sync.Mutex
	clients         map[string]*client
	trustedProxies  []*net.IPNet
	cleanupInterval time.Duration
	entryTTL        time.Duration
	stopCh          chan struct{}
	stoppedCh       chan struct{}
	stopOnce        sync.Once
	now             func() time.Time
}

// NewPerIPLimiter creates a limiter and starts its cleanup goroutine.
func NewPerIPLimiter(cfg PerIPConfig) *PerIPLimiter {
	rps := cfg.Rate
	if rps <= 0 {
		rps = DefaultRate
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = int(math.Ceil(rps * 2))
	}
	cleanupInterval := cfg.CleanupInterval
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}
	entryTTL := cfg.EntryTTL
	if entryTTL <= 0 {
		entryTTL = DefaultEntryTTL
	}

	rl := &PerIPLimiter{
		limit:           rate.Limit(rps),
		burst:           burst,
		clients:         make(map[string]*client),
		trustedProxies:  parseProxies(cfg.TrustedProxies),
		cleanupInterval: cleanupInterval,
		entryTTL:        entryTTL,
		stopCh:          make(chan struct{}),
		stoppedCh:       make(chan struct{}),
		now:             time.Now,
	}
	go rl.cleanup()
	return rl
}

func parseProxies(entries []string) []*net.IPNet {
	var nets []*net.IPNet
	for _, entry := range entries {
		if !strings.Contains(entry, "/") {
			if ip := net.ParseIP(entry); ip != nil && ip.To4() != nil {
				entry += "/32"
			} else {
				entry += "/128"
			}
		}
		if _, network, err := net.ParseCIDR(entry); err == nil {
			nets = append(nets, network)
		}
	}
	return nets
}

// Burst returns the bucket capacity.
func (rl *PerIPLimiter) Burst() int {
	return rl.burst
}

// Clients returns the number of tracked client IPs.
func (rl *PerIPLimiter) Clients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

func (rl *PerIPLimiter) get(ip string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	c, ok := rl.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter
}

// Allow consumes one token for ip. It returns whether the request may
// proceed, the whole tokens left, and the seconds until the bucket is full
// (allowed) or until the next token is available (denied).
func (rl *PerIPLimiter) Allow(ip string) (allowed bool, remaining int, resetOrRetry int64) {
	now := rl.now()
	lim := rl.get(ip, now)

	r := lim.ReserveN(now, 1)
	if delay := r.DelayFrom(now); !r.OK() || delay > 0 {
		r.CancelAt(now)
		return false, 0, ceilSeconds(delay)
	}

	tokens := lim.TokensAt(now)
	missing := float64(rl.burst) - tokens
	reset := int64(0)
	if missing > 0 {
		reset = ceilSeconds(time.Duration(missing / float64(rl.limit) * float64(time.Second)))
	}
	return true, max(int(tokens), 0), reset
}

func ceilSeconds(d time.Duration) int64 {
	s := int64(math.Ceil(d.Seconds()))
	if s < 1 {
		s = 1
	}
	return s
}

// ClientIP extracts the client IP, honoring X-Forwarded-For and X-Real-IP
// only when the direct peer is a trusted proxy.
func (rl *PerIPLimiter) ClientIP(r *http.Request) string {
	remoteIP := extractRemoteIP(r.RemoteAddr)
	if !rl.isTrustedProxy(remoteIP) {
		return remoteIP
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); net.ParseIP(ip) != nil {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(ip) != nil {
		return ip
	}
	return remoteIP
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (rl *PerIPLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopCh)
		<-rl.stoppedCh
	})
}

func (rl *PerIPLimiter) cleanup() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()
	defer close(rl.stoppedCh)

	for {
		select {
		case <-ticker.C:
			rl.removeStale(rl.now())
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *PerIPLimiter) removeStale(now time.Time) {
	cutoff := now.Add(-rl.entryTTL)
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, c := range rl.clients {
		if c.lastSeen.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *PerIPLimiter) isTrustedProxy(ip string) bool {
	if len(rl.trustedProxies) == 0 {
		return false
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, network := range rl.trustedProxies {
		if network.Contains(parsed) {
			return true
		}
	}
	return false
}

func extractRemoteIP(remoteAddr string) string {
	ip, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return ip
}
