package lim

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"pastebox/metrics"
	"pastebox/svc/db"
	"pastebox/svc/util"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

const redisCallTimeout = 100 * time.Millisecond

// Limiter allows Requests per Window to each client IP. The window is fixed: it opens on the
// client's first hit and the count resets once it elapses. With Redis the counter is shared;
// otherwise it lives in an LRU table, so the least recently seen clients are forgotten first.
type Limiter struct {
	rdb            *db.Redis
	trustedProxies []string
	requests       int
	window         time.Duration
	clients        *lru.Cache[string, *clientWindow]
	mu             sync.Mutex
	now            func() time.Time
	fallbackLog    rate.Sometimes
}

type clientWindow struct {
	start time.Time
	count int
}

type RateLimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int
	Reset      time.Time
	RetryAfter time.Duration
}

func New(requests int, window time.Duration, maxClients int, rdb *db.Redis, trustedProxies []string) (*Limiter, error) {
	if requests <= 0 || window <= 0 {
		return nil, errors.New("rate limit requests and window must be positive")
	}
	for _, proxy := range trustedProxies {
		if strings.Contains(proxy, "/") {
			if _, _, err := net.ParseCIDR(proxy); err != nil {
				return nil, errors.Wrapf(err, "invalid CIDR in trustedProxies: %s", proxy)
			}
		} else if net.ParseIP(proxy) == nil {
			return nil, fmt.Errorf("invalid IP in trustedProxies: %s", proxy)
		}
	}
	clients, err := lru.New[string, *clientWindow](maxClients)
	if err != nil {
		return nil, errors.Wrap(err, "client table")
	}
	return &Limiter{
		rdb:            rdb,
		trustedProxies: trustedProxies,
		requests:       requests,
		window:         window,
		clients:        clients,
		now:            time.Now,
		fallbackLog:    rate.Sometimes{Interval: 30 * time.Second},
	}, nil
}

func (l *Limiter) CheckLimit(r *http.Request) *RateLimitResult {
	ip := GetRealIP(r, l.trustedProxies)
	if l.rdb != nil {
		ctx, cancel := context.WithTimeout(r.Context(), redisCallTimeout)
		defer cancel()
		res, err := l.checkRedis(ctx, ip)
		if err == nil {
			return res
		}
		l.fallbackLog.Do(func() {
			util.Warn().Err(err).Msg("redis rate limit unavailable, using local fallback")
		})
	}
	return l.checkLocal(ip)
}

func (l *Limiter) checkRedis(ctx context.Context, ip string) (*RateLimitResult, error) {
	usage, ttl, err := l.rdb.RateLimit(ctx, "client:"+ip, l.requests, l.window)
	if err != nil {
		return nil, err
	}
	res := &RateLimitResult{
		Allowed:    usage <= l.requests,
		Limit:      l.requests,
		Remaining:  l.requests - usage,
		Reset:      l.now().Add(ttl),
		RetryAfter: ttl,
	}
	if res.Remaining < 0 {
		res.Remaining = 0
	}
	if !res.Allowed {
		metrics.RateLimitHits.WithLabelValues("redis").Inc()
	}
	return res, nil
}

func (l *Limiter) checkLocal(ip string) *RateLimitResult {
	now := l.now()
	l.mu.Lock()
	w, ok := l.clients.Get(ip)
	if !ok || !now.Before(w.start.Add(l.window)) {
		w = &clientWindow{start: now}
		l.clients.Add(ip, w)
	}
	allowed := w.count < l.requests
	if allowed {
		w.count++
	}
	reset := w.start.Add(l.window)
	remaining := l.requests - w.count
	l.mu.Unlock()

	res := &RateLimitResult{
		Allowed:   allowed,
		Limit:     l.requests,
		Remaining: remaining,
		Reset:     reset,
	}
	if !allowed {
		res.RetryAfter = reset.Sub(now)
		metrics.RateLimitHits.WithLabelValues("local").Inc()
	}
	return res
}

// Backend reports where counters live: "redis" or "local".
func (l *Limiter) Backend() string {
	if l.rdb != nil {
		return "redis"
	}
	return "local"
}

// GetRealIP returns the peer address, or the right-most X-Forwarded-For hop that is not a trusted
// proxy when the peer itself is trusted.
func GetRealIP(r *http.Request, trustedProxies []string) string {
	remoteIP := stripPort(r.RemoteAddr)
	if len(trustedProxies) == 0 || !isTrustedProxy(remoteIP, trustedProxies) {
		return remoteIP
	}
	xff := r.Header.Get("X-Forwarded-For")
	if xff == "" {
		return remoteIP
	}
	const maxIPsToParse = 100
	hops := strings.Split(xff, ",")
	parsed := 0
	for i := len(hops) - 1; i >= 0 && parsed < maxIPsToParse; i-- {
		ipStr := strings.TrimSpace(hops[i])
		if ipStr == "" {
			continue
		}
		parsed++
		if net.ParseIP(ipStr) == nil {
			util.Warn().Str("ip", util.RedactIP(ipStr)).Msg("invalid IP in X-Forwarded-For, skipping")
			continue
		}
		if !isTrustedProxy(ipStr, trustedProxies) {
			return ipStr
		}
	}
	return remoteIP
}

func isTrustedProxy(ip string, trustedProxies []string) bool {
	parsedIP := net.ParseIP(ip)
	for _, proxy := range trustedProxies {
		if ip == proxy {
			return true
		}
		if strings.Contains(proxy, "/") && parsedIP != nil {
			if _, subnet, err := net.ParseCIDR(proxy); err == nil && subnet.Contains(parsedIP) {
				return true
			}
		}
	}
	return false
}

func stripPort(ip string) string {
	if host, _, err := net.SplitHostPort(ip); err == nil {
		return host
	}
	return ip
}
