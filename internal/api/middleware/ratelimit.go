package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	"github.com/thesilo/reservations/internal/access"
	"github.com/thesilo/reservations/internal/api/handlers"
)

const (
	rateLimitKeyPrefix = "silo:ratelimit"
	msgTooManyRequests = "Too many requests. Please try again later."
)

// WindowCounter счетчик запросов в фиксированном окне
type WindowCounter interface {
	// Incr увеличивает счетчик ключа и возвращает новое значение.
	// Счетчик живет не дольше окна.
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimitMetrics получатель метрики отклоненных запросов
type RateLimitMetrics interface {
	IncRateLimited(route string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RedisCounter WindowCounter поверх Redis: INCR и EXPIRE в одной транзакции
type RedisCounter struct {
	client *redis.Client
}

// NewRedisCounter создает RedisCounter
func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

// Incr увеличивает счетчик и выставляет TTL окна
func (c *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, window)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", key, err)
	}
	return incr.Val(), nil
}

// RateLimiter ограничение частоты гостевых запросов по IP и маршруту.
// Персонал не ограничивается. Ошибка счетчика пропускает запрос.
type RateLimiter struct {
	counter WindowCounter
	limit   int64
	window  time.Duration
	trusted []netip.Prefix
	metrics RateLimitMetrics
	logger  Logger
	now     func() time.Time
}

// NewRateLimiter создает RateLimiter. metrics может быть nil.
// Заголовки X-Forwarded-For и X-Real-IP читаются только от прокси из trustedProxies.
func NewRateLimiter(counter WindowCounter, limit int, window time.Duration, trustedProxies []netip.Prefix, metrics RateLimitMetrics, logger Logger) *RateLimiter {
	return &RateLimiter{
		counter: counter,
		limit:   int64(limit),
		window:  window,
		trusted: trustedProxies,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Middleware возвращает mux middleware
func (l *RateLimiter) Middleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if access.FromContext(r.Context()).IsStaff() {
				next.ServeHTTP(w, r)
				return
			}

			route := r.Method + " " + routeTemplate(r)
			windowStart := l.now().Truncate(l.window)
			ip := l.clientIP(r)
			key := fmt.Sprintf("%s:%s:%s:%d", rateLimitKeyPrefix, ip, route, windowStart.Unix())

			count, err := l.counter.Incr(r.Context(), key, l.window)
			if err != nil {
				l.logger.Warn("RateLimiter: counter unavailable, allowing request route=%s: %v", route, err)
				next.ServeHTTP(w, r)
				return
			}

			remaining := l.limit - count
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(l.limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > l.limit {
				retryAfter := windowStart.Add(l.window).Sub(l.now())
				w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Round(time.Second).Seconds())))
				if l.metrics != nil {
					l.metrics.IncRateLimited(route)
				}
				l.logger.Warn("RateLimiter: limit exceeded ip=%s route=%s count=%d", ip, route, count)
				handlers.RespondError(w, http.StatusTooManyRequests, msgTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP адрес клиента для ключа лимита.
// От недоверенного соединения берется только RemoteAddr. За доверенным прокси
// X-Forwarded-For читается справа налево до первого недоверенного адреса.
func (l *RateLimiter) clientIP(r *http.Request) string {
	peer := remoteHost(r)
	if !l.isTrusted(peer) {
		return peer
	}

	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		hops := strings.Split(fwd, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop == "" {
				continue
			}
			if !l.isTrusted(hop) || i == 0 {
				return hop
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	return peer
}

func (l *RateLimiter) isTrusted(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range l.trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
