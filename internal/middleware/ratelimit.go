package middleware

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"

	"pollshare/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

var errNoRedis = errors.New("rate limit store unavailable")

// Rule is a fixed-window limit on one named action.
type Rule struct {
	Name   string
	Max    int
	Window time.Duration
	// FailClosed answers 503 when Redis cannot be reached instead of letting
	// the request through.
	FailClosed bool
}

// Decision is the outcome of counting one request against a Rule.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetIn   time.Duration
}

// limitsBypassed reports whether APP_ENV turns limiting off. Unset counts as
// development.
func limitsBypassed() bool {
	switch os.Getenv("APP_ENV") {
	case "", "test", "development", "stress":
		return true
	}
	return false
}

// Allow counts a request by caller against r. The window starts with the
// caller's first request.
func (r Rule) Allow(ctx context.Context, rdb *redis.Client, caller string) (Decision, error) {
	if limitsBypassed() {
		return Decision{Allowed: true, Remaining: r.Max, ResetIn: r.Window}, nil
	}
	if rdb == nil {
		return Decision{}, errNoRedis
	}

	key := "rl:" + r.Name + ":" + caller
	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	if _, err := rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, key)
		ttl = p.PTTL(ctx, key)
		return nil
	}); err != nil {
		observability.RedisErrors.WithLabelValues("incr").Inc()
		return Decision{}, err
	}

	resetIn := ttl.Val()
	if resetIn < 0 {
		resetIn = r.Window
		if err := rdb.PExpire(ctx, key, r.Window).Err(); err != nil {
			observability.RedisErrors.WithLabelValues("expire").Inc()
		}
	}

	count := int(incr.Val())
	return Decision{
		Allowed:   count <= r.Max,
		Remaining: max(r.Max-count, 0),
		ResetIn:   resetIn,
	}, nil
}

// RateLimit limits a route to max requests per window under name. Callers are
// the token subject when authenticated, else the remote IP. Redis failures
// let requests through.
func RateLimit(rdb *redis.Client, max int, window time.Duration, name string) fiber.Handler {
	return Limit(rdb, Rule{Name: name, Max: max, Window: window})
}

// Limit enforces rule and sets the X-RateLimit-* headers.
func Limit(rdb *redis.Client, rule Rule) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		caller := "ip:" + c.IP()
		if sub := Subject(c); sub != "" {
			caller = "user:" + sub
		}

		d, err := rule.Allow(ctx, rdb, caller)
		if err != nil {
			if !rule.FailClosed {
				return c.Next()
			}
			Logger.WarnContext(ctx, "rate limit store unavailable",
				slog.String("rule", rule.Name),
				slog.String("error", err.Error()),
			)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "Service temporarily unavailable",
			})
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(rule.Max))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if !d.Allowed {
			observability.RateLimited.WithLabelValues(rule.Name).Inc()
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(d.ResetIn.Round(time.Second).Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		}
		return c.Next()
	}
}
