package assetcache

import (
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
)

// ResilienceConfig holds retry/circuit-breaker policies wrapped around a
// CachingTransport's calls into its inner Transport. Both are optional;
// a zero ResilienceConfig executes fn directly.
type ResilienceConfig struct {
	RetryPolicy    retrypolicy.RetryPolicy[*Response]
	CircuitBreaker circuitbreaker.CircuitBreaker[*Response]
}

// RetryPolicyBuilder returns a pre-configured retry policy builder: retries
// on error or a 5xx status, up to 3 retries after the first attempt, with
// 100ms-10s backoff.
func RetryPolicyBuilder() retrypolicy.Builder[*Response] {
	return retrypolicy.NewBuilder[*Response]().
		HandleIf(func(r *Response, err error) bool {
			if err != nil {
				return true
			}
			return r != nil && r.StatusCode >= 500
		}).
		WithMaxRetries(3).
		WithBackoff(100*time.Millisecond, 10*time.Second)
}

// CircuitBreakerBuilder returns a pre-configured circuit breaker builder:
// opens after 5 consecutive failures, closes after 2 consecutive
// successes in half-open state, waits 60s before probing.
func CircuitBreakerBuilder() circuitbreaker.Builder[*Response] {
	return circuitbreaker.NewBuilder[*Response]().
		HandleIf(func(r *Response, err error) bool {
			if err != nil {
				return true
			}
			return r != nil && r.StatusCode >= 500
		}).
		WithFailureThreshold(5).
		WithSuccessThreshold(2).
		WithDelay(60 * time.Second)
}

// Execute runs fn through whichever policies are configured (retry
// outermost, circuit breaker innermost, so every retry attempt passes
// through the breaker), or directly if neither is set.
func (c *ResilienceConfig) Execute(fn func() (*Response, error)) (*Response, error) {
	if c == nil {
		return fn()
	}
	var policies []failsafe.Policy[*Response]
	if c.RetryPolicy != nil {
		policies = append(policies, c.RetryPolicy)
	}
	if c.CircuitBreaker != nil {
		policies = append(policies, c.CircuitBreaker)
	}
	if len(policies) == 0 {
		return fn()
	}
	return failsafe.With(policies...).Get(fn)
}
