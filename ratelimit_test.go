package mailtl

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRateLimiter_TryAcquire(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 60, // 1 per second
		BurstSize:         3,
	})

	for i := 0; i < 3; i++ {
		if !limiter.TryAcquire() {
			t.Errorf("Expected to acquire token %d", i)
		}
	}

	if limiter.TryAcquire() {
		t.Error("Expected fourth acquire to fail")
	}
}

func TestRateLimiter_DefaultBurst(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{RequestsPerMinute: 30})
	if got := limiter.Available(); got != 30 {
		t.Errorf("Expected burst to default to RPM (30), got %f", got)
	}

	limiter = NewRateLimiter(RateLimitConfig{})
	if got := limiter.Available(); got != 60 {
		t.Errorf("Expected 60 RPM when unset, got %f", got)
	}
}

func TestRateLimiter_Refill(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 600, // 10 per second
		BurstSize:         1,
	})

	limiter.TryAcquire()
	if limiter.TryAcquire() {
		t.Error("Expected acquire to fail after drain")
	}

	// One token takes 100ms at 10/sec
	time.Sleep(150 * time.Millisecond)

	if !limiter.TryAcquire() {
		t.Error("Expected acquire to succeed after refill")
	}
}

func TestRateLimiter_Wait(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 600,
		BurstSize:         1,
	})
	limiter.TryAcquire()

	start := time.Now()
	if err := limiter.Wait(context.Background()); err != nil {
		t.Errorf("Wait failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("Wait returned too quickly: %v", elapsed)
	}
}

func TestRateLimiter_WaitCancelled(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 1,
		BurstSize:         1,
	})
	limiter.TryAcquire()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected DeadlineExceeded, got %v", err)
	}
}

func TestRateLimiter_Available(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 60,
		BurstSize:         5,
	})

	if available := limiter.Available(); available != 5 {
		t.Errorf("Expected 5 available, got %f", available)
	}

	limiter.TryAcquire()
	limiter.TryAcquire()

	if available := limiter.Available(); available < 2.9 || available > 3.1 {
		t.Errorf("Expected ~3 available, got %f", available)
	}
}

func TestRateLimiter_Concurrent(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 6000,
		BurstSize:         10,
	})

	var wg sync.WaitGroup
	var acquired atomic.Int64
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.TryAcquire() {
				acquired.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := acquired.Load(); got != 10 {
		t.Errorf("Expected exactly the burst (10) to be acquired, got %d", got)
	}
}

// countingProvider answers every text with สวัสดี and counts calls.
type countingProvider struct {
	calls atomic.Int32
}

func (p *countingProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	p.calls.Add(1)
	out := make([]string, len(req.Texts))
	for i := range out {
		out[i] = "สวัสดี"
	}
	return out, nil
}

func TestRateLimitedProvider(t *testing.T) {
	inner := &countingProvider{}
	provider := NewRateLimitedProvider(inner, RateLimitConfig{
		RequestsPerMinute: 600,
		BurstSize:         2,
	})
	ctx := context.Background()

	for _, text := range []string{"Hello", "Welcome"} {
		if _, err := provider.Translate(ctx, TranslateRequest{Texts: []string{text}}); err != nil {
			t.Errorf("Translate(%q) failed: %v", text, err)
		}
	}

	start := time.Now()
	if _, err := provider.Translate(ctx, TranslateRequest{Texts: []string{"now"}}); err != nil {
		t.Errorf("Third translate failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("Expected rate limit wait, but returned in %v", elapsed)
	}

	if got := inner.calls.Load(); got != 3 {
		t.Errorf("Expected 3 calls, got %d", got)
	}
	if provider.Limiter() == nil {
		t.Error("Limiter() should expose the limiter")
	}
}

func TestRateLimitedProvider_ContextCancelled(t *testing.T) {
	inner := &countingProvider{}
	provider := NewRateLimitedProvider(inner, RateLimitConfig{
		RequestsPerMinute: 1,
		BurstSize:         1,
	})

	_, _ = provider.Translate(context.Background(), TranslateRequest{Texts: []string{"Hello"}})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := provider.Translate(ctx, TranslateRequest{Texts: []string{"Welcome"}})

	var providerErr *ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("Expected ProviderError, got %v", err)
	}
	if providerErr.Retryable {
		t.Error("A cancelled wait should not be retried")
	}
	if got := inner.calls.Load(); got != 1 {
		t.Errorf("Inner provider should not be called after a cancelled wait, got %d calls", got)
	}
}
