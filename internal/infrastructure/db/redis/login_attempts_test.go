package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestKeyFormat(t *testing.T) {
	if got := failKey("a@x.com:203.0.113.1"); got != "login:fail:a@x.com:203.0.113.1" {
		t.Fatalf("unexpected fail key: %s", got)
	}
	if got := blockKey("203.0.113.1"); got != "login:block:203.0.113.1" {
		t.Fatalf("unexpected block key: %s", got)
	}
}

// TestLoginAttemptLimiter_Integration runs against a real Redis when
// REDIS_TEST_ADDR is set.
func TestLoginAttemptLimiter_Integration(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	client, err := Connect(context.Background(), Config{Addr: addr, DB: 15})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()

	key := "it-" + time.Now().Format("150405.000000")
	l := NewLoginAttemptLimiter(client, 3, 2*time.Second, time.Minute, zerolog.Nop())
	defer l.RegisterSuccessfulLogin(key)

	for i := 0; i < 2; i++ {
		l.RegisterFailedAttempt(key)
		if l.IsBlocked(key) {
			t.Fatalf("blocked after %d failures", i+1)
		}
	}
	l.RegisterFailedAttempt(key)
	if !l.IsBlocked(key) {
		t.Fatalf("expected key to be blocked")
	}

	l.RegisterSuccessfulLogin(key)
	if l.IsBlocked(key) {
		t.Fatalf("expected success to clear the block")
	}
}
