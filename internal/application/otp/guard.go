package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/documentor-api/internal/infrastructure/kv"
)

const (
	DefaultCooldown = 3 * time.Minute

	cooldownPrefix = "otp-cooldown:"
)

// Guard rate-limits OTP sends per email with a fixed cooldown.
type Guard struct {
	kv       kvStore
	cooldown time.Duration
}

func NewGuard(store kvStore, cooldown time.Duration) *Guard {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Guard{kv: store, cooldown: cooldown}
}

// CanResend reports whether a new code may be sent to email and, if not,
// how many whole seconds remain (rounded up).
func (g *Guard) CanResend(ctx context.Context, email string) (bool, int, error) {
	left, err := g.kv.TTL(ctx, cooldownPrefix+email)
	if errors.Is(err, kv.ErrMissing) {
		return true, 0, nil
	}
	if err != nil {
		return false, 0, fmt.Errorf("read cooldown: %w", err)
	}
	if left <= 0 {
		return true, 0, nil
	}
	return false, int((left + time.Second - 1) / time.Second), nil
}

// StartCooldown begins the cooldown window for email.
func (g *Guard) StartCooldown(ctx context.Context, email string) error {
	if err := g.kv.Set(ctx, cooldownPrefix+email, []byte{1}, g.cooldown); err != nil {
		return fmt.Errorf("start cooldown: %w", err)
	}
	return nil
}

// Release drops the cooldown for email.
func (g *Guard) Release(ctx context.Context, email string) error {
	if err := g.kv.Delete(ctx, cooldownPrefix+email); err != nil {
		return fmt.Errorf("release cooldown: %w", err)
	}
	return nil
}
