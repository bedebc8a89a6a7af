// Package otp issues and verifies one-time login codes and enforces the
// resend cooldown between them.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/documentor-api/internal/domain"
	"github.com/documentor-api/internal/infrastructure/kv"
	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultTTL         = 5 * time.Minute
	DefaultMaxAttempts = 5

	codeDigits     = 6
	keyPrefix      = "otp:"
	attemptsPrefix = "otp-attempts:"
	// expiredGrace keeps an entry readable past its validity window so a
	// late verification reports Expired instead of NotFound.
	expiredGrace = time.Minute
)

type kvStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
	Delete(ctx context.Context, key string) error
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

type entry struct {
	Hash      []byte    `json:"hash"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store keeps at most one pending code per email.
type Store struct {
	kv          kvStore
	ttl         time.Duration
	maxAttempts int
	hashCost    int
	now         func() time.Time
	generate    func() (string, error)
}

type StoreDeps struct {
	KV          kvStore
	TTL         time.Duration
	MaxAttempts int
	HashCost    int
	Clock       func() time.Time
	// Generate overrides code generation, used by tests.
	Generate func() (string, error)
}

func NewStore(deps StoreDeps) *Store {
	s := &Store{
		kv:          deps.KV,
		ttl:         deps.TTL,
		maxAttempts: deps.MaxAttempts,
		hashCost:    deps.HashCost,
		now:         deps.Clock,
		generate:    deps.Generate,
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTTL
	}
	if s.maxAttempts < 1 {
		s.maxAttempts = DefaultMaxAttempts
	}
	if s.hashCost == 0 {
		s.hashCost = bcrypt.DefaultCost
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.generate == nil {
		s.generate = GenerateCode
	}
	return s
}

// Issue creates a fresh code for email, replacing any pending one.
func (s *Store) Issue(ctx context.Context, email string) (string, error) {
	code, err := s.generate()
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("hash otp: %w", err)
	}
	e := entry{Hash: hash, ExpiresAt: s.now().Add(s.ttl)}
	if err := s.put(ctx, email, e); err != nil {
		return "", err
	}
	if err := s.kv.Delete(ctx, attemptsPrefix+email); err != nil {
		return "", fmt.Errorf("reset otp attempts: %w", err)
	}
	return code, nil
}

// Verify checks code against the pending entry for email. It returns nil when
// the code is valid and consumes the entry; otherwise one of
// domain.ErrOTPNotFound, domain.ErrOTPExpired or domain.ErrOTPMismatch.
func (s *Store) Verify(ctx context.Context, email, code string) error {
	raw, err := s.kv.Get(ctx, keyPrefix+email)
	if errors.Is(err, kv.ErrMissing) {
		return domain.ErrOTPNotFound
	}
	if err != nil {
		return fmt.Errorf("load otp: %w", err)
	}
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		_ = s.kv.Delete(ctx, keyPrefix+email)
		return domain.ErrOTPNotFound
	}

	if !s.now().Before(e.ExpiresAt) {
		if err := s.drop(ctx, email); err != nil {
			return fmt.Errorf("drop expired otp: %w", err)
		}
		return domain.ErrOTPExpired
	}

	// The counter lives under its own key so concurrent wrong guesses each
	// consume an attempt; the cap is checked before the hash comparison.
	n, err := s.kv.Incr(ctx, attemptsPrefix+email, e.ExpiresAt.Add(expiredGrace).Sub(s.now()))
	if err != nil {
		return fmt.Errorf("count otp attempt: %w", err)
	}
	if n > int64(s.maxAttempts) {
		if err := s.drop(ctx, email); err != nil {
			return fmt.Errorf("drop exhausted otp: %w", err)
		}
		return domain.ErrOTPMismatch
	}

	if bcrypt.CompareHashAndPassword(e.Hash, []byte(code)) != nil {
		if n >= int64(s.maxAttempts) {
			if err := s.drop(ctx, email); err != nil {
				return fmt.Errorf("drop exhausted otp: %w", err)
			}
		}
		return domain.ErrOTPMismatch
	}

	if err := s.drop(ctx, email); err != nil {
		return fmt.Errorf("consume otp: %w", err)
	}
	return nil
}

func (s *Store) drop(ctx context.Context, email string) error {
	if err := s.kv.Delete(ctx, keyPrefix+email); err != nil {
		return err
	}
	return s.kv.Delete(ctx, attemptsPrefix+email)
}

func (s *Store) put(ctx context.Context, email string, e entry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode otp: %w", err)
	}
	ttl := e.ExpiresAt.Add(expiredGrace).Sub(s.now())
	if ttl <= 0 {
		return domain.ErrOTPExpired
	}
	if err := s.kv.Set(ctx, keyPrefix+email, raw, ttl); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	return nil
}

// GenerateCode returns a uniformly random 6-digit numeric code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n.Int64()), nil
}
