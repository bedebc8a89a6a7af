package jwtinfra

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/documentor-api/internal/config"
	"github.com/documentor-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

const (
	audienceSession      = "session"
	audienceRegistration = "registration"
)

// Claims holds the JWT payload. Subject carries the user's email.
type Claims struct {
	jwt.RegisteredClaims
}

// Email returns the subject of the token.
func (c *Claims) Email() string { return c.Subject }

// Options tune token lifetimes. A nil Clock means time.Now.
type Options struct {
	Expiry          time.Duration
	RegistrationTTL time.Duration
	Clock           func() time.Time
}

// Provider signs and verifies session tokens and registration tickets
// with either HS256 or RS256. It holds no mutable state.
type Provider struct {
	method    jwt.SigningMethod
	signKey   interface{}
	verifyKey interface{}
	expiry    time.Duration
	regTTL    time.Duration
	now       func() time.Time
}

// NewProvider builds a Provider from cfg.Algorithm. RS256 reads PEM key
// files; HS256 uses SECRET_KEY, or a random per-process secret outside
// production when none is configured.
func NewProvider(cfg *config.Config) (*Provider, error) {
	opts := Options{Expiry: cfg.JWTExpiry, RegistrationTTL: cfg.RegistrationTTL}
	switch cfg.Algorithm {
	case "RS256":
		privBytes, err := os.ReadFile(cfg.JWTPrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("read private key: %w", err)
		}
		privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privBytes)
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		pubBytes, err := os.ReadFile(cfg.JWTPublicKeyPath)
		if err != nil {
			return nil, fmt.Errorf("read public key: %w", err)
		}
		pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubBytes)
		if err != nil {
			return nil, fmt.Errorf("parse public key: %w", err)
		}
		return NewRS256(privKey, pubKey, opts), nil
	case "HS256":
		secret := []byte(cfg.SecretKey)
		if len(secret) == 0 {
			if cfg.IsProduction() {
				return nil, errors.New("SECRET_KEY is required")
			}
			secret = make([]byte, 32)
			if _, err := rand.Read(secret); err != nil {
				return nil, fmt.Errorf("generate secret: %w", err)
			}
			slog.Warn("SECRET_KEY not set, using an ephemeral signing secret")
		}
		return NewHS256(secret, opts), nil
	default:
		return nil, fmt.Errorf("unsupported algorithm %q", cfg.Algorithm)
	}
}

func NewHS256(secret []byte, opts Options) *Provider {
	return newProvider(jwt.SigningMethodHS256, secret, secret, opts)
}

func NewRS256(priv *rsa.PrivateKey, pub *rsa.PublicKey, opts Options) *Provider {
	return newProvider(jwt.SigningMethodRS256, priv, pub, opts)
}

func newProvider(m jwt.SigningMethod, sign, verify interface{}, opts Options) *Provider {
	p := &Provider{
		method:    m,
		signKey:   sign,
		verifyKey: verify,
		expiry:    opts.Expiry,
		regTTL:    opts.RegistrationTTL,
		now:       opts.Clock,
	}
	if p.expiry <= 0 {
		p.expiry = 30 * time.Minute
	}
	if p.regTTL <= 0 {
		p.regTTL = 10 * time.Minute
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// Issue returns a session token for email.
func (p *Provider) Issue(email string) (string, error) {
	return p.sign(email, audienceSession, p.expiry)
}

// Verify validates a session token and returns its claims.
func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	return p.parse(tokenStr, audienceSession)
}

// IssueRegistration returns a short-lived ticket proving email ownership
// for the account creation step. It is never accepted as a session.
func (p *Provider) IssueRegistration(email string) (string, error) {
	return p.sign(email, audienceRegistration, p.regTTL)
}

// VerifyRegistration validates a ticket and returns the email it was issued for.
func (p *Provider) VerifyRegistration(ticket string) (string, error) {
	c, err := p.parse(ticket, audienceRegistration)
	if err != nil {
		return "", err
	}
	return c.Subject, nil
}

func (p *Provider) sign(subject, audience string, ttl time.Duration) (string, error) {
	now := p.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	s, err := jwt.NewWithClaims(p.method, claims).SignedString(p.signKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

func (p *Provider) parse(tokenStr, audience string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != p.method.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return p.verifyKey, nil
	},
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", domain.ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}
