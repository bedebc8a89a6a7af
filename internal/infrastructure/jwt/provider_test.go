package jwtinfra

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/documentor-api/internal/config"
	"github.com/documentor-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHS256_IssueVerify(t *testing.T) {
	p := NewHS256([]byte("secret"), Options{Expiry: time.Minute})

	tok, err := p.Issue("a@x.com")
	require.NoError(t, err)

	c, err := p.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", c.Email())
	assert.WithinDuration(t, c.IssuedAt.Add(time.Minute), c.ExpiresAt.Time, time.Second)
}

func TestVerify_Expired(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	p := NewHS256([]byte("secret"), Options{Expiry: time.Minute, Clock: clock})

	tok, err := p.Issue("a@x.com")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = p.Verify(tok)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestVerify_WrongSecret(t *testing.T) {
	tok, err := NewHS256([]byte("one"), Options{}).Issue("a@x.com")
	require.NoError(t, err)

	_, err = NewHS256([]byte("two"), Options{}).Verify(tok)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestVerify_Malformed(t *testing.T) {
	_, err := NewHS256([]byte("secret"), Options{}).Verify("not-a-token")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestVerify_RejectsNoneAlgorithm(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "a@x.com",
		Audience:  jwt.ClaimStrings{audienceSession},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewHS256([]byte("secret"), Options{}).Verify(tok)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestRegistrationTicket_NotASession(t *testing.T) {
	p := NewHS256([]byte("secret"), Options{})

	ticket, err := p.IssueRegistration("new@x.com")
	require.NoError(t, err)

	email, err := p.VerifyRegistration(ticket)
	require.NoError(t, err)
	assert.Equal(t, "new@x.com", email)

	_, err = p.Verify(ticket)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	session, err := p.Issue("new@x.com")
	require.NoError(t, err)
	_, err = p.VerifyRegistration(session)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func writeRSAKeys(t *testing.T) (privPath, pubPath string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	dir := t.TempDir()

	privPath = filepath.Join(dir, "private.pem")
	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	require.NoError(t, os.WriteFile(privPath, privPEM, 0o600))

	pubBytes, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPath = filepath.Join(dir, "public.pem")
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0o644))
	return privPath, pubPath
}

func TestNewProvider_RS256FromFiles(t *testing.T) {
	priv, pub := writeRSAKeys(t)
	cfg := &config.Config{
		Algorithm:         "RS256",
		JWTPrivateKeyPath: priv,
		JWTPublicKeyPath:  pub,
		JWTExpiry:         time.Hour,
	}
	p, err := NewProvider(cfg)
	require.NoError(t, err)

	tok, err := p.Issue("a@x.com")
	require.NoError(t, err)
	c, err := p.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", c.Email())

	_, err = NewHS256([]byte("secret"), Options{}).Verify(tok)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestNewProvider_MissingKeyFile(t *testing.T) {
	_, err := NewProvider(&config.Config{Algorithm: "RS256", JWTPrivateKeyPath: "/nonexistent.pem"})
	assert.Error(t, err)
}

func TestNewProvider_HS256RequiresSecretInProduction(t *testing.T) {
	_, err := NewProvider(&config.Config{Algorithm: "HS256", AppEnv: "production"})
	assert.Error(t, err)

	p, err := NewProvider(&config.Config{Algorithm: "HS256", AppEnv: "development"})
	require.NoError(t, err)
	tok, err := p.Issue("a@x.com")
	require.NoError(t, err)
	_, err = p.Verify(tok)
	assert.NoError(t, err)
}
