package password

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"

	passwordvalidator "github.com/wagslane/go-password-validator"
	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCharset is the alphabet generated passwords are drawn from.
	DefaultCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	// DefaultMinEntropyBits is the entropy floor for generated passwords.
	DefaultMinEntropyBits = 60
)

// ErrInvalidLength is returned when a non-positive length is requested.
var ErrInvalidLength = errors.New("password length must be positive")

// Generator produces cleartext passwords.
type Generator interface {
	Generate(length int) (string, error)
}

// CryptoGenerator draws passwords uniformly from a charset using a
// cryptographically secure random source.
type CryptoGenerator struct {
	charset        string
	minEntropyBits float64
	random         io.Reader
}

// Option configures a CryptoGenerator.
type Option func(*CryptoGenerator)

// WithCharset overrides DefaultCharset.
func WithCharset(charset string) Option {
	return func(g *CryptoGenerator) { g.charset = charset }
}

// WithRandom overrides crypto/rand as the random source.
func WithRandom(r io.Reader) Option {
	return func(g *CryptoGenerator) { g.random = r }
}

// NewGenerator creates a CryptoGenerator rejecting passwords below
// minEntropyBits. Zero disables the entropy check.
func NewGenerator(minEntropyBits float64, opts ...Option) *CryptoGenerator {
	g := &CryptoGenerator{
		charset:        DefaultCharset,
		minEntropyBits: minEntropyBits,
		random:         rand.Reader,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a random password of the given length.
func (g *CryptoGenerator) Generate(length int) (string, error) {
	if length <= 0 {
		return "", ErrInvalidLength
	}

	base := big.NewInt(int64(len(g.charset)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(g.random, base)
		if err != nil {
			return "", fmt.Errorf("failed to read random source: %w", err)
		}
		buf[i] = g.charset[n.Int64()]
	}

	pass := string(buf)
	if g.minEntropyBits > 0 {
		if err := passwordvalidator.Validate(pass, g.minEntropyBits); err != nil {
			return "", fmt.Errorf("generated password too weak: %w", err)
		}
	}

	return pass, nil
}

// MaxEntropyBits returns the entropy of a password of the given length
// drawn uniformly from charset. An entropy floor above this value can
// never be met.
func MaxEntropyBits(length int, charset string) float64 {
	if length <= 0 || len(charset) < 2 {
		return 0
	}
	return float64(length) * math.Log2(float64(len(charset)))
}

// Hash derives the bcrypt hash of cleartext.
func Hash(cleartext string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(cleartext), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether cleartext matches hash.
func Verify(hash, cleartext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(cleartext)) == nil
}
