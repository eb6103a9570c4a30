// Package security holds the credential hasher.
package security

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tokobaju/storefront/internal/core/domain"
	"github.com/tokobaju/storefront/internal/infrastructure/queue"
	"github.com/tokobaju/storefront/internal/pkg/metrics"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 12

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// encodedSaltAndHashLen is the length of the salt and checksum part of a
// bcrypt digest.
const encodedSaltAndHashLen = 53

// BcryptHasher implements ports.PasswordHasher. When a pool is set, the
// bcrypt work runs on it instead of the calling goroutine.
type BcryptHasher struct {
	cost  int
	pool  *queue.Pool
	dummy string
}

// NewBcryptHasher returns a hasher with the given cost. Out-of-range costs
// fall back to DefaultCost. pool may be nil.
func NewBcryptHasher(cost int, pool *queue.Pool) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &BcryptHasher{
		cost: cost,
		pool: pool,
		// Zero salt and zero checksum: parses at cost, matches no password.
		dummy: fmt.Sprintf("$2a$%02d$%s", cost, strings.Repeat(".", encodedSaltAndHashLen)),
	}
}

// Hash returns a salted bcrypt digest of plaintext.
func (h *BcryptHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	start := time.Now()
	defer func() { metrics.PasswordHashDuration.WithLabelValues("hash").Observe(time.Since(start).Seconds()) }()

	var (
		digest []byte
		err    error
	)
	runErr := h.run(ctx, func() {
		digest, err = bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	})
	if runErr != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrHashing, runErr)
	}
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: password must be at most %d bytes", domain.ErrValidation, MaxPasswordBytes)
		}
		return "", fmt.Errorf("%w: %v", domain.ErrHashing, err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. Malformed digests and
// cancelled contexts yield false.
func (h *BcryptHasher) Verify(ctx context.Context, plaintext, digest string) bool {
	start := time.Now()
	defer func() { metrics.PasswordHashDuration.WithLabelValues("verify").Observe(time.Since(start).Seconds()) }()

	var err error
	if runErr := h.run(ctx, func() {
		err = bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	}); runErr != nil {
		return false
	}
	return err == nil
}

// DummyDigest returns a well-formed digest at the configured cost that no
// password matches. Verifying against it costs as much as a real digest.
func (h *BcryptHasher) DummyDigest() string {
	return h.dummy
}

// Cost returns the configured work factor.
func (h *BcryptHasher) Cost() int {
	return h.cost
}

func (h *BcryptHasher) run(ctx context.Context, fn func()) error {
	if h.pool == nil {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn()
		return nil
	}
	metrics.HashQueueDepth.Set(float64(h.pool.Pending()))
	return h.pool.Do(ctx, fn)
}
