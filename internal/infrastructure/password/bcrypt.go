package password

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/acquisitions/acquisitions-api/internal/infrastructure/queue"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 10

// Hasher implements ports.PasswordHasher with bcrypt. Hashing and comparison
// run on the dispatcher's workers.
type Hasher struct {
	pool *queue.Dispatcher
	cost int
}

func NewHasher(pool *queue.Dispatcher, cost int) (*Hasher, error) {
	if cost == 0 {
		cost = DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &Hasher{pool: pool, cost: cost}, nil
}

func (h *Hasher) Hash(ctx context.Context, password string) (string, error) {
	var (
		out []byte
		err error
	)
	if perr := h.pool.Do(ctx, func() {
		out, err = bcrypt.GenerateFromPassword([]byte(password), h.cost)
	}); perr != nil {
		return "", perr
	}
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(out), nil
}

// Compare reports whether password matches hash. A mismatch is not an error.
func (h *Hasher) Compare(ctx context.Context, hash, password string) (bool, error) {
	var err error
	if perr := h.pool.Do(ctx, func() {
		err = bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	}); perr != nil {
		return false, perr
	}
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("bcrypt: %w", err)
	}
}
