package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/outbox"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/userservice/domain"
)

// CreateUserTxParams captures atomic user-creation inputs. The outbox event
// rides the same transaction so registration is durable and replay-safe.
type CreateUserTxParams struct {
	Name         string
	Email        string
	PasswordHash string
	Role         string
	RegisteredAt time.Time
}

type UserUpdate struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Role         *string
}

// UserRepository defines persistence operations for user identities.
type UserRepository interface {
	CreateWithOutboxTx(ctx context.Context, params CreateUserTxParams, event outbox.Event) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (domain.User, error)
	List(ctx context.Context, limit, offset int) ([]domain.User, int64, error)
	Update(ctx context.Context, userID uuid.UUID, update UserUpdate, updatedAt time.Time) (domain.User, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}

// LockoutState tracks consecutive failed logins for one email.
type LockoutState struct {
	Failures    int
	LockedUntil *time.Time
}

// LockoutStore bounds credential-stuffing and, because downstream gateways
// re-verify unknown tokens remotely, also bounds the verification
// amplification a sustained invalid-token stream could cause.
type LockoutStore interface {
	Get(ctx context.Context, key string) (LockoutState, error)
	RecordFailure(ctx context.Context, key string, at time.Time, threshold int, lockFor time.Duration) (LockoutState, error)
	Clear(ctx context.Context, key string) error
}

// TokenRevocationStore remembers logged-out token ids until their natural
// expiry, so a revoked bearer token stops validating immediately.
type TokenRevocationStore interface {
	MarkRevoked(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenClaims is the identity payload carried by an issued bearer token.
type TokenClaims struct {
	TokenID   string
	UserID    uuid.UUID
	Email     string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type TokenSigner interface {
	Sign(claims TokenClaims) (string, error)
	ParseAndValidate(token string) (TokenClaims, error)
}
