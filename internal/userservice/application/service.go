package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/correlation"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/outbox"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/userservice/domain"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/userservice/ports"
)

type Config struct {
	TokenTTL             time.Duration
	DefaultRole          string
	FailedLoginThreshold int
	LockoutDuration      time.Duration
}

type Service struct {
	cfg         Config
	users       ports.UserRepository
	lockouts    ports.LockoutStore
	revocations ports.TokenRevocationStore
	hasher      ports.PasswordHasher
	signer      ports.TokenSigner
	nowFn       func() time.Time
}

type Dependencies struct {
	Config      Config
	Users       ports.UserRepository
	Lockouts    ports.LockoutStore
	Revocations ports.TokenRevocationStore
	Hasher      ports.PasswordHasher
	Signer      ports.TokenSigner
}

func NewService(deps Dependencies) *Service {
	return &Service{
		cfg:         deps.Config,
		users:       deps.Users,
		lockouts:    deps.Lockouts,
		revocations: deps.Revocations,
		hasher:      deps.Hasher,
		signer:      deps.Signer,
		nowFn:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (UserView, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return UserView{}, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return UserView{}, err
	}
	if err := domain.ValidatePassword(req.Password); err != nil {
		return UserView{}, err
	}

	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		role = s.cfg.DefaultRole
	}
	if !domain.ValidRole(role) {
		return UserView{}, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return UserView{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.nowFn()
	payload, _ := json.Marshal(map[string]any{
		"email":         email,
		"role":          role,
		"registered_at": now,
	})
	user, err := s.users.CreateWithOutboxTx(ctx, ports.CreateUserTxParams{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		RegisteredAt: now,
	}, outbox.Event{
		EventID:      uuid.New(),
		EventType:    "user.registered",
		PartitionKey: email,
		Payload:      payload,
		OccurredAt:   now,
	})
	if err != nil {
		return UserView{}, err
	}
	return toUserView(user), nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return LoginResponse{}, domain.ErrInvalidCredentials
	}

	lockKey := "login:" + email
	state, err := s.lockouts.Get(ctx, lockKey)
	if err == nil && state.LockedUntil != nil && state.LockedUntil.After(s.nowFn()) {
		return LoginResponse{}, domain.ErrAccountLocked
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		s.logAuth(ctx, "login", "user_not_found", email)
		return LoginResponse{}, domain.ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		s.logAuth(ctx, "login", "invalid_password", email)
		_, _ = s.lockouts.RecordFailure(ctx, lockKey, s.nowFn(), s.cfg.FailedLoginThreshold, s.cfg.LockoutDuration)
		return LoginResponse{}, domain.ErrInvalidCredentials
	}
	_ = s.lockouts.Clear(ctx, lockKey)

	now := s.nowFn()
	token, err := s.signer.Sign(ports.TokenClaims{
		TokenID:   uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.cfg.TokenTTL),
	})
	if err != nil {
		return LoginResponse{}, fmt.Errorf("sign token: %w", err)
	}

	return LoginResponse{
		Token:     token,
		ExpiresIn: int64(s.cfg.TokenTTL.Seconds()),
		User:      toUserView(user),
	}, nil
}

// Logout revokes the presented token until its natural expiry. An already
// invalid token is still an unauthorized outcome, not a silent success.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.validateClaims(ctx, token)
	if err != nil {
		return err
	}
	return s.revocations.MarkRevoked(ctx, claims.TokenID, claims.ExpiresAt)
}

// ValidateToken resolves a bearer token to its user. This is the identity
// verification path behind GET /api/user that downstream services depend on.
func (s *Service) ValidateToken(ctx context.Context, token string) (domain.User, error) {
	claims, err := s.validateClaims(ctx, token)
	if err != nil {
		return domain.User{}, err
	}
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return domain.User{}, domain.ErrUnauthorized
	}
	return user, nil
}

func (s *Service) validateClaims(ctx context.Context, token string) (ports.TokenClaims, error) {
	if strings.TrimSpace(token) == "" {
		return ports.TokenClaims{}, domain.ErrUnauthorized
	}
	claims, err := s.signer.ParseAndValidate(token)
	if err != nil {
		return ports.TokenClaims{}, domain.ErrUnauthorized
	}
	if revoked, _ := s.revocations.IsRevoked(ctx, claims.TokenID); revoked {
		return ports.TokenClaims{}, domain.ErrTokenRevoked
	}
	return claims, nil
}

func (s *Service) GetProfile(ctx context.Context, token string) (UserView, error) {
	user, err := s.ValidateToken(ctx, token)
	if err != nil {
		return UserView{}, err
	}
	return toUserView(user), nil
}

func (s *Service) UpdateProfile(ctx context.Context, token string, req ProfileUpdateRequest) (UserView, error) {
	user, err := s.ValidateToken(ctx, token)
	if err != nil {
		return UserView{}, err
	}
	update, err := s.buildUpdate(req.Name, req.Email, req.Password, nil)
	if err != nil {
		return UserView{}, err
	}
	updated, err := s.users.Update(ctx, user.ID, update, s.nowFn())
	if err != nil {
		return UserView{}, err
	}
	return toUserView(updated), nil
}

func (s *Service) ListUsers(ctx context.Context, token string, q ListUsersQuery) (UserList, error) {
	if err := s.requireAdmin(ctx, token); err != nil {
		return UserList{}, err
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage <= 0 || q.PerPage > 100 {
		q.PerPage = 15
	}
	users, total, err := s.users.List(ctx, q.PerPage, (q.Page-1)*q.PerPage)
	if err != nil {
		return UserList{}, err
	}

	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, toUserView(u))
	}
	return UserList{
		Users: views,
		Meta: PageMeta{
			Page:       q.Page,
			PerPage:    q.PerPage,
			Total:      total,
			TotalPages: totalPages(total, q.PerPage),
		},
	}, nil
}

func (s *Service) GetUser(ctx context.Context, token string, userID uuid.UUID) (UserView, error) {
	if err := s.requireAdmin(ctx, token); err != nil {
		return UserView{}, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return UserView{}, err
	}
	return toUserView(user), nil
}

func (s *Service) UpdateUser(ctx context.Context, token string, userID uuid.UUID, req UserUpdateRequest) (UserView, error) {
	if err := s.requireAdmin(ctx, token); err != nil {
		return UserView{}, err
	}
	update, err := s.buildUpdate(req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		return UserView{}, err
	}
	updated, err := s.users.Update(ctx, userID, update, s.nowFn())
	if err != nil {
		return UserView{}, err
	}
	return toUserView(updated), nil
}

func (s *Service) DeleteUser(ctx context.Context, token string, userID uuid.UUID) error {
	if err := s.requireAdmin(ctx, token); err != nil {
		return err
	}
	return s.users.Delete(ctx, userID)
}

func (s *Service) requireAdmin(ctx context.Context, token string) error {
	user, err := s.ValidateToken(ctx, token)
	if err != nil {
		return err
	}
	if user.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	return nil
}

func (s *Service) buildUpdate(name, email, password, role *string) (ports.UserUpdate, error) {
	var update ports.UserUpdate
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return ports.UserUpdate{}, fmt.Errorf("%w: name must not be empty", domain.ErrInvalidInput)
		}
		update.Name = &trimmed
	}
	if email != nil {
		normalized, err := normalizeEmail(*email)
		if err != nil {
			return ports.UserUpdate{}, err
		}
		update.Email = &normalized
	}
	if password != nil {
		if err := domain.ValidatePassword(*password); err != nil {
			return ports.UserUpdate{}, err
		}
		hash, err := s.hasher.Hash(*password)
		if err != nil {
			return ports.UserUpdate{}, fmt.Errorf("hash password: %w", err)
		}
		update.PasswordHash = &hash
	}
	if role != nil {
		normalized := strings.ToLower(strings.TrimSpace(*role))
		if !domain.ValidRole(normalized) {
			return ports.UserUpdate{}, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, normalized)
		}
		update.Role = &normalized
	}
	return update, nil
}

func (s *Service) logAuth(ctx context.Context, operation, outcome, email string) {
	slog.WarnContext(ctx, "authentication event",
		"service", "user-service",
		"layer", "application",
		"operation", operation,
		"outcome", outcome,
		"email", email,
		"correlation_id", correlation.FromContext(ctx),
	)
}

func toUserView(user domain.User) UserView {
	return UserView{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

func totalPages(total int64, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	pages := int(total) / perPage
	if int(total)%perPage != 0 {
		pages++
	}
	return pages
}

func normalizeEmail(email string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if trimmed == "" {
		return "", fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(trimmed); err != nil {
		return "", fmt.Errorf("%w: invalid email", domain.ErrInvalidInput)
	}
	return trimmed, nil
}
