package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/platform/outbox"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/userservice/domain"
	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/userservice/ports"
)

type fakeUserRepo struct {
	byEmail      map[string]domain.User
	byID         map[uuid.UUID]domain.User
	createdEvent *outbox.Event
	updates      []ports.UserUpdate
	deleted      []uuid.UUID
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail: make(map[string]domain.User),
		byID:    make(map[uuid.UUID]domain.User),
	}
}

func (r *fakeUserRepo) add(user domain.User) {
	r.byEmail[user.Email] = user
	r.byID[user.ID] = user
}

func (r *fakeUserRepo) CreateWithOutboxTx(_ context.Context, params ports.CreateUserTxParams, event outbox.Event) (domain.User, error) {
	if _, exists := r.byEmail[params.Email]; exists {
		return domain.User{}, domain.ErrEmailTaken
	}
	user := domain.User{
		ID:           uuid.New(),
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		Role:         params.Role,
		CreatedAt:    params.RegisteredAt,
	}
	r.add(user)
	r.createdEvent = &event
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	user, ok := r.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, userID uuid.UUID) (domain.User, error) {
	user, ok := r.byID[userID]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) List(_ context.Context, limit, offset int) ([]domain.User, int64, error) {
	var users []domain.User
	for _, u := range r.byID {
		users = append(users, u)
	}
	total := int64(len(users))
	if offset >= len(users) {
		return nil, total, nil
	}
	users = users[offset:]
	if limit < len(users) {
		users = users[:limit]
	}
	return users, total, nil
}

func (r *fakeUserRepo) Update(_ context.Context, userID uuid.UUID, update ports.UserUpdate, _ time.Time) (domain.User, error) {
	user, ok := r.byID[userID]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	r.updates = append(r.updates, update)
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Email != nil {
		delete(r.byEmail, user.Email)
		user.Email = *update.Email
	}
	if update.PasswordHash != nil {
		user.PasswordHash = *update.PasswordHash
	}
	if update.Role != nil {
		user.Role = *update.Role
	}
	r.add(user)
	return user, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, userID uuid.UUID) error {
	if _, ok := r.byID[userID]; !ok {
		return domain.ErrNotFound
	}
	r.deleted = append(r.deleted, userID)
	delete(r.byID, userID)
	return nil
}

type fakeLockouts struct {
	states  map[string]ports.LockoutState
	cleared []string
}

func newFakeLockouts() *fakeLockouts {
	return &fakeLockouts{states: make(map[string]ports.LockoutState)}
}

func (l *fakeLockouts) Get(_ context.Context, key string) (ports.LockoutState, error) {
	return l.states[key], nil
}

func (l *fakeLockouts) RecordFailure(_ context.Context, key string, at time.Time, threshold int, lockFor time.Duration) (ports.LockoutState, error) {
	state := l.states[key]
	state.Failures++
	if state.Failures >= threshold {
		until := at.Add(lockFor)
		state.LockedUntil = &until
	}
	l.states[key] = state
	return state, nil
}

func (l *fakeLockouts) Clear(_ context.Context, key string) error {
	l.cleared = append(l.cleared, key)
	delete(l.states, key)
	return nil
}

type fakeRevocations struct {
	revoked map[string]time.Time
}

func newFakeRevocations() *fakeRevocations {
	return &fakeRevocations{revoked: make(map[string]time.Time)}
}

func (r *fakeRevocations) MarkRevoked(_ context.Context, tokenID string, until time.Time) error {
	r.revoked[tokenID] = until
	return nil
}

func (r *fakeRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	_, ok := r.revoked[tokenID]
	return ok, nil
}

// plainHasher prefixes instead of hashing so tests can assert on stored
// values without bcrypt cost.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeSigner issues tokens of the form "tok:<tokenID>" and keeps a claims
// table for parsing.
type fakeSigner struct {
	claims map[string]ports.TokenClaims
}

func newFakeSigner() *fakeSigner {
	return &fakeSigner{claims: make(map[string]ports.TokenClaims)}
}

func (s *fakeSigner) Sign(claims ports.TokenClaims) (string, error) {
	token := "tok:" + claims.TokenID
	s.claims[token] = claims
	return token, nil
}

func (s *fakeSigner) ParseAndValidate(token string) (ports.TokenClaims, error) {
	claims, ok := s.claims[token]
	if !ok {
		return ports.TokenClaims{}, errors.New("unknown token")
	}
	return claims, nil
}

type fixture struct {
	service     *Service
	repo        *fakeUserRepo
	lockouts    *fakeLockouts
	revocations *fakeRevocations
	signer      *fakeSigner
	now         time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:        newFakeUserRepo(),
		lockouts:    newFakeLockouts(),
		revocations: newFakeRevocations(),
		signer:      newFakeSigner(),
		now:         time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	f.service = NewService(Dependencies{
		Config: Config{
			TokenTTL:             24 * time.Hour,
			DefaultRole:          domain.RoleP3M,
			FailedLoginThreshold: 3,
			LockoutDuration:      15 * time.Minute,
		},
		Users:       f.repo,
		Lockouts:    f.lockouts,
		Revocations: f.revocations,
		Hasher:      plainHasher{},
		Signer:      f.signer,
	})
	f.service.nowFn = func() time.Time { return f.now }
	return f
}

func (f *fixture) register(t *testing.T, name, email, role string) UserView {
	t.Helper()
	view, err := f.service.Register(context.Background(), RegisterRequest{
		Name:     name,
		Email:    email,
		Password: "password123",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return view
}

func (f *fixture) login(t *testing.T, email string) LoginResponse {
	t.Helper()
	resp, err := f.service.Login(context.Background(), LoginRequest{Email: email, Password: "password123"})
	if err != nil {
		t.Fatalf("login %s: %v", email, err)
	}
	return resp
}

func TestRegisterDefaultsRoleAndEnqueuesEvent(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	view := f.register(t, "Chantika", "Chantika@Example.Com ", "")

	if view.Role != domain.RoleP3M {
		t.Fatalf("role = %q, want default p3m", view.Role)
	}
	if view.Email != "chantika@example.com" {
		t.Fatalf("email = %q, want normalized lowercase", view.Email)
	}
	if f.repo.createdEvent == nil || f.repo.createdEvent.EventType != "user.registered" {
		t.Fatalf("outbox event = %+v, want user.registered", f.repo.createdEvent)
	}
	if f.repo.createdEvent.PartitionKey != "chantika@example.com" {
		t.Fatalf("partition key = %q", f.repo.createdEvent.PartitionKey)
	}
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		req  RegisterRequest
	}{
		{"empty name", RegisterRequest{Email: "a@example.com", Password: "password123"}},
		{"missing email", RegisterRequest{Name: "A", Password: "password123"}},
		{"malformed email", RegisterRequest{Name: "A", Email: "not-an-email", Password: "password123"}},
		{"short password", RegisterRequest{Name: "A", Email: "a@example.com", Password: "a1"}},
		{"digitless password", RegisterRequest{Name: "A", Email: "a@example.com", Password: "passwordonly"}},
		{"unknown role", RegisterRequest{Name: "A", Email: "a@example.com", Password: "password123", Role: "superuser"}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			if _, err := f.service.Register(context.Background(), tc.req); !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.register(t, "A", "a@example.com", "")
	_, err := f.service.Register(context.Background(), RegisterRequest{
		Name: "B", Email: "a@example.com", Password: "password123",
	})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}

func TestLoginIssuesToken(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.register(t, "A", "a@example.com", "")
	resp := f.login(t, "a@example.com")

	if resp.Token == "" {
		t.Fatal("empty token")
	}
	if resp.ExpiresIn != int64((24 * time.Hour).Seconds()) {
		t.Fatalf("expires_in = %d", resp.ExpiresIn)
	}
	claims := f.signer.claims[resp.Token]
	if claims.Email != "a@example.com" || claims.Role != domain.RoleP3M {
		t.Fatalf("claims = %+v", claims)
	}
	if !claims.ExpiresAt.Equal(f.now.Add(24 * time.Hour)) {
		t.Fatalf("expiry = %v", claims.ExpiresAt)
	}
	if len(f.lockouts.cleared) == 0 {
		t.Fatal("lockout state not cleared on success")
	}
}

func TestLoginWrongPasswordAndUnknownUserLookAlike(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.register(t, "A", "a@example.com", "")

	_, errWrong := f.service.Login(context.Background(), LoginRequest{Email: "a@example.com", Password: "wrongpass1"})
	_, errUnknown := f.service.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "password123"})

	if !errors.Is(errWrong, domain.ErrInvalidCredentials) || !errors.Is(errUnknown, domain.ErrInvalidCredentials) {
		t.Fatalf("errs = %v / %v, want both ErrInvalidCredentials", errWrong, errUnknown)
	}
}

func TestLoginLocksAfterThreshold(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.register(t, "A", "a@example.com", "")

	for i := 0; i < 3; i++ {
		if _, err := f.service.Login(context.Background(), LoginRequest{Email: "a@example.com", Password: "wrongpass1"}); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: %v", i, err)
		}
	}

	_, err := f.service.Login(context.Background(), LoginRequest{Email: "a@example.com", Password: "password123"})
	if !errors.Is(err, domain.ErrAccountLocked) {
		t.Fatalf("err = %v, want ErrAccountLocked", err)
	}

	// Lock expires after the configured duration.
	f.now = f.now.Add(16 * time.Minute)
	if _, err := f.service.Login(context.Background(), LoginRequest{Email: "a@example.com", Password: "password123"}); err != nil {
		t.Fatalf("login after lock expiry: %v", err)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.register(t, "A", "a@example.com", "")
	resp := f.login(t, "a@example.com")

	if err := f.service.Logout(context.Background(), resp.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := f.service.ValidateToken(context.Background(), resp.Token); !errors.Is(err, domain.ErrTokenRevoked) {
		t.Fatalf("err = %v, want ErrTokenRevoked", err)
	}

	claims := f.signer.claims[resp.Token]
	until, ok := f.revocations.revoked[claims.TokenID]
	if !ok || !until.Equal(claims.ExpiresAt) {
		t.Fatalf("revocation until = %v ok=%v, want token expiry %v", until, ok, claims.ExpiresAt)
	}
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.register(t, "A", "a@example.com", "")
	resp := f.login(t, "a@example.com")

	user, err := f.service.ValidateToken(context.Background(), resp.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if user.Email != "a@example.com" {
		t.Fatalf("user = %+v", user)
	}

	if _, err := f.service.ValidateToken(context.Background(), ""); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("empty token err = %v", err)
	}
	if _, err := f.service.ValidateToken(context.Background(), "tok:forged"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("forged token err = %v", err)
	}
}

func TestValidateTokenForDeletedUser(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	view := f.register(t, "A", "a@example.com", "")
	resp := f.login(t, "a@example.com")

	userID := uuid.MustParse(view.ID)
	delete(f.repo.byID, userID)

	if _, err := f.service.ValidateToken(context.Background(), resp.Token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestUpdateProfileHashesNewPassword(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.register(t, "A", "a@example.com", "")
	resp := f.login(t, "a@example.com")

	newName := "Renamed"
	newPassword := "newsecret9"
	view, err := f.service.UpdateProfile(context.Background(), resp.Token, ProfileUpdateRequest{
		Name:     &newName,
		Password: &newPassword,
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if view.Name != "Renamed" {
		t.Fatalf("name = %q", view.Name)
	}
	if len(f.repo.updates) != 1 || f.repo.updates[0].PasswordHash == nil {
		t.Fatal("password hash not part of update")
	}
	if !strings.HasPrefix(*f.repo.updates[0].PasswordHash, "hashed:") {
		t.Fatal("password stored without hashing")
	}
}

func TestAdminEndpointsRequireAdminRole(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.register(t, "Member", "member@example.com", domain.RoleP3M)
	admin := f.register(t, "Admin", "admin@example.com", domain.RoleAdmin)
	memberToken := f.login(t, "member@example.com").Token
	adminToken := f.login(t, "admin@example.com").Token

	if _, err := f.service.ListUsers(context.Background(), memberToken, ListUsersQuery{}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("member list err = %v, want ErrForbidden", err)
	}
	if err := f.service.DeleteUser(context.Background(), memberToken, uuid.MustParse(admin.ID)); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("member delete err = %v, want ErrForbidden", err)
	}

	list, err := f.service.ListUsers(context.Background(), adminToken, ListUsersQuery{Page: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if list.Meta.Total != 2 || list.Meta.TotalPages != 1 {
		t.Fatalf("meta = %+v", list.Meta)
	}
}

func TestAdminUpdateUserRole(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	member := f.register(t, "Member", "member@example.com", domain.RoleP3M)
	f.register(t, "Admin", "admin@example.com", domain.RoleAdmin)
	adminToken := f.login(t, "admin@example.com").Token

	role := "ADMIN"
	view, err := f.service.UpdateUser(context.Background(), adminToken, uuid.MustParse(member.ID), UserUpdateRequest{Role: &role})
	if err != nil {
		t.Fatalf("update user: %v", err)
	}
	if view.Role != domain.RoleAdmin {
		t.Fatalf("role = %q, want admin (normalized)", view.Role)
	}

	bad := "owner"
	if _, err := f.service.UpdateUser(context.Background(), adminToken, uuid.MustParse(member.ID), UserUpdateRequest{Role: &bad}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestTotalPages(t *testing.T) {
	t.Parallel()

	cases := []struct {
		total   int64
		perPage int
		want    int
	}{
		{0, 15, 0},
		{1, 15, 1},
		{15, 15, 1},
		{16, 15, 2},
		{31, 10, 4},
	}
	for _, tc := range cases {
		if got := totalPages(tc.total, tc.perPage); got != tc.want {
			t.Fatalf("totalPages(%d, %d) = %d, want %d", tc.total, tc.perPage, got, tc.want)
		}
	}
}
