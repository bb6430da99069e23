package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"clubstore/internal/domain"
	tokenrepo "clubstore/internal/repository/token"
)

type memoryUserRepo struct {
	byEmail map[string]domain.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{byEmail: make(map[string]domain.User)}
}

func (r *memoryUserRepo) Create(_ context.Context, u domain.User) (*domain.User, error) {
	email := strings.ToLower(u.Email)
	if _, exists := r.byEmail[email]; exists {
		return nil, domain.ErrAlreadyExists
	}
	clone := u
	clone.Email = email
	if clone.ID == "" {
		clone.ID = "user-" + email
	}
	r.byEmail[email] = clone
	return &clone, nil
}

func (r *memoryUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r *memoryUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			clone := u
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memoryUserRepo) SetRole(_ context.Context, id, role string) error {
	for email, u := range r.byEmail {
		if u.ID == id {
			u.Role = role
			r.byEmail[email] = u
			return nil
		}
	}
	return domain.ErrNotFound
}

type memoryTokenRepo struct {
	tokens map[string]tokenrepo.Token
}

func newMemoryTokenRepo() *memoryTokenRepo {
	return &memoryTokenRepo{tokens: make(map[string]tokenrepo.Token)}
}

func (r *memoryTokenRepo) Create(_ context.Context, t tokenrepo.Token) error {
	if _, exists := r.tokens[t.Token]; exists {
		return domain.ErrAlreadyExists
	}
	r.tokens[t.Token] = t
	return nil
}

func (r *memoryTokenRepo) Get(_ context.Context, token string) (*tokenrepo.Token, error) {
	t, ok := r.tokens[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (r *memoryTokenRepo) Delete(_ context.Context, token string) error {
	if _, ok := r.tokens[token]; !ok {
		return domain.ErrNotFound
	}
	delete(r.tokens, token)
	return nil
}

func (r *memoryTokenRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for k, t := range r.tokens {
		if !now.Before(t.ExpiresAt) {
			delete(r.tokens, k)
			n++
		}
	}
	return n, nil
}

func TestSignupValidatesPassword(t *testing.T) {
	svc := New(newMemoryUserRepo(), newMemoryTokenRepo(), nil)
	cases := []string{"short1A", "alllowercase1", "ALLUPPERCASE1", "NoDigitsHere"}
	for _, pw := range cases {
		_, err := svc.Signup(context.Background(), SignupInput{Email: "fan@example.com", Password: pw})
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("password %q: expected validation error, got %v", pw, err)
		}
	}
}

func TestSignupRequiresEmail(t *testing.T) {
	svc := New(newMemoryUserRepo(), newMemoryTokenRepo(), nil)
	if _, err := svc.Signup(context.Background(), SignupInput{Email: "  ", Password: "Passw0rdX"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSignupLoginMeLogout(t *testing.T) {
	ctx := context.Background()
	tokens := newMemoryTokenRepo()
	svc := New(newMemoryUserRepo(), tokens, nil)

	u, err := svc.Signup(ctx, SignupInput{Email: "Fan@Example.com", Password: "Passw0rdX", DisplayName: "Fan"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if u.Email != "fan@example.com" || u.Role != domain.RoleCustomer {
		t.Fatalf("unexpected user %+v", u)
	}
	if u.PasswordHash == "Passw0rdX" {
		t.Fatalf("password stored in clear text")
	}

	if _, _, err := svc.Login(ctx, "fan@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "Passw0rdX"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown user, got %v", err)
	}

	logged, token, err := svc.Login(ctx, "fan@example.com", "Passw0rdX")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" || logged.ID != u.ID {
		t.Fatalf("unexpected login result user=%+v token=%q", logged, token)
	}

	me, err := svc.Me(ctx, token)
	if err != nil || me.ID != u.ID {
		t.Fatalf("Me: %v %+v", err, me)
	}

	if err := svc.Logout(ctx, token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if err := svc.Logout(ctx, token); err != nil {
		t.Fatalf("second logout should be a no-op, got %v", err)
	}
	if _, err := svc.Me(ctx, token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token after logout, got %v", err)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc := New(newMemoryUserRepo(), newMemoryTokenRepo(), nil)
	in := SignupInput{Email: "fan@example.com", Password: "Passw0rdX"}
	if _, err := svc.Signup(context.Background(), in); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := svc.Signup(context.Background(), in); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestExpiredTokenIsRejectedAndDeleted(t *testing.T) {
	ctx := context.Background()
	tokens := newMemoryTokenRepo()
	users := newMemoryUserRepo()
	svc := New(users, tokens, nil)
	u, _ := users.Create(ctx, domain.User{Email: "fan@example.com"})

	tokens.tokens["stale"] = tokenrepo.Token{Token: "stale", UserID: u.ID, ExpiresAt: time.Now().Add(-time.Minute)}
	if _, err := svc.Me(ctx, "stale"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
	if _, ok := tokens.tokens["stale"]; ok {
		t.Fatalf("expired token should be deleted")
	}
}

type collidingTokenRepo struct {
	*memoryTokenRepo
	failures int
}

func (r *collidingTokenRepo) Create(ctx context.Context, t tokenrepo.Token) error {
	if r.failures > 0 {
		r.failures--
		return domain.ErrAlreadyExists
	}
	return r.memoryTokenRepo.Create(ctx, t)
}

func TestIssueRetriesOnCollision(t *testing.T) {
	repo := &collidingTokenRepo{memoryTokenRepo: newMemoryTokenRepo(), failures: 2}
	m := newTokenManager(repo)
	token, err := m.Issue(context.Background(), "u1", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, ok := repo.tokens[token]; !ok {
		t.Fatalf("token not stored")
	}

	repo.failures = issueAttempts
	if _, err := m.Issue(context.Background(), "u1", time.Hour); err == nil {
		t.Fatalf("expected collision error after exhausting attempts")
	}
}
