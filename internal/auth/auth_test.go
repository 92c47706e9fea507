package auth_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/notekeeper/internal/auth"
	"github.com/kbukum/notekeeper/internal/auth/password"
	"github.com/kbukum/notekeeper/internal/logger"
	"github.com/kbukum/notekeeper/internal/token"
	"github.com/kbukum/notekeeper/internal/user"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSecret = "test-secret"

// fakeUserRepo is an in-memory user.Repository.
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*user.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return user.ErrUsernameTaken
		}
	}
	r.nextID++
	u.ID = r.nextID
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) ByID(_ context.Context, id uint) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) ByUsername(_ context.Context, username string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *fakeUserRepo) delete(id uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
}

// rig bundles everything a handler test needs.
type rig struct {
	engine *gin.Engine
	users  *fakeUserRepo
	tokens *token.Service
	hasher password.Hasher
}

func newRig(t *testing.T) *rig {
	t.Helper()

	tokens, err := token.NewService(token.Config{Secret: testSecret})
	if err != nil {
		t.Fatalf("token.NewService: %v", err)
	}

	users := newFakeUserRepo()
	// Low cost keeps the tests fast.
	hasher := password.NewBcryptHasher(4)
	log := logger.NewDefault("test")

	authn := auth.NewAuthenticator(tokens, users, log)
	handler := auth.NewHandler(users, tokens, hasher, log)

	engine := gin.New()
	engine.Use(authn.Middleware())
	engine.POST("/login", handler.Login)
	engine.POST("/refresh", handler.Refresh)
	engine.POST("/logout", handler.Logout)
	engine.POST("/register", handler.RegisterUser)
	engine.POST("/is-authenticated", auth.RequireUser(), handler.IsAuthenticated)

	return &rig{engine: engine, users: users, tokens: tokens, hasher: hasher}
}

// addUser registers a user directly in the repository.
func (r *rig) addUser(t *testing.T, username, plaintext string) *user.User {
	t.Helper()
	hash, err := r.hasher.Hash(plaintext)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &user.User{Username: username, PasswordHash: hash}
	if err := r.users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// expiredToken mints a token that is already past its expiry, signed with
// the rig's secret.
func expiredToken(t *testing.T, kind token.Kind) string {
	t.Helper()
	svc, err := token.NewService(token.Config{
		Secret:          testSecret,
		AccessTokenTTL:  -time.Minute,
		RefreshTokenTTL: -time.Minute,
	})
	if err != nil {
		t.Fatalf("token.NewService: %v", err)
	}
	tok, err := svc.Issue(1, kind)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return tok
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, ck := range cookies {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}
