package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	identityapp "github.com/pharmacare/backend/internal/application/identity"
	"github.com/pharmacare/backend/internal/domain/identity"
	"github.com/pharmacare/backend/internal/domain/shared"
	"github.com/pharmacare/backend/internal/infrastructure/auth"
	"github.com/pharmacare/backend/internal/infrastructure/config"
	"github.com/pharmacare/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memUserRepo struct {
	users map[uuid.UUID]identity.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]identity.User)}
}

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*identity.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	out := u
	return &out, nil
}

func (r *memUserRepo) FindByUsername(_ context.Context, username string) (*identity.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			out := u
			return &out, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memUserRepo) Save(_ context.Context, user *identity.User) error {
	r.users[user.ID] = *user
	return nil
}

func testJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-for-handlers",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "pharmacare-test",
	})
}

func newIdentityRouter(userRepo *memUserRepo) *gin.Engine {
	authService := identityapp.NewAuthService(userRepo, testJWTService(), zap.NewNop())
	userService := identityapp.NewUserService(userRepo, zap.NewNop())

	ah := NewAuthHandler(authService)
	uh := NewUserHandler(userService)

	r := gin.New()
	r.POST("/auth/login", ah.Login)
	r.POST("/auth/refresh", ah.RefreshToken)
	r.POST("/users", uh.Create)
	r.GET("/users/:id", uh.GetByID)
	r.POST("/users/:id/activate", uh.Activate)
	r.POST("/users/:id/deactivate", uh.Deactivate)
	r.PUT("/users/:id/role", uh.ChangeRole)
	return r
}

func seedUser(t *testing.T, repo *memUserRepo, username, password string, role identity.Role) *identity.User {
	t.Helper()

	user, err := identity.NewUser(username, password, role)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), user))
	return user
}

func TestUserCreate(t *testing.T) {
	r := newIdentityRouter(newMemUserRepo())

	w, env := doJSON(t, r, http.MethodPost, "/users", gin.H{
		"username":     "Alice",
		"password":     "correct horse",
		"display_name": "Alice W",
		"role":         "pharmacist",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var user UserResponse
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "pharmacist", user.Role)
	assert.True(t, user.Active)
}

func TestUserCreateRejectsBadRole(t *testing.T) {
	r := newIdentityRouter(newMemUserRepo())

	w, _ := doJSON(t, r, http.MethodPost, "/users", gin.H{
		"username": "bob",
		"password": "long enough",
		"role":     "janitor",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserCreateRejectsDuplicateUsername(t *testing.T) {
	repo := newMemUserRepo()
	r := newIdentityRouter(repo)

	seedUser(t, repo, "alice", "password-one", identity.RoleAdmin)

	w, env := doJSON(t, r, http.MethodPost, "/users", gin.H{
		"username": "alice",
		"password": "password-two",
		"role":     "doctor",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrCodeAlreadyExists, env.Error.Code)
}

func TestUserActivateDeactivateAndChangeRole(t *testing.T) {
	repo := newMemUserRepo()
	r := newIdentityRouter(repo)

	user := seedUser(t, repo, "carol", "a decent pass", identity.RoleDoctor)

	w, env := doJSON(t, r, http.MethodPost, "/users/"+user.ID.String()+"/deactivate", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp UserResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.False(t, resp.Active)

	w, env = doJSON(t, r, http.MethodPost, "/users/"+user.ID.String()+"/activate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.True(t, resp.Active)

	w, env = doJSON(t, r, http.MethodPut, "/users/"+user.ID.String()+"/role", gin.H{"role": "pharmacist"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, "pharmacist", resp.Role)
}

func TestLoginIssuesTokenPair(t *testing.T) {
	repo := newMemUserRepo()
	r := newIdentityRouter(repo)

	seedUser(t, repo, "alice", "a decent pass", identity.RolePharmacist)

	w, env := doJSON(t, r, http.MethodPost, "/auth/login", gin.H{
		"username": "alice",
		"password": "a decent pass",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result identityapp.LoginResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, "alice", result.User.Username)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	repo := newMemUserRepo()
	r := newIdentityRouter(repo)

	seedUser(t, repo, "alice", "a decent pass", identity.RolePharmacist)

	w, env := doJSON(t, r, http.MethodPost, "/auth/login", gin.H{
		"username": "alice",
		"password": "wrong pass!",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrCodeInvalidCredentials, env.Error.Code)
}

func TestLoginRejectsDeactivatedAccount(t *testing.T) {
	repo := newMemUserRepo()
	r := newIdentityRouter(repo)

	user := seedUser(t, repo, "alice", "a decent pass", identity.RolePharmacist)
	user.Active = false
	require.NoError(t, repo.Save(context.Background(), user))

	w, env := doJSON(t, r, http.MethodPost, "/auth/login", gin.H{
		"username": "alice",
		"password": "a decent pass",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrCodeAccountDeactivated, env.Error.Code)
}

func TestRefreshRotatesTokens(t *testing.T) {
	repo := newMemUserRepo()
	r := newIdentityRouter(repo)

	seedUser(t, repo, "alice", "a decent pass", identity.RolePharmacist)

	_, env := doJSON(t, r, http.MethodPost, "/auth/login", gin.H{
		"username": "alice",
		"password": "a decent pass",
	})
	var login identityapp.LoginResult
	require.NoError(t, json.Unmarshal(env.Data, &login))

	w, env := doJSON(t, r, http.MethodPost, "/auth/refresh", gin.H{
		"refresh_token": login.RefreshToken,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var refreshed identityapp.LoginResult
	require.NoError(t, json.Unmarshal(env.Data, &refreshed))
	assert.NotEmpty(t, refreshed.AccessToken)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	repo := newMemUserRepo()
	r := newIdentityRouter(repo)

	seedUser(t, repo, "alice", "a decent pass", identity.RolePharmacist)

	_, env := doJSON(t, r, http.MethodPost, "/auth/login", gin.H{
		"username": "alice",
		"password": "a decent pass",
	})
	var login identityapp.LoginResult
	require.NoError(t, json.Unmarshal(env.Data, &login))

	w, env := doJSON(t, r, http.MethodPost, "/auth/refresh", gin.H{
		"refresh_token": login.AccessToken,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, env.Error)
}
