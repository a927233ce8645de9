package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/band-manager/internal/config"
	"github.com/iliyamo/band-manager/internal/middleware"
	"github.com/iliyamo/band-manager/internal/model"
	"github.com/iliyamo/band-manager/internal/utils"
)

const testSecret = "handler-test-secret"

func hash(t *testing.T, plain string) string {
	t.Helper()
	h, err := utils.HashPassword(plain, bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func newAuthHandler(t *testing.T, recoveryHash string) (*AuthHandler, *fakeUsers, *fakeSessions) {
	t.Helper()
	users := &fakeUsers{byID: map[uint64]model.User{
		1: {ID: 1, Username: "lead", DisplayName: "Lead", Role: model.RoleAdmin, PasswordHash: hash(t, "correct-horse"), IsActive: true},
		2: {ID: 2, Username: "old", Role: model.RoleMember, PasswordHash: hash(t, "correct-horse")},
	}}
	sessions := &fakeSessions{live: map[string]uint64{}}
	cfg := config.Config{JWTSecret: testSecret, SessionTTLMin: 60, BcryptCost: bcrypt.MinCost, RecoveryKeyHash: recoveryHash}
	return NewAuthHandler(cfg, users, sessions, zap.NewNop()), users, sessions
}

func TestLogin(t *testing.T) {
	h, _, sessions := newAuthHandler(t, "")

	c, rec := newCtx(http.MethodPost, "/api/auth/login", `{"username":" Lead ","password":"correct-horse"}`, nil)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		User struct {
			ID           uint64          `json:"id"`
			Role         string          `json:"role"`
			Capabilities map[string]bool `json:"capabilities"`
		} `json:"user"`
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, uint64(1), body.User.ID)
	assert.True(t, body.User.Capabilities["canViewAmounts"])

	claims, err := utils.ParseSessionToken(testSecret, body.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), sessions.live[utils.HashToken(claims.ID)])

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.SessionCookie, cookies[0].Name)
	assert.Equal(t, body.Token, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestLoginRejects(t *testing.T) {
	cases := []struct {
		name string
		body string
		code int
	}{
		{"missing password", `{"username":"lead"}`, http.StatusBadRequest},
		{"bad json", `{`, http.StatusBadRequest},
		{"unknown user", `{"username":"nobody","password":"correct-horse"}`, http.StatusUnauthorized},
		{"wrong password", `{"username":"lead","password":"wrong-horse"}`, http.StatusUnauthorized},
		{"inactive", `{"username":"old","password":"correct-horse"}`, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, _, sessions := newAuthHandler(t, "")
			c, rec := newCtx(http.MethodPost, "/api/auth/login", tc.body, nil)
			require.NoError(t, h.Login(c))
			assert.Equal(t, tc.code, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
			assert.Empty(t, sessions.live)
		})
	}
}

func TestLoginStoreFailure(t *testing.T) {
	h, _, sessions := newAuthHandler(t, "")
	sessions.err = errStore
	c, rec := newCtx(http.MethodPost, "/api/auth/login", `{"username":"lead","password":"correct-horse"}`, nil)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLogoutRevokesSession(t *testing.T) {
	h, _, sessions := newAuthHandler(t, "")
	sessions.live[adminSession.TokenHash] = adminSession.UserID

	c, rec := newCtx(http.MethodPost, "/api/auth/logout", "", &adminSession)
	require.NoError(t, h.Logout(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, sessions.live, adminSession.TokenHash)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestMe(t *testing.T) {
	h, _, _ := newAuthHandler(t, "")

	c, rec := newCtx(http.MethodGet, "/api/auth/me", "", &bookerSession)
	require.NoError(t, h.Me(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"canAddShows":true`)
	assert.NotContains(t, rec.Body.String(), "booker-hash")

	c, rec = newCtx(http.MethodGet, "/api/auth/me", "", nil)
	require.NoError(t, h.Me(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEmergencyReset(t *testing.T) {
	recovery := hash(t, "break-glass-key")

	t.Run("disabled without recovery hash", func(t *testing.T) {
		h, _, _ := newAuthHandler(t, "")
		c, rec := newCtx(http.MethodPost, "/api/auth/emergency-reset",
			`{"username":"lead","recoveryKey":"break-glass-key","newPassword":"new-password"}`, nil)
		require.NoError(t, h.EmergencyReset(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("wrong key", func(t *testing.T) {
		h, users, _ := newAuthHandler(t, recovery)
		before := users.byID[1].PasswordHash
		c, rec := newCtx(http.MethodPost, "/api/auth/emergency-reset",
			`{"username":"lead","recoveryKey":"guess","newPassword":"new-password"}`, nil)
		require.NoError(t, h.EmergencyReset(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, before, users.byID[1].PasswordHash)
	})

	t.Run("weak password", func(t *testing.T) {
		h, _, _ := newAuthHandler(t, recovery)
		c, rec := newCtx(http.MethodPost, "/api/auth/emergency-reset",
			`{"username":"lead","recoveryKey":"break-glass-key","newPassword":"short"}`, nil)
		require.NoError(t, h.EmergencyReset(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		h, _, _ := newAuthHandler(t, recovery)
		c, rec := newCtx(http.MethodPost, "/api/auth/emergency-reset",
			`{"username":"ghost","recoveryKey":"break-glass-key","newPassword":"new-password"}`, nil)
		require.NoError(t, h.EmergencyReset(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("replaces password and revokes sessions", func(t *testing.T) {
		h, users, sessions := newAuthHandler(t, recovery)
		sessions.live["a"] = 1
		sessions.live["b"] = 1
		sessions.live["c"] = 2

		c, rec := newCtx(http.MethodPost, "/api/auth/emergency-reset",
			`{"username":"LEAD","recoveryKey":"break-glass-key","newPassword":"new-password"}`, nil)
		require.NoError(t, h.EmergencyReset(c))
		require.Equal(t, http.StatusOK, rec.Code)

		assert.True(t, utils.VerifyPassword(users.byID[1].PasswordHash, "new-password"))
		assert.Equal(t, map[string]uint64{"c": 2}, sessions.live)
	})
}
