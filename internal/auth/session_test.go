package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/band-manager/internal/model"
)

func TestForUserGrantsAdminEverything(t *testing.T) {
	s := ForUser(model.User{ID: 1, Role: model.RoleAdmin}, "h")
	assert.True(t, s.IsAdmin())
	assert.True(t, s.Has(CapAddShows))
	assert.True(t, s.Has(CapViewAmounts))
	assert.True(t, s.Has(CapEditName))
}

func TestForUserCopiesMemberFlags(t *testing.T) {
	s := ForUser(model.User{ID: 2, Role: model.RoleMember, CanEditName: true}, "h")
	assert.False(t, s.IsAdmin())
	assert.False(t, s.Has(CapAddShows))
	assert.False(t, s.Has(CapViewAmounts))
	assert.True(t, s.Has(CapEditName))
	assert.False(t, s.Has("canDance"))
}

func TestContextRoundTrip(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	_, ok := From(c)
	assert.False(t, ok)

	Set(c, Session{UserID: 9, Role: model.RoleMember})
	s, ok := From(c)
	assert.True(t, ok)
	assert.EqualValues(t, 9, s.UserID)
}
