package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grocery-mart/internal/auth"
	"grocery-mart/internal/models"
)

func TestUserService_Resolve(t *testing.T) {
	f := newFixture(t)

	s, err := f.svc.Users.Resolve(f.ctx, &auth.Identity{UID: "new", Email: "new@mart.test", Name: "New"})
	require.NoError(t, err)
	assert.Equal(t, &models.Session{UserID: "new", Email: "new@mart.test", Role: models.RoleUser}, s)

	s, err = f.svc.Users.Resolve(f.ctx, &auth.Identity{UID: "boss", Email: "BOSS@mart.test"})
	require.NoError(t, err)
	assert.True(t, s.IsAdmin())

	_, err = f.svc.Users.Resolve(f.ctx, nil)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestUserService_SetRole(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.svc.Users.SetRole(f.ctx, f.user, "a1", models.RoleUser), ErrForbidden)
	assert.ErrorIs(t, f.svc.Users.SetRole(f.ctx, f.admin, "a1", models.RoleUser), ErrForbidden)

	var verr *ValidationError
	assert.ErrorAs(t, f.svc.Users.SetRole(f.ctx, f.admin, "u1", "root"), &verr)

	require.NoError(t, f.svc.Users.SetRole(f.ctx, f.admin, "u1", models.RoleAdmin))
	users, err := f.svc.Users.List(f.ctx, f.admin)
	require.NoError(t, err)
	for _, u := range users {
		if u.ID == "u1" {
			assert.Equal(t, models.RoleAdmin, u.Role)
		}
	}
}
