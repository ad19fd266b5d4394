package service

import (
	"testing"

	"vidshare/internal/api/dto"
	"vidshare/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup_DuplicateEmail(t *testing.T) {
	e := newEnv(t)
	svc := NewAuthService(e.users, e.tokens)

	user, err := svc.Signup(&dto.SignupRequest{Username: "ann", Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.NotEqual(t, "pw", user.Password)

	_, err = svc.Signup(&dto.SignupRequest{Username: "ann2", Email: "A@X.com ", Password: "pw"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestSignup_BlankUsername(t *testing.T) {
	e := newEnv(t)
	svc := NewAuthService(e.users, e.tokens)

	_, err := svc.Signup(&dto.SignupRequest{Username: "   ", Email: "a@x.com", Password: "pw"})
	assert.ErrorIs(t, err, ErrUsernameRequired)

	exists, err := e.users.ExistsByEmail("a@x.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLogin(t *testing.T) {
	e := newEnv(t)
	svc := NewAuthService(e.users, e.tokens)

	created, err := svc.Signup(&dto.SignupRequest{Username: "root", Email: "root@x.com", Password: "secret", Role: model.RoleAdmin})
	require.NoError(t, err)

	data, err := svc.Login(&dto.LoginRequest{Email: "root@x.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, data.User.ID)

	claims, err := e.tokens.Verify(data.Token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.UserID)
	assert.Equal(t, model.RoleAdmin, claims.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	e := newEnv(t)
	svc := NewAuthService(e.users, e.tokens)

	_, err := svc.Signup(&dto.SignupRequest{Username: "ann", Email: "a@x.com", Password: "right"})
	require.NoError(t, err)

	data, err := svc.Login(&dto.LoginRequest{Email: "a@x.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredential)
	assert.Nil(t, data)

	_, err = svc.Login(&dto.LoginRequest{Email: "nobody@x.com", Password: "right"})
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestGetProfile(t *testing.T) {
	e := newEnv(t)
	svc := NewAuthService(e.users, e.tokens)

	_, err := svc.GetProfile(404)
	assert.ErrorIs(t, err, ErrUserNotFound)

	created, err := svc.Signup(&dto.SignupRequest{Username: "ann", Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)

	user, err := svc.GetProfile(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "ann", user.Username)
}
