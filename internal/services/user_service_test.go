package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/lmoraleda/fintrack-be/internal/apperr"
)

type UserServiceTestSuite struct {
	suite.Suite
	service *UserService
}

func (s *UserServiceTestSuite) SetupTest() {
	s.service = NewUserService(newTestDB(s.T()), testRefreshTTL)
}

func (s *UserServiceTestSuite) TestRegister() {
	user, err := s.service.Register("alice", "hunter2")
	require.NoError(s.T(), err)
	assert.NotEmpty(s.T(), user.ID)
	assert.Equal(s.T(), "alice", user.Username)
	assert.False(s.T(), user.IsAdmin)
	assert.Empty(s.T(), user.PasswordHash, "password hash must not leave the service")
}

func (s *UserServiceTestSuite) TestRegisterDuplicateUsername() {
	first, err := s.service.Register("alice", "hunter2")
	require.NoError(s.T(), err)
	assert.NotEmpty(s.T(), first.ID)

	_, err = s.service.Register("alice", "different")
	require.Error(s.T(), err)
	assert.True(s.T(), apperr.IsKind(err, apperr.KindConflict), "second register must conflict, got %v", err)
}

func (s *UserServiceTestSuite) TestRegisterEmptyUsername() {
	_, err := s.service.Register("  ", "hunter2")
	require.Error(s.T(), err)
	assert.True(s.T(), apperr.IsKind(err, apperr.KindValidation))
}

func (s *UserServiceTestSuite) TestAuthenticate() {
	_, err := s.service.Register("alice", "hunter2")
	require.NoError(s.T(), err)

	user, err := s.service.Authenticate("alice", "hunter2")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "alice", user.Username)
	assert.Empty(s.T(), user.PasswordHash)
}

func (s *UserServiceTestSuite) TestAuthenticateWrongPassword() {
	_, err := s.service.Register("alice", "hunter2")
	require.NoError(s.T(), err)

	_, wrongPassErr := s.service.Authenticate("alice", "wrong")
	_, unknownUserErr := s.service.Authenticate("nobody", "wrong")

	require.Error(s.T(), wrongPassErr)
	require.Error(s.T(), unknownUserErr)
	assert.True(s.T(), apperr.IsKind(wrongPassErr, apperr.KindUnauthenticated))
	// Same message either way, so login never reveals whether a username exists.
	assert.Equal(s.T(), apperr.From(unknownUserErr).Message, apperr.From(wrongPassErr).Message)
}

func (s *UserServiceTestSuite) TestRefreshTokenFlow() {
	user, err := s.service.Register("alice", "hunter2")
	require.NoError(s.T(), err)

	rt, err := s.service.IssueRefreshToken(user.ID)
	require.NoError(s.T(), err)
	assert.NotEmpty(s.T(), rt.Token)
	assert.True(s.T(), rt.ExpiresAt.After(time.Now()))

	resolved, err := s.service.Refresh(rt.Token)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), user.ID, resolved.ID)
}

func (s *UserServiceTestSuite) TestRefreshUnknownToken() {
	_, err := s.service.Refresh("not-a-token")
	require.Error(s.T(), err)
	assert.True(s.T(), apperr.IsKind(err, apperr.KindUnauthenticated))
}

func (s *UserServiceTestSuite) TestRefreshExpiredToken() {
	expiring := NewUserService(s.service.db, -time.Minute)
	user, err := expiring.Register("alice", "hunter2")
	require.NoError(s.T(), err)

	rt, err := expiring.IssueRefreshToken(user.ID)
	require.NoError(s.T(), err)

	_, err = expiring.Refresh(rt.Token)
	require.Error(s.T(), err)
	assert.True(s.T(), apperr.IsKind(err, apperr.KindUnauthenticated))
}

func (s *UserServiceTestSuite) TestSetAdminAndRequireAdmin() {
	user, err := s.service.Register("alice", "hunter2")
	require.NoError(s.T(), err)

	err = s.service.RequireAdmin("alice")
	require.Error(s.T(), err)
	assert.True(s.T(), apperr.IsKind(err, apperr.KindForbidden))

	promoted, err := s.service.SetAdmin(user.ID, true)
	require.NoError(s.T(), err)
	assert.True(s.T(), promoted.IsAdmin)
	assert.NoError(s.T(), s.service.RequireAdmin("alice"))

	// Demotion takes effect on the next check: no caching across requests.
	_, err = s.service.SetAdmin(user.ID, false)
	require.NoError(s.T(), err)
	err = s.service.RequireAdmin("alice")
	assert.True(s.T(), apperr.IsKind(err, apperr.KindForbidden))
}

func (s *UserServiceTestSuite) TestSetAdminUnknownUser() {
	_, err := s.service.SetAdmin("no-such-id", true)
	require.Error(s.T(), err)
	assert.True(s.T(), apperr.IsKind(err, apperr.KindNotFound))
}

func (s *UserServiceTestSuite) TestRequireAdminUnknownUser() {
	err := s.service.RequireAdmin("nobody")
	require.Error(s.T(), err)
	assert.True(s.T(), apperr.IsKind(err, apperr.KindForbidden))
}

func (s *UserServiceTestSuite) TestListUsers() {
	_, err := s.service.Register("alice", "hunter2")
	require.NoError(s.T(), err)
	_, err = s.service.Register("bob", "hunter2")
	require.NoError(s.T(), err)

	users, err := s.service.ListUsers()
	require.NoError(s.T(), err)
	assert.Len(s.T(), users, 2)
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
