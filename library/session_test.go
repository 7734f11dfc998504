package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTransitions(t *testing.T) {
	sess := NewSession()
	assert.Equal(t, LoggedOut, sess.State)

	require.NoError(t, sess.BeginRegistration())
	assert.Equal(t, Registering, sess.State)

	require.NoError(t, sess.ReturnToLogin())
	assert.Equal(t, LoggedOut, sess.State)

	require.NoError(t, sess.LogIn("alice", RoleUser))
	assert.Equal(t, LoggedIn, sess.State)
	assert.Equal(t, "alice", sess.Username)
	assert.Equal(t, RoleUser, sess.Role)

	require.NoError(t, sess.LogOut())
	assert.Equal(t, LoggedOut, sess.State)
	assert.Empty(t, sess.Username)
	assert.Empty(t, sess.Role)
}

func TestSessionRejectsUndefinedTransitions(t *testing.T) {
	sess := NewSession()

	assert.ErrorIs(t, sess.ReturnToLogin(), ErrBadTransition)
	assert.ErrorIs(t, sess.LogOut(), ErrBadTransition)

	require.NoError(t, sess.LogIn("alice", RoleUser))
	assert.ErrorIs(t, sess.BeginRegistration(), ErrBadTransition)
	assert.ErrorIs(t, sess.LogIn("bob", RoleUser), ErrBadTransition)
}

func TestSessionAllows(t *testing.T) {
	sess := NewSession()

	assert.True(t, sess.Allows(OpLogin))
	assert.False(t, sess.Allows(OpRegister))
	assert.False(t, sess.Allows(OpBorrow))

	require.NoError(t, sess.BeginRegistration())
	assert.True(t, sess.Allows(OpRegister))
	assert.False(t, sess.Allows(OpLogin))

	require.NoError(t, sess.ReturnToLogin())
	require.NoError(t, sess.LogIn("alice", RoleUser))
	for _, op := range []Operation{OpListBooks, OpBorrow, OpReturn, OpHistory, OpReport, OpLogout} {
		assert.True(t, sess.Allows(op))
	}
	assert.False(t, sess.Allows(OpLogin))
}

func TestSessionAddBookRequiresAdmin(t *testing.T) {
	user := NewSession()
	require.NoError(t, user.LogIn("alice", RoleUser))
	assert.False(t, user.Allows(OpAddBook))

	admin := NewSession()
	require.NoError(t, admin.LogIn("admin", RoleAdmin))
	assert.True(t, admin.Allows(OpAddBook))
}
