package credential

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	return NewStore(keyring.NewArrayKeyring(nil))
}

func TestStore_SetGetDelete(t *testing.T) {
	s := newTestStore()

	require.NoError(t, s.Set("k", "v"))
	got, err := s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	require.NoError(t, s.Delete("k"))
	_, err = s.Get("k")
	assert.ErrorIs(t, err, keyring.ErrKeyNotFound)

	assert.NoError(t, s.Delete("k"), "deleting twice")
}

func TestBackendToken(t *testing.T) {
	t.Setenv(BackendTokenEnv, "")
	s := newTestStore()

	tok, err := BackendToken(s)
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, s.Set(BackendTokenKey, " from-keyring \n"))
	tok, err = BackendToken(s)
	require.NoError(t, err)
	assert.Equal(t, "from-keyring", tok)

	t.Setenv(BackendTokenEnv, "from-env")
	tok, err = BackendToken(s)
	require.NoError(t, err)
	assert.Equal(t, "from-env", tok)
}

func TestBackendToken_NilStore(t *testing.T) {
	t.Setenv(BackendTokenEnv, "")
	tok, err := BackendToken(nil)
	require.NoError(t, err)
	assert.Empty(t, tok)
}
