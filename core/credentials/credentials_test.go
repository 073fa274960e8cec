package credentials

import (
	"os"
	"path/filepath"
	"testing"

	"catalog-sync/core/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTokens(t *testing.T, dir string, backend models.Backend, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, string(backend)+"_tokens.json"), []byte(body), 0o600))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeTokens(t, dir, models.BackendRetail, `{"access_token":"rt","account_id":"42","expires_at":1700000000,"refresh_token":"x"}`)
	writeTokens(t, dir, models.BackendEcom, `{not json`)

	creds, err := Load(dir, models.BackendRetail)
	require.NoError(t, err)
	assert.Equal(t, "rt", creds.AccessToken)
	assert.Equal(t, "42", creds.AccountID)
	assert.Equal(t, int64(1700000000), creds.ExpiresAt)

	_, err = Load(dir, models.BackendEcom)
	assert.ErrorIs(t, err, ErrMalformed)

	missing, err := Load(t.TempDir(), models.BackendRetail)
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestLoad_EmptyToken(t *testing.T) {
	dir := t.TempDir()
	writeTokens(t, dir, models.BackendEcom, `{"access_token":"","shop_id":"9"}`)

	creds, err := Load(dir, models.BackendEcom)
	assert.NoError(t, err)
	assert.Nil(t, creds)
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	writeTokens(t, dir, models.BackendEcom, `{"access_token":"file","shop_id":"9"}`)

	t.Run("file only", func(t *testing.T) {
		creds, err := Resolve(dir, models.BackendEcom, models.Credentials{})
		require.NoError(t, err)
		assert.Equal(t, "file", creds.AccessToken)
	})

	t.Run("configured token wins", func(t *testing.T) {
		creds, err := Resolve(dir, models.BackendEcom, models.Credentials{AccessToken: "cfg"})
		require.NoError(t, err)
		assert.Equal(t, "cfg", creds.AccessToken)
		assert.Equal(t, "9", creds.ShopID)
	})

	t.Run("nothing configured", func(t *testing.T) {
		creds, err := Resolve(dir, models.BackendRetail, models.Credentials{})
		require.NoError(t, err)
		assert.Nil(t, creds)
	})

	t.Run("malformed file with configured token", func(t *testing.T) {
		bad := t.TempDir()
		writeTokens(t, bad, models.BackendRetail, `[`)
		creds, err := Resolve(bad, models.BackendRetail, models.Credentials{AccessToken: "cfg", AccountID: "1"})
		require.NoError(t, err)
		assert.Equal(t, "1", creds.AccountID)
	})
}
