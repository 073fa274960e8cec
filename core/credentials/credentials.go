package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"catalog-sync/core/models"

	"github.com/goccy/go-json"
)

// ErrMalformed marks a token file that cannot be decoded.
var ErrMalformed = errors.New("malformed token file")

// Path returns the token file written by the auth tooling for a backend.
func Path(dir string, backend models.Backend) string {
	return filepath.Join(dir, string(backend)+"_tokens.json")
}

// Load reads the token file of a backend. A missing file yields nil and
// no error: the backend is simply not configured.
func Load(dir string, backend models.Backend) (*models.Credentials, error) {
	data, err := os.ReadFile(Path(dir, backend))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s credentials: %w", backend, err)
	}

	var creds models.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, backend, err)
	}
	if !creds.Valid() {
		return nil, nil
	}
	return &creds, nil
}

// Resolve merges configured credentials over the token file. A configured
// access token wins; identifiers missing from config are taken from the
// file. Nil means the backend has no usable credentials.
func Resolve(dir string, backend models.Backend, configured models.Credentials) (*models.Credentials, error) {
	stored, err := Load(dir, backend)
	if err != nil && configured.AccessToken == "" {
		return nil, err
	}

	if configured.AccessToken == "" {
		return stored, nil
	}

	merged := configured
	if stored != nil {
		if merged.AccountID == "" {
			merged.AccountID = stored.AccountID
		}
		if merged.ShopID == "" {
			merged.ShopID = stored.ShopID
		}
	}
	return &merged, nil
}
