package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupApp(cfg Config) *fiber.App {
	app := fiber.New()
	app.Use(New(cfg))
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/cache/stats", func(c *fiber.Ctx) error { return c.SendString("stats") })
	return app
}

func TestAuth(t *testing.T) {
	app := setupApp(Config{ApiKey: "secret", Public: []string{"/health"}})

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"missing key", "/cache/stats", "", fiber.StatusUnauthorized},
		{"wrong key", "/cache/stats", "nope", fiber.StatusUnauthorized},
		{"valid key", "/cache/stats", "secret", fiber.StatusOK},
		{"query key", "/cache/stats?api_key=secret", "", fiber.StatusOK},
		{"public path", "/health", "", fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.header != "" {
				req.Header.Set(Header, tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestAuth_Disabled(t *testing.T) {
	app := setupApp(Config{})

	resp, err := app.Test(httptest.NewRequest("GET", "/cache/stats", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
