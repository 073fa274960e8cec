package server_test

import (
	"testing"

	"catalog-sync/core/server"

	"github.com/stretchr/testify/assert"
)

func TestConfig_IsProtected(t *testing.T) {
	tests := []struct {
		name   string
		apiKey string
		want   bool
	}{
		{"WithKey", "secret", true},
		{"Empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := server.Config{ApiKey: tt.apiKey}
			assert.Equal(t, tt.want, c.IsProtected())
		})
	}
}

func TestConfig_Addr(t *testing.T) {
	assert.Equal(t, ":8080", server.Config{Port: "8080"}.Addr())
}
