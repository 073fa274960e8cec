package loader

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

type stubFeature struct {
	name    string
	enabled bool
	err     error
	loaded  bool
}

func (s *stubFeature) Name() string    { return s.name }
func (s *stubFeature) IsEnabled() bool { return s.enabled }
func (s *stubFeature) Load(app fiber.Router) error {
	s.loaded = true
	return s.err
}

func TestManager_LoadAll(t *testing.T) {
	a := &stubFeature{name: "a", enabled: true}
	b := &stubFeature{name: "b", enabled: false}
	c := &stubFeature{name: "c", enabled: true}

	mgr := NewManager()
	mgr.Register(a)
	mgr.Register(b)
	mgr.Register(c)

	loaded, err := mgr.LoadAll(fiber.New())
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, loaded)
	assert.False(t, b.loaded)
	assert.Len(t, mgr.Features(), 3)
}

func TestManager_LoadAllStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	a := &stubFeature{name: "a", enabled: true, err: boom}
	b := &stubFeature{name: "b", enabled: true}

	mgr := NewManager()
	mgr.Register(a)
	mgr.Register(b)

	loaded, err := mgr.LoadAll(fiber.New())
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "feature a")
	assert.Empty(t, loaded)
	assert.False(t, b.loaded)
}
