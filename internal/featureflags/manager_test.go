package featureflags

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnabled_BooleanValues(t *testing.T) {
	m := NewManager("a=on,b=off,c=true,d=false,e=1,f=0")

	for _, name := range []string{"a", "c", "e"} {
		assert.True(t, m.Enabled(name, 1), name)
	}
	for _, name := range []string{"b", "d", "f", "missing"} {
		assert.False(t, m.Enabled(name, 1), name)
	}
}

func TestEnabled_PercentageValues(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%,junk=abc%")

	assert.True(t, m.Enabled("always", 1))
	assert.False(t, m.Enabled("never", 1))
	assert.False(t, m.Enabled("junk", 1))

	first := m.Enabled("canary", 42)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, m.Enabled("canary", 42), "rollout must be deterministic per user")
	}
	assert.False(t, m.Enabled("canary", 0), "percentage rollout requires a user")
}

func TestParseAndSnapshot(t *testing.T) {
	m := NewManager(" bad ,Thread_Stream=ON, y = 20% ,z=off,=on,w=")

	snap := m.Snapshot(123)
	assert.Len(t, snap, 3)
	assert.True(t, snap[ThreadStream])
	assert.False(t, snap["z"])

	var nilManager *Manager
	assert.False(t, nilManager.Enabled(ThreadStream, 1))
	assert.Empty(t, nilManager.Snapshot(1))
}

func TestRequire(t *testing.T) {
	tests := []struct {
		name  string
		flags string
		want  int
	}{
		{name: "on", flags: "thread_stream=on", want: fiber.StatusOK},
		{name: "off", flags: "thread_stream=off", want: fiber.StatusNotFound},
		{name: "unset", flags: "", want: fiber.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/stream", func(c *fiber.Ctx) error {
				c.Locals("userID", uint(7))
				return c.Next()
			}, NewManager(tt.flags).Require(ThreadStream), func(c *fiber.Ctx) error {
				return c.SendStatus(fiber.StatusOK)
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/stream", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
