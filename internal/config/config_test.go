package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "simcore.toml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad_OverridesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
[simulation]
tick_rate = "50ms"
collision_radius = 32.0
seed = 7

[logging]
level = "debug"

[input.bindings]
move = ["key:m"]
`))
	require.NoError(t, err)
	assert.Equal(t, 50*time.Millisecond, cfg.Simulation.TickRate)
	assert.Equal(t, 32.0, cfg.Simulation.CollisionRadius)
	assert.Equal(t, 64.0, cfg.Simulation.CellSize, "untouched keys keep defaults")
	assert.Equal(t, int64(7), cfg.Simulation.Seed)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, []string{"key:m"}, cfg.Input.Bindings["move"])
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorContains(t, err, "read config")

	_, err = Load(writeConfig(t, "[simulation\n"))
	assert.ErrorContains(t, err, "parse config")

	_, err = Load(writeConfig(t, "[simulation]\ncollision_radius = 100.0\n"))
	assert.ErrorContains(t, err, "exceeds cell_size")
}

func TestPath(t *testing.T) {
	t.Setenv(EnvPath, "")
	assert.Equal(t, DefaultPath, Path())
	t.Setenv(EnvPath, "/etc/simcore.toml")
	assert.Equal(t, "/etc/simcore.toml", Path())
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().validate())
}
