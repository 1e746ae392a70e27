package cli

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeCommand_At(t *testing.T) {
	t.Setenv("TIMEZONE", "UTC")

	buf := &bytes.Buffer{}
	cmd := NewCodeCommand(&RootOptions{})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--at", "2025-03-14 09:27"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "0210182550  (2025-03-14 09:27)\n", buf.String())
}

func TestCodeCommand_UsesClockInConfiguredZone(t *testing.T) {
	t.Setenv("TIMEZONE", "Etc/GMT-3")

	buf := &bytes.Buffer{}
	opts := &RootOptions{Now: func() time.Time { return time.Date(2025, 3, 14, 6, 27, 0, 0, time.UTC) }}
	cmd := NewCodeCommand(opts)
	cmd.SetOut(buf)
	cmd.SetArgs(nil)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "0210182550")
}

func TestCodeCommand_BadAt(t *testing.T) {
	t.Setenv("TIMEZONE", "UTC")

	cmd := NewCodeCommand(&RootOptions{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--at", "14.03.2025"})

	assert.Error(t, cmd.Execute())
}

func TestMigrateCommand_CreatesDatabase(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_DSN", filepath.Join(t.TempDir(), "cli.db"))
	t.Setenv("LOG_LEVEL", "error")

	buf := &bytes.Buffer{}
	cmd := NewMigrateCommand(&RootOptions{})
	cmd.SetOut(buf)
	cmd.SetArgs(nil)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "Veritabanı hazır")
}

func TestServeCommand_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")

	cmd := NewServeCommand(&RootOptions{})
	cmd.SetArgs(nil)

	assert.ErrorContains(t, cmd.Execute(), "JWT_SECRET")
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	root := NewRootCommand()
	for _, name := range []string{"serve", "migrate", "code"} {
		c, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, c.Name())
	}
}
