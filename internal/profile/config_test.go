package profile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type section struct {
	Size    int           `mapstructure:"size"`
	Timeout time.Duration `mapstructure:"timeout"`
	Name    string        `mapstructure:"name"`
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conf.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestGet(t *testing.T) {
	require.NoError(t, Init(writeFile(t, "pool:\n  size: 8\n  timeout: 3s\n")))
	assert.True(t, IsSet("pool"))
	assert.False(t, IsSet("missing"))

	cfg := section{Name: "keep"}
	require.NoError(t, Get("pool", &cfg))
	assert.Equal(t, 8, cfg.Size)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, "keep", cfg.Name, "文件中没有的字段保持原值")

	other := section{Size: 1}
	require.NoError(t, Get("missing", &other))
	assert.Equal(t, section{Size: 1}, other)
}

func TestInit_Errors(t *testing.T) {
	assert.Error(t, Init(filepath.Join(t.TempDir(), "none.yaml")))

	require.NoError(t, Init(writeFile(t, "pool:\n  size: many\n")))
	var cfg section
	assert.Error(t, Get("pool", &cfg))
}
