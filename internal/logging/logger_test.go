package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_LevelAndFormat(t *testing.T) {
	l, err := New(Config{Level: "debug", JSONFormat: true})
	require.NoError(t, err)
	defer l.Close()

	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, l.Formatter)
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(Config{Level: "chatty"})
	assert.Error(t, err)
}

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.log")

	l, err := New(Config{OutputFile: path, JSONFormat: true})
	require.NoError(t, err)

	l.WithField("file", "main.go").Info("Scored file")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"Scored file"`)
	assert.Contains(t, string(data), `"file":"main.go"`)
}

func TestNew_RotatesOversizedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", 64)), 0644))

	l, err := New(Config{OutputFile: path, MaxSize: 32, MaxBackups: 2})
	require.NoError(t, err)
	require.NoError(t, l.Close())

	backup, err := os.ReadFile(path + ".1")
	require.NoError(t, err)
	assert.Len(t, backup, 64)
}
