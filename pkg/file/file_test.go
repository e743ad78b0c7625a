package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileService_JsonRoundTrip(t *testing.T) {
	fs := NewFileService()
	dir := filepath.Join(t.TempDir(), "nested")
	path := filepath.Join(dir, "state.json")

	require.NoError(t, fs.WriteJsonFile(path, map[string]bool{"a": true}))
	require.NoError(t, fs.WriteJsonFile(path, map[string]bool{"b": false}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files should be renamed away")
	assert.Equal(t, "state.json", entries[0].Name())

	var got map[string]bool
	require.NoError(t, fs.ReadJsonFile(path, &got))
	assert.Equal(t, map[string]bool{"b": false}, got)
}

func TestFileService_ReadYamlFile(t *testing.T) {
	fs := NewFileService()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: home\nradius: 150\n"), 0600))

	var got struct {
		Name   string `yaml:"name"`
		Radius int    `yaml:"radius"`
	}
	require.NoError(t, fs.ReadYamlFile(path, &got))
	assert.Equal(t, "home", got.Name)
	assert.Equal(t, 150, got.Radius)
}

func TestFileService_ReadYamlFileRejectsUnknownKeys(t *testing.T) {
	fs := NewFileService()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: home\nradious: 150\n"), 0600))

	var got struct {
		Name string `yaml:"name"`
	}
	err := fs.ReadYamlFile(path, &got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "radious")
}

func TestFileService_ReadYamlFileEmpty(t *testing.T) {
	fs := NewFileService()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0600))

	var got struct{}
	assert.ErrorContains(t, fs.ReadYamlFile(path, &got), "is empty")
}

func TestFileService_Missing(t *testing.T) {
	fs := NewFileService()
	path := filepath.Join(t.TempDir(), "missing")

	var v any
	err := fs.ReadJsonFile(path, &v)
	assert.True(t, os.IsNotExist(err))

	_, err = fs.ReadFileRaw(path)
	assert.True(t, os.IsNotExist(err))
}
