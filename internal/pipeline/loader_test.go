package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_PlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "terms.txt")
	require.NoError(t, os.WriteFile(path, []byte("governing law is the state of delaware"), 0o644))

	loader := NewLoader(nil)
	units, err := loader.Load(path, "terms.txt")

	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, 1, units[0].Page)
	assert.Contains(t, units[0].Text, "delaware")
}

func TestLoad_EmptyPlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(path, []byte("   \n\n"), 0o644))

	loader := NewLoader(nil)
	units, err := loader.Load(path, "empty.txt")

	require.NoError(t, err)
	assert.Empty(t, units)
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	loader := NewLoader(nil)
	_, err := loader.Load("/tmp/whatever.exe", "whatever.exe")
	assert.Error(t, err)
}

func TestLoad_ExtensionCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "NOTES.TXT")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

	loader := NewLoader(nil)
	units, err := loader.Load(path, "NOTES.TXT")

	require.NoError(t, err)
	require.Len(t, units, 1)
}

func TestFileMD5_Stable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("same content"), 0o644))

	md5a, err := FileMD5(path)
	require.NoError(t, err)
	md5b, err := FileMD5(path)
	require.NoError(t, err)
	assert.Equal(t, md5a, md5b)
	assert.Len(t, md5a, 32)
}

func TestFileMD5_DiffersByContent(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.txt")
	pathB := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(pathA, []byte("content one"), 0o644))
	require.NoError(t, os.WriteFile(pathB, []byte("content two"), 0o644))

	md5a, err := FileMD5(pathA)
	require.NoError(t, err)
	md5b, err := FileMD5(pathB)
	require.NoError(t, err)
	assert.NotEqual(t, md5a, md5b)
}
