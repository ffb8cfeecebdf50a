package cookie

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/absolute/path", Resolve("/absolute/path", "/prefix"))
	assert.Equal(t, "relative/path", Resolve("relative/path", ""))
	assert.Equal(t, "/prefix/relative/path", Resolve("relative/path", "/prefix"))
	assert.Equal(t, "/prefix/path", Resolve("relative/../path", "/prefix"))
}

func TestCookie(t *testing.T) {
	t.Parallel()

	t.Run("missing cookie is empty", func(t *testing.T) {
		c, err := Open("newcookie", t.TempDir())
		require.NoError(t, err)
		defer c.Close()
		assert.Equal(t, "", c.Get())
		ok, err := c.GetStruct(&map[string]int{})
		require.NoError(t, err)
		assert.False(t, ok)
	})
	t.Run("existing content", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cookie")
		require.NoError(t, os.WriteFile(path, []byte("content\n"), 0o644))
		c, err := Open(path, "")
		require.NoError(t, err)
		defer c.Close()
		assert.Equal(t, "content\n", c.Get())
	})
	t.Run("set does not modify file before close", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cookie")
		require.NoError(t, os.WriteFile(path, []byte("content1\n"), 0o644))
		c, err := Open(path, "")
		require.NoError(t, err)
		c.Set("content2\n")

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "content1\n", string(data))

		require.NoError(t, c.Close())
		data, err = os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "content2\n", string(data))
	})
	t.Run("close creates directories and file", func(t *testing.T) {
		dir := t.TempDir()
		c, err := Open("sub/cookie", dir)
		require.NoError(t, err)
		c.Set("x")
		require.NoError(t, c.Close())
		_, err = os.Stat(filepath.Join(dir, "sub", "cookie"))
		assert.NoError(t, err)
		assert.NoError(t, c.Close(), "second close is a no-op")
	})
	t.Run("shorter content truncates", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cookie")
		require.NoError(t, os.WriteFile(path, []byte("a long old content"), 0o644))
		c, err := Open(path, "")
		require.NoError(t, err)
		c.Set("new")
		require.NoError(t, c.Close())
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))
	})
	t.Run("double open is locked", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cookie")
		c, err := Open(path, "")
		require.NoError(t, err)
		_, err = Open(path, "")
		assert.True(t, errors.Is(err, ErrLocked))
		require.NoError(t, c.Close())

		again, err := Open(path, "")
		require.NoError(t, err)
		require.NoError(t, again.Close())
	})
}

func TestStruct(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c, err := Open("state.json", dir)
	require.NoError(t, err)
	require.NoError(t, c.SetStruct(map[string]any{"b": 2, "a": []int{1}}))
	require.NoError(t, c.Close())

	data, err := os.ReadFile(filepath.Join(dir, "state.json"))
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": [\n    1\n  ],\n  \"b\": 2\n}\n", string(data))

	c, err = Open("state.json", dir)
	require.NoError(t, err)
	defer c.Close()
	var got struct {
		A []int `json:"a"`
		B int   `json:"b"`
	}
	ok, err := c.GetStruct(&got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []int{1}, got.A)
	assert.Equal(t, 2, got.B)
}

func TestGetStructInvalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cookie")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))
	c, err := Open(path, "")
	require.NoError(t, err)
	defer c.Close()
	var v map[string]any
	_, err = c.GetStruct(&v)
	assert.Error(t, err)
}
