// Package cookie stores state between consecutive plugin runs, e.g. the last
// counter value needed to compute a rate.
package cookie

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// ErrLocked is returned when the cookie file is already held by another
// Cookie, in this process or another one.
var ErrLocked = errors.New("cookie is locked")

// Cookie is a file that is exclusively locked from Open until Close. Content
// set during that time is written on Close.
type Cookie struct {
	path  string
	file  *os.File
	old   []byte
	new   []byte
	dirty bool
}

// Open opens and locks the cookie file, creating it if needed. A relative
// name is resolved against defaultDir when that is not empty.
func Open(name, defaultDir string) (*Cookie, error) {
	c := &Cookie{path: Resolve(name, defaultDir)}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return nil, fmt.Errorf("cannot create cookie directory: %w", err)
	}
	f, err := os.OpenFile(c.path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("cannot open cookie: %w", err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, fmt.Errorf("%s: %w", c.path, ErrLocked)
		}
		return nil, fmt.Errorf("cannot lock cookie: %w", err)
	}
	c.file = f

	c.old, err = io.ReadAll(f)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("cannot read cookie: %w", err)
	}
	return c, nil
}

// Resolve returns the cookie path for name.
func Resolve(name, defaultDir string) string {
	if defaultDir != "" && !filepath.IsAbs(name) {
		return filepath.Clean(filepath.Join(defaultDir, name))
	}
	return name
}

// Path returns the cookie file path.
func (c *Cookie) Path() string {
	return c.path
}

// Get returns the content the cookie had when it was opened.
func (c *Cookie) Get() string {
	return string(c.old)
}

// Set replaces the content. It is written on Close.
func (c *Cookie) Set(content string) {
	c.new = []byte(content)
	c.dirty = true
}

// GetStruct decodes the JSON content into v. It returns false if the cookie
// was empty.
func (c *Cookie) GetStruct(v any) (bool, error) {
	if len(c.old) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(c.old, v); err != nil {
		return false, fmt.Errorf("cannot decode cookie %s: %w", c.path, err)
	}
	return true, nil
}

// SetStruct stores v as indented JSON. Map keys are sorted.
func (c *Cookie) SetStruct(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot encode cookie: %w", err)
	}
	c.Set(string(data) + "\n")
	return nil
}

// Close writes new content if any was set and releases the lock.
func (c *Cookie) Close() error {
	if c.file == nil {
		return nil
	}
	f := c.file
	c.file = nil

	var err error
	if c.dirty {
		err = rewrite(f, c.new)
	}
	// closing the descriptor releases the flock
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("cannot write cookie %s: %w", c.path, err)
	}
	return nil
}

func rewrite(f *os.File, data []byte) error {
	if err := f.Truncate(0); err != nil {
		return err
	}
	if _, err := f.WriteAt(data, 0); err != nil {
		return err
	}
	return f.Sync()
}
