// Package kvfile reads and rewrites line oriented "key;value" files.
package kvfile

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"storefront/internal/apperr"
)

const separator = ";"

// Entry is one line of a file. The value is everything after the first
// separator.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// File is a key;value file on disk. Writes through one File are serialized.
type File struct {
	path string
	mu   sync.Mutex
}

// Open returns a File for path. The file is read on every call, not here.
func Open(path string) *File {
	return &File{path: path}
}

// Path returns the file location.
func (f *File) Path() string { return f.path }

// Entries returns every line in file order. Lines without a separator and
// blank lines are skipped.
func (f *File) Entries() ([]Entry, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, apperr.Wrap(apperr.Persistence, "kvfile.read", err)
	}
	return parse(data), nil
}

// Get returns the trimmed value stored under key.
func (f *File) Get(key string) (string, bool, error) {
	entries, err := f.Entries()
	if err != nil {
		return "", false, err
	}
	for _, e := range entries {
		if e.Key == key {
			return strings.TrimSpace(e.Value), true, nil
		}
	}
	return "", false, nil
}

// Map returns the entries keyed by key; a later duplicate wins.
func (f *File) Map() (map[string]string, error) {
	entries, err := f.Entries()
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, len(entries))
	for _, e := range entries {
		m[e.Key] = e.Value
	}
	return m, nil
}

// Set overwrites the value of every line whose key equals key exactly and
// leaves other lines untouched. A key not present yields NotFound.
func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		return apperr.Wrap(apperr.Persistence, "kvfile.set", err)
	}

	var out bytes.Buffer
	found := false
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if k, _, ok := strings.Cut(line, separator); ok && k == key {
			line = k + separator + value
			found = true
		}
		out.WriteString(line)
		out.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return apperr.Wrap(apperr.Persistence, "kvfile.set", err)
	}
	if !found {
		return apperr.Newf(apperr.NotFound, "kvfile.set", "unknown field: %s", key)
	}
	return f.replace(out.Bytes())
}

// replace writes data next to the file and renames it into place.
func (f *File) replace(data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*")
	if err != nil {
		return apperr.Wrap(apperr.Persistence, "kvfile.set", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return apperr.Wrap(apperr.Persistence, "kvfile.set", err)
	}
	if err := tmp.Close(); err != nil {
		return apperr.Wrap(apperr.Persistence, "kvfile.set", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return apperr.Wrap(apperr.Persistence, "kvfile.set", fmt.Errorf("failed to replace %s: %w", f.path, err))
	}
	return nil
}

func parse(data []byte) []Entry {
	var entries []Entry
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		k, v, ok := strings.Cut(line, separator)
		if !ok {
			continue
		}
		entries = append(entries, Entry{Key: k, Value: v})
	}
	return entries
}
