// Package photos keeps the gallery as a flat JSON array on disk. Appends
// splice the new entry in before the closing bracket; the bytes of earlier
// entries are never re-encoded.
package photos

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidPhoto is returned when an entry has no image source.
var ErrInvalidPhoto = errors.New("photos: entry requires a src")

var errNotArray = errors.New("gallery file is not a JSON array")

// Photo is one gallery entry.
type Photo struct {
	ID        string `json:"id"`
	Src       string `json:"src"`
	Alt       string `json:"alt,omitempty"`
	Caption   string `json:"caption,omitempty"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Store appends to and reads the gallery file at path.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore returns a Store for path. The file is created on first append.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// List returns every entry. A missing file is an empty gallery.
func (s *Store) List() ([]Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.readRaw()
	if err != nil {
		return nil, err
	}
	list := make([]Photo, 0, len(raw))
	for i, r := range raw {
		var p Photo
		if err := json.Unmarshal(r, &p); err != nil {
			return nil, fmt.Errorf("photos: decode entry %d: %w", i, err)
		}
		list = append(list, p)
	}
	return list, nil
}

// Raw returns the file's entries undecoded, preserving unknown fields.
func (s *Store) Raw() ([]json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readRaw()
}

// Append adds p to the end of the gallery. Earlier entries keep their exact
// bytes, including formatting and fields this package does not know about.
func (s *Store) Append(p Photo) (Photo, error) {
	p.Src = strings.TrimSpace(p.Src)
	if p.Src == "" {
		return Photo{}, ErrInvalidPhoto
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt == "" {
		p.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.readFile()
	if err != nil {
		return Photo{}, err
	}
	entry, err := encodeEntry(p)
	if err != nil {
		return Photo{}, err
	}
	next, err := spliceEntry(current, entry)
	if err != nil {
		return Photo{}, fmt.Errorf("photos: parse %s: %w", s.path, err)
	}
	if err := s.writeFile(next); err != nil {
		return Photo{}, err
	}
	return p, nil
}

// encodeEntry renders p indented as an array element, without HTML escaping.
func encodeEntry(p Photo) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("  ", "  ")
	if err := enc.Encode(p); err != nil {
		return nil, fmt.Errorf("photos: encode entry: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// spliceEntry inserts entry as the last element of the JSON array in doc.
// An empty doc starts a new array.
func spliceEntry(doc, entry []byte) ([]byte, error) {
	if len(bytes.TrimSpace(doc)) == 0 {
		return append(append([]byte("[\n  "), entry...), "\n]\n"...), nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(doc, &raw); err != nil {
		return nil, err
	}
	end := bytes.LastIndexByte(doc, ']')
	if end < 0 {
		return nil, errNotArray
	}
	head := bytes.TrimRight(doc[:end], " \t\r\n")

	out := make([]byte, 0, len(head)+len(entry)+8)
	out = append(out, head...)
	if len(raw) > 0 {
		out = append(out, ',')
	}
	out = append(out, "\n  "...)
	out = append(out, entry...)
	out = append(out, "\n]\n"...)
	return out, nil
}

func (s *Store) readFile() ([]byte, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("photos: read %s: %w", s.path, err)
	}
	return b, nil
}

func (s *Store) readRaw() ([]json.RawMessage, error) {
	b, err := s.readFile()
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return []json.RawMessage{}, nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("photos: parse %s: %w", s.path, err)
	}
	return raw, nil
}

// writeFile replaces the file via a temp file in the same directory.
func (s *Store) writeFile(b []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("photos: create dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".photos-*.json")
	if err != nil {
		return fmt.Errorf("photos: create temp file: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("photos: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("photos: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("photos: replace %s: %w", s.path, err)
	}
	return nil
}
