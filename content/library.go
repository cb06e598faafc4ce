// Package content serves the site's local writing: a static index.json plus
// one markdown file per note, optionally with YAML front matter.
package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

// IndexFile is the static note index inside the content directory.
const IndexFile = "index.json"

// Note is one markdown document.
type Note struct {
	Slug    string        `json:"slug" yaml:"slug"`
	Title   string        `json:"title" yaml:"title"`
	Date    string        `json:"date" yaml:"date"`
	Summary string        `json:"summary" yaml:"summary"`
	Tags    []string      `json:"tags" yaml:"tags"`
	Draft   bool          `json:"draft" yaml:"draft"`
	HTML    template.HTML `json:"-" yaml:"-"`
}

// Library holds every published note, loaded whole from dir.
type Library struct {
	dir    string
	md     goldmark.Markdown
	policy *bluemonday.Policy

	mu     sync.RWMutex
	notes  []Note
	bySlug map[string]int
}

// NewLibrary returns an empty Library over dir. Call Load to read it.
func NewLibrary(dir string) *Library {
	return &Library{
		dir:    dir,
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy: bluemonday.UGCPolicy(),
		bySlug: map[string]int{},
	}
}

// Dir returns the content directory.
func (l *Library) Dir() string {
	return l.dir
}

// List returns published notes, newest first.
func (l *Library) List() []Note {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Note(nil), l.notes...)
}

// Get returns the note with slug.
func (l *Library) Get(slug string) (Note, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i, ok := l.bySlug[slug]
	if !ok {
		return Note{}, false
	}
	return l.notes[i], true
}

// Load rereads the index and every markdown file. A missing directory is an
// empty library. On error the previously loaded notes are kept.
func (l *Library) Load() error {
	notes, err := l.read()
	if err != nil {
		return err
	}
	bySlug := make(map[string]int, len(notes))
	for i, n := range notes {
		bySlug[n.Slug] = i
	}
	l.mu.Lock()
	l.notes = notes
	l.bySlug = bySlug
	l.mu.Unlock()
	return nil
}

func (l *Library) read() ([]Note, error) {
	entries, err := os.ReadDir(l.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("content: read dir: %w", err)
	}

	index, err := l.readIndex()
	if err != nil {
		return nil, err
	}

	var notes []Note
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".md" {
			continue
		}
		slug := strings.TrimSuffix(e.Name(), ".md")
		note := index[slug]
		note.Slug = slug
		if err := l.readNote(filepath.Join(l.dir, e.Name()), &note); err != nil {
			return nil, err
		}
		if note.Draft {
			continue
		}
		if note.Title == "" {
			note.Title = slug
		}
		notes = append(notes, note)
	}
	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].Date != notes[j].Date {
			return notes[i].Date > notes[j].Date
		}
		return notes[i].Slug < notes[j].Slug
	})
	return notes, nil
}

func (l *Library) readIndex() (map[string]Note, error) {
	b, err := os.ReadFile(filepath.Join(l.dir, IndexFile))
	if errors.Is(err, os.ErrNotExist) {
		return map[string]Note{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("content: read index: %w", err)
	}
	var list []Note
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, fmt.Errorf("content: parse index: %w", err)
	}
	index := make(map[string]Note, len(list))
	for _, n := range list {
		index[n.Slug] = n
	}
	return index, nil
}

// readNote fills note from the file's front matter and renders its body.
// Front matter fields override the index entry.
func (l *Library) readNote(path string, note *Note) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("content: read %s: %w", filepath.Base(path), err)
	}
	fm, body := splitFrontMatter(src)
	if fm != nil {
		var meta Note
		if err := yaml.Unmarshal(fm, &meta); err != nil {
			return fmt.Errorf("content: front matter %s: %w", filepath.Base(path), err)
		}
		merge(note, meta)
	}
	html, err := l.render(body)
	if err != nil {
		return fmt.Errorf("content: render %s: %w", filepath.Base(path), err)
	}
	note.HTML = html
	return nil
}

func merge(dst *Note, src Note) {
	if src.Title != "" {
		dst.Title = src.Title
	}
	if src.Date != "" {
		dst.Date = src.Date
	}
	if src.Summary != "" {
		dst.Summary = src.Summary
	}
	if len(src.Tags) > 0 {
		dst.Tags = src.Tags
	}
	if src.Draft {
		dst.Draft = true
	}
}

func (l *Library) render(md []byte) (template.HTML, error) {
	var buf bytes.Buffer
	if err := l.md.Convert(md, &buf); err != nil {
		return "", err
	}
	return template.HTML(l.policy.SanitizeBytes(buf.Bytes())), nil
}

var fence = []byte("---")

// splitFrontMatter separates a leading "---" delimited YAML block from the body.
func splitFrontMatter(src []byte) (fm, body []byte) {
	src = bytes.TrimPrefix(src, []byte("\xef\xbb\xbf"))
	if !bytes.HasPrefix(src, fence) {
		return nil, src
	}
	rest := src[len(fence):]
	nl := bytes.IndexByte(rest, '\n')
	if nl < 0 || len(bytes.TrimSpace(rest[:nl])) != 0 {
		return nil, src
	}
	rest = rest[nl+1:]
	for off := 0; off < len(rest); {
		end := bytes.IndexByte(rest[off:], '\n')
		var line []byte
		if end < 0 {
			line = rest[off:]
			end = len(rest) - off
		} else {
			line = rest[off : off+end]
		}
		if bytes.Equal(bytes.TrimRight(line, "\r "), fence) {
			next := off + end + 1
			if next > len(rest) {
				next = len(rest)
			}
			return rest[:off], rest[next:]
		}
		off += end + 1
	}
	return nil, src
}
