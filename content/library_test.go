package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadMergesIndexAndFrontMatter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, IndexFile, `[
  {"slug": "hello", "title": "Hello", "date": "2024-01-01", "summary": "first"},
  {"slug": "later", "title": "Later", "date": "2024-03-01"}
]`)
	writeFile(t, dir, "hello.md", "# Hi\n\nSome *text*.\n")
	writeFile(t, dir, "later.md", "---\ntitle: Later, renamed\ntags: [go, web]\n---\nBody <script>alert(1)</script>\n")
	writeFile(t, dir, "draft.md", "---\ntitle: Draft\ndraft: true\n---\nhidden\n")
	writeFile(t, dir, "notes.txt", "ignored")

	lib := NewLibrary(dir)
	require.NoError(t, lib.Load())

	notes := lib.List()
	require.Len(t, notes, 2)
	assert.Equal(t, "later", notes[0].Slug)
	assert.Equal(t, "Later, renamed", notes[0].Title)
	assert.Equal(t, []string{"go", "web"}, notes[0].Tags)
	assert.NotContains(t, string(notes[0].HTML), "<script>")

	hello, ok := lib.Get("hello")
	require.True(t, ok)
	assert.Equal(t, "first", hello.Summary)
	assert.Contains(t, string(hello.HTML), "<h1")
	assert.Contains(t, string(hello.HTML), "<em>text</em>")

	_, ok = lib.Get("draft")
	assert.False(t, ok)
}

func TestLoadMissingDir(t *testing.T) {
	lib := NewLibrary(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, lib.Load())
	assert.Empty(t, lib.List())
}

func TestLoadKeepsPreviousOnError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "a")
	lib := NewLibrary(dir)
	require.NoError(t, lib.Load())

	writeFile(t, dir, IndexFile, "{not json")
	assert.Error(t, lib.Load())
	assert.Len(t, lib.List(), 1)
}

func TestSplitFrontMatter(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		wantFM string
		body   string
	}{
		{"none", "# Title\n", "", "# Title\n"},
		{"basic", "---\ntitle: x\n---\nbody\n", "title: x\n", "body\n"},
		{"crlf", "---\r\ntitle: x\r\n---\r\nbody", "title: x\r\n", "body"},
		{"unterminated", "---\ntitle: x\n", "", "---\ntitle: x\n"},
		{"rule not fence", "---- \ntext", "", "---- \ntext"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, body := splitFrontMatter([]byte(tt.in))
			if string(fm) != tt.wantFM {
				t.Errorf("front matter = %q, want %q", fm, tt.wantFM)
			}
			if string(body) != tt.body {
				t.Errorf("body = %q, want %q", body, tt.body)
			}
		})
	}
}

func TestWatchReloads(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	lib := NewLibrary(dir)
	require.NoError(t, lib.Load())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- lib.Watch(ctx, 20*time.Millisecond, zerolog.Nop()) }()

	assert.Eventually(t, func() bool {
		// Rewrite until the watcher has registered and picked it up.
		writeFile(t, dir, "fresh.md", "---\ntitle: Fresh\n---\nnew")
		_, ok := lib.Get("fresh")
		return ok
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestRelevant(t *testing.T) {
	for name, want := range map[string]bool{
		"a.md":        true,
		IndexFile:     true,
		"a.md.swp":    false,
		"photos.json": false,
	} {
		if got := relevant(fsnotify.Event{Name: filepath.Join("x", name), Op: fsnotify.Write}); got != want {
			t.Errorf("relevant(%q) = %v, want %v", name, got, want)
		}
	}
	if relevant(fsnotify.Event{Name: "a.md", Op: fsnotify.Chmod}) {
		t.Error("chmod should not trigger a reload")
	}
}
