package photos

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListMissingFileIsEmpty(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "photos.json"))
	list, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAppendKeepsEarlierEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "photos.json")
	s := NewStore(path)

	first, err := s.Append(Photo{Src: "/public/uploads/a.jpg", Alt: "A"})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.NotEmpty(t, first.CreatedAt)

	before, err := s.Raw()
	require.NoError(t, err)

	_, err = s.Append(Photo{Src: "/public/uploads/b.jpg", Alt: "B"})
	require.NoError(t, err)

	after, err := s.Raw()
	require.NoError(t, err)
	require.Len(t, after, 2)
	assert.Equal(t, string(before[0]), string(after[0]))

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "A", list[0].Alt)
	assert.Equal(t, "B", list[1].Alt)
}

func TestAppendPreservesUnknownFieldsByteForByte(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photos.json")
	seed := "[\n  {\n    \"src\": \"/a.jpg\",\n    \"extra\": true\n  }\n]\n"
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o644))

	_, err := NewStore(path).Append(Photo{ID: "b", Src: "/b.jpg", CreatedAt: "2026-01-01T00:00:00Z"})
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	got := string(b)
	assert.True(t, strings.HasPrefix(got, "[\n  {\n    \"src\": \"/a.jpg\",\n    \"extra\": true\n  },\n"), got)
	assert.Contains(t, got, `"id": "b"`)
}

func TestAppendKeepsSeedBytes(t *testing.T) {
	tests := []struct {
		name string
		seed string
		keep string
	}{
		{
			name: "compact",
			seed: `[{"src":"/a.jpg","alt":"A"}]`,
			keep: `[{"src":"/a.jpg","alt":"A"}`,
		},
		{
			name: "html characters",
			seed: "[\n  {\"src\": \"/a.jpg\", \"caption\": \"Tom & Jerry <3\"}\n]\n",
			keep: "[\n  {\"src\": \"/a.jpg\", \"caption\": \"Tom & Jerry <3\"}",
		},
		{
			name: "four space indent",
			seed: "[\n    {\n        \"src\": \"/a.jpg\"\n    }\n]",
			keep: "[\n    {\n        \"src\": \"/a.jpg\"\n    }",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "photos.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.seed), 0o644))
			s := NewStore(path)

			_, err := s.Append(Photo{ID: "b", Src: "/b.jpg", Caption: "Q&A <b>", CreatedAt: "2026-01-01T00:00:00Z"})
			require.NoError(t, err)

			b, err := os.ReadFile(path)
			require.NoError(t, err)
			got := string(b)
			assert.True(t, strings.HasPrefix(got, tt.keep+","), got)
			assert.Contains(t, got, `"caption": "Q&A <b>"`)
			assert.NotContains(t, got, `\u0026`)

			list, err := s.List()
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "/a.jpg", list[0].Src)
			assert.Equal(t, "b", list[1].ID)
		})
	}
}

func TestAppendToEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photos.json")
	require.NoError(t, os.WriteFile(path, []byte("[]\n"), 0o644))
	s := NewStore(path)

	_, err := s.Append(Photo{Src: "/a.jpg"})
	require.NoError(t, err)

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "/a.jpg", list[0].Src)
}

func TestAppendRejectsNonArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photos.json")
	require.NoError(t, os.WriteFile(path, []byte("null"), 0o644))

	_, err := NewStore(path).Append(Photo{Src: "/a.jpg"})
	assert.Error(t, err)
}

func TestAppendRejectsMissingSrc(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "photos.json"))
	_, err := s.Append(Photo{Alt: "nothing"})
	assert.True(t, errors.Is(err, ErrInvalidPhoto))
}

func TestCorruptFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photos.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewStore(path).List()
	assert.Error(t, err)
	_, err = NewStore(path).Append(Photo{Src: "/x.jpg"})
	assert.Error(t, err)
}
