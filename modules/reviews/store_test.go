package reviews

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "reviews.json"))
}

func TestAppendDefaults(t *testing.T) {
	store := tempStore(t)

	before := time.Now().UnixMilli()
	review, err := store.Append(5, "", "")
	require.NoError(t, err)

	require.Equal(t, 5, review.Rating)
	require.Equal(t, "", review.Feedback)
	require.Equal(t, "Anonymous", review.User)
	require.GreaterOrEqual(t, review.Timestamp, before)
	require.LessOrEqual(t, review.Timestamp, time.Now().UnixMilli())
}

func TestAppendPreservesOrder(t *testing.T) {
	store := tempStore(t)

	_, err := store.Append(1, "first", "Alice")
	require.NoError(t, err)
	_, err = store.Append(2, "second", "Bob")
	require.NoError(t, err)
	_, err = store.Append(3, "third", "Carol")
	require.NoError(t, err)

	all := store.All()
	require.Len(t, all, 3)
	require.Equal(t, "first", all[0].Feedback)
	require.Equal(t, "second", all[1].Feedback)
	require.Equal(t, "third", all[2].Feedback)
	require.Equal(t, 3, store.Count())
}

func TestStoreSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reviews.json")

	first := NewStore(path)
	_, err := first.Append(4, "great", "Alice")
	require.NoError(t, err)

	second := NewStore(path)
	all := second.All()
	require.Len(t, all, 1)
	require.Equal(t, "great", all[0].Feedback)
}

func TestMissingFileReadsEmpty(t *testing.T) {
	store := tempStore(t)

	require.Empty(t, store.All())
	require.Zero(t, store.Count())
}

func TestCorruptFileReadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reviews.json")
	require.NoError(t, os.WriteFile(path, []byte("not json{"), 0o644))

	store := NewStore(path)
	require.Empty(t, store.All())

	// Appending over a corrupt file starts the log fresh.
	_, err := store.Append(3, "", "Bob")
	require.NoError(t, err)
	require.Equal(t, 1, store.Count())
}

func TestFileIsIndentedJSONArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reviews.json")
	store := NewStore(path)

	_, err := store.Append(5, "nice", "Alice")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	require.True(t, strings.HasPrefix(text, "[\n"), "file should be a JSON array")
	require.Contains(t, text, "  {", "entries should be two-space indented")
	require.Contains(t, text, `"user": "Alice"`)
}
