package library

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/brightstudy/internal/client/models"
	"github.com/dmitrijs2005/brightstudy/internal/common"
)

func newLib(t *testing.T) *Library {
	t.Helper()
	l := New(t.TempDir())
	require.NoError(t, l.Init())
	return l
}

func TestPaths(t *testing.T) {
	l := New("/data")

	assert.Equal(t, filepath.FromSlash("/data/lessons/l1.json"), l.LessonPath("l1"))
	assert.Equal(t, filepath.FromSlash("/data/concepts/c1.json"), l.ConceptPath("c1"))
	assert.Equal(t, filepath.FromSlash("/data/assets/videos/v1.mp4"), l.VideoPath("v1", ".mp4"))
	assert.Equal(t, filepath.FromSlash("/data/assets/videos/v1.json"), l.VideoMetaPath("v1"))
	assert.Equal(t, filepath.FromSlash("/data/assets/thumbnails/v1.jpg"), l.ThumbnailPath("v1", ".jpg"))
	assert.Equal(t, filepath.FromSlash("/data/lessons/index.json"), l.IndexPath())
}

func TestInit_CreatesSkeleton(t *testing.T) {
	l := newLib(t)
	for _, d := range []string{l.LessonsDir(), l.ConceptsDir(), l.VideosDir(), l.ThumbnailsDir()} {
		fi, err := os.Stat(d)
		require.NoError(t, err)
		assert.True(t, fi.IsDir())
	}
}

func TestCheckID(t *testing.T) {
	tests := []struct {
		id string
		ok bool
	}{
		{"c1", true},
		{"concept_loops-2", true},
		{"", false},
		{"  ", false},
		{"../etc", false},
		{"a/b", false},
		{`a\b`, false},
		{"index", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			err := CheckID(tt.id)
			if tt.ok {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, common.ErrInvalidPayload)
			}
		})
	}
}

func TestWriteConcept_PrettyPrintsAndRoundTrips(t *testing.T) {
	l := newLib(t)

	require.NoError(t, l.WriteConcept("c1", json.RawMessage(`{"id":"c1","name":"Loops","videos":[{"id":"v1","url":"http://h/v1.mp4"}]}`)))

	b, err := os.ReadFile(l.ConceptPath("c1"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "\n  \"name\": \"Loops\"")

	c, err := l.ReadConcept("c1")
	require.NoError(t, err)
	assert.Equal(t, "Loops", c.Name)
	require.Len(t, c.Videos, 1)
	assert.Equal(t, "v1", c.Videos[0].ID)
}

func TestWriteConcept_OverwritesWholeFile(t *testing.T) {
	l := newLib(t)

	require.NoError(t, l.WriteConcept("c1", json.RawMessage(`{"id":"c1","name":"a very long name that will shrink"}`)))
	require.NoError(t, l.WriteConcept("c1", json.RawMessage(`{"id":"c1","name":"b"}`)))

	c, err := l.ReadConcept("c1")
	require.NoError(t, err)
	assert.Equal(t, "b", c.Name)
}

func TestWriteConcept_RejectsInvalidJSONAndLeavesNoFile(t *testing.T) {
	l := newLib(t)

	err := l.WriteConcept("c1", json.RawMessage(`{"id":`))
	require.ErrorIs(t, err, common.ErrInvalidPayload)

	_, err = os.Stat(l.ConceptPath("c1"))
	assert.True(t, os.IsNotExist(err))

	entries, err := os.ReadDir(l.ConceptsDir())
	require.NoError(t, err)
	assert.Empty(t, entries, "no temp files must remain")
}

func TestWriteLesson_UnsafeID(t *testing.T) {
	l := newLib(t)
	require.ErrorIs(t, l.WriteLesson("../x", json.RawMessage(`{}`)), common.ErrInvalidPayload)
}

func TestReadConcept_Missing(t *testing.T) {
	l := newLib(t)
	_, err := l.ReadConcept("nope")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestWriteVideoMeta(t *testing.T) {
	l := newLib(t)

	meta := map[string]any{"id": "v1", "size": 3}
	require.NoError(t, l.WriteVideoMeta("v1", meta))

	b, err := os.ReadFile(l.VideoMetaPath("v1"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"v1","size":3}`, string(b))
}

func TestConceptIDs_SkipsTempAndForeignFiles(t *testing.T) {
	l := newLib(t)

	require.NoError(t, l.WriteConcept("b", json.RawMessage(`{"id":"b"}`)))
	require.NoError(t, l.WriteConcept("a", json.RawMessage(`{"id":"a"}`)))
	require.NoError(t, os.WriteFile(filepath.Join(l.ConceptsDir(), ".a.json.123.tmp"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(l.ConceptsDir(), "notes.txt"), []byte("x"), 0o600))

	ids, err := l.ConceptIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestRemoveConcept_Idempotent(t *testing.T) {
	l := newLib(t)
	require.NoError(t, l.WriteConcept("c1", json.RawMessage(`{"id":"c1"}`)))

	require.NoError(t, l.RemoveConcept("c1"))
	require.NoError(t, l.RemoveConcept("c1"))

	ids, err := l.ConceptIDs()
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestUpdateLessonIndex_CreatesThenReplacesEntry(t *testing.T) {
	l := newLib(t)

	require.NoError(t, l.UpdateLessonIndex(&models.Lesson{ID: "l1", Title: "First"}))
	require.NoError(t, l.UpdateLessonIndex(&models.Lesson{ID: "l2"}))
	require.NoError(t, l.UpdateLessonIndex(&models.Lesson{ID: "l1", Title: "First v2"}))

	idx, err := l.ReadIndex()
	require.NoError(t, err)

	want := []IndexEntry{
		{LessonID: "l2", Title: "l2", Path: "l2.json"},
		{LessonID: "l1", Title: "First v2", Path: "l1.json"},
	}
	if diff := cmp.Diff(want, idx.Lessons); diff != "" {
		t.Fatalf("index mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateLessonIndex_RebuildsCorruptIndex(t *testing.T) {
	l := newLib(t)

	require.NoError(t, l.WriteLesson("old", json.RawMessage(`{"lesson_id":"old","title":"Old"}`)))
	require.NoError(t, os.WriteFile(l.IndexPath(), []byte("{broken"), 0o600))

	require.NoError(t, l.UpdateLessonIndex(&models.Lesson{ID: "new", Title: "New"}))

	idx, err := l.ReadIndex()
	require.NoError(t, err)
	require.Len(t, idx.Lessons, 2)
	assert.Equal(t, "old", idx.Lessons[0].LessonID)
	assert.Equal(t, "new", idx.Lessons[1].LessonID)
}

func TestUpdateLessonIndex_Concurrent(t *testing.T) {
	l := newLib(t)

	var wg sync.WaitGroup
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			assert.NoError(t, l.UpdateLessonIndex(&models.Lesson{ID: id}))
		}(id)
	}
	wg.Wait()

	idx, err := l.ReadIndex()
	require.NoError(t, err)
	assert.Len(t, idx.Lessons, 6)
}

func TestRemoveFromIndex(t *testing.T) {
	l := newLib(t)
	require.NoError(t, l.UpdateLessonIndex(&models.Lesson{ID: "l1"}))
	require.NoError(t, l.UpdateLessonIndex(&models.Lesson{ID: "l2"}))

	require.NoError(t, l.RemoveFromIndex("l1"))
	require.NoError(t, l.RemoveFromIndex("missing"))

	idx, err := l.ReadIndex()
	require.NoError(t, err)
	require.Len(t, idx.Lessons, 1)
	assert.Equal(t, "l2", idx.Lessons[0].LessonID)
}

func TestReadIndex_MissingIsEmpty(t *testing.T) {
	l := New(t.TempDir())
	idx, err := l.ReadIndex()
	require.NoError(t, err)
	assert.Empty(t, idx.Lessons)
}

func TestLoadCatalog_ResolvesConceptsAndSkipsMissingLessons(t *testing.T) {
	l := newLib(t)

	require.NoError(t, l.WriteConcept("c1", json.RawMessage(`{"id":"c1","name":"One"}`)))
	require.NoError(t, l.WriteLesson("l1", json.RawMessage(`{"lesson_id":"l1","title":"Lesson","intro":"hi","concepts":["c1",{"id":"c2"}]}`)))
	require.NoError(t, l.UpdateLessonIndex(&models.Lesson{ID: "l1", Title: "Lesson"}))
	require.NoError(t, l.UpdateLessonIndex(&models.Lesson{ID: "ghost"}))

	cat, err := l.LoadCatalog()
	require.NoError(t, err)
	require.Len(t, cat, 1)

	got := cat[0]
	assert.Equal(t, "l1", got.LessonID)
	assert.Equal(t, "Lesson", got.Title)
	assert.Equal(t, "hi", got.Intro)
	require.Len(t, got.Concepts, 1)
	assert.JSONEq(t, `{"id":"c1","name":"One"}`, string(got.Concepts[0]))
	assert.Equal(t, []string{"c2"}, got.Missing)
}
