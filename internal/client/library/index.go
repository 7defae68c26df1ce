package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/dmitrijs2005/brightstudy/internal/client/models"
)

type Index struct {
	Lessons []IndexEntry `json:"lessons"`
}

type IndexEntry struct {
	LessonID string `json:"lesson_id"`
	Title    string `json:"title"`
	Path     string `json:"path"`
}

// ReadIndex loads lessons/index.json. A missing file is an empty index.
func (l *Library) ReadIndex() (*Index, error) {
	b, err := os.ReadFile(l.IndexPath())
	if errors.Is(err, fs.ErrNotExist) {
		return &Index{Lessons: []IndexEntry{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read lesson index: %w", err)
	}

	var idx Index
	if err := json.Unmarshal(b, &idx); err != nil {
		return nil, fmt.Errorf("decode lesson index: %w", err)
	}
	if idx.Lessons == nil {
		idx.Lessons = []IndexEntry{}
	}
	return &idx, nil
}

// UpdateLessonIndex drops any entry for the lesson and appends a fresh one.
// An index that cannot be decoded is rebuilt from the lesson files on disk.
func (l *Library) UpdateLessonIndex(lesson *models.Lesson) error {
	if err := CheckID(lesson.ID); err != nil {
		return err
	}

	l.indexMu.Lock()
	defer l.indexMu.Unlock()

	idx, err := l.ReadIndex()
	if err != nil {
		idx, err = l.rebuildIndex()
		if err != nil {
			return err
		}
	}

	kept := idx.Lessons[:0]
	for _, e := range idx.Lessons {
		if e.LessonID != lesson.ID {
			kept = append(kept, e)
		}
	}
	idx.Lessons = append(kept, entryFor(lesson))

	return l.writeIndex(idx)
}

// RemoveFromIndex drops the entry for id, if any.
func (l *Library) RemoveFromIndex(id string) error {
	l.indexMu.Lock()
	defer l.indexMu.Unlock()

	idx, err := l.ReadIndex()
	if err != nil {
		return err
	}

	kept := idx.Lessons[:0]
	for _, e := range idx.Lessons {
		if e.LessonID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(idx.Lessons) {
		return nil
	}
	idx.Lessons = kept
	return l.writeIndex(idx)
}

func (l *Library) rebuildIndex() (*Index, error) {
	ids, err := l.LessonIDs()
	if err != nil {
		return nil, err
	}

	idx := &Index{Lessons: make([]IndexEntry, 0, len(ids))}
	for _, id := range ids {
		lesson, err := l.ReadLesson(id)
		if err != nil {
			continue
		}
		idx.Lessons = append(idx.Lessons, entryFor(lesson))
	}
	return idx, nil
}

func (l *Library) writeIndex(idx *Index) error {
	b, err := json.Marshal(idx)
	if err != nil {
		return fmt.Errorf("marshal lesson index: %w", err)
	}
	return writeJSON(l.IndexPath(), b)
}

func entryFor(lesson *models.Lesson) IndexEntry {
	return IndexEntry{
		LessonID: lesson.ID,
		Title:    lesson.DisplayTitle(),
		Path:     lesson.ID + ".json",
	}
}
