package library

import (
	"encoding/json"
	"path/filepath"
	"strings"
)

// CatalogLesson is an installed lesson with its concept documents resolved.
type CatalogLesson struct {
	LessonID string            `json:"lesson_id"`
	Title    string            `json:"title"`
	Intro    string            `json:"intro"`
	Concepts []json.RawMessage `json:"concepts"`
	// Missing lists referenced concepts that have no file yet.
	Missing []string `json:"missing,omitempty"`
}

// LoadCatalog walks the lesson index and resolves each lesson's concepts.
// Index entries whose lesson file is gone are skipped.
func (l *Library) LoadCatalog() ([]CatalogLesson, error) {
	idx, err := l.ReadIndex()
	if err != nil {
		return nil, err
	}

	out := make([]CatalogLesson, 0, len(idx.Lessons))
	for _, e := range idx.Lessons {
		id := strings.TrimSuffix(filepath.Base(e.Path), ".json")
		if id == "" || CheckID(id) != nil {
			id = e.LessonID
		}

		lesson, err := l.ReadLesson(id)
		if err != nil {
			continue
		}

		item := CatalogLesson{
			LessonID: lesson.ID,
			Title:    lesson.Title,
			Intro:    lesson.Intro,
			Concepts: make([]json.RawMessage, 0, len(lesson.Concepts)),
		}
		if item.Title == "" {
			item.Title = e.Title
		}

		for _, cid := range lesson.Concepts {
			raw, err := l.ReadConceptRaw(cid)
			if err != nil {
				item.Missing = append(item.Missing, cid)
				continue
			}
			item.Concepts = append(item.Concepts, json.RawMessage(raw))
		}
		out = append(out, item)
	}
	return out, nil
}
