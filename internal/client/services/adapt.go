package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/brightstudy/internal/client/library"
	"github.com/dmitrijs2005/brightstudy/internal/client/models"
	"github.com/dmitrijs2005/brightstudy/internal/client/tutor"
	"github.com/dmitrijs2005/brightstudy/internal/common"
	"github.com/dmitrijs2005/brightstudy/internal/logging"
)

// LessonGenerator produces an adaptive variant of a lesson.
type LessonGenerator interface {
	Generate(ctx context.Context, lesson *models.Lesson, concepts []models.Concept, mode tutor.Mode) (*models.GeneratedLesson, error)
}

// Adapter turns an installed lesson into a beginner or advanced variant and
// stores it next to the synced content.
type Adapter struct {
	Sync SyncService
	Lib  *library.Library
	Gen  LessonGenerator
	Log  logging.Logger
}

// Adapt fails with common.ErrorNotFound when the lesson is not on disk and
// with tutor.ErrNotConfigured when no generator is wired. Concepts missing
// from disk are left out of the prompt.
func (a *Adapter) Adapt(ctx context.Context, lessonID string, mode tutor.Mode) (*models.GeneratedLesson, error) {
	if a.Gen == nil {
		return nil, tutor.ErrNotConfigured
	}

	lesson, err := a.Lib.ReadLesson(lessonID)
	if err != nil {
		return nil, err
	}

	concepts := make([]models.Concept, 0, len(lesson.Concepts))
	for _, cid := range lesson.Concepts {
		c, err := a.Lib.ReadConcept(cid)
		if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrInvalidPayload) {
			a.Log.Warn(ctx, "concept skipped for adaptation", "lesson", lessonID, "concept", cid, "error", err)
			continue
		}
		if err != nil {
			return nil, err
		}
		concepts = append(concepts, *c)
	}

	g, err := a.Gen.Generate(ctx, lesson, concepts, mode)
	if err != nil {
		return nil, fmt.Errorf("generate %s lesson from %s: %w", mode, lessonID, err)
	}
	if err := a.Sync.SaveGenerated(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}
