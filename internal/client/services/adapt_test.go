package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/brightstudy/internal/client/models"
	"github.com/dmitrijs2005/brightstudy/internal/client/tutor"
	"github.com/dmitrijs2005/brightstudy/internal/common"
	"github.com/dmitrijs2005/brightstudy/internal/logging"
)

type fakeGenerator struct {
	gotLesson   *models.Lesson
	gotConcepts []models.Concept
	err         error
}

func (f *fakeGenerator) Generate(_ context.Context, lesson *models.Lesson, concepts []models.Concept, mode tutor.Mode) (*models.GeneratedLesson, error) {
	f.gotLesson = lesson
	f.gotConcepts = concepts
	if f.err != nil {
		return nil, f.err
	}
	id := lesson.ID + "_" + string(mode)
	return &models.GeneratedLesson{
		BaseID:   lesson.ID,
		Mode:     string(mode),
		Lesson:   models.Lesson{ID: id, Title: "Adapted", Concepts: models.ConceptRefs{"c1_" + string(mode)}},
		Concepts: []models.Concept{{ID: "c1_" + string(mode), Name: "Easy"}},
	}, nil
}

func seedLesson(t *testing.T, h *harness) {
	t.Helper()
	c1, _ := json.Marshal(concept("c1"))
	require.NoError(t, h.lib.WriteConcept("c1", c1))
	l1, _ := json.Marshal(lesson("l1", "Loops", "c1", "gone"))
	require.NoError(t, h.lib.WriteLesson("l1", l1))
}

func TestAdapter_GeneratesAndStores(t *testing.T) {
	h := newHarness(t)
	seedLesson(t, h)
	gen := &fakeGenerator{}
	a := &Adapter{Sync: h.svc, Lib: h.lib, Gen: gen, Log: logging.Discard()}

	g, err := a.Adapt(context.Background(), "l1", tutor.ModeBeginner)
	require.NoError(t, err)
	assert.Equal(t, "l1_beginner", g.Lesson.ID)

	require.NotNil(t, gen.gotLesson)
	assert.Equal(t, "Loops", gen.gotLesson.Title)
	require.Len(t, gen.gotConcepts, 1)
	assert.Equal(t, "c1", gen.gotConcepts[0].ID)

	stored, err := h.lib.ReadLesson("l1_beginner")
	require.NoError(t, err)
	assert.Equal(t, "Adapted", stored.Title)

	idx, err := h.lib.ReadIndex()
	require.NoError(t, err)
	require.Len(t, idx.Lessons, 1)
	assert.Equal(t, "l1_beginner", idx.Lessons[0].LessonID)
}

func TestAdapter_Errors(t *testing.T) {
	h := newHarness(t)
	seedLesson(t, h)

	a := &Adapter{Sync: h.svc, Lib: h.lib, Log: logging.Discard()}
	_, err := a.Adapt(context.Background(), "l1", tutor.ModeBeginner)
	require.ErrorIs(t, err, tutor.ErrNotConfigured)

	a.Gen = &fakeGenerator{}
	_, err = a.Adapt(context.Background(), "nope", tutor.ModeBeginner)
	require.ErrorIs(t, err, common.ErrorNotFound)

	boom := errors.New("model down")
	a.Gen = &fakeGenerator{err: boom}
	_, err = a.Adapt(context.Background(), "l1", tutor.ModeAdvance)
	require.ErrorIs(t, err, boom)
	_, err = h.lib.ReadLesson("l1_advance")
	require.ErrorIs(t, err, common.ErrorNotFound)
}
