package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/brightstudy/internal/client/library"
	"github.com/dmitrijs2005/brightstudy/internal/client/models"
	"github.com/dmitrijs2005/brightstudy/internal/client/services"
	"github.com/dmitrijs2005/brightstudy/internal/client/tutor"
)

// LessonAdapter is implemented by services.Adapter.
type LessonAdapter interface {
	Adapt(ctx context.Context, lessonID string, mode tutor.Mode) (*models.GeneratedLesson, error)
}

type SyncHandler struct {
	sync    services.SyncService
	adapter LessonAdapter
}

func NewSyncHandler(sync services.SyncService, adapter LessonAdapter) *SyncHandler {
	return &SyncHandler{sync: sync, adapter: adapter}
}

func Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// GET /api/preview
func (h *SyncHandler) Preview(c *gin.Context) {
	plan, err := h.sync.Preview(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, plan)
}

// POST /api/apply
func (h *SyncHandler) Apply(c *gin.Context) {
	summary, err := h.sync.Apply(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, summary)
}

// GET /api/installed
func (h *SyncHandler) Installed(c *gin.Context) {
	rows, err := h.sync.Installed(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if rows == nil {
		rows = []*models.InstalledRecord{}
	}
	RespondOK(c, gin.H{"installed": rows})
}

// GET /api/lessons
func (h *SyncHandler) Lessons(c *gin.Context) {
	lessons, err := h.sync.Catalog(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if lessons == nil {
		lessons = []library.CatalogLesson{}
	}
	RespondOK(c, gin.H{"lessons": lessons})
}

// POST /api/install/:kind/:id
func (h *SyncHandler) Install(c *gin.Context) {
	kind, err := models.ParseKind(c.Param("kind"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	out, err := h.sync.Install(c.Request.Context(), kind, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, out)
}

// POST /api/lessons/:id/adapt?mode=Beginner
func (h *SyncHandler) Adapt(c *gin.Context) {
	if h.adapter == nil {
		respondServiceError(c, tutor.ErrNotConfigured)
		return
	}
	mode, err := tutor.ParseMode(c.DefaultQuery("mode", string(tutor.ModeBeginner)))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_mode", err)
		return
	}
	g, err := h.adapter.Adapt(c.Request.Context(), c.Param("id"), mode)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"lesson": g.Lesson, "concepts": g.Concepts, "base_id": g.BaseID, "mode": g.Mode})
}
