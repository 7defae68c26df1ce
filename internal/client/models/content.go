// Package models defines the content kinds managed by the sync client, the
// payload records fetched from the remote catalog and the local install state.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/brightstudy/internal/common"
)

// Kind classifies a syncable content unit.
type Kind string

const (
	KindLesson  Kind = "lesson"
	KindConcept Kind = "concept"
	KindVideo   Kind = "video"
)

// SyncOrder is the order kinds are reconciled in. Concepts go first because
// lessons reference them.
var SyncOrder = []Kind{KindConcept, KindLesson, KindVideo}

// ParseKind accepts the singular or plural name of a kind, case-insensitive.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lesson", "lessons":
		return KindLesson, nil
	case "concept", "concepts":
		return KindConcept, nil
	case "video", "videos":
		return KindVideo, nil
	}
	return "", fmt.Errorf("%w: %q", common.ErrUnknownKind, s)
}

// Plural is used for grouping keys in previews and directory names.
func (k Kind) Plural() string {
	return string(k) + "s"
}

// InventoryItem is one row of a remote inventory listing.
type InventoryItem struct {
	ID      string `json:"id"`
	Version int64  `json:"version"`
}

// Document is a fetched payload plus the version it represents.
type Document struct {
	Kind            Kind
	ID              string
	Version         int64
	Raw             json.RawMessage
	UpdateAvailable bool
}

// Lesson is an ordered walk over a set of concepts.
type Lesson struct {
	ID       string      `json:"lesson_id" validate:"required"`
	Title    string      `json:"title"`
	Intro    string      `json:"intro,omitempty"`
	Outro    string      `json:"outro,omitempty"`
	Concepts ConceptRefs `json:"concepts"`
}

// DisplayTitle falls back to the id when the payload has no title.
func (l *Lesson) DisplayTitle() string {
	if strings.TrimSpace(l.Title) == "" {
		return l.ID
	}
	return l.Title
}

// ConceptRefs is the list of concept ids a lesson walks through. The remote
// sometimes embeds whole concept objects instead of ids; only the id is kept.
type ConceptRefs []string

func (c *ConceptRefs) UnmarshalJSON(b []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}

	refs := make([]string, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) > 0 && item[0] == '"' {
			var id string
			if err := json.Unmarshal(item, &id); err != nil {
				return err
			}
			refs = append(refs, id)
			continue
		}

		var obj struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			return err
		}
		if obj.ID == "" {
			return fmt.Errorf("concept reference without id: %s", string(item))
		}
		refs = append(refs, obj.ID)
	}

	*c = refs
	return nil
}

// Check is the comprehension question attached to a concept.
type Check struct {
	Question      string   `json:"question"`
	DesiredAnswer string   `json:"desired_answer,omitempty"`
	Keywords      []string `json:"keywords,omitempty"`
}

// Concept is a single explained idea with optional embedded videos.
type Concept struct {
	ID       string     `json:"id" validate:"required"`
	Name     string     `json:"name,omitempty"`
	Explain  string     `json:"explain,omitempty"`
	Example  string     `json:"example,omitempty"`
	Examples []string   `json:"examples,omitempty"`
	Check    *Check     `json:"check,omitempty"`
	Videos   []VideoRef `json:"videos,omitempty" validate:"dive"`
}

// VideoRef is an asset reference embedded in a concept payload. It is not
// versioned; presence of the downloaded file is what counts.
type VideoRef struct {
	ID           string        `json:"id" validate:"required"`
	URL          string        `json:"url" validate:"required,asseturl"`
	ThumbnailURL string        `json:"thumbnail_url,omitempty" validate:"omitempty,asseturl"`
	Metadata     VideoMetadata `json:"metadata,omitempty"`
}

// UnmarshalJSON accepts "video_id" as an alias for "id".
func (v *VideoRef) UnmarshalJSON(b []byte) error {
	type plain VideoRef
	var aux struct {
		plain
		VideoID string `json:"video_id"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*v = VideoRef(aux.plain)
	if v.ID == "" {
		v.ID = aux.VideoID
	}
	return nil
}

// VideoMetadata carries the optional facts the remote knows about an asset.
type VideoMetadata struct {
	Size     int64   `json:"size,omitempty"`
	Duration float64 `json:"duration,omitempty"`
	MimeType string  `json:"mime_type,omitempty"`
}

// Video is the standalone video kind.
type Video struct {
	ID           string  `json:"id" validate:"required"`
	Title        string  `json:"title,omitempty"`
	URL          string  `json:"url" validate:"required,asseturl"`
	ThumbnailURL string  `json:"thumbnail_url,omitempty" validate:"omitempty,asseturl"`
	Duration     float64 `json:"duration,omitempty"`
	Size         int64   `json:"size,omitempty"`
}

// Ref converts a standalone video into the asset reference the downloader uses.
func (v *Video) Ref() VideoRef {
	return VideoRef{
		ID:           v.ID,
		URL:          v.URL,
		ThumbnailURL: v.ThumbnailURL,
		Metadata:     VideoMetadata{Size: v.Size, Duration: v.Duration},
	}
}

// GeneratedLesson is an adaptive variant of an installed lesson. It is stored
// like a remote lesson but never recorded as installed.
type GeneratedLesson struct {
	BaseID   string
	Mode     string
	Lesson   Lesson
	Concepts []Concept
}

// DecodeLesson parses and validates a lesson payload. fallbackID fills a
// missing lesson_id.
func DecodeLesson(raw json.RawMessage, fallbackID string) (*Lesson, error) {
	var l Lesson
	if err := decode(raw, &l); err != nil {
		return nil, err
	}
	if l.ID == "" {
		l.ID = fallbackID
	}
	if err := validate(&l); err != nil {
		return nil, err
	}
	return &l, nil
}

// DecodeConcept parses and validates a concept payload.
func DecodeConcept(raw json.RawMessage, fallbackID string) (*Concept, error) {
	var c Concept
	if err := decode(raw, &c); err != nil {
		return nil, err
	}
	if c.ID == "" {
		c.ID = fallbackID
	}
	if err := validate(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// DecodeVideo parses and validates a video payload.
func DecodeVideo(raw json.RawMessage, fallbackID string) (*Video, error) {
	var v Video
	if err := decode(raw, &v); err != nil {
		return nil, err
	}
	if v.ID == "" {
		v.ID = fallbackID
	}
	if err := validate(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

func decode(raw json.RawMessage, v any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return fmt.Errorf("%w: empty document", common.ErrInvalidPayload)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidPayload, err)
	}
	return nil
}
