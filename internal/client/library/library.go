// Package library owns the on-disk content tree: payload files for lessons
// and concepts, the lesson index, and the derived paths of downloaded assets.
//
// All writes go through a temp file and a rename, so a reader never sees a
// half-written payload.
package library

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/dmitrijs2005/brightstudy/internal/client/models"
	"github.com/dmitrijs2005/brightstudy/internal/common"
	"github.com/dmitrijs2005/brightstudy/internal/filex"
)

const (
	lessonsDir    = "lessons"
	conceptsDir   = "concepts"
	videosDir     = "assets/videos"
	thumbnailsDir = "assets/thumbnails"
	indexFile     = "index.json"
	filePerm      = 0o640
)

type Library struct {
	root string
	// guards lessons/index.json
	indexMu sync.Mutex
}

func New(root string) *Library {
	return &Library{root: root}
}

func (l *Library) Root() string { return l.root }

func (l *Library) LessonsDir() string { return filepath.Join(l.root, lessonsDir) }
func (l *Library) ConceptsDir() string { return filepath.Join(l.root, conceptsDir) }
func (l *Library) VideosDir() string { return filepath.Join(l.root, filepath.FromSlash(videosDir)) }
func (l *Library) ThumbnailsDir() string { return filepath.Join(l.root, filepath.FromSlash(thumbnailsDir)) }
func (l *Library) IndexPath() string { return filepath.Join(l.LessonsDir(), indexFile) }

func (l *Library) LessonPath(id string) string { return filepath.Join(l.LessonsDir(), id+".json") }
func (l *Library) ConceptPath(id string) string { return filepath.Join(l.ConceptsDir(), id+".json") }
func (l *Library) VideoMetaPath(id string) string { return filepath.Join(l.VideosDir(), id+".json") }

// VideoPath is the binary location of a video asset; ext includes the dot.
func (l *Library) VideoPath(id, ext string) string {
	return filepath.Join(l.VideosDir(), id+ext)
}

func (l *Library) ThumbnailPath(id, ext string) string {
	return filepath.Join(l.ThumbnailsDir(), id+ext)
}

// Init creates the directory skeleton.
func (l *Library) Init() error {
	for _, d := range []string{l.LessonsDir(), l.ConceptsDir(), l.VideosDir(), l.ThumbnailsDir()} {
		if err := filex.EnsureDir(d); err != nil {
			return err
		}
	}
	return nil
}

// CheckID rejects ids that would escape their directory.
func CheckID(id string) error {
	switch {
	case strings.TrimSpace(id) == "":
		return fmt.Errorf("%w: empty id", common.ErrInvalidPayload)
	case strings.ContainsAny(id, `/\`), id == ".", id == "..", strings.Contains(id, ".."):
		return fmt.Errorf("%w: unsafe id %q", common.ErrInvalidPayload, id)
	case id == strings.TrimSuffix(indexFile, ".json"):
		return fmt.Errorf("%w: reserved id %q", common.ErrInvalidPayload, id)
	}
	return nil
}

func (l *Library) WriteLesson(id string, raw json.RawMessage) error {
	if err := CheckID(id); err != nil {
		return err
	}
	return writeJSON(l.LessonPath(id), raw)
}

func (l *Library) WriteConcept(id string, raw json.RawMessage) error {
	if err := CheckID(id); err != nil {
		return err
	}
	return writeJSON(l.ConceptPath(id), raw)
}

func (l *Library) WriteVideoMeta(id string, meta any) error {
	if err := CheckID(id); err != nil {
		return err
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal video meta %s: %w", id, err)
	}
	return writeJSON(l.VideoMetaPath(id), b)
}

func (l *Library) ReadLesson(id string) (*models.Lesson, error) {
	if err := CheckID(id); err != nil {
		return nil, err
	}
	raw, err := l.readRaw(l.LessonPath(id))
	if err != nil {
		return nil, err
	}
	return models.DecodeLesson(raw, id)
}

func (l *Library) ReadConcept(id string) (*models.Concept, error) {
	if err := CheckID(id); err != nil {
		return nil, err
	}
	raw, err := l.readRaw(l.ConceptPath(id))
	if err != nil {
		return nil, err
	}
	return models.DecodeConcept(raw, id)
}

// ReadConceptRaw returns the stored concept document as written.
func (l *Library) ReadConceptRaw(id string) (json.RawMessage, error) {
	if err := CheckID(id); err != nil {
		return nil, err
	}
	return l.readRaw(l.ConceptPath(id))
}

func (l *Library) ReadLessonRaw(id string) (json.RawMessage, error) {
	if err := CheckID(id); err != nil {
		return nil, err
	}
	return l.readRaw(l.LessonPath(id))
}

func (l *Library) RemoveConcept(id string) error {
	if err := CheckID(id); err != nil {
		return err
	}
	if err := os.Remove(l.ConceptPath(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove concept %s: %w", id, err)
	}
	return nil
}

// ConceptIDs lists the ids of all stored concept files, sorted.
func (l *Library) ConceptIDs() ([]string, error) {
	return listIDs(l.ConceptsDir())
}

// LessonIDs lists stored lesson files, excluding the index.
func (l *Library) LessonIDs() ([]string, error) {
	return listIDs(l.LessonsDir())
}

func (l *Library) readRaw(path string) (json.RawMessage, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, common.ErrorNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return b, nil
}

func listIDs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == indexFile || strings.HasPrefix(name, ".") || filepath.Ext(name) != ".json" {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

// writeJSON stores raw pretty-printed. Invalid JSON is refused.
func writeJSON(path string, raw []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return fmt.Errorf("%w: %s: %v", common.ErrInvalidPayload, filepath.Base(path), err)
	}
	buf.WriteByte('\n')

	return filex.WriteFileAtomic(path, buf.Bytes(), filePerm)
}
