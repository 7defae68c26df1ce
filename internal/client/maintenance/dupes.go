// Package maintenance contains offline repair commands for the content tree.
package maintenance

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/brightstudy/internal/client/library"
	"github.com/dmitrijs2005/brightstudy/internal/client/models"
	"github.com/dmitrijs2005/brightstudy/internal/client/repositories/installed"
	"github.com/dmitrijs2005/brightstudy/internal/cryptox"
	"github.com/dmitrijs2005/brightstudy/internal/dbx"
)

// Group is a set of concept files with identical content.
type Group struct {
	Fingerprint string   `json:"fingerprint"`
	Canonical   string   `json:"canonical"`
	Duplicates  []string `json:"duplicates"`
}

type Report struct {
	Removed        []string `json:"removed"`
	LessonsUpdated []string `json:"lessons_updated"`
}

// FindDuplicates groups stored concepts whose documents match once id and
// version are ignored. Unreadable files are skipped.
func FindDuplicates(lib *library.Library) ([]Group, error) {
	ids, err := lib.ConceptIDs()
	if err != nil {
		return nil, err
	}

	byPrint := make(map[string][]string)
	for _, id := range ids {
		raw, err := lib.ReadConceptRaw(id)
		if err != nil {
			continue
		}
		fp, err := cryptox.Fingerprint(raw, "id", "version")
		if err != nil {
			continue
		}
		byPrint[fp] = append(byPrint[fp], id)
	}

	groups := make([]Group, 0)
	for fp, members := range byPrint {
		if len(members) < 2 {
			continue
		}
		canonical := pickCanonical(members)
		g := Group{Fingerprint: fp, Canonical: canonical}
		for _, m := range members {
			if m != canonical {
				g.Duplicates = append(g.Duplicates, m)
			}
		}
		groups = append(groups, g)
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].Canonical < groups[j].Canonical })
	return groups, nil
}

// pickCanonical prefers a human-chosen id over a generated UUID. members is sorted.
func pickCanonical(members []string) string {
	for _, m := range members {
		if _, err := uuid.Parse(m); err != nil {
			return m
		}
	}
	return members[0]
}

// Cleanup deletes duplicate concept files and their installed rows, then
// points lessons at the canonical ids. Rows are removed in one transaction
// before any file is touched.
func Cleanup(ctx context.Context, db *sql.DB, lib *library.Library, groups []Group) (*Report, error) {
	remap := make(map[string]string)
	for _, g := range groups {
		for _, d := range g.Duplicates {
			remap[d] = g.Canonical
		}
	}
	report := &Report{Removed: []string{}, LessonsUpdated: []string{}}
	if len(remap) == 0 {
		return report, nil
	}

	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := installed.NewSQLiteRepository(tx)
		for old := range remap {
			if err := repo.Delete(ctx, old, models.KindConcept); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, g := range groups {
		for _, d := range g.Duplicates {
			if err := lib.RemoveConcept(d); err != nil {
				return report, err
			}
			report.Removed = append(report.Removed, d)
		}
	}

	lessonIDs, err := lib.LessonIDs()
	if err != nil {
		return report, err
	}
	for _, lid := range lessonIDs {
		changed, err := rewriteLesson(lib, lid, remap)
		if err != nil {
			return report, fmt.Errorf("lesson %s: %w", lid, err)
		}
		if changed {
			report.LessonsUpdated = append(report.LessonsUpdated, lid)
		}
	}

	return report, nil
}

// rewriteLesson swaps concept references found in remap. References may be
// plain ids or objects carrying an "id".
func rewriteLesson(lib *library.Library, id string, remap map[string]string) (bool, error) {
	raw, err := lib.ReadLessonRaw(id)
	if err != nil {
		return false, err
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return false, nil
	}
	var refs []json.RawMessage
	if err := json.Unmarshal(doc["concepts"], &refs); err != nil || len(refs) == 0 {
		return false, nil
	}

	changed := false
	for i, ref := range refs {
		var s string
		if err := json.Unmarshal(ref, &s); err == nil {
			if to, ok := remap[s]; ok {
				refs[i], _ = json.Marshal(to)
				changed = true
			}
			continue
		}

		var obj map[string]json.RawMessage
		if err := json.Unmarshal(ref, &obj); err != nil {
			continue
		}
		if err := json.Unmarshal(obj["id"], &s); err != nil {
			continue
		}
		if to, ok := remap[s]; ok {
			obj["id"], _ = json.Marshal(to)
			refs[i], _ = json.Marshal(obj)
			changed = true
		}
	}
	if !changed {
		return false, nil
	}

	doc["concepts"], err = json.Marshal(refs)
	if err != nil {
		return false, err
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return false, err
	}
	return true, lib.WriteLesson(id, out)
}
