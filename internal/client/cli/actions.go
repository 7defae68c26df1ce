package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/brightstudy/internal/client/maintenance"
	"github.com/dmitrijs2005/brightstudy/internal/client/models"
	"github.com/dmitrijs2005/brightstudy/internal/client/tutor"
)

func (a *App) printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, string(b))
	return err
}

func (a *App) Preview(ctx context.Context) error {
	plan, err := a.sync.Preview(ctx)
	if err != nil {
		return err
	}
	if a.asJSON {
		return a.printJSON(plan)
	}

	groups := make([]string, 0, len(plan))
	for g := range plan {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	for _, g := range groups {
		p := plan[g]
		fmt.Fprintf(a.out, "%s: %d new, %d update, %d up to date\n", g, len(p.New), len(p.Update), len(p.Skip))
		for _, it := range p.New {
			fmt.Fprintf(a.out, "  + %s v%d\n", it.ID, it.Version)
		}
		for _, it := range p.Update {
			fmt.Fprintf(a.out, "  ~ %s v%d -> v%d\n", it.ID, *it.Installed, it.Version)
		}
	}
	return nil
}

func (a *App) Apply(ctx context.Context) error {
	sum, err := a.sync.Apply(ctx)
	if err != nil {
		return err
	}
	if a.asJSON {
		return a.printJSON(sum)
	}
	fmt.Fprintf(a.out, "Sync %s: %d new, %d updated, %d skipped, %d failed (%s)\n",
		sum.RunID, sum.New, sum.Updated, sum.Skipped, sum.Failed, sum.Duration.Round(1e6))
	return nil
}

func (a *App) Install(ctx context.Context, kindName, id string) error {
	kind, err := models.ParseKind(kindName)
	if err != nil {
		return err
	}
	out, err := a.sync.Install(ctx, kind, id)
	if err != nil {
		return err
	}
	if a.asJSON {
		return a.printJSON(out)
	}
	if !out.Installed {
		return fmt.Errorf("%s %s not installed: %s", out.Kind, out.ID, out.Error)
	}
	fmt.Fprintf(a.out, "Installed %s %s v%d (%s)\n", out.Kind, out.ID, out.Version, out.Action)
	return nil
}

func (a *App) Installed(ctx context.Context) error {
	rows, err := a.sync.Installed(ctx)
	if err != nil {
		return err
	}
	if a.asJSON {
		if rows == nil {
			rows = []*models.InstalledRecord{}
		}
		return a.printJSON(rows)
	}
	if len(rows) == 0 {
		fmt.Fprintln(a.out, "Nothing installed yet.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tID\tVERSION\tINSTALLED AT")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", r.Kind, r.ContentID, r.Version, r.InstalledAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func (a *App) Lessons(ctx context.Context) error {
	lessons, err := a.sync.Catalog(ctx)
	if err != nil {
		return err
	}
	if a.asJSON {
		return a.printJSON(lessons)
	}
	if len(lessons) == 0 {
		fmt.Fprintln(a.out, "No lessons installed.")
		return nil
	}
	for _, l := range lessons {
		line := fmt.Sprintf("%s  %s (%d concepts)", l.LessonID, l.Title, len(l.Concepts))
		if len(l.Missing) > 0 {
			line += ", missing: " + strings.Join(l.Missing, ", ")
		}
		fmt.Fprintln(a.out, line)
	}
	return nil
}

func (a *App) Adapt(ctx context.Context, lessonID, modeName string) error {
	mode, err := tutor.ParseMode(modeName)
	if err != nil {
		return err
	}
	g, err := a.adapter.Adapt(ctx, lessonID, mode)
	if err != nil {
		return err
	}
	if a.asJSON {
		return a.printJSON(g.Lesson)
	}
	fmt.Fprintf(a.out, "Saved %s lesson %s: %s (%d concepts)\n", mode.Title(), g.Lesson.ID, g.Lesson.DisplayTitle(), len(g.Concepts))
	return nil
}

// Dupes lists duplicate concepts and, with apply, removes them after the
// user confirms. confirm is skipped when assumeYes is set.
func (a *App) Dupes(ctx context.Context, apply, assumeYes bool) error {
	groups, err := maintenance.FindDuplicates(a.lib)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		fmt.Fprintln(a.out, "No duplicates found.")
		return nil
	}

	fmt.Fprintln(a.out, "Duplicate groups:")
	for _, g := range groups {
		fmt.Fprintf(a.out, "\n%s\n  keep    %s\n", g.Fingerprint[:12], g.Canonical)
		for _, d := range g.Duplicates {
			fmt.Fprintf(a.out, "  remove  %s\n", d)
		}
	}
	if !apply {
		return nil
	}

	if !assumeYes && !Confirm(a.reader, "\nApply deletions and remapping?", "YES", a.out) {
		fmt.Fprintln(a.out, "Aborted.")
		return nil
	}

	report, err := maintenance.Cleanup(ctx, a.db, a.lib, groups)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Removed %d concept(s), updated %d lesson(s).\n", len(report.Removed), len(report.LessonsUpdated))
	return nil
}
