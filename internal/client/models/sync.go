package models

import "time"

// Action is the classification of one inventory item against local state.
type Action string

const (
	ActionNew    Action = "new"
	ActionUpdate Action = "update"
	ActionSkip   Action = "skip"
)

// Classify compares a remote version with the installed one. Equality is the
// only skip condition: a remote version lower than the local one is still an
// update, the remote is authoritative.
func Classify(remote int64, installed int64, found bool) Action {
	switch {
	case !found:
		return ActionNew
	case installed == remote:
		return ActionSkip
	default:
		return ActionUpdate
	}
}

// PlanItem is one classified inventory entry.
type PlanItem struct {
	ID        string `json:"id"`
	Version   int64  `json:"version"`
	Installed *int64 `json:"installed,omitempty"`
	Action    Action `json:"-"`
}

// KindPreview partitions one kind's inventory by action.
type KindPreview struct {
	New    []PlanItem `json:"new"`
	Update []PlanItem `json:"update"`
	Skip   []PlanItem `json:"skip"`
}

// Add files item into the matching list.
func (p *KindPreview) Add(item PlanItem) {
	switch item.Action {
	case ActionNew:
		p.New = append(p.New, item)
	case ActionUpdate:
		p.Update = append(p.Update, item)
	default:
		p.Skip = append(p.Skip, item)
	}
}

// Pending returns new and update items in inventory order of each list.
func (p *KindPreview) Pending() []PlanItem {
	out := make([]PlanItem, 0, len(p.New)+len(p.Update))
	out = append(out, p.New...)
	return append(out, p.Update...)
}

func newKindPreview() *KindPreview {
	return &KindPreview{New: []PlanItem{}, Update: []PlanItem{}, Skip: []PlanItem{}}
}

// Preview is the read-only reconciliation plan, keyed by plural kind name
// ("concepts", "lessons", "videos").
type Preview map[string]*KindPreview

// For returns the group for kind, creating it when absent.
func (p Preview) For(kind Kind) *KindPreview {
	g, ok := p[kind.Plural()]
	if !ok {
		g = newKindPreview()
		p[kind.Plural()] = g
	}
	return g
}

// Summary is the count-based result of an apply run.
type Summary struct {
	RunID     string        `json:"run_id"`
	New       int           `json:"new_count"`
	Updated   int           `json:"updated_count"`
	Skipped   int           `json:"skipped_count"`
	Failed    int           `json:"failed_count"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
}

// Outcome describes an on-demand install of a single item.
type Outcome struct {
	Kind      Kind   `json:"kind"`
	ID        string `json:"id"`
	Version   int64  `json:"version"`
	Action    Action `json:"action"`
	Installed bool   `json:"installed"`
	Error     string `json:"error,omitempty"`
}

// InstalledRecord is the persisted claim that a version of an item is fully
// present locally.
type InstalledRecord struct {
	ContentID   string    `json:"content_id"`
	Kind        Kind      `json:"type"`
	Version     int64     `json:"version"`
	InstalledAt time.Time `json:"installed_at"`
}
