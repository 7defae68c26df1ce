package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		remote    int64
		installed int64
		found     bool
		want      Action
	}{
		{name: "absent", remote: 1, found: false, want: ActionNew},
		{name: "equal", remote: 3, installed: 3, found: true, want: ActionSkip},
		{name: "forward", remote: 4, installed: 3, found: true, want: ActionUpdate},
		// откат на сервере тоже считается обновлением
		{name: "rollback", remote: 2, installed: 3, found: true, want: ActionUpdate},
		{name: "zero installed", remote: 0, installed: 0, found: true, want: ActionSkip},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.remote, tt.installed, tt.found))
		})
	}
}

func TestPreview_GroupsByKindAndAction(t *testing.T) {
	p := Preview{}
	installed := int64(1)
	p.For(KindConcept).Add(PlanItem{ID: "c1", Version: 1, Action: ActionSkip})
	p.For(KindConcept).Add(PlanItem{ID: "c2", Version: 2, Action: ActionNew})
	p.For(KindConcept).Add(PlanItem{ID: "c3", Version: 3, Installed: &installed, Action: ActionUpdate})
	p.For(KindLesson)

	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"concepts": {
			"new":    [{"id":"c2","version":2}],
			"update": [{"id":"c3","version":3,"installed":1}],
			"skip":   [{"id":"c1","version":1}]
		},
		"lessons": {"new": [], "update": [], "skip": []}
	}`, string(b))

	pending := p.For(KindConcept).Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, "c2", pending[0].ID)
	assert.Equal(t, "c3", pending[1].ID)
}
