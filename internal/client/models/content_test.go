package models

import (
	"encoding/json"
	"testing"

	"github.com/dmitrijs2005/brightstudy/internal/common"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{in: "lesson", want: KindLesson},
		{in: "Concepts", want: KindConcept},
		{in: " video ", want: KindVideo},
		{in: "quiz", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, common.ErrUnknownKind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSyncOrder_ConceptsBeforeLessons(t *testing.T) {
	require.Equal(t, []Kind{KindConcept, KindLesson, KindVideo}, SyncOrder)
}

func TestDecodeLesson_AcceptsIDsAndEmbeddedConcepts(t *testing.T) {
	raw := json.RawMessage(`{
		"title": "Fractions",
		"intro": "hi",
		"concepts": ["c1", {"id": "c2", "name": "Halves"}]
	}`)

	l, err := DecodeLesson(raw, "l1")
	require.NoError(t, err)

	want := &Lesson{ID: "l1", Title: "Fractions", Intro: "hi", Concepts: ConceptRefs{"c1", "c2"}}
	if diff := cmp.Diff(want, l); diff != "" {
		t.Fatalf("lesson mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeLesson_ConceptObjectWithoutID(t *testing.T) {
	_, err := DecodeLesson(json.RawMessage(`{"lesson_id":"l1","concepts":[{"name":"x"}]}`), "")
	require.ErrorIs(t, err, common.ErrInvalidPayload)
}

func TestDecodeLesson_MissingIDEverywhere(t *testing.T) {
	_, err := DecodeLesson(json.RawMessage(`{"title":"x"}`), "")
	require.ErrorIs(t, err, common.ErrInvalidPayload)
	require.Contains(t, err.Error(), "Lesson.ID(required)")
}

func TestLesson_DisplayTitle(t *testing.T) {
	assert.Equal(t, "l1", (&Lesson{ID: "l1"}).DisplayTitle())
	assert.Equal(t, "Intro", (&Lesson{ID: "l1", Title: "Intro"}).DisplayTitle())
}

func TestDecodeConcept_VideoRefs(t *testing.T) {
	raw := json.RawMessage(`{
		"id": "c1",
		"name": "Photosynthesis",
		"check": {"question": "q?", "keywords": ["light"]},
		"videos": [
			{"video_id": "v1", "url": "https://cdn.example/v1.mp4", "thumbnail_url": "https://cdn.example/v1.jpg", "metadata": {"size": 42}},
			{"id": "v2", "url": "s3://videos/v2.webm"}
		]
	}`)

	c, err := DecodeConcept(raw, "ignored")
	require.NoError(t, err)
	assert.Equal(t, "c1", c.ID)
	require.Len(t, c.Videos, 2)
	assert.Equal(t, "v1", c.Videos[0].ID)
	assert.Equal(t, int64(42), c.Videos[0].Metadata.Size)
	assert.Equal(t, "v2", c.Videos[1].ID)
	require.NotNil(t, c.Check)
	assert.Equal(t, []string{"light"}, c.Check.Keywords)
}

func TestDecodeConcept_RejectsBadVideoURL(t *testing.T) {
	cases := map[string]string{
		"relative":  `{"id":"c1","videos":[{"id":"v1","url":"/v1.mp4"}]}`,
		"ftp":       `{"id":"c1","videos":[{"id":"v1","url":"ftp://host/v1.mp4"}]}`,
		"s3 no key": `{"id":"c1","videos":[{"id":"v1","url":"s3://bucket"}]}`,
		"no id":     `{"id":"c1","videos":[{"url":"https://host/v1.mp4"}]}`,
		"bad thumb": `{"id":"c1","videos":[{"id":"v1","url":"https://host/v1.mp4","thumbnail_url":"nope"}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeConcept(json.RawMessage(body), "")
			require.ErrorIs(t, err, common.ErrInvalidPayload)
		})
	}
}

func TestDecodeConcept_GarbageAndEmpty(t *testing.T) {
	_, err := DecodeConcept(json.RawMessage(`[1,2]`), "c1")
	require.ErrorIs(t, err, common.ErrInvalidPayload)

	_, err = DecodeConcept(nil, "c1")
	require.ErrorIs(t, err, common.ErrInvalidPayload)
}

func TestDecodeVideo_RefCarriesSize(t *testing.T) {
	v, err := DecodeVideo(json.RawMessage(`{"url":"https://cdn/v9.mp4","size":100,"duration":12.5}`), "v9")
	require.NoError(t, err)

	ref := v.Ref()
	assert.Equal(t, "v9", ref.ID)
	assert.Equal(t, int64(100), ref.Metadata.Size)
	assert.Equal(t, 12.5, ref.Metadata.Duration)
}
