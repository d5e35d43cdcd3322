package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRowsPartialColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.csv")
	data := "message_id,text_clean,extra\n" +
		"m1,fuite d'eau,ignored\n" +
		",odeur de gaz,ignored\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	rows, err := ReadRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "m1", rows[0].MessageID)
	assert.Equal(t, "fuite d'eau", rows[0].Text)
	assert.Empty(t, rows[0].UrgencyLevel)

	// Missing message_id gets a generated one.
	assert.NotEmpty(t, rows[1].MessageID)
	assert.NotEqual(t, "m1", rows[1].MessageID)
}

func TestReadRowsRequiresTextColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("message_id\nm1\n"), 0o644))

	_, err := ReadRows(path)
	assert.ErrorContains(t, err, "text_clean")
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	rows := []Row{{
		MessageID:        "m1",
		ResidenceID:      "r9",
		Text:             "ascenseur bloqué, quelqu'un dedans",
		UrgencyLevel:     "P0",
		RuleMatch:        "P0_ELEVATOR_WITH_PERSON_STRICT",
		Category:         "elevator",
		CategoryMatch:    "CAT_ELEVATOR",
		IsUrgent:         1,
		RAGSources:       `["data/docs/procedures_p0.md | ## a | chunk=0"]`,
		RAGScores:        `[1.2]`,
		RAGContext:       "procedure p0",
		ResponseDraft:    "On intervient immédiatement.",
		RequiredInfo:     `["résidence/bloc"]`,
		AssignedTo:       "PRESTATAIRE",
		Status:           "TO_VALIDATE",
		SLATargetMinutes: 5,
		DecisionSource:   "RAG",
	}}

	require.NoError(t, WriteRows(path, rows))

	got, err := ReadRows(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, rows[0], got[0])
}

func TestWriteRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, WriteRecords(path,
		[]string{"message_id", "ok"},
		[][]string{{"m1", "1"}, {"m2", "0"}},
	))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "message_id,ok\nm1,1\nm2,0\n", string(data))
}
