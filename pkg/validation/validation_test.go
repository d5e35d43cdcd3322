package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/store"
)

func fixedClock(t *testing.T) {
	t.Helper()
	old := now
	now = func() time.Time { return time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC) }
	t.Cleanup(func() { now = old })
}

func testRows() []store.Row {
	return []store.Row{
		{MessageID: "m1", ResponseDraft: "Brouillon du modèle.", Status: "TO_VALIDATE"},
		{MessageID: "m2", ResponseDraft: "Autre brouillon.", Status: "TO_VALIDATE"},
	}
}

func TestApplyApproval(t *testing.T) {
	fixedClock(t)
	rows := testRows()

	err := Apply(rows, Decision{MessageID: "m1", Status: StatusApproved, Comment: "ok"})
	require.NoError(t, err)

	assert.Equal(t, StatusApproved, rows[0].ValidationStatus)
	assert.Equal(t, "human", rows[0].ValidatedBy)
	assert.Equal(t, "2026-03-01T10:30:00", rows[0].ValidatedAt)
	// Untouched final response falls back to the draft.
	assert.Equal(t, "Brouillon du modèle.", rows[0].FinalResponse)
	assert.Equal(t, "ok", rows[0].ValidatorComment)

	// The other row is untouched.
	assert.Empty(t, rows[1].ValidationStatus)
}

func TestApplyRewrite(t *testing.T) {
	fixedClock(t)
	rows := testRows()

	err := Apply(rows, Decision{
		MessageID:     "m2",
		Status:        StatusRejected,
		ValidatedBy:   "fatima",
		FinalResponse: "Réponse corrigée.",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusRejected, rows[1].ValidationStatus)
	assert.Equal(t, "fatima", rows[1].ValidatedBy)
	assert.Equal(t, "Réponse corrigée.", rows[1].FinalResponse)
}

func TestApplyTerminalStateIsFinal(t *testing.T) {
	fixedClock(t)
	rows := testRows()
	require.NoError(t, Apply(rows, Decision{MessageID: "m1", Status: StatusApproved}))

	err := Apply(rows, Decision{MessageID: "m1", Status: StatusRejected})
	assert.ErrorContains(t, err, "already validated")
}

func TestApplyDraftCanBeRevisited(t *testing.T) {
	fixedClock(t)
	rows := testRows()
	require.NoError(t, Apply(rows, Decision{MessageID: "m1", Status: StatusDraft}))
	require.NoError(t, Apply(rows, Decision{MessageID: "m1", Status: StatusApproved}))
	assert.Equal(t, StatusApproved, rows[0].ValidationStatus)
}

func TestApplyErrors(t *testing.T) {
	rows := testRows()

	assert.Error(t, Apply(rows, Decision{MessageID: "m1", Status: "DONE"}))
	assert.Error(t, Apply(rows, Decision{Status: StatusApproved}))
	assert.ErrorContains(t, Apply(rows, Decision{MessageID: "nope", Status: StatusApproved}), "not found")
}

func TestPendingCount(t *testing.T) {
	rows := testRows()
	assert.Equal(t, 2, PendingCount(rows))

	require.NoError(t, Apply(rows, Decision{MessageID: "m1", Status: StatusApproved}))
	assert.Equal(t, 1, PendingCount(rows))

	require.NoError(t, Apply(rows, Decision{MessageID: "m2", Status: StatusDraft}))
	assert.Equal(t, 1, PendingCount(rows))
}
