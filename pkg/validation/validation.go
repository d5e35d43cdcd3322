// Package validation applies human review decisions to generated drafts.
package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/observability"
	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/store"
)

// Review statuses a validator can set. TO_VALIDATE is the initial state
// every draft carries out of generation.
const (
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
	StatusDraft    = "DRAFT"
)

// Decision is one validator action on a message.
type Decision struct {
	MessageID     string
	Status        string
	ValidatedBy   string
	FinalResponse string
	Comment       string
}

// now is swapped in tests.
var now = time.Now

// Validate checks that a decision is well-formed before it is applied.
func (d Decision) Validate() error {
	switch d.Status {
	case StatusApproved, StatusRejected, StatusDraft:
	default:
		return fmt.Errorf("unknown validation status %q", d.Status)
	}
	if strings.TrimSpace(d.MessageID) == "" {
		return fmt.Errorf("decision is missing a message id")
	}
	return nil
}

// Apply records the decision on the matching row. The final response
// defaults to the generated draft when the validator did not rewrite it,
// and validated_by defaults to "human". A row that already carries a
// terminal status (APPROVED or REJECTED) is not overwritten.
func Apply(rows []store.Row, d Decision) error {
	if err := d.Validate(); err != nil {
		return err
	}

	for i := range rows {
		row := &rows[i]
		if row.MessageID != d.MessageID {
			continue
		}
		if row.ValidationStatus == StatusApproved || row.ValidationStatus == StatusRejected {
			return fmt.Errorf("message %s already validated as %s", d.MessageID, row.ValidationStatus)
		}

		final := strings.TrimSpace(d.FinalResponse)
		if final == "" {
			final = row.ResponseDraft
		}
		by := strings.TrimSpace(d.ValidatedBy)
		if by == "" {
			by = "human"
		}

		row.ValidationStatus = d.Status
		row.ValidatedBy = by
		row.ValidatedAt = now().Format("2006-01-02T15:04:05")
		row.FinalResponse = final
		row.ValidatorComment = d.Comment

		observability.Infof("Message %s validated as %s by %s", d.MessageID, d.Status, by)
		return nil
	}
	return fmt.Errorf("message %s not found", d.MessageID)
}

// PendingCount reports how many rows still await review.
func PendingCount(rows []store.Row) int {
	n := 0
	for i := range rows {
		switch rows[i].ValidationStatus {
		case StatusApproved, StatusRejected:
		default:
			n++
		}
	}
	return n
}
