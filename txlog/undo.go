package txlog

import (
	"fmt"

	"github.com/oxhq/gnawtree/backup"
	"github.com/oxhq/gnawtree/core"
	"github.com/oxhq/gnawtree/models"
)

// Undo reverses the latest non-compensated forward or redo record in
// sessionID (see latestUndoable): the file
// it touched is restored to its backup_before_ref and a compensating
// record is appended, never deleting or rewriting the original (spec.md
// §4.6). The pointer needs no separate storage — it is always derived
// from the log itself, exactly as spec.md §4.6 requires on startup.
func (l *Log) Undo(sessionID string) (*models.TransactionRecord, error) {
	target, err := l.latestUndoable(sessionID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, &core.StateError{Message: "nothing to undo in session " + sessionID}
	}
	return l.reverse(target, "undo")
}

// Redo reverses the most recent Undo in sessionID, re-applying whatever
// it rolled back. It only succeeds when the latest non-compensated
// record other than a redo is an undo's compensating record — otherwise
// the last action was a forward edit, not an undo, and there is nothing
// to redo.
func (l *Log) Redo(sessionID string) (*models.TransactionRecord, error) {
	target, err := l.latestNonCompensated(sessionID)
	if err != nil {
		return nil, err
	}
	if target == nil || target.CompensatesID == nil {
		return nil, &core.StateError{Message: "nothing to redo in session " + sessionID}
	}
	return l.reverse(target, "redo")
}

// latestNonCompensated returns the highest-id record in sessionID that no
// later record has compensated (reversed) yet, skipping redo records:
// reversing a redo would undo it again rather than re-apply the next
// undone edit, so consecutive redos step through the undo records
// beneath them. Redo uses this directly.
func (l *Log) latestNonCompensated(sessionID string) (*models.TransactionRecord, error) {
	recs, err := l.SessionRecords(sessionID)
	if err != nil {
		return nil, err
	}
	compensated := make(map[int64]bool, len(recs))
	for _, r := range recs {
		if r.CompensatesID != nil {
			compensated[*r.CompensatesID] = true
		}
	}
	for i := len(recs) - 1; i >= 0; i-- {
		if !compensated[recs[i].ID] && recs[i].OperationKind != "redo" {
			return &recs[i], nil
		}
	}
	return nil, nil
}

// latestUndoable returns the highest-id record in sessionID not yet
// compensated by a later record that is either a forward record
// (CompensatesID == nil) or a redo, whose reversal takes back the edit it
// re-applied. Undo must not consider undo records themselves, or
// reversing one of those just redoes the edit it undid — the highest-id
// non-compensated record right after an undo is that undo's own
// compensating record, not the next forward edit beneath it, and chasing
// it ping-pongs instead of stepping back.
func (l *Log) latestUndoable(sessionID string) (*models.TransactionRecord, error) {
	recs, err := l.SessionRecords(sessionID)
	if err != nil {
		return nil, err
	}
	compensated := make(map[int64]bool, len(recs))
	for _, r := range recs {
		if r.CompensatesID != nil {
			compensated[*r.CompensatesID] = true
		}
	}
	for i := len(recs) - 1; i >= 0; i-- {
		if (recs[i].CompensatesID == nil || recs[i].OperationKind == "redo") && !compensated[recs[i].ID] {
			return &recs[i], nil
		}
	}
	return nil, nil
}

// reverse restores target's file to the state it had before target ran,
// and appends the compensating record describing that restoration. label
// is purely descriptive (OperationKind), the mechanics are identical for
// undo and redo: both reverse whatever the latest record did.
func (l *Log) reverse(target *models.TransactionRecord, label string) (*models.TransactionRecord, error) {
	if target.BackupBeforeRef == "" {
		return nil, &core.StateError{Message: fmt.Sprintf("record %d has no backup to restore from", target.ID)}
	}
	if err := l.backups.Restore(backup.Ref(target.BackupBeforeRef)); err != nil {
		return nil, fmt.Errorf("txlog: %s failed: %w", label, err)
	}

	compensatesID := target.ID
	rec := &models.TransactionRecord{
		SessionID:       target.SessionID,
		FilePath:        target.FilePath,
		OperationKind:   label,
		TargetPath:      target.TargetPath,
		Description:     fmt.Sprintf("%s of record %d", label, target.ID),
		BeforeHash:      target.AfterHash,
		AfterHash:       target.BeforeHash,
		BackupBeforeRef: target.BackupAfterRef,
		BackupAfterRef:  target.BackupBeforeRef,
		CompensatesID:   &compensatesID,
	}
	if _, err := l.Append(rec); err != nil {
		return nil, err
	}
	return rec, nil
}
