// Package txlog implements the append-only Transaction Log: every
// mutating operation the Edit Engine and Batch Executor perform is
// recorded as a models.TransactionRecord row, grouped into a
// models.Session. Grounded on the teacher's mcp.TransactionLog
// (BeginTransaction/CompleteTransaction/RollbackTransaction), re-keyed
// from its in-memory map + sidecar log file onto gorm-backed persistence
// so history survives across process restarts.
package txlog

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oxhq/gnawtree/backup"
	"github.com/oxhq/gnawtree/models"
)

// Log is the append-only ledger. A single mutex serializes appends and
// session bookkeeping, mirroring the teacher's TransactionLog.mutex —
// writes are rare relative to parsing, so a coarse lock costs nothing.
type Log struct {
	db      *gorm.DB
	backups *backup.Store

	mu        sync.Mutex
	sessionID string
}

// Open wraps an already-migrated *gorm.DB (see db.Connect) as a Log.
// backups is the store Undo/Redo restore file content from. No session
// is created until the first Append.
func Open(db *gorm.DB, backups *backup.Store) *Log {
	return &Log{db: db, backups: backups}
}

// CurrentSession returns the active session id, creating one lazily if
// none is open yet (spec.md §4.6: "a session is created lazily on the
// first mutating operation if none is active").
func (l *Log) CurrentSession() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ensureSessionLocked()
}

func (l *Log) ensureSessionLocked() (string, error) {
	if l.sessionID != "" {
		return l.sessionID, nil
	}
	session := models.Session{ID: uuid.NewString(), StartedAt: time.Now()}
	if err := l.db.Create(&session).Error; err != nil {
		return "", fmt.Errorf("txlog: failed to open session: %w", err)
	}
	l.sessionID = session.ID
	return l.sessionID, nil
}

// EndSession closes the active session, stamping EndedAt. A later Append
// opens a fresh session. It is not an error to end a session twice or
// when none is open.
func (l *Log) EndSession() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sessionID == "" {
		return nil
	}
	now := time.Now()
	err := l.db.Model(&models.Session{}).Where("id = ?", l.sessionID).Update("ended_at", &now).Error
	l.sessionID = ""
	if err != nil {
		return fmt.Errorf("txlog: failed to end session: %w", err)
	}
	return nil
}

// Append records one completed operation and returns its assigned id.
// rec.SessionID and rec.Timestamp are filled in when left zero, so
// callers (edit.Engine, batch.Executor) only need to set the operation
// fields themselves.
func (l *Log) Append(rec *models.TransactionRecord) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if rec.SessionID == "" {
		sessionID, err := l.ensureSessionLocked()
		if err != nil {
			return 0, err
		}
		rec.SessionID = sessionID
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	if err := l.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			return err
		}
		return tx.Model(&models.Session{}).
			Where("id = ?", rec.SessionID).
			Update("record_count", gorm.Expr("record_count + 1")).Error
	}); err != nil {
		return 0, fmt.Errorf("txlog: failed to append record: %w", err)
	}

	return rec.ID, nil
}

// Get returns the record with the given id.
func (l *Log) Get(id int64) (*models.TransactionRecord, error) {
	var rec models.TransactionRecord
	if err := l.db.First(&rec, id).Error; err != nil {
		return nil, fmt.Errorf("txlog: record %d not found: %w", id, err)
	}
	return &rec, nil
}

// History returns the most recent records touching filePath across every
// session, newest first, capped at limit (0 means unlimited).
func (l *Log) History(filePath string, limit int) ([]models.TransactionRecord, error) {
	q := l.db.Where("file_path = ?", filePath).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var recs []models.TransactionRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("txlog: failed to query history for %s: %w", filePath, err)
	}
	return recs, nil
}

// SessionRecords returns every record belonging to sessionID, oldest
// first — the order Undo/Redo and restore-session replay them in.
func (l *Log) SessionRecords(sessionID string) ([]models.TransactionRecord, error) {
	var recs []models.TransactionRecord
	if err := l.db.Where("session_id = ?", sessionID).Order("id ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("txlog: failed to query session %s: %w", sessionID, err)
	}
	return recs, nil
}

// RecordsSince returns every record timestamped at or after ts, across
// every file and session, oldest first. restore.Restorer uses it to find
// the set of files a project-level restore touches.
func (l *Log) RecordsSince(ts time.Time) ([]models.TransactionRecord, error) {
	var recs []models.TransactionRecord
	if err := l.db.Where("timestamp >= ?", ts).Order("id ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("txlog: failed to query records since %s: %w", ts, err)
	}
	return recs, nil
}

// LastAtOrBefore returns the most recent record touching filePath with a
// timestamp at or before ts, or an error if none exists (the file had no
// recorded history by that point, so there is nothing to restore it to).
func (l *Log) LastAtOrBefore(filePath string, ts time.Time) (*models.TransactionRecord, error) {
	var rec models.TransactionRecord
	err := l.db.Where("file_path = ? AND timestamp <= ?", filePath, ts).Order("id DESC").First(&rec).Error
	if err != nil {
		return nil, fmt.Errorf("txlog: no record for %s at or before %s: %w", filePath, ts, err)
	}
	return &rec, nil
}
