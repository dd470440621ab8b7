// Package models holds the gorm models backing the Transaction Log and
// Session tracking, re-keyed from the teacher's staging/confidence domain
// (models.Stage/Apply) onto this spec's transaction/backup-ref domain
// (spec.md §3: TransactionRecord, Session).
package models

import (
	"time"

	"gorm.io/datatypes"
)

// TransactionRecord is one append-only ledger entry: an operation that
// was planned, validated, backed up, and written. IDs are monotone within
// a project (assigned by the database's auto-increment, never reused).
type TransactionRecord struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	SessionID string `gorm:"type:varchar(40);index;not null"`

	Timestamp time.Time `gorm:"index;not null"`
	FilePath  string    `gorm:"type:text;index;not null"`

	OperationKind string `gorm:"type:varchar(20);not null"` // edit, insert, delete, clone, batch, batch_rollback, undo, redo
	TargetPath    string `gorm:"type:varchar(255)"`         // the selector the operation addressed, as given
	Description   string `gorm:"type:text"`

	BeforeHash      string `gorm:"type:varchar(64)"`
	AfterHash       string `gorm:"type:varchar(64)"`
	BackupBeforeRef string `gorm:"type:varchar(255)"`
	BackupAfterRef  string `gorm:"type:varchar(255)"`

	// Compensating records reference the record they undo/redo; the
	// original record is never deleted or rewritten (spec.md §4.4/§4.6:
	// "the log is append-only").
	CompensatesID *int64 `gorm:"index"`

	Metadata datatypes.JSON `gorm:"type:jsonb"`
}

func (TransactionRecord) TableName() string { return "transaction_records" }

// Session groups a contiguous run of TransactionRecords. Sessions are
// created lazily on the first mutating operation if none is active.
type Session struct {
	ID        string    `gorm:"primaryKey;type:varchar(40)"`
	StartedAt time.Time `gorm:"autoCreateTime"`
	EndedAt   *time.Time

	RecordCount int `gorm:"default:0"`
}

func (Session) TableName() string { return "sessions" }
