// Package batch generalizes the teacher's mcp.StagingManager
// (CreateStage plans without side effects; ApplyStage commits inside a
// single gorm.DB.Transaction and rolls back on any mid-commit failure)
// from a single staged transform to an ordered multi-file,
// multi-operation Batch. Plan composes each file's operations against an
// in-memory candidate chain; Commit writes backups and files per
// spec.md §4.4 and restores already-written files to their pre-batch
// content (held in the plan) on any later failure, appending compensating
// (never deleted) transaction records for the files it rolled back.
package batch

import (
	"fmt"
	"os"
	"time"

	"github.com/oxhq/gnawtree/core"
	"github.com/oxhq/gnawtree/edit"
	"github.com/oxhq/gnawtree/models"
	"github.com/oxhq/gnawtree/tags"
)

// Batch is an ordered sequence of operations, possibly touching several
// files. Operations against the same file are composed in the order
// they appear: operation k's candidate output becomes operation k+1's
// input.
type Batch struct {
	Operations []core.Operation
}

// filePlan is the composed result for one file: its on-disk content when
// planning started, and the candidate content after every queued
// operation for that file has been applied in memory.
type filePlan struct {
	file      string
	original  string
	candidate string
	ops       int
}

// Plan is the output of Executor.Plan: a per-file candidate ready for
// Commit. Nothing on disk has changed yet.
type Plan struct {
	files []filePlan
}

// Dirty reports whether committing p would touch the filesystem at all.
// A batch whose operations round-trip to the original content (every
// file plans equal to its original) commits nothing.
func (p *Plan) Dirty() bool {
	for _, fp := range p.files {
		if fp.candidate != fp.original {
			return true
		}
	}
	return false
}

// Executor plans and commits Batches against a single Engine, reusing
// its registry, backups, and transaction log.
type Executor struct {
	engine *edit.Engine
}

// New wires an Executor to the engine it commits through.
func New(engine *edit.Engine) *Executor {
	return &Executor{engine: engine}
}

// Plan reads each file touched by b.Operations once, then folds every
// operation for that file through Engine.Plan in order, validating each
// step before the next one runs. A later operation that addresses a
// selector an earlier operation in the same batch invalidated fails here,
// before anything is written.
func (x *Executor) Plan(b Batch) (*Plan, error) {
	order := make([]string, 0, len(b.Operations))
	byFile := make(map[string]*filePlan, len(b.Operations))

	for _, op := range b.Operations {
		fp, ok := byFile[op.File]
		if !ok {
			raw, err := os.ReadFile(op.File)
			if err != nil {
				return nil, &core.IOError{Phase: "read", Path: op.File, Err: err}
			}
			fp = &filePlan{file: op.File, original: string(raw), candidate: string(raw)}
			byFile[op.File] = fp
			order = append(order, op.File)
		}

		candidate, err := x.engine.Plan(op.File, fp.candidate, op)
		if err != nil {
			return nil, fmt.Errorf("batch: operation %d on %s on %s failed: %w", fp.ops, op.Kind, op.File, err)
		}
		fp.candidate = candidate
		fp.ops++
	}

	files := make([]filePlan, 0, len(order))
	for _, f := range order {
		files = append(files, *byFile[f])
	}
	return &Plan{files: files}, nil
}

// Commit writes every changed file in p, backing each up before and
// after the write and appending one transaction record per file. A file
// whose candidate equals its original content is skipped entirely: a
// batch that cancels itself out touches nothing.
//
// If any file fails partway through (backup, write, or log append),
// Commit restores every file it already committed back to its original
// content and appends a compensating record for each, then returns the
// error. Nothing from this Commit call is left half-applied.
func (x *Executor) Commit(p *Plan) ([]*models.TransactionRecord, error) {
	now := time.Now()
	var records []*models.TransactionRecord
	var committed []filePlan

	for _, fp := range p.files {
		if fp.candidate == fp.original {
			continue
		}

		perm := os.FileMode(0o644)
		if info, err := os.Stat(fp.file); err == nil {
			perm = info.Mode().Perm()
		}

		beforeRef, err := x.engine.Backups.Snapshot(fp.file, fp.original, now)
		if err != nil {
			x.rollback(committed)
			return nil, err
		}

		if err := x.engine.Writer.WriteFile(fp.file, []byte(fp.candidate), perm); err != nil {
			x.rollback(committed)
			return nil, err
		}

		afterRef, err := x.engine.Backups.Snapshot(fp.file, fp.candidate, now)
		if err != nil {
			x.rollback(append(committed, fp))
			return nil, err
		}

		rec := &models.TransactionRecord{
			Timestamp:       now,
			FilePath:        fp.file,
			OperationKind:   "batch",
			Description:     fmt.Sprintf("%d operation(s) applied as one batch", fp.ops),
			BeforeHash:      tags.HashSource(fp.original),
			AfterHash:       tags.HashSource(fp.candidate),
			BackupBeforeRef: string(beforeRef),
			BackupAfterRef:  string(afterRef),
		}
		if _, err := x.engine.Log.Append(rec); err != nil {
			x.rollback(append(committed, fp))
			return nil, err
		}

		records = append(records, rec)
		committed = append(committed, fp)
	}

	return records, nil
}

// rollback restores every already-committed file to its pre-batch
// content, most recently committed first, and appends a compensating
// record for each restoration. It is best-effort: a file whose restore
// write fails is skipped (no record is appended for it) and rollback
// moves on to the next, never panicking, since rollback itself runs from
// inside an error path.
func (x *Executor) rollback(committed []filePlan) {
	now := time.Now()
	for i := len(committed) - 1; i >= 0; i-- {
		fp := committed[i]
		if err := x.engine.Writer.WriteFile(fp.file, []byte(fp.original), 0o644); err != nil {
			continue
		}
		rec := &models.TransactionRecord{
			Timestamp:     now,
			FilePath:      fp.file,
			OperationKind: "batch_rollback",
			Description:   "restored after a sibling file in the same batch failed to commit",
			BeforeHash:    tags.HashSource(fp.candidate),
			AfterHash:     tags.HashSource(fp.original),
		}
		_, _ = x.engine.Log.Append(rec)
	}
}
