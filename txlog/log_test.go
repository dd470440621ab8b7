package txlog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/gnawtree/backup"
	"github.com/oxhq/gnawtree/db"
	"github.com/oxhq/gnawtree/models"
)

func newTestLog(t *testing.T) *Log {
	t.Helper()
	gdb, err := db.Connect(":memory:", false)
	require.NoError(t, err)
	store := backup.New(t.TempDir())
	return Open(gdb, store)
}

func TestAppendCreatesSessionLazily(t *testing.T) {
	log := newTestLog(t)

	id, err := log.Append(&models.TransactionRecord{
		FilePath:      "/src/main.go",
		OperationKind: "edit",
	})
	require.NoError(t, err)
	assert.NotZero(t, id)

	rec, err := log.Get(id)
	require.NoError(t, err)
	assert.NotEmpty(t, rec.SessionID)
	assert.WithinDuration(t, time.Now(), rec.Timestamp, time.Minute)
}

func TestAppendReusesOpenSession(t *testing.T) {
	log := newTestLog(t)

	id1, err := log.Append(&models.TransactionRecord{FilePath: "/a.go", OperationKind: "edit"})
	require.NoError(t, err)
	id2, err := log.Append(&models.TransactionRecord{FilePath: "/b.go", OperationKind: "edit"})
	require.NoError(t, err)

	rec1, err := log.Get(id1)
	require.NoError(t, err)
	rec2, err := log.Get(id2)
	require.NoError(t, err)
	assert.Equal(t, rec1.SessionID, rec2.SessionID)
}

func TestEndSessionStartsAFreshOne(t *testing.T) {
	log := newTestLog(t)

	id1, err := log.Append(&models.TransactionRecord{FilePath: "/a.go", OperationKind: "edit"})
	require.NoError(t, err)
	require.NoError(t, log.EndSession())

	id2, err := log.Append(&models.TransactionRecord{FilePath: "/b.go", OperationKind: "edit"})
	require.NoError(t, err)

	rec1, _ := log.Get(id1)
	rec2, _ := log.Get(id2)
	assert.NotEqual(t, rec1.SessionID, rec2.SessionID)
}

func TestHistoryOrdersNewestFirst(t *testing.T) {
	log := newTestLog(t)

	_, err := log.Append(&models.TransactionRecord{FilePath: "/a.go", OperationKind: "edit", Description: "first"})
	require.NoError(t, err)
	_, err = log.Append(&models.TransactionRecord{FilePath: "/a.go", OperationKind: "edit", Description: "second"})
	require.NoError(t, err)

	hist, err := log.History("/a.go", 0)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, "second", hist[0].Description)
	assert.Equal(t, "first", hist[1].Description)
}
