package library

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempDB(t *testing.T) *Database {
	t.Helper()
	dir := t.TempDir()
	db, err := NewDatabase(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("new db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestEmptySnapshot(t *testing.T) {
	db := tempDB(t)
	snaps, err := db.LoadSnapshot()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snaps) != 0 {
		t.Fatalf("want empty snapshot, got %d books", len(snaps))
	}
}

func TestSaveSnapshotKeepsOrder(t *testing.T) {
	db := tempDB(t)

	// Ids deliberately not in lexical order.
	snaps := []BookSnapshot{
		{ID: "Z9", Title: "Last", Author: "A", Genre: "G", Available: true},
		{ID: "A1", Title: "First", Author: "B", Genre: "G", DueDate: dueOn(2025, 1, 31), Checkouts: 4},
		{ID: "M5", Title: "Middle", Author: "C", Genre: "G", Available: true, Checkouts: 1},
	}
	require.NoError(t, db.SaveSnapshot(snaps))

	got, err := db.LoadSnapshot()
	require.NoError(t, err)
	assert.Equal(t, snaps, got)
}

func TestSaveSnapshotReplaces(t *testing.T) {
	db := tempDB(t)
	require.NoError(t, db.SaveSnapshot(SampleBooks()))
	require.NoError(t, db.SaveSnapshot(SampleBooks()[:2]))

	got, err := db.LoadSnapshot()
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSaveSnapshotIsAtomic(t *testing.T) {
	db := tempDB(t)
	require.NoError(t, db.SaveSnapshot(SampleBooks()))

	// Duplicate primary key aborts the whole replacement.
	err := db.SaveSnapshot([]BookSnapshot{{ID: "D"}, {ID: "D"}})
	require.Error(t, err)

	got, err := db.LoadSnapshot()
	require.NoError(t, err)
	assert.Equal(t, SampleBooks(), got)
}

func TestReopenDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "catalog.db")
	db, err := NewDatabase(path)
	require.NoError(t, err)
	require.NoError(t, db.SaveSnapshot(SampleBooks()))
	require.NoError(t, db.Close())

	db, err = NewDatabase(path)
	require.NoError(t, err)
	defer db.Close()
	got, err := db.LoadSnapshot()
	require.NoError(t, err)
	assert.Equal(t, SampleBooks(), got)
}
