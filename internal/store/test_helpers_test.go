package store

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/roach88/linkage/internal/record"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// customer creates a Customer record with a FirstName_LastName key.
func customer(id, first, last string) record.Record {
	return record.Record{
		Type:        record.TypeCustomer,
		EntityID:    id,
		Transaction: "NA_01/01/20-1:1_buyGiftCard_10.00",
		CompoundKey: "FirstName_LastName:" + first + "_" + last,
	}
}

// mustKey parses a compound key or fails the test.
func mustKey(t *testing.T, s string) record.CompoundKey {
	t.Helper()
	k, err := record.ParseCompoundKey(s)
	if err != nil {
		t.Fatalf("ParseCompoundKey(%q) failed: %v", s, err)
	}
	return k
}

func getTableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		t.Fatalf("failed to get table info for %q: %v", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			t.Fatalf("failed to scan column info: %v", err)
		}
		columns = append(columns, name)
	}
	return columns
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
