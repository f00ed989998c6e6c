package db

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// TestInitDBCreatesSchema verifies InitDB creates the kv and history tables
// with the expected columns.
func TestInitDBCreatesSchema(t *testing.T) {
	dbConn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer dbConn.Close()
	dbConn.SetMaxOpenConns(1)

	if err := InitDB(dbConn); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}

	for table, want := range map[string][]string{
		"kv":         {"key", "value", "updated_at"},
		"kv_history": {"id", "key", "value", "saved_at"},
	} {
		rows, err := dbConn.Query("PRAGMA table_info(" + table + ")")
		if err != nil {
			t.Fatalf("pragmas: %v", err)
		}
		cols := map[string]bool{}
		for rows.Next() {
			var cid int
			var colName, ctype string
			var notnull, pk int
			var dfltVal interface{}
			if err := rows.Scan(&cid, &colName, &ctype, &notnull, &dfltVal, &pk); err != nil {
				rows.Close()
				t.Fatalf("scan col: %v", err)
			}
			cols[colName] = true
		}
		rows.Close()
		for _, c := range want {
			if !cols[c] {
				t.Errorf("expected column %s in %s, got %v", c, table, cols)
			}
		}
	}
}

// TestInitDBIsRepeatable verifies running migrations twice is harmless.
func TestInitDBIsRepeatable(t *testing.T) {
	dbConn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer dbConn.Close()
	dbConn.SetMaxOpenConns(1)

	if err := InitDB(dbConn); err != nil {
		t.Fatalf("first InitDB: %v", err)
	}
	if err := InitDB(dbConn); err != nil {
		t.Fatalf("second InitDB: %v", err)
	}
}
