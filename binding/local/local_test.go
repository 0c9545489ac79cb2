package local

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tarmac-project/d1sdk/binding"
)

func openTestDB(t *testing.T) *Database {
	t.Helper()

	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.DB().Exec(`CREATE TABLE users (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL UNIQUE)`); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	return db
}

func TestRunAndAll(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	for i, name := range []string{"Ada", "Grace"} {
		res, err := db.Prepare("INSERT INTO users (name) VALUES (?)").Bind(name).Run(ctx)
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
		if res.Meta.Changes != 1 || res.Meta.LastRowID != int64(i+1) || !res.Meta.ChangedDB {
			t.Fatalf("unexpected meta for %s: %+v", name, res.Meta)
		}
	}

	all, err := db.Prepare("SELECT id, name FROM users WHERE id = ?").Bind(2).All(ctx)
	if err != nil {
		t.Fatalf("All returned error: %v", err)
	}
	if len(all.Results) != 1 {
		t.Fatalf("expected one row, got %d", len(all.Results))
	}
	row := all.Results[0]
	if row["id"] != int64(2) || row["name"] != "Grace" {
		t.Fatalf("unexpected row: %#v", row)
	}
	if all.Meta.RowsRead != 1 {
		t.Fatalf("expected RowsRead 1, got %d", all.Meta.RowsRead)
	}
}

func TestAllEmpty(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)

	res, err := db.Prepare("SELECT * FROM users").All(context.Background())
	if err != nil {
		t.Fatalf("All returned error: %v", err)
	}
	if res.Results == nil || len(res.Results) != 0 {
		t.Fatalf("expected empty non-nil rows, got %#v", res.Results)
	}
}

func TestEngineErrors(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.Prepare("INSERT INTO users (name) VALUES (?)").Bind("Ada").Run(ctx); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	tt := []struct {
		name    string
		exec    func() error
		wantMsg string
	}{
		{
			name: "unique violation",
			exec: func() error {
				_, err := db.Prepare("INSERT INTO users (name) VALUES (?)").Bind("Ada").Run(ctx)
				return err
			},
			wantMsg: "UNIQUE constraint failed",
		},
		{
			name: "missing table",
			exec: func() error {
				_, err := db.Prepare("SELECT * FROM nope").All(ctx)
				return err
			},
			wantMsg: "no such table",
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.exec()
			if !errors.Is(err, binding.ErrQueryFailed) {
				t.Fatalf("expected ErrQueryFailed, got %v", err)
			}
			cause := errors.Unwrap(err)
			if cause == nil || !strings.Contains(cause.Error(), tc.wantMsg) {
				t.Fatalf("expected cause mentioning %q, got %v", tc.wantMsg, cause)
			}
		})
	}
}
