package migrations

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	localpay "github.com/goliatone/go-localpay"
	_ "github.com/mattn/go-sqlite3"
)

func TestFilesystems_ReturnsPostgresAndSQLite(t *testing.T) {
	filesystems, err := Filesystems()
	if err != nil {
		t.Fatalf("filesystems: %v", err)
	}
	if len(filesystems) != 2 {
		t.Fatalf("expected 2 filesystems, got %d", len(filesystems))
	}

	var postgresFound bool
	var sqliteFound bool
	for _, entry := range filesystems {
		matches, globErr := fs.Glob(entry.FS, "*.up.sql")
		if globErr != nil {
			t.Fatalf("glob %s: %v", entry.Dialect, globErr)
		}
		if len(matches) == 0 {
			t.Fatalf("expected %s migration files, got none", entry.Dialect)
		}
		switch entry.Dialect {
		case DialectPostgres:
			postgresFound = true
		case DialectSQLite:
			sqliteFound = true
		}
	}

	if !postgresFound {
		t.Fatalf("expected postgres filesystem")
	}
	if !sqliteFound {
		t.Fatalf("expected sqlite filesystem")
	}
}

func TestFilesystems_RejectsMissingDownFile(t *testing.T) {
	source := fstest.MapFS{
		"data/sql/migrations/00001_a.up.sql":          {Data: []byte("SELECT 1;")},
		"data/sql/migrations/00001_a.down.sql":        {Data: []byte("SELECT 1;")},
		"data/sql/migrations/sqlite/00001_a.up.sql":   {Data: []byte("SELECT 1;")},
		"data/sql/migrations/sqlite/00002_b.up.sql":   {Data: []byte("SELECT 1;")},
		"data/sql/migrations/sqlite/00001_a.down.sql": {Data: []byte("SELECT 1;")},
	}
	_, err := Filesystems(source)
	if err == nil {
		t.Fatalf("expected missing down file error")
	}
	if !strings.Contains(err.Error(), "00002_b.up.sql") {
		t.Fatalf("expected error to name the migration, got %v", err)
	}
}

func TestRegister_UsesValidationTargets(t *testing.T) {
	var calls []string
	var labels []string
	_, err := Register(context.Background(), func(_ context.Context, dialect string, label string, _ fs.FS) error {
		calls = append(calls, dialect)
		labels = append(labels, label)
		return nil
	}, WithValidationTargets(DialectSQLite))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if len(calls) != 1 {
		t.Fatalf("expected 1 registration call, got %d", len(calls))
	}
	if calls[0] != DialectSQLite {
		t.Fatalf("expected sqlite registration, got %q", calls[0])
	}
	if labels[0] != "go-localpay" {
		t.Fatalf("expected default source label, got %q", labels[0])
	}
}

func TestRegister_PropagatesRegisterErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := Register(context.Background(), func(context.Context, string, string, fs.FS) error {
		return boom
	}, WithDialectSourceLabel("host-app"))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped register error, got %v", err)
	}

	if _, err := Register(context.Background(), nil); err == nil {
		t.Fatalf("expected missing register function error")
	}
}

func TestDialectForDriver(t *testing.T) {
	cases := map[string]string{
		"sqlite3":  DialectSQLite,
		"SQLite":   DialectSQLite,
		"postgres": DialectPostgres,
		"pgx":      DialectPostgres,
	}
	for driver, want := range cases {
		got, err := DialectForDriver(driver)
		if err != nil {
			t.Fatalf("dialect for %s: %v", driver, err)
		}
		if got != want {
			t.Fatalf("dialect for %s: expected %q, got %q", driver, want, got)
		}
	}
	if _, err := DialectForDriver("mysql"); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
}

func TestRequestLogMigrationPair_ExistsForBothDialects(t *testing.T) {
	root := localpay.GetMigrationsFS()
	paths := []string{
		"data/sql/migrations/00001_localpay_request_logs.up.sql",
		"data/sql/migrations/00001_localpay_request_logs.down.sql",
		"data/sql/migrations/sqlite/00001_localpay_request_logs.up.sql",
		"data/sql/migrations/sqlite/00001_localpay_request_logs.down.sql",
	}
	for _, migrationPath := range paths {
		content, err := fs.ReadFile(root, migrationPath)
		if err != nil {
			t.Fatalf("read migration %s: %v", migrationPath, err)
		}
		if strings.TrimSpace(string(content)) == "" {
			t.Fatalf("expected migration %s to have SQL content", migrationPath)
		}
	}
}

func TestSQLiteRequestLogMigration_ApplyAndRollback(t *testing.T) {
	db, err := sql.Open("sqlite3", "file:migrations-request-logs?mode=memory&cache=shared&_foreign_keys=on")
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	defer func() { _ = db.Close() }()
	db.SetMaxOpenConns(1)

	sqliteMigrations, err := fs.Sub(localpay.GetMigrationsFS(), "data/sql/migrations/sqlite")
	if err != nil {
		t.Fatalf("resolve sqlite migrations: %v", err)
	}
	ctx := context.Background()

	if err := execSQLMigration(ctx, db, sqliteMigrations, "00001_localpay_request_logs.up.sql"); err != nil {
		t.Fatalf("apply up: %v", err)
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO localpay_request_logs (id, log_id, method, path) VALUES (?, ?, ?, ?)`,
		"6f1d0f8e-5a3c-4c0e-9d7b-2f1b8c9d0a11", "log_1", "POST", "/v1/tokens",
	); err != nil {
		t.Fatalf("insert row: %v", err)
	}

	var objectType string
	var statusCode int
	if err := db.QueryRowContext(ctx,
		`SELECT object_type, status_code FROM localpay_request_logs WHERE log_id = ?`, "log_1",
	).Scan(&objectType, &statusCode); err != nil {
		t.Fatalf("select row: %v", err)
	}
	if objectType != "" || statusCode != 0 {
		t.Fatalf("expected column defaults, got %q/%d", objectType, statusCode)
	}

	if err := execSQLMigration(ctx, db, sqliteMigrations, "00001_localpay_request_logs.down.sql"); err != nil {
		t.Fatalf("apply down: %v", err)
	}
	var tableName string
	err = db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", "localpay_request_logs",
	).Scan(&tableName)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected table to be dropped, got name=%q err=%v", tableName, err)
	}
}

func execSQLMigration(ctx context.Context, db *sql.DB, fsys fs.FS, filename string) error {
	content, err := fs.ReadFile(fsys, filepath.Clean(filename))
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, string(content))
	return err
}
