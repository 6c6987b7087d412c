package sqlstore_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/goliatone/go-localpay/core"
	"github.com/goliatone/go-localpay/core/coretest"
	sqlstore "github.com/goliatone/go-localpay/store/sql"
	"github.com/uptrace/bun"
)

func TestMigrationSmokeApplySQLite(t *testing.T) {
	_, client := newSQLiteStore(t)

	var tableName string
	if err := client.DB().NewRaw(
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
		"localpay_request_logs",
	).Scan(context.Background(), &tableName); err != nil {
		t.Fatalf("query sqlite master: %v", err)
	}
	if tableName != "localpay_request_logs" {
		t.Fatalf("expected localpay_request_logs table, got %q", tableName)
	}
}

func TestRequestLogStore_RecordAndListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store, _ := newSQLiteStore(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := []core.RequestLogEntry{
		{
			ID: "log_a", Method: "post", Path: "/v1/setup_intents/seti_1/confirm",
			Query:       map[string]string{},
			RequestBody: []byte(`{"key":"pk_test"}`), ResponseBody: []byte(`{"status":"requires_action"}`),
			StatusCode: 200, DurationMS: 12, ObjectType: "setup_intent", ObjectID: "seti_1",
			CreatedAt: base,
		},
		{
			ID: "log_b", Method: "POST", Path: "/v1/setup_intents/seti_1/confirm",
			StatusCode: 200, DurationMS: 9, ObjectType: "setup_intent", ObjectID: "seti_1",
			CreatedAt: base.Add(time.Second),
		},
		{
			ID: "log_c", Method: "POST", Path: "/v1/payment_intents/pi_1/_authenticate",
			Query:      map[string]string{"success": "true"},
			StatusCode: 0, Error: "dial tcp: connection refused", ObjectType: "payment_intent", ObjectID: "pi_1",
			CreatedAt: base.Add(2 * time.Second),
		},
	}
	for _, entry := range entries {
		if err := store.Record(ctx, entry); err != nil {
			t.Fatalf("record %s: %v", entry.ID, err)
		}
	}

	all, err := store.List(ctx, core.RequestLogFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(all))
	}
	if all[0].ID != "log_c" || all[2].ID != "log_a" {
		t.Fatalf("expected newest first, got %s..%s", all[0].ID, all[2].ID)
	}
	if all[0].Query["success"] != "true" {
		t.Fatalf("expected query to round trip, got %#v", all[0].Query)
	}
	if all[0].Error != "dial tcp: connection refused" || all[0].StatusCode != 0 {
		t.Fatalf("expected failure entry, got %#v", all[0])
	}
	if all[2].Method != "POST" {
		t.Fatalf("expected method to be upper-cased, got %q", all[2].Method)
	}
	if string(all[2].ResponseBody) != `{"status":"requires_action"}` {
		t.Fatalf("unexpected response body %q", all[2].ResponseBody)
	}

	setups, err := store.List(ctx, core.RequestLogFilter{ObjectType: "setup_intent", ObjectID: "seti_1", Limit: 1})
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(setups) != 1 || setups[0].ID != "log_b" {
		t.Fatalf("expected newest setup entry only, got %#v", setups)
	}
}

func TestRequestLogStore_RejectsDuplicateAndMissingIDs(t *testing.T) {
	ctx := context.Background()
	store, _ := newSQLiteStore(t)

	entry := core.RequestLogEntry{ID: "log_dup", Method: "POST", Path: "/v1/tokens"}
	if err := store.Record(ctx, entry); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := store.Record(ctx, entry); err == nil {
		t.Fatalf("expected unique log_id violation")
	}
	if err := store.Record(ctx, core.RequestLogEntry{Method: "POST"}); err == nil {
		t.Fatalf("expected missing id error")
	}
}

func TestRequestLogStore_ClearAndPrune(t *testing.T) {
	ctx := context.Background()
	store, _ := newSQLiteStore(t)

	now := time.Now().UTC()
	for i, createdAt := range []time.Time{now.Add(-48 * time.Hour), now.Add(-time.Minute), now} {
		if err := store.Record(ctx, core.RequestLogEntry{
			ID: fmt.Sprintf("log_%d", i), Method: "POST", Path: "/v1/sources", CreatedAt: createdAt,
		}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	pruned, err := store.Prune(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if pruned != 1 {
		t.Fatalf("expected 1 pruned entry, got %d", pruned)
	}

	cleared, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if cleared != 2 {
		t.Fatalf("expected 2 cleared entries, got %d", cleared)
	}
	remaining, err := store.List(ctx, core.RequestLogFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected empty store, got %d", len(remaining))
	}
}

func TestRequestLogStore_AsClientSink(t *testing.T) {
	ctx := context.Background()
	store, _ := newSQLiteStore(t)

	transport := coretest.NewFakeTransport(
		coretest.JSON(200, map[string]any{"id": "seti_9", "object": "setup_intent", "status": "requires_action"}),
		coretest.Fail(errors.New("connection reset")),
	)
	client, err := core.NewClient(core.Config{
		PublishableKey: "pk_test_123",
		BaseURL:        "http://localpay.test",
	},
		core.WithTransport(transport),
		core.WithChallengePresenter(&coretest.RecordingPresenter{Decision: true}),
		core.WithRequestLog(store),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	result := client.ConfirmCardSetup(ctx, "seti_9_secret_abc", core.SetupData{PaymentMethodID: "pm_1"})
	if result.Error == nil {
		t.Fatalf("expected second round failure")
	}

	entries, err := store.List(ctx, core.RequestLogFilter{ObjectType: "setup_intent", ObjectID: "seti_9"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 persisted entries, got %d", len(entries))
	}
	var failed int
	for _, entry := range entries {
		if entry.Error != "" {
			failed++
			if entry.StatusCode != 0 {
				t.Fatalf("expected transport failure entry to carry status 0, got %d", entry.StatusCode)
			}
		}
	}
	if failed != 1 {
		t.Fatalf("expected one failed entry, got %d", failed)
	}
}

func TestOpen_RejectsUnsupportedDriver(t *testing.T) {
	if _, err := sqlstore.Open(context.Background(), sqlstore.DatabaseConfig{Driver: "mysql", DSN: "x"}); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
	if _, err := sqlstore.Open(context.Background(), sqlstore.DatabaseConfig{Driver: "sqlite3"}); err == nil {
		t.Fatalf("expected missing dsn error")
	}
}

func TestNewRequestLogStoreFromPersistence_RequiresClient(t *testing.T) {
	if _, err := sqlstore.NewRequestLogStoreFromPersistence(nil); err == nil {
		t.Fatalf("expected nil client error")
	}
	if _, err := sqlstore.NewRequestLogStoreFromPersistence("nope"); err == nil {
		t.Fatalf("expected unsupported client error")
	}
}

type persistenceClient interface {
	DB() *bun.DB
}

func newSQLiteStore(t *testing.T) (*sqlstore.RequestLogStore, persistenceClient) {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:localpay-test-%d?mode=memory&cache=shared&_foreign_keys=on",
		time.Now().UnixNano(),
	)
	client, err := sqlstore.Open(context.Background(), sqlstore.DatabaseConfig{
		Driver: "sqlite3",
		DSN:    dsn,
	})
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	store, err := sqlstore.NewRequestLogStoreFromPersistence(client)
	if err != nil {
		t.Fatalf("new request log store: %v", err)
	}
	return store, client
}
