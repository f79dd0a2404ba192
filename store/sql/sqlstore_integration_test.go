package sqlstore_test

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"testing"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/goliatone/go-responder/core"
	respondermigrations "github.com/goliatone/go-responder/migrations"
	sqlstore "github.com/goliatone/go-responder/store/sql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

type testPersistenceConfig struct {
	driver string
	server string
}

func (c testPersistenceConfig) GetDebug() bool {
	return false
}

func (c testPersistenceConfig) GetDriver() string {
	return c.driver
}

func (c testPersistenceConfig) GetServer() string {
	return c.server
}

func (c testPersistenceConfig) GetPingTimeout() time.Duration {
	return time.Second
}

func (c testPersistenceConfig) GetOtelIdentifier() string {
	return "go-responder-tests"
}

func TestMigrationSmokeApplySQLite(t *testing.T) {
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	for _, table := range []string{"responder_actions", "responder_contact_links"} {
		var tableName string
		if err := client.DB().NewRaw(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
			table,
		).Scan(context.Background(), &tableName); err != nil {
			t.Fatalf("query sqlite master for %s: %v", table, err)
		}
		if tableName != table {
			t.Fatalf("expected %s table, got %q", table, tableName)
		}
	}
}

func TestActionAuditStore_RecordAndListNewestFirst(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	store := factory.ActionStore()
	if store == nil {
		t.Fatal("expected action store from factory")
	}

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	entries := []core.ActionEntry{
		{ThreadID: "9001", Kind: core.ActionKindComment, Status: core.ActionStatusSent, OccurredAt: base},
		{ThreadID: "9001", Kind: core.ActionKindMessage, Intent: "pricing", Status: core.ActionStatusSent, OccurredAt: base.Add(time.Minute)},
		{ThreadID: "9002", Kind: core.ActionKindContactTag, Intent: "demo", Status: core.ActionStatusSent, OccurredAt: base.Add(2 * time.Minute)},
	}
	for _, entry := range entries {
		if err := store.RecordAction(ctx, entry); err != nil {
			t.Fatalf("record action %s/%s: %v", entry.ThreadID, entry.Kind, err)
		}
	}

	listed, err := store.ListRecentActions(ctx, "9001", 10)
	if err != nil {
		t.Fatalf("list actions: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 entries for thread 9001, got %d", len(listed))
	}
	if listed[0].Kind != core.ActionKindMessage || listed[1].Kind != core.ActionKindComment {
		t.Fatalf("expected newest-first ordering, got %s then %s", listed[0].Kind, listed[1].Kind)
	}
	if listed[0].Intent != "pricing" {
		t.Fatalf("expected pricing intent on reply entry, got %q", listed[0].Intent)
	}

	all, err := store.ListRecentActions(ctx, "", 2)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected limit 2 across threads, got %d", len(all))
	}
	if all[0].ThreadID != "9002" {
		t.Fatalf("expected newest entry first across threads, got thread %s", all[0].ThreadID)
	}
}

func TestActionAuditStore_RejectsIncompleteEntries(t *testing.T) {
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	store := factory.ActionStore()

	if err := store.RecordAction(context.Background(), core.ActionEntry{Kind: core.ActionKindComment}); err == nil {
		t.Fatal("expected error for missing thread id")
	}
	if err := store.RecordAction(context.Background(), core.ActionEntry{ThreadID: "9001"}); err == nil {
		t.Fatal("expected error for missing action kind")
	}
}

func TestContactLinkStore_SaveResolveAndUpsert(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	store := factory.ContactLinkStore()
	if store == nil {
		t.Fatal("expected contact link store from factory")
	}

	if _, err := store.ResolveContactID(ctx, "ada@example.com"); err == nil {
		t.Fatal("expected error resolving unknown email")
	}

	if err := store.SaveLink(ctx, "Ada@Example.com", "C-1", "pricing"); err != nil {
		t.Fatalf("save link: %v", err)
	}
	contactID, err := store.ResolveContactID(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("resolve link: %v", err)
	}
	if contactID != "C-1" {
		t.Fatalf("expected contact C-1, got %q", contactID)
	}

	// Same email again updates in place instead of duplicating the row.
	if err := store.SaveLink(ctx, "ada@example.com", "C-2", "demo"); err != nil {
		t.Fatalf("upsert link: %v", err)
	}
	contactID, err = store.ResolveContactID(ctx, "ADA@example.com")
	if err != nil {
		t.Fatalf("resolve after upsert: %v", err)
	}
	if contactID != "C-2" {
		t.Fatalf("expected contact C-2 after upsert, got %q", contactID)
	}
}

type upsertRecorder struct {
	contactID string
	err       error
	calls     int
}

func (c *upsertRecorder) UpsertContactByEmail(_ context.Context, _ string, _ map[string]string) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return c.contactID, nil
}

func TestLinkedContactClient_PersistsLinkAfterUpsert(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}

	upstream := &upsertRecorder{contactID: "C-77"}
	linked, err := sqlstore.NewLinkedContactClient(upstream, factory.ContactLinkStore(), nil)
	if err != nil {
		t.Fatalf("new linked contact client: %v", err)
	}

	contactID, err := linked.UpsertContactByEmail(ctx, "sam@example.com", map[string]string{
		"auto_responder_intent": "support",
	})
	if err != nil {
		t.Fatalf("upsert contact: %v", err)
	}
	if contactID != "C-77" {
		t.Fatalf("expected upstream contact id, got %q", contactID)
	}

	resolved, err := factory.ContactLinkStore().ResolveContactID(ctx, "sam@example.com")
	if err != nil {
		t.Fatalf("resolve persisted link: %v", err)
	}
	if resolved != "C-77" {
		t.Fatalf("expected persisted link C-77, got %q", resolved)
	}
}

func TestLinkedContactClient_UpstreamFailureSkipsLink(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}

	upstream := &upsertRecorder{err: fmt.Errorf("crm unavailable")}
	linked, err := sqlstore.NewLinkedContactClient(upstream, factory.ContactLinkStore(), nil)
	if err != nil {
		t.Fatalf("new linked contact client: %v", err)
	}

	if _, err := linked.UpsertContactByEmail(ctx, "sam@example.com", nil); err == nil {
		t.Fatal("expected upstream error to propagate")
	}
	if _, err := factory.ContactLinkStore().ResolveContactID(ctx, "sam@example.com"); err == nil {
		t.Fatal("expected no link persisted after upstream failure")
	}
}

func newSQLiteClient(t *testing.T) (*persistence.Client, func()) {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:responder-test-%d?mode=memory&cache=shared&_foreign_keys=on",
		time.Now().UnixNano(),
	)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := testPersistenceConfig{
		driver: "sqlite3",
		server: dsn,
	}
	client, err := persistence.New(cfg, sqlDB, sqlitedialect.New())
	if err != nil {
		_ = sqlDB.Close()
		t.Fatalf("new persistence client: %v", err)
	}

	ctx := context.Background()
	_, err = respondermigrations.Register(ctx, func(_ context.Context, dialect string, _ string, fsys fs.FS) error {
		if dialect != respondermigrations.DialectSQLite {
			return nil
		}
		client.RegisterSQLMigrations(fsys)
		return nil
	}, respondermigrations.WithValidationTargets(respondermigrations.DialectSQLite))
	if err != nil {
		_ = client.Close()
		t.Fatalf("register migrations: %v", err)
	}
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		t.Fatalf("migrate: %v", err)
	}

	return client, func() {
		_ = client.Close()
	}
}
