package migrate

import (
	"context"
	"testing"

	"successplan/internal/db"
)

func TestMigrateIsRepeatable(t *testing.T) {
	ctx := context.Background()
	conn, err := db.Open(ctx, db.Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer conn.Close()

	v, err := Migrate(ctx, conn)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if v != Latest() || v < 1 {
		t.Fatalf("version %d, latest %d", v, Latest())
	}
	again, err := Migrate(ctx, conn)
	if err != nil || again != v {
		t.Fatalf("second migrate: %d %v", again, err)
	}
	if _, err := conn.ExecContext(ctx, `INSERT INTO documents(key,payload,updated_at) VALUES ('k','{}','now')`); err != nil {
		t.Fatalf("documents table missing: %v", err)
	}
}
