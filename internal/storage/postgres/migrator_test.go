package postgres

import (
	"strings"
	"testing"
	"testing/fstest"
)

func migrationFS(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, body := range files {
		fsys["sql/migrations/"+name] = &fstest.MapFile{Data: []byte(body)}
	}
	return fsys
}

func TestLoadMigrationsFromFS_OrdersByVersion(t *testing.T) {
	t.Parallel()

	fsys := migrationFS(map[string]string{
		"0002_outbox.up.sql":   "CREATE TABLE test_b (id INT);",
		"0002_outbox.down.sql": "DROP TABLE IF EXISTS test_b;",
		"0001_orders.up.sql":   "CREATE TABLE test_a (id INT);",
		"0001_orders.down.sql": "DROP TABLE IF EXISTS test_a;",
	})

	migrations, err := loadMigrationsFromFS(fsys)
	if err != nil {
		t.Fatalf("loadMigrationsFromFS failed: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[0].Name != "orders" {
		t.Fatalf("unexpected first migration: %+v", migrations[0])
	}
	if migrations[1].Version != 2 || migrations[1].Name != "outbox" {
		t.Fatalf("unexpected second migration: %+v", migrations[1])
	}
}

func TestLoadMigrationsFromFS_Invalid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			name: "missing down pair",
			files: map[string]string{
				"0001_orders.up.sql": "CREATE TABLE test_a (id INT);",
			},
			wantErr: "both up and down",
		},
		{
			name: "bad filename",
			files: map[string]string{
				"not_a_migration.sql": "SELECT 1;",
			},
			wantErr: "invalid migration file name",
		},
		{
			name: "blank body",
			files: map[string]string{
				"0001_orders.up.sql":   "   \n",
				"0001_orders.down.sql": "DROP TABLE IF EXISTS test_a;",
			},
			wantErr: "is empty",
		},
		{
			name: "name mismatch within version",
			files: map[string]string{
				"0001_orders.up.sql": "CREATE TABLE test_a (id INT);",
				"0001_carts.down.sql": "DROP TABLE IF EXISTS test_a;",
			},
			wantErr: "name mismatch",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := loadMigrationsFromFS(migrationFS(tc.files))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got: %v", tc.wantErr, err)
			}
		})
	}
}

func TestEmbeddedMigrationsAreWellFormed(t *testing.T) {
	t.Parallel()

	migrations, err := loadMigrationsFromFS(migrationsFS)
	if err != nil {
		t.Fatalf("load embedded migrations: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("no embedded migrations found")
	}
	for i := 1; i < len(migrations); i++ {
		if migrations[i].Version <= migrations[i-1].Version {
			t.Fatalf("migrations are not strictly ordered: %d then %d",
				migrations[i-1].Version, migrations[i].Version)
		}
	}
}
