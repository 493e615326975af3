package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amitrajput-dev/zelora-backend/pkg/migrate"
)

func TestMigrationsDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestProductsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_products.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS products",
		"CHECK (stock >= 0)",
		"CREATE UNIQUE INDEX IF NOT EXISTS products_slug_key",
		"FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE",
		"DROP TABLE IF EXISTS products",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestAddressMigrationEnforcesSingleDefault(t *testing.T) {
	content := readMigration(t, "*_create_users.sql")
	if !strings.Contains(content, "addresses_one_default_per_user") {
		t.Error("missing partial unique index on default addresses")
	}
	if !strings.Contains(content, "WHERE is_default") {
		t.Error("default-address index should be partial")
	}
}

func TestPaymentsMigrationUniquePerMode(t *testing.T) {
	content := readMigration(t, "*_create_payments.sql")
	if !strings.Contains(content, "payments_order_mode_key ON payments (order_id, mode)") {
		t.Error("missing unique order/mode index")
	}
}
