package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAuctionsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_auctions.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no auctions migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS auctions",
		"version BIGINT NOT NULL DEFAULT 0",
		"CHECK (starting_bid > 0)",
		"CHECK (increment_amount > 0)",
		"CHECK (end_at > start_at)",
		"DROP TABLE IF EXISTS auctions",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestBidsMigrationContainsIdempotencyIndex(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_bids.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no bids migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS bids",
		"REFERENCES auctions(id) ON DELETE CASCADE",
		"idx_bids_idempotency_key",
		"DROP TABLE IF EXISTS bids",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
