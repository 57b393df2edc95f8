package settlement

import (
	"context"
	"testing"
	"time"
)

func TestJSONLStore_AppendQuery(t *testing.T) {
	dir := t.TempDir()
	store, err := NewJSONLStore(dir + "/clearings.jsonl")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()

	rec := Record{Timestamp: time.Now(), AwardedPrice: 50, Awards: []Award{{TraderID: "storage-1", NetPowerMW: 3}}}
	if err := store.Append(context.Background(), rec); err != nil {
		t.Fatalf("append: %v", err)
	}
	out, err := store.Query(context.Background(), Query{TraderID: "storage-1"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 record, got %d", len(out))
	}

	if out, err = store.Query(context.Background(), Query{TraderID: "no-such-trader"}); err != nil || len(out) != 0 {
		t.Fatalf("expected no matches, got %d records (err=%v)", len(out), err)
	}
}
