package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"FundCortex/internal/normalize"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "docs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func keyByDateName(row normalize.Row) string {
	date, _ := row["日期"].(string)
	name, _ := row["名称"].(string)
	return date + "|" + name
}

func TestInsertDocumentsUpserts(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rows := []normalize.Row{
		{"日期": "2024-03-01", "名称": "张某", "变动股数": 1000.0},
		{"日期": "2024-03-02", "名称": "李某", "变动股数": -500.0},
	}
	if err := store.InsertDocuments(ctx, CollectionInsiderTrades, "600519", rows, keyByDateName); err != nil {
		t.Fatalf("insert: %v", err)
	}

	// Replayed sync with one amended row must not duplicate.
	rows[1]["变动股数"] = -800.0
	if err := store.InsertDocuments(ctx, CollectionInsiderTrades, "600519", rows, keyByDateName); err != nil {
		t.Fatalf("reinsert: %v", err)
	}

	n, err := store.Count(ctx, CollectionInsiderTrades, "600519")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 documents after replay, got %d", n)
	}

	table, err := store.QueryByTicker(ctx, CollectionInsiderTrades, "600519")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}
	var found bool
	for _, row := range table.Rows {
		if row["名称"] == "李某" {
			found = true
			if shares, ok := row["变动股数"].(float64); !ok || shares != -800.0 {
				t.Errorf("expected amended shares -800, got %v", row["变动股数"])
			}
		}
	}
	if !found {
		t.Error("amended row missing from query result")
	}
}

func TestInsertDocumentsSkipsEmptyKeys(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rows := []normalize.Row{
		{"日期": "2024-03-01", "名称": "张某"},
		{"名称": "无日期"},
	}
	if err := store.InsertDocuments(ctx, CollectionInsiderTrades, "000001", rows, func(row normalize.Row) string {
		date, _ := row["日期"].(string)
		return date
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	n, err := store.Count(ctx, CollectionInsiderTrades, "000001")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected keyless row to be skipped, got %d documents", n)
	}
}

func TestQueryByTickerIsolatesCollections(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	insider := []normalize.Row{{"日期": "2024-01-05", "名称": "王某"}}
	news := []normalize.Row{{"发布时间": "2024-01-06", "新闻链接": "https://example.com/a"}}

	if err := store.InsertDocuments(ctx, CollectionInsiderTrades, "600519", insider, keyByDateName); err != nil {
		t.Fatalf("insert insider: %v", err)
	}
	if err := store.InsertDocuments(ctx, CollectionCompanyNews, "600519", news, func(row normalize.Row) string {
		url, _ := row["新闻链接"].(string)
		return url
	}); err != nil {
		t.Fatalf("insert news: %v", err)
	}

	table, err := store.QueryByTicker(ctx, CollectionCompanyNews, "600519")
	if err != nil {
		t.Fatalf("query news: %v", err)
	}
	if len(table.Rows) != 1 {
		t.Fatalf("expected 1 news row, got %d", len(table.Rows))
	}
	if _, ok := table.Rows[0]["名称"]; ok {
		t.Error("news row leaked an insider column")
	}
}

func TestFreshnessTracking(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	fresh, err := store.FreshToday(ctx, CollectionInsiderTrades, "600519")
	if err != nil {
		t.Fatalf("fresh check: %v", err)
	}
	if fresh {
		t.Fatal("unsynced ticker reported fresh")
	}

	today := time.Now().UTC().Format("2006-01-02")
	if err := store.SetLastUpdate(ctx, CollectionInsiderTrades, "600519", today); err != nil {
		t.Fatalf("set last update: %v", err)
	}

	fresh, err = store.FreshToday(ctx, CollectionInsiderTrades, "600519")
	if err != nil {
		t.Fatalf("fresh check: %v", err)
	}
	if !fresh {
		t.Fatal("ticker synced today reported stale")
	}

	// Freshness is per collection.
	fresh, err = store.FreshToday(ctx, CollectionCompanyNews, "600519")
	if err != nil {
		t.Fatalf("fresh check: %v", err)
	}
	if fresh {
		t.Fatal("freshness leaked across collections")
	}

	day, err := store.LastUpdate(ctx, CollectionInsiderTrades, "600519")
	if err != nil {
		t.Fatalf("last update: %v", err)
	}
	if day != today {
		t.Fatalf("expected last update %s, got %s", today, day)
	}
}
