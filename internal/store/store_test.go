package store

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func openTestStore(t *testing.T, keep int) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "history.db"), keep)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	// deterministic, strictly increasing timestamps
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func TestRecordAndList(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, 0)

	for i := 1; i <= 3; i++ {
		if _, err := s.Record(ctx, "dev", "dev.envx", map[string]interface{}{"n": float64(i)}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if _, err := s.Record(ctx, "prod", "prod.envx", map[string]interface{}{"n": 100.0}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	snaps, err := s.List(ctx, "dev", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(snaps) != 3 {
		t.Fatalf("expected 3 dev snapshots, got %d", len(snaps))
	}
	for i, want := range []float64{3, 2, 1} {
		if got := snaps[i].Values["n"]; got != want {
			t.Errorf("snapshot %d n = %v, want %v", i, got, want)
		}
		if snaps[i].Env != "dev" || snaps[i].Source != "dev.envx" {
			t.Errorf("snapshot %d metadata %+v", i, snaps[i])
		}
	}
	if !snaps[0].CreatedAt.After(snaps[1].CreatedAt) {
		t.Error("snapshots should be newest first")
	}

	limited, err := s.List(ctx, "dev", 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("limit ignored: %d snapshots", len(limited))
	}
}

func TestLatest(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, 0)

	if _, err := s.Latest(ctx, "dev"); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}

	values := map[string]interface{}{
		"db":   map[string]interface{}{"host": "localhost"},
		"tags": []interface{}{"a", "b"},
		"on":   true,
		"none": nil,
	}
	rec, err := s.Record(ctx, "dev", "dev.envx", values)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	got, err := s.Latest(ctx, "dev")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got.ID != rec.ID || !got.CreatedAt.Equal(rec.CreatedAt) {
		t.Errorf("Latest = %+v, want %+v", got, rec)
	}
	if !reflect.DeepEqual(got.Values, values) {
		t.Errorf("values = %#v, want %#v", got.Values, values)
	}
}

func TestRecordPrunes(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, 2)

	for i := 1; i <= 5; i++ {
		if _, err := s.Record(ctx, "dev", "dev.envx", map[string]interface{}{"n": float64(i)}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if _, err := s.Record(ctx, "prod", "prod.envx", map[string]interface{}{}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	snaps, err := s.List(ctx, "dev", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(snaps) != 2 || snaps[0].Values["n"] != 5.0 || snaps[1].Values["n"] != 4.0 {
		t.Errorf("expected the two newest snapshots, got %d", len(snaps))
	}

	prod, err := s.List(ctx, "prod", 0)
	if err != nil || len(prod) != 1 {
		t.Errorf("pruning one env should not touch another: %d, %v", len(prod), err)
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := Open(ctx, path, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := s.Record(ctx, "dev", "dev.envx", map[string]interface{}{"a": 1.0}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	s.Close()

	s, err = Open(ctx, path, 0)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if _, err := s.Latest(ctx, "dev"); err != nil {
		t.Errorf("history lost after reopen: %v", err)
	}
}

func TestDiff(t *testing.T) {
	old := map[string]interface{}{
		"same":    1.0,
		"changed": "a",
		"removed": true,
		"nested":  map[string]interface{}{"x": []interface{}{1.0}},
	}
	after := map[string]interface{}{
		"same":    1.0,
		"changed": "b",
		"added":   nil,
		"nested":  map[string]interface{}{"x": []interface{}{2.0}},
	}

	got := Diff(old, after)
	want := []Change{
		{Key: "added", Kind: Added},
		{Key: "changed", Kind: Changed, Old: "a", New: "b"},
		{Key: "nested", Kind: Changed, Old: old["nested"], New: after["nested"]},
		{Key: "removed", Kind: Removed, Old: true},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Diff = %+v\nwant %+v", got, want)
	}

	if d := Diff(old, old); len(d) != 0 {
		t.Errorf("identical environments should not differ: %+v", d)
	}
}

func TestChangeKindString(t *testing.T) {
	tests := map[ChangeKind]string{Added: "added", Removed: "removed", Changed: "changed"}
	for k, want := range tests {
		if k.String() != want {
			t.Errorf("%d.String() = %s, want %s", k, k.String(), want)
		}
	}
}
