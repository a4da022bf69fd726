package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/boxlayout/pkg/graph"
)

func sample(id string, at time.Time) graph.Layout {
	return graph.Layout{
		ID:     id,
		Width:  100,
		Height: 50,
		Style:  graph.StyleSimple,
		Frames: []graph.Frame{
			{ID: "window", Kind: graph.KindHost, Width: 100, Height: 50},
			{ID: "label", Kind: graph.KindSurface, Width: 100, Height: 50},
		},
		Constraints: []graph.Edge{
			{From: "label", To: "window", Relation: "==", Priority: 1000, Expr: "label.top == window.top @1000"},
		},
		CreatedAt: at,
	}
}

// exercise runs the behaviour every Store must share.
func exercise(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	if _, err := s.Load(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load(missing) = %v, want ErrNotFound", err)
	}

	first, second := sample("a", base), sample("b", base.Add(time.Minute))
	for _, l := range []graph.Layout{first, second} {
		if err := s.Save(ctx, l); err != nil {
			t.Fatalf("Save(%s): %v", l.ID, err)
		}
	}

	got, err := s.Load(ctx, "a")
	if err != nil {
		t.Fatalf("Load(a): %v", err)
	}
	if diff := cmp.Diff(first, got); diff != "" {
		t.Errorf("Load(a) mismatch (-want +got):\n%s", diff)
	}

	recent, err := s.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 1 || recent[0].ID != "b" {
		t.Errorf("Recent(1) = %v, want [b]", ids(recent))
	}

	first.Width = 200
	if err := s.Save(ctx, first); err != nil {
		t.Fatalf("re-Save: %v", err)
	}
	if got, _ := s.Load(ctx, "a"); got.Width != 200 {
		t.Errorf("Save did not replace: width %v", got.Width)
	}

	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
	if err := s.Save(ctx, graph.Layout{}); err == nil {
		t.Error("Save without id should fail")
	}
}

func ids(ls []graph.Layout) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.ID
	}
	return out
}

func TestMemory(t *testing.T) {
	exercise(t, NewMemory())
}

func TestMemoryRecentOrder(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	_ = m.Save(ctx, sample("old", base))
	_ = m.Save(ctx, sample("new", base.Add(time.Hour)))
	_ = m.Save(ctx, sample("tie", base.Add(time.Hour)))

	got, _ := m.Recent(ctx, 0)
	if diff := cmp.Diff([]string{"new", "tie", "old"}, ids(got)); diff != "" {
		t.Errorf("Recent order (-want +got):\n%s", diff)
	}
}

func TestMongo(t *testing.T) {
	uri := os.Getenv("BOXLAYOUT_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("BOXLAYOUT_TEST_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	m, err := NewMongo(ctx, uri, "boxlayout_test")
	if err != nil {
		t.Fatalf("NewMongo: %v", err)
	}
	defer m.Close(ctx)
	if err := m.coll.Drop(ctx); err != nil {
		t.Fatalf("drop: %v", err)
	}
	exercise(t, m)
}
