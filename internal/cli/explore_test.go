package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/boxlayout/pkg/pipeline"
)

func newTestSession(t *testing.T, src string, w, h float64) *pipeline.Session {
	t.Helper()
	doc, err := pipeline.Parse(context.Background(), pipeline.Options{Source: src})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	s, err := pipeline.NewSession(doc, w, h)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	t.Cleanup(func() { _ = s.Teardown(context.Background()) })
	return s
}

func press(m ExploreModel, key tea.KeyMsg) ExploreModel {
	next, _ := m.Update(key)
	return next.(ExploreModel)
}

func TestExploreModelToggle(t *testing.T) {
	m := newExploreModel(context.Background(), newTestSession(t, toolbarSource, 200, 40))
	if len(m.Names) != 1 || m.Names[0] != "badge" {
		t.Fatalf("Names = %v", m.Names)
	}
	if _, ok := m.Layout.Frame("badge"); ok {
		t.Fatal("badge should start detached")
	}

	m = press(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if !m.Flags["badge"] {
		t.Error("badge flag not set after toggle")
	}
	badge, ok := m.Layout.Frame("badge")
	if !ok || badge.X != 180 {
		t.Errorf("badge frame = %+v, %v", badge, ok)
	}
	if !strings.Contains(m.View(), "[x]") {
		t.Error("view does not show the enabled flag")
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	if _, ok := m.Layout.Frame("badge"); ok {
		t.Error("badge should detach after second toggle")
	}
}

func TestExploreModelNavigation(t *testing.T) {
	src := `
vstack {
  if a { element "a" }
  if b { element "b" }
}
`
	m := newExploreModel(context.Background(), newTestSession(t, src, 100, 100))
	m = press(m, tea.KeyMsg{Type: tea.KeyDown})
	m = press(m, tea.KeyMsg{Type: tea.KeyDown})
	if m.Cursor != 1 {
		t.Errorf("Cursor = %d, want 1", m.Cursor)
	}
	m = press(m, tea.KeyMsg{Type: tea.KeyUp})
	if m.Cursor != 0 {
		t.Errorf("Cursor = %d, want 0", m.Cursor)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Error("q should quit")
	}
}

func TestExploreModelDegraded(t *testing.T) {
	src := `
hstack {
  element "a" (width: 150)
  if wide { element "b" (width: 150) }
}
`
	m := newExploreModel(context.Background(), newTestSession(t, src, 150, 100))
	if m.Status != "" {
		t.Fatalf("unexpected status %q", m.Status)
	}
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Err != nil {
		t.Fatalf("Err = %v", m.Err)
	}
	if m.Status == "" || !m.Layout.Degraded() {
		t.Error("overfull layout should be reported as degraded")
	}
}
