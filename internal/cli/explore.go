package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	errs "github.com/matzehuels/boxlayout/pkg/errors"
	"github.com/matzehuels/boxlayout/pkg/graph"
	"github.com/matzehuels/boxlayout/pkg/pipeline"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	flagOnStyle       = lipgloss.NewStyle().Foreground(colorGreen)
)

// exploreCommand creates the interactive flag explorer.
func (c *CLI) exploreCommand() *cobra.Command {
	var solve solveOptions

	cmd := &cobra.Command{
		Use:   "explore <file>",
		Short: "Toggle flags interactively and watch the layout update",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.Options{Logger: c.Logger}
			if err := readInput(args[0], &opts); err != nil {
				return err
			}
			if err := c.applySolveOptions(solve, &opts); err != nil {
				return err
			}
			if err := opts.ValidateForSolve(); err != nil {
				return err
			}
			doc, err := pipeline.Parse(cmd.Context(), opts)
			if err != nil {
				return err
			}

			// The TUI owns the terminal; keep solver warnings out of it.
			c.Logger.SetLevel(log.ErrorLevel)
			session, err := pipeline.NewSession(doc, opts.Width, opts.Height, pipeline.WithSessionLogger(c.Logger))
			if err != nil {
				return err
			}
			defer session.Teardown(context.WithoutCancel(cmd.Context()))
			if err := session.SetFlags(opts.Flags); err != nil {
				return err
			}

			m := newExploreModel(cmd.Context(), session)
			final, err := tea.NewProgram(m, tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return err
			}
			if fm, ok := final.(ExploreModel); ok && fm.Err != nil {
				return fm.Err
			}
			return nil
		},
	}

	solve.register(cmd)
	return cmd
}

// =============================================================================
// ExploreModel - Interactive flag toggling
// =============================================================================

// layoutSession is the part of pipeline.Session the explorer drives.
type layoutSession interface {
	Flags() map[string]bool
	Toggle(name string) (bool, error)
	Update(ctx context.Context) (graph.Layout, error)
}

// ExploreModel is the bubbletea model for the flag explorer.
type ExploreModel struct {
	ctx     context.Context
	session layoutSession

	Names  []string
	Flags  map[string]bool
	Cursor int
	Layout graph.Layout
	Status string
	Err    error
}

func newExploreModel(ctx context.Context, s layoutSession) ExploreModel {
	m := ExploreModel{ctx: ctx, session: s}
	m.Flags = s.Flags()
	for name := range m.Flags {
		m.Names = append(m.Names, name)
	}
	sort.Strings(m.Names)
	m.relayout()
	return m
}

// relayout solves the session and records the outcome. A degraded layout is
// kept and reported in the status line.
func (m *ExploreModel) relayout() {
	l, err := m.session.Update(m.ctx)
	switch {
	case err == nil:
		m.Layout, m.Status = l, ""
	case errs.Is(err, errs.ErrCodeUnsatisfiable):
		m.Layout, m.Status = l, errs.UserMessage(err)
	default:
		m.Err = err
	}
	m.Flags = m.session.Flags()
}

func (m ExploreModel) Init() tea.Cmd {
	return nil
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Names)-1 {
			m.Cursor++
		}
	case " ", "space", "enter", "x":
		if len(m.Names) == 0 {
			return m, nil
		}
		if _, err := m.session.Toggle(m.Names[m.Cursor]); err != nil {
			m.Err = err
			return m, tea.Quit
		}
		m.relayout()
		if m.Err != nil {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m ExploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Layout %gx%g", m.Layout.Width, m.Layout.Height)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  q quit"))
	b.WriteString("\n\n")

	if len(m.Names) == 0 {
		b.WriteString(listDimStyle.Render("  no flags declared"))
		b.WriteString("\n")
	}
	for i, name := range m.Names {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		box := "[ ]"
		if m.Flags[name] {
			box = flagOnStyle.Render("[x]")
		}
		line := fmt.Sprintf("%s%s %s", cursor, box, name)
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(framesTable(m.Layout, false, -1))
	b.WriteString("\n")
	if m.Status != "" {
		b.WriteString(StyleWarning.Render("! " + m.Status))
		b.WriteString("\n")
	}
	return b.String()
}
