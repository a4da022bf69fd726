package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/boxlayout/pkg/graph"
	"github.com/matzehuels/boxlayout/pkg/pipeline"
)

// compileCommand creates the compile command: solve and print frames.
func (c *CLI) compileCommand() *cobra.Command {
	var (
		solve   solveOptions
		output  string
		all     bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "compile <file|->",
		Short: "Solve a layout description and print its frames",
		Long: `Compile parses a layout description, solves it for the host size and
prints the resulting frames. With -o the layout is written as JSON instead.`,
		Example: `  boxlayout compile toolbar.box --width 200 --height 40 --set badge
  boxlayout compile toolbar.box -o toolbar.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.Options{Style: c.Config.Render.Style}
			if err := readInput(args[0], &opts); err != nil {
				return err
			}
			if err := c.applySolveOptions(solve, &opts); err != nil {
				return err
			}

			runner, err := c.newRunner(cmd.Context(), noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			prog := newProgress(c.Logger)
			opts.Logger = c.Logger
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			doc, err := pipeline.Parse(cmd.Context(), opts)
			if err != nil {
				return err
			}
			layout, hit, err := runner.SolveWithCacheInfo(cmd.Context(), doc, opts)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Solved %s", opts.Filename))

			if output != "" {
				if err := graph.WriteLayoutFile(layout, output); err != nil {
					return err
				}
				printSuccess("Wrote layout")
				printFile(output)
				return nil
			}

			printLayout(layout, all, hit)
			return nil
		},
	}

	solve.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the layout as JSON to this file")
	cmd.Flags().BoolVar(&all, "all", false, "include host and anchor groups in the table")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the cache")

	return cmd
}

// printLayout prints a frames table followed by layout statistics.
func printLayout(l graph.Layout, all, cached bool) {
	fmt.Fprintln(stdout, framesTable(l, all, -1))

	for _, e := range l.Constraints {
		if e.Dropped {
			printWarning("dropped %s", e.Expr)
		}
	}
	printStats(len(l.Surfaces()), len(l.Constraints), countDropped(l), cached)
}

func countDropped(l graph.Layout) int {
	n := 0
	for _, e := range l.Constraints {
		if e.Dropped {
			n++
		}
	}
	return n
}

// framesTable renders the frames of l. Only surfaces are listed unless all
// is set. The row at index highlight, if any, is bold.
func framesTable(l graph.Layout, all bool, highlight int) string {
	rows := [][]string{}
	for _, f := range l.Frames {
		if !all && !f.IsSurface() {
			continue
		}
		kind := f.Kind
		if f.Role != "" {
			kind += "/" + f.Role
		}
		rows = append(rows, []string{f.ID, kind, num(f.X), num(f.Y), num(f.Width), num(f.Height)})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Frame", "Kind", "X", "Y", "W", "H").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if col >= 2 {
				base = base.Align(lipgloss.Right)
			}
			if row == highlight {
				return base.Bold(true).Foreground(colorCyan)
			}
			if col == 1 {
				return base.Foreground(colorGray)
			}
			return base
		}).
		Render()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
