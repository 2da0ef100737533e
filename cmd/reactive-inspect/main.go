// Command reactive-inspect is a small demo harness over the reactive
// package's graph: it is not part of the engine's public surface, only a
// way to see its invalidation and recomputation behavior from the
// command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reactorx/reactive"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "reactive-inspect",
		Short: "Inspect the lazy/push behavior of the reactive graph",
	}
	root.AddCommand(newGraphCmd())
	root.AddCommand(newTraceCmd())
	return root
}

// newGraphCmd demonstrates lazy evaluation and diamond de-duplication: two
// formulas fed by one cell feed a third formula, and the example prints
// how many times each formula's compute function actually runs.
func newGraphCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Build a small diamond-shaped graph and show recompute counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var leftRuns, rightRuns, sumRuns int

			base := reactive.NewCell(1, reactive.WithCellEqual(reactive.Comparable[int]()))
			left := reactive.NewFormula(func() int {
				leftRuns++
				return base.ReadInsideFormula() * 2
			}, reactive.WithFormulaEqual(reactive.Comparable[int]()))
			right := reactive.NewFormula(func() int {
				rightRuns++
				return base.ReadInsideFormula() + 10
			}, reactive.WithFormulaEqual(reactive.Comparable[int]()))
			sum := reactive.NewFormula(func() int {
				sumRuns++
				return left.ReadInsideFormula() + right.ReadInsideFormula()
			}, reactive.WithFormulaEqual(reactive.Comparable[int]()))

			fmt.Fprintf(cmd.OutOrStdout(), "sum = %d (left=%d right=%d sum=%d runs)\n",
				sum.ReadWithoutListening(), leftRuns, rightRuns, sumRuns)

			base.Set(5)
			fmt.Fprintf(cmd.OutOrStdout(), "sum = %d (left=%d right=%d sum=%d runs)\n",
				sum.ReadWithoutListening(), leftRuns, rightRuns, sumRuns)

			return nil
		},
	}
}

// newTraceCmd demonstrates push-mode listener notification: attaching a
// listener to a formula forces it to eagerly track its dependencies, so a
// later write is observed without anyone reading the formula again.
func newTraceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trace",
		Short: "Attach a listener and show push notifications on write",
		RunE: func(cmd *cobra.Command, args []string) error {
			count := reactive.NewCell(0, reactive.WithCellEqual(reactive.Comparable[int]()))
			doubled := reactive.NewFormula(func() int {
				return count.ReadInsideFormula() * 2
			}, reactive.WithFormulaEqual(reactive.Comparable[int]()))

			unsub := doubled.AddListener(func() {
				fmt.Fprintf(cmd.OutOrStdout(), "doubled changed -> %d\n", doubled.ReadWithoutListening())
			})
			defer unsub()

			for i := 1; i <= 3; i++ {
				count.Set(i)
			}
			return nil
		},
	}
}
