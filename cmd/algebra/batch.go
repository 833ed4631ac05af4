package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/njchilds90/algebra"
)

type batchItem struct {
	req  algebra.Request
	resp *algebra.Response
	err  error
}

func newBatchCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch FILE",
		Short: "Run a YAML list of requests concurrently",
		Long: `Run every request in FILE, a YAML list such as

  - expression: 2x + 3x
    operation: simplify
  - expression: x^2 - 5x + 6 = 0
    operation: solve
    steps: true

Results are printed in input order. --var and --steps apply to items that
leave them unset.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var reqs []algebra.Request
			if err := yaml.Unmarshal(data, &reqs); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			calc, err := newCalculator(opts.configPath)
			if err != nil {
				return err
			}
			items := runBatch(cmd, calc, reqs, opts)
			return printBatch(newPrinter(cmd.OutOrStdout(), opts.json), items)
		},
	}
	cmd.Flags().IntVar(&opts.workers, "workers", 4, "requests computed at once")
	return cmd
}

// runBatch computes every request; per-item failures are kept with the
// item rather than stopping the group.
func runBatch(cmd *cobra.Command, calc *algebra.Calculator, reqs []algebra.Request, opts *options) []batchItem {
	items := make([]batchItem, len(reqs))
	g, ctx := errgroup.WithContext(contextOrBackground(cmd))
	if opts.workers > 0 {
		g.SetLimit(opts.workers)
	}
	for i, req := range reqs {
		if req.Variable == "" {
			req.Variable = opts.variable
		}
		req.Steps = req.Steps || opts.steps
		g.Go(func() error {
			resp, err := calc.Calculate(ctx, req)
			items[i] = batchItem{req: req, resp: resp, err: err}
			return nil
		})
	}
	_ = g.Wait()
	return items
}

func printBatch(p *printer, items []batchItem) error {
	failed := 0
	if p.json {
		out := make([]jsonResult, len(items))
		for i, it := range items {
			out[i] = toJSON(it.req, it.resp, it.err)
			if it.err != nil {
				failed++
			}
		}
		if err := p.encode(out); err != nil {
			return err
		}
	} else {
		for i, it := range items {
			if i > 0 {
				fmt.Fprintln(p.w)
			}
			fmt.Fprintf(p.w, "[%d] %s %s\n", i+1, it.req.Operation, it.req.Expression)
			if it.err != nil {
				failed++
				p.failure(it.req, it.err)
				continue
			}
			if err := p.result(it.req, it.resp); err != nil {
				return err
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d requests failed", failed, len(items))
	}
	return nil
}
