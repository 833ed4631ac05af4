package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/njchilds90/algebra"
	"github.com/njchilds90/algebra/internal/config"
)

// options are the flags shared by every subcommand.
type options struct {
	configPath string
	variable   string
	steps      bool
	json       bool
	workers    int
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "algebra",
		Short:         "Evaluate, simplify, expand, factor, solve and graph expressions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file (only the limits section is used)")
	root.PersistentFlags().StringVar(&opts.variable, "var", "", "variable to solve for or collect by (default x)")
	root.PersistentFlags().BoolVar(&opts.steps, "steps", false, "print a step-by-step explanation")
	root.PersistentFlags().BoolVar(&opts.json, "json", false, "print results as JSON")

	for _, op := range algebra.Operations {
		root.AddCommand(newOpCmd(op, opts))
	}
	root.AddCommand(newBatchCmd(opts))
	return root
}

var opUsage = map[algebra.Operation]string{
	algebra.OpEvaluate: "Compute an exact value; bind variables with '@ x=5, y=3'",
	algebra.OpSimplify: "Combine like terms and reduce fractions",
	algebra.OpExpand:   "Multiply out products and powers",
	algebra.OpFactor:   "Factor a polynomial",
	algebra.OpSolve:    "Solve an equation for --var",
	algebra.OpGraph:    "Sample y = f(x); set the range with '@ x=-5:5'",
}

func newOpCmd(op algebra.Operation, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   string(op) + " EXPRESSION",
		Short: opUsage[op],
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			calc, err := newCalculator(opts.configPath)
			if err != nil {
				return err
			}
			req := algebra.Request{
				Expression: strings.Join(args, " "),
				Operation:  op,
				Variable:   opts.variable,
				Steps:      opts.steps,
			}
			resp, err := calc.Calculate(contextOrBackground(cmd), req)
			out := newPrinter(cmd.OutOrStdout(), opts.json)
			if err != nil {
				out.failure(req, err)
				return errReported
			}
			return out.result(req, resp)
		},
	}
}

func newCalculator(path string) (*algebra.Calculator, error) {
	if path == "" {
		return algebra.NewCalculator(algebra.DefaultLimits()), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return algebra.NewCalculator(cfg.Limits), nil
}

// contextOrBackground keeps RunE usable when a command runs without
// ExecuteContext.
func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
