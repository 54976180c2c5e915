package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gpukit/hlo-lower/ir"
	"github.com/gpukit/hlo-lower/lower"
	"github.com/gpukit/hlo-lower/lower/rules"
)

var verbose bool

func main() {
	root := &cobra.Command{
		Use:   "hlo-lower",
		Short: "Lower buffer-typed hlo graphs to the gpurt runtime dialect",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log, err := zap.NewDevelopment()
				if err == nil {
					lower.SetLogger(log)
				}
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.AddCommand(newLowerCmd(), newInspectCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLowerCmd() *cobra.Command {
	var (
		file string
		out  string
	)
	cmd := &cobra.Command{
		Use:   "lower",
		Short: "Run the legalization pass on a YAML graph description",
		RunE: func(cmd *cobra.Command, args []string) error {
			lowered, err := lowerFile(file)
			if err != nil {
				return err
			}
			text := ir.Print(lowered)
			if out == "" || out == "-" {
				fmt.Print(text)
				return nil
			}
			return os.WriteFile(out, []byte(text), 0o644)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "graph description file")
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func lowerFile(path string) (*ir.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	m, err := loadGraph(data)
	if err != nil {
		return nil, fmt.Errorf("load graph: %w", err)
	}
	conv := lower.NewBufferTypeConverter()
	return lower.Run(m, lower.Config{
		Registry:  rules.DefaultRegistry(conv),
		Converter: conv,
	})
}

func newInspectCmd() *cobra.Command {
	var (
		file    string
		lowered bool
	)
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Browse a graph's operations in an interactive TUI",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(file, lowered)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "graph description file")
	cmd.Flags().BoolVar(&lowered, "lowered", false, "inspect the lowered graph instead of the input")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
