package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/xdsmgen/pkg/conns"
	xio "github.com/matzehuels/xdsmgen/pkg/io"
	"github.com/matzehuels/xdsmgen/pkg/model"
	"github.com/matzehuels/xdsmgen/pkg/viewer"
)

type inspectOpts struct {
	modelPath     string
	recurse       bool
	includeSolver bool
}

func (c *CLI) inspectCommand() *cobra.Command {
	opts := inspectOpts{recurse: true}

	cmd := &cobra.Command{
		Use:   "inspect <viewer-data.json>",
		Short: "Show the nodes and connections a diagram would contain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.modelPath, "model-path", "", "dotted path of the subsystem to inspect")
	cmd.Flags().BoolVar(&opts.recurse, "recurse", opts.recurse, "descend into groups")
	cmd.Flags().BoolVar(&opts.includeSolver, "include-solver", false, "list solver nodes")

	return cmd
}

// inspection is what inspect reports about one model.
type inspection struct {
	Problems []viewer.Problem
	Nodes    []model.Node
	Filtered int
	Internal int // aggregated node pairs
	Inputs   int // connections entering the subtree
	Outputs  int // connections leaving the subtree
}

func inspect(ctx context.Context, raw []byte, opts inspectOpts) (*inspection, error) {
	logger := loggerFromContext(ctx)
	res := &inspection{}

	validator, err := viewer.NewValidator()
	if err != nil {
		return nil, err
	}
	// Schema problems are reported, not fatal; the reader is lenient.
	if res.Problems, err = validator.Validate(raw); err != nil && len(res.Problems) == 0 {
		return nil, err
	}

	data, err := xio.ReadJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	flat, err := model.Flatten(data.Tree, model.Options{
		ModelPath:     opts.modelPath,
		Recurse:       opts.recurse,
		IncludeSolver: opts.includeSolver,
		IncludeIndeps: true,
	})
	if err != nil {
		return nil, err
	}
	res.Nodes = flat.Nodes
	res.Filtered = len(flat.Filtered)

	split := conns.Prune(data.Connections, opts.modelPath)
	bucket, err := conns.Aggregate(split.Internal, conns.Options{
		Recurse: opts.recurse,
		Namer:   conns.NamerMixed,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}
	res.Internal = len(bucket.Pairs())
	res.Inputs = len(split.Inputs)
	res.Outputs = len(split.Outputs)
	return res, nil
}

func runInspect(ctx context.Context, input string, opts inspectOpts) error {
	raw, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}

	res, err := inspect(ctx, raw, opts)
	if err != nil {
		return err
	}

	for _, p := range res.Problems {
		printWarning("%s: %s", p.Location, p.Message)
	}

	fmt.Println(nodeTable(res.Nodes))
	printKeyValue("Nodes", strconv.Itoa(len(res.Nodes)))
	printKeyValue("Node pairs", strconv.Itoa(res.Internal))
	if opts.modelPath != "" {
		printKeyValue("Inputs", strconv.Itoa(res.Inputs))
		printKeyValue("Outputs", strconv.Itoa(res.Outputs))
	}
	return nil
}

func nodeTable(nodes []model.Node) string {
	rows := make([][]string, len(nodes))
	for i, n := range nodes {
		members := ""
		if n.Solver != nil {
			members = strconv.Itoa(len(n.Solver.Members))
		}
		parallel := ""
		if n.IsParallel {
			parallel = "yes"
		}
		typ := n.ComponentType
		if n.Class != "" {
			typ += " (" + n.Class + ")"
		}
		rows[i] = []string{strconv.Itoa(i), n.ID, n.Name, string(n.Kind), typ, parallel, members}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "ID", "Name", "Kind", "Type", "Parallel", "Members").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if col == 0 {
				return StyleDim
			}
			return lipgloss.NewStyle()
		}).
		Render()
}
