package commands

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/moolen/depgraph/internal/export"
	"github.com/moolen/depgraph/internal/resolver"
)

var (
	resolveTypeHint string
	resolveSnapshot bool
	resolveExplain  bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [file...]",
	Short: "Ingest evidence and print the conflict-resolved dependency graph",
	Long: `Resolve ingests each file, collapses the per-edge claim multisets to one
winning claim per edge, and prints the resulting graph. With --snapshot, the
graph is also exported as GraphML into the configured snapshot directory.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveTypeHint, "type", "", "Explicit source type (adapter name), skips detection")
	resolveCmd.Flags().BoolVar(&resolveSnapshot, "snapshot", false, "Export the resolved graph as GraphML to the configured snapshot.dir")
	resolveCmd.Flags().BoolVar(&resolveExplain, "explain", false, "Show why each winning claim won its edge")
}

func runResolve(cmd *cobra.Command, args []string) error {
	a, shutdown, err := newApp()
	if err != nil {
		return err
	}
	defer shutdown()

	if _, err := ingestPaths(cmd.Context(), a, args, resolveTypeHint, "", ""); err != nil {
		return err
	}

	graph := a.Resolve(cmd.Context())

	froms := make([]string, 0, len(graph))
	for from := range graph {
		froms = append(froms, from)
	}
	sort.Strings(froms)

	var explainer *resolver.Resolver
	now := time.Now()
	if resolveExplain {
		cfg := resolver.DefaultScoreConfig()
		for k, v := range a.Config.Source.Priorities {
			cfg.Priorities[k] = v
		}
		explainer = resolver.New(a.Reliability, cfg, nil)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, styleHeader.Render("FROM\tTO\tTYPE\tCONFIDENCE\tBAND\tSOURCE"))
	for _, from := range froms {
		tos := make([]string, 0, len(graph[from]))
		for to := range graph[from] {
			tos = append(tos, to)
		}
		sort.Strings(tos)
		for _, to := range tos {
			c := graph[from][to]
			fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\t%s\n",
				from, to, c.DependencyType, c.Confidence, renderBand(c.Band()), c.Source)
			if explainer != nil {
				n := len(a.Store.FindByEdge(from, to))
				fmt.Fprintf(w, "\t%s\n", styleDim.Render(explainer.Rationale(c, n, now)))
			}
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%s\n", styleDim.Render(fmt.Sprintf("%d services, %d edges", len(graph.Vertices()), graph.Edges())))

	if resolveSnapshot {
		dir := a.Config.Snapshot.Dir
		if dir == "" {
			return fmt.Errorf("--snapshot requires snapshot.dir to be set in the configuration")
		}
		path, err := export.WriteSnapshot(dir, graph, now)
		if err != nil {
			return err
		}
		fmt.Printf("%s\n", styleDim.Render("snapshot: "+path))
	}
	return nil
}
