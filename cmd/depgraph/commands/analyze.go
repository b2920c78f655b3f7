package commands

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/moolen/depgraph/internal/app"
)

var (
	analyzeKind     string
	analyzeService  string
	analyzeTypeHint string
	analyzeFeedback []string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file...]",
	Short: "Ingest evidence and run one graph analytic over the resolved graph",
	Long: `Analyze ingests each file, resolves the graph, and runs the requested
analytic: criticality, topology, bottlenecks, health, or impact (which
requires --service).

Reliability feedback can be applied before scoring with repeated
--feedback flags, e.g. --feedback router-log=correct --feedback nmap=incorrect.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeKind, "kind", "criticality", "Analytic to run: criticality, topology, bottlenecks, health, impact")
	analyzeCmd.Flags().StringVar(&analyzeService, "service", "", "Service to compute cascade impact for (kind=impact)")
	analyzeCmd.Flags().StringVar(&analyzeTypeHint, "type", "", "Explicit source type (adapter name), skips detection")
	analyzeCmd.Flags().StringSliceVar(&analyzeFeedback, "feedback", nil, "Reliability feedback as source=correct|incorrect, repeatable")
}

// applyFeedback records each "source=correct|incorrect" entry against a's
// reliability tracker.
func applyFeedback(a *app.App, entries []string) error {
	for _, entry := range entries {
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid feedback %q (expected source=correct|incorrect)", entry)
		}
		switch strings.ToLower(parts[1]) {
		case "correct":
			a.RecordFeedback(parts[0], true)
		case "incorrect":
			a.RecordFeedback(parts[0], false)
		default:
			return fmt.Errorf("invalid feedback outcome %q (expected correct or incorrect)", parts[1])
		}
	}
	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	kind := app.AnalyzeKind(analyzeKind)
	switch kind {
	case app.AnalyzeCriticality, app.AnalyzeTopology, app.AnalyzeBottlenecks, app.AnalyzeHealth:
	case app.AnalyzeImpact:
		if analyzeService == "" {
			return fmt.Errorf("--kind impact requires --service")
		}
	default:
		return fmt.Errorf("unknown analytic %q", analyzeKind)
	}

	a, shutdown, err := newApp()
	if err != nil {
		return err
	}
	defer shutdown()

	if err := applyFeedback(a, analyzeFeedback); err != nil {
		return err
	}

	if _, err := ingestPaths(cmd.Context(), a, args, analyzeTypeHint, "", ""); err != nil {
		return err
	}

	result := a.Analyze(cmd.Context(), kind, analyzeService)
	return printAnalytics(result)
}

func printAnalytics(result app.Analytics) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	switch result.Kind {
	case app.AnalyzeCriticality:
		fmt.Fprintln(w, styleHeader.Render("SERVICE\tSCORE\tBETWEENNESS\tDEGREE\tPAGERANK\tAVG CONF"))
		for _, c := range result.Criticalities {
			fmt.Fprintf(w, "%s\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\n",
				c.Service, c.Score, c.Betweenness, c.DegreeCentrality, c.PageRank, c.AvgConfidence)
		}

	case app.AnalyzeTopology:
		t := result.Topology
		fmt.Fprintf(w, "Services:\t%d\n", t.VertexCount)
		fmt.Fprintf(w, "Edges:\t%d\n", t.EdgeCount)
		fmt.Fprintf(w, "Density:\t%.3f\n", t.Density)
		fmt.Fprintf(w, "Clustering:\t%.3f\n", t.ClusteringCoefficient)
		fmt.Fprintf(w, "Diameter:\t%d\n", t.Diameter)

	case app.AnalyzeBottlenecks:
		if len(result.Bottlenecks) == 0 {
			fmt.Fprintln(w, styleDim.Render("no bottlenecks detected"))
			break
		}
		fmt.Fprintln(w, styleHeader.Render("SERVICE\tBETWEENNESS\tIN-DEGREE\tRISK"))
		for _, b := range result.Bottlenecks {
			fmt.Fprintf(w, "%s\t%.3f\t%d\t%s\n", b.Service, b.Betweenness, b.InDegree, renderRisk(b.Risk))
		}

	case app.AnalyzeHealth:
		fmt.Fprintln(w, styleHeader.Render("FROM\tTO\tSCORE\tMEAN CONF\tCONSISTENCY\tRELIABILITY\tSTATUS"))
		for _, h := range result.Health {
			fmt.Fprintf(w, "%s\t%s\t%.3f\t%.3f\t%.3f\t%.3f\t%s\n",
				h.From, h.To, h.Score, h.MeanConfidence, h.Consistency, h.SourceReliability, renderHealth(h.Status))
		}

	case app.AnalyzeImpact:
		i := result.Impact
		direct := append([]string(nil), i.Direct...)
		indirect := append([]string(nil), i.Indirect...)
		sort.Strings(direct)
		sort.Strings(indirect)
		fmt.Fprintf(w, "Service:\t%s\n", i.Service)
		fmt.Fprintf(w, "Direct impact:\t%s\n", joinOrNone(direct))
		fmt.Fprintf(w, "Indirect impact:\t%s\n", joinOrNone(indirect))
	}

	return w.Flush()
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return styleDim.Render("(none)")
	}
	return strings.Join(values, ", ")
}
