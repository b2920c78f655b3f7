package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/moolen/depgraph/internal/app"
	"github.com/moolen/depgraph/internal/graphanalysis"
	"github.com/moolen/depgraph/internal/ingest"
	"github.com/moolen/depgraph/internal/resolver"
)

var (
	reportTypeHint string
	reportTop      int
	reportPlain    bool
)

var reportCmd = &cobra.Command{
	Use:   "report [file...]",
	Short: "Ingest evidence and render a full analytics report",
	Long: `Report ingests each file, resolves the graph, runs every analytic, and
renders a Markdown summary (topology, criticality ranking, bottlenecks,
highest-impact services) for the terminal.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportTypeHint, "type", "", "Explicit source type (adapter name), skips detection")
	reportCmd.Flags().IntVar(&reportTop, "top", 10, "How many services to list in the criticality and impact rankings")
	reportCmd.Flags().BoolVar(&reportPlain, "plain", false, "Emit raw Markdown without terminal rendering")
}

func runReport(cmd *cobra.Command, args []string) error {
	a, shutdown, err := newApp()
	if err != nil {
		return err
	}
	defer shutdown()

	results, err := ingestPaths(cmd.Context(), a, args, reportTypeHint, "", "")
	if err != nil {
		return err
	}

	md := buildReport(cmd.Context(), a, results, reportTop)

	if reportPlain {
		fmt.Print(md)
		return nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return err
	}
	out, err := renderer.Render(md)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

// buildReport assembles the Markdown report body from a fresh resolve of
// everything ingested so far.
func buildReport(ctx context.Context, a *app.App, results []ingest.IngestionResult, top int) string {
	graph := a.Resolve(ctx)
	topology := graphanalysis.AnalyzeTopology(graph)
	criticalities := graphanalysis.Criticalities(graph)
	bottlenecks := graphanalysis.Bottlenecks(graph)

	var b strings.Builder
	b.WriteString("# Dependency Graph Report\n\n")

	b.WriteString("## Ingestion\n\n")
	b.WriteString("| Source Type | Extracted | Saved | Errors |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, r := range results {
		fmt.Fprintf(&b, "| %s | %d | %d | %d |\n", r.SourceType, r.RawClaimsExtracted, r.ClaimsSaved, r.ErrorCount)
	}

	b.WriteString("\n## Topology\n\n")
	fmt.Fprintf(&b, "- **Services:** %d\n", topology.VertexCount)
	fmt.Fprintf(&b, "- **Edges:** %d\n", topology.EdgeCount)
	fmt.Fprintf(&b, "- **Density:** %.3f\n", topology.Density)
	fmt.Fprintf(&b, "- **Clustering coefficient:** %.3f\n", topology.ClusteringCoefficient)
	fmt.Fprintf(&b, "- **Diameter:** %d\n", topology.Diameter)

	b.WriteString("\n## Most Critical Services\n\n")
	if len(criticalities) == 0 {
		b.WriteString("_No services resolved._\n")
	} else {
		b.WriteString("| Service | Score | Betweenness | PageRank |\n")
		b.WriteString("|---|---|---|---|\n")
		for i, c := range criticalities {
			if i >= top {
				break
			}
			fmt.Fprintf(&b, "| %s | %.3f | %.3f | %.3f |\n", c.Service, c.Score, c.Betweenness, c.PageRank)
		}
	}

	b.WriteString("\n## Bottlenecks\n\n")
	if len(bottlenecks) == 0 {
		b.WriteString("_No bottlenecks detected._\n")
	} else {
		b.WriteString("| Service | Betweenness | In-Degree | Risk |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, bn := range bottlenecks {
			fmt.Fprintf(&b, "| %s | %.3f | %d | %s |\n", bn.Service, bn.Betweenness, bn.InDegree, bn.Risk)
		}
	}

	b.WriteString("\n## Highest Cascade Impact\n\n")
	impacts := topImpacts(graph, top)
	if len(impacts) == 0 {
		b.WriteString("_No services resolved._\n")
	} else {
		b.WriteString("| Service | Direct | Indirect |\n")
		b.WriteString("|---|---|---|\n")
		for _, imp := range impacts {
			fmt.Fprintf(&b, "| %s | %d | %d |\n", imp.Service, len(imp.Direct), len(imp.Indirect))
		}
	}

	return b.String()
}

// topImpacts ranks every vertex by total cascade impact (direct plus
// indirect dependents), largest first, keeping the top n with any impact.
func topImpacts(graph resolver.ResolvedGraph, n int) []graphanalysis.CascadeImpact {
	vertices := graph.Vertices()
	impacts := make([]graphanalysis.CascadeImpact, 0, len(vertices))
	for _, v := range vertices {
		impacts = append(impacts, graphanalysis.Impact(graph, v))
	}
	sort.Slice(impacts, func(i, j int) bool {
		ti := len(impacts[i].Direct) + len(impacts[i].Indirect)
		tj := len(impacts[j].Direct) + len(impacts[j].Indirect)
		if ti != tj {
			return ti > tj
		}
		return impacts[i].Service < impacts[j].Service
	})

	var out []graphanalysis.CascadeImpact
	for _, imp := range impacts {
		if len(out) >= n || len(imp.Direct)+len(imp.Indirect) == 0 {
			break
		}
		out = append(out, imp)
	}
	return out
}
