package commands

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/moolen/depgraph/internal/reliability"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback source=correct|incorrect [source=correct|incorrect...]",
	Short: "Apply reliability feedback and print the resulting per-source scores",
	Long: `Feedback records correct/incorrect outcomes against each named source and
prints the reliability each source would carry into conflict resolution.
Sources with no feedback start at the 0.8 default.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFeedback,
}

func runFeedback(cmd *cobra.Command, args []string) error {
	tracker := reliability.New()
	sources := make(map[string]bool)

	for _, entry := range args {
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid feedback %q (expected source=correct|incorrect)", entry)
		}
		source, outcome := parts[0], parts[1]
		switch outcome {
		case "correct":
			tracker.RecordFeedback(source, true)
		case "incorrect":
			tracker.RecordFeedback(source, false)
		default:
			return fmt.Errorf("invalid feedback %q (expected source=correct|incorrect)", entry)
		}
		sources[source] = true
	}

	names := make([]string, 0, len(sources))
	for s := range sources {
		names = append(names, s)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, styleHeader.Render("SOURCE\tCLAIMS\tCORRECT\tRELIABILITY"))
	for _, s := range names {
		claims, correct := tracker.Counts(s)
		fmt.Fprintf(w, "%s\t%d\t%d\t%.3f\n", s, claims, correct, tracker.Reliability(s))
	}
	return w.Flush()
}
