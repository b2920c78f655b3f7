package commands

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var transitiveTypeHint string

var transitiveCmd = &cobra.Command{
	Use:   "transitive [file...]",
	Short: "Ingest evidence and print each service's transitive dependency set",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTransitive,
}

func init() {
	transitiveCmd.Flags().StringVar(&transitiveTypeHint, "type", "", "Explicit source type (adapter name), skips detection")
}

func runTransitive(cmd *cobra.Command, args []string) error {
	a, shutdown, err := newApp()
	if err != nil {
		return err
	}
	defer shutdown()

	if _, err := ingestPaths(cmd.Context(), a, args, transitiveTypeHint, "", ""); err != nil {
		return err
	}

	c := a.Transitive(cmd.Context())
	services := make([]string, 0, len(c))
	for s := range c {
		services = append(services, s)
	}
	sort.Strings(services)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, styleHeader.Render("SERVICE\tREACHES"))
	for _, s := range services {
		reach := c[s].Values()
		if len(reach) == 0 {
			fmt.Fprintf(w, "%s\t%s\n", s, styleDim.Render("(none)"))
			continue
		}
		fmt.Fprintf(w, "%s\t%s\n", s, strings.Join(reach, ", "))
	}
	return w.Flush()
}
