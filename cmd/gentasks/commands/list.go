package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/marcus/gentasks/internal/tasks"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered task types",
	Long: `List every registered task type with its complexity, parameters and
footnote keys, in registration order.

Use --json to output as JSON for scripting.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().Bool("json", false, "Output as JSON")
	rootCmd.AddCommand(listCmd)
}

type taskTypeJSON struct {
	Name          string   `json:"name"`
	Complexity    int      `json:"complexity"`
	Params        []string `json:"params"`
	Notes         []string `json:"notes,omitempty"`
	BoundaryCases []string `json:"boundary_cases"`
}

func runList(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	a, err := setup(cmd)
	if err != nil {
		return err
	}
	types := a.reg.Types()

	if asJSON {
		out := make([]taskTypeJSON, len(types))
		for i, t := range types {
			out[i] = taskTypeJSON{
				Name:          t.Name(),
				Complexity:    t.Complexity(),
				Params:        formatSchema(t.Schema()),
				Notes:         t.Notes(),
				BoundaryCases: formatBoundaryCases(t),
			}
		}
		return writeJSON(cmd.OutOrStdout(), out)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tCOMPLEXITY\tPARAMS\tNOTES\tCASES")
	for _, t := range types {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%d\n",
			t.Name(),
			t.Complexity(),
			orDash(strings.Join(formatSchema(t.Schema()), ", ")),
			orDash(strings.Join(t.Notes(), ", ")),
			len(t.BoundaryCases()),
		)
	}
	return w.Flush()
}

func formatSchema(schema []tasks.Param) []string {
	out := make([]string, len(schema))
	for i, p := range schema {
		out[i] = p.Name + " " + p.Kind.String()
	}
	return out
}

func formatBoundaryCases(t tasks.TaskType) []string {
	cases := t.BoundaryCases()
	out := make([]string, len(cases))
	for i, inst := range cases {
		out[i] = tasks.FormatArgs(inst.Args())
	}
	return out
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
