package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aitools/aitools/internal/tools"
)

func newToolsCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Inspect registered tools",
	}
	cmd.AddCommand(newToolsListCmd(st), newToolsShowCmd(st))
	return cmd
}

func newToolsListCmd(st *state) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tools in registration order",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := st.app(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, app.Registry.List())
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tPOLICY\tCATEGORY\tTITLE")
			for _, d := range app.Registry.List() {
				it, _ := app.Catalog.Lookup(d.Name())
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.Name(), policyLabel(d.Policy()), it.Category, it.Title)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print descriptors as JSON")
	return cmd
}

func newToolsShowCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a tool's descriptor and install command",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := st.app(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			t, ok := app.Registry.Lookup(args[0])
			if !ok {
				return fmt.Errorf("tool %q is not registered", args[0])
			}
			view := struct {
				Descriptor tools.Descriptor `json:"descriptor"`
				Install    string           `json:"install,omitempty"`
			}{Descriptor: t.Descriptor()}
			if it, ok := app.Catalog.Lookup(args[0]); ok {
				view.Install = it.Install
			}
			return writeJSON(cmd.OutOrStdout(), view)
		},
	}
}

func policyLabel(p tools.Policy) string {
	if p == tools.PolicyFallback {
		return warnText(string(p))
	}
	return string(p)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
