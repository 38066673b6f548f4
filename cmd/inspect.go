package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/km-arc/go-ioc/framework/container"
)

var inspectJSON bool

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "List the container's registrations",
	Long: `Boot the application and list every registration with its lifetime and
kind, followed by the names and aliases that resolve to them.

Examples:
  go-ioc inspect
  go-ioc inspect --json | jq '.[].key'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := newApplication()
		if err != nil {
			return err
		}
		p, err := application.Boot()
		if err != nil {
			return err
		}
		defer p.Close()

		if inspectJSON {
			enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(p.Descriptors())
		}
		return writeTable(cmd.OutOrStdout(), p)
	},
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "print the registrations as JSON")
	rootCmd.AddCommand(inspectCmd)
}

func writeTable(out io.Writer, p *container.Provider) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tLIFETIME\tKIND")

	registered := make(map[container.Key]bool)
	for _, d := range p.Descriptors() {
		registered[d.Key] = true
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Key, d.Lifetime, d.Kind)
	}

	fmt.Fprintln(tw, "\nNAME\tLIFETIME\t")
	for _, k := range p.Keys() {
		if registered[k] {
			continue
		}
		lifetime, _ := p.Lifetime(k)
		fmt.Fprintf(tw, "%s\t%s\t\n", k, lifetime)
	}
	return tw.Flush()
}
