/*
Copyright © 2023 Jonathan Taylor <jonrtaylor12@gmail.com>
*/

package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"platecalc/plate"
)

// layoutsCmd represents the layouts command
var layoutsCmd = &cobra.Command{
	Use:   "layouts",
	Short: "Lists the standard labware and the configured purposes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLayouts(cmd.OutOrStdout())
	},
}

func runLayouts(w io.Writer) error {
	t := newTable(w, "name", "kind", "rows", "columns", "size")
	for _, m := range plate.DefaultLayout().Matrices {
		t.row(m.Name, m.Kind, m.Rows, m.Columns, m.Size())
	}
	if err := t.flush(); err != nil {
		return err
	}
	printer.Fprintln(w)

	t = newTable(w, "purpose", "assay_version", "destination")
	for _, name := range cfg.PurposeNames() {
		p := cfg.Purposes[name]
		version := "-"
		if calc, err := p.Calculator(); err == nil {
			version = calc.AssayVersion()
		} else if p.TagLayout != nil {
			version = "Tag Layout"
		}
		dest, err := p.Destination()
		if err != nil {
			return err
		}
		t.row(name, version, dest)
	}
	return t.flush()
}

func init() {
	rootCmd.AddCommand(layoutsCmd)
}
