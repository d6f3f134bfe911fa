/*
Copyright © 2023 Jonathan Taylor <jonrtaylor12@gmail.com>
*/

package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"platecalc/binning"
	"platecalc/config"
	"platecalc/plate"
	"platecalc/qc"
)

type binDetailer interface {
	BinDetails(concentrations map[string]decimal.Decimal) (map[string]binning.BinDetail, error)
}

var binDetailsPurpose string

// binDetailsCmd represents the bin-details command
var binDetailsCmd = &cobra.Command{
	Use:   "bin-details <child plate file>",
	Short: "Shows the bin colour and PCR cycles of each well on a binned plate",
	Long: `Reads the concentrations measured on a child plate and reports, for every
occupied well, the bin its amount falls in under the purpose's binning.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBinDetails(cmd.OutOrStdout(), args[0])
	},
}

func runBinDetails(w io.Writer, path string) error {
	purpose, err := cfg.Purpose(binDetailsPurpose)
	if err != nil {
		return err
	}
	calc, err := purpose.Calculator()
	if err != nil {
		return fmt.Errorf("purpose %q: %w", binDetailsPurpose, err)
	}
	binned, ok := calc.(binDetailer)
	if !ok {
		return fmt.Errorf("purpose %q uses %s, which has no bins", binDetailsPurpose, calc.AssayVersion())
	}
	child, err := config.LoadPlate(path)
	if err != nil {
		return err
	}
	dims, err := child.Geometry()
	if err != nil {
		return err
	}

	occupied := child.Occupied()
	latest := qc.LatestConcentrations(child.QCResults())
	if err := qc.RequireConcentrations(occupied, latest); err != nil {
		return err
	}
	concs := make(map[string]decimal.Decimal, len(occupied))
	for _, well := range occupied {
		concs[well] = latest[well]
	}
	details, err := binned.BinDetails(concs)
	if err != nil {
		return err
	}
	logger.Info("bin details", zap.String("plate", child.Barcode), zap.Int("wells", len(details)))

	labels := make(map[string]string, len(details))
	t := newTable(w, "well", "concentration", "colour", "pcr_cycles")
	for _, well := range plate.SortedColumnMajor(details) {
		d := details[well]
		labels[well] = strconv.Itoa(d.Colour)
		t.row(well, concs[well], d.Colour, d.PCRCycles)
	}
	if err := t.flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return plateMap(w, child.Barcode, dims, labels)
}

func init() {
	binDetailsCmd.Flags().StringVarP(&binDetailsPurpose, "purpose", "p", "", "purpose the plate was binned for")
	_ = binDetailsCmd.MarkFlagRequired("purpose")
	rootCmd.AddCommand(binDetailsCmd)
}
