/*
Copyright © 2023 Jonathan Taylor <jonrtaylor12@gmail.com>
*/

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"platecalc/batch"
	"platecalc/binning"
	"platecalc/config"
	"platecalc/plate"
	"platecalc/transfer"
)

type calculation struct {
	purpose   string
	childUUID string
	output    string
}

func newCalculationCmd(use, short, long string, accept func(binning.Calculator) bool) *cobra.Command {
	var c calculation
	cmd := &cobra.Command{
		Use:   use + " <plate file>",
		Short: short,
		Long:  long,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd.OutOrStdout(), args[0], accept)
		},
	}
	cmd.Flags().StringVarP(&c.purpose, "purpose", "p", "", "purpose of the child plate")
	cmd.Flags().StringVar(&c.childUUID, "child-uuid", "", "uuid of the child plate, generated when empty")
	cmd.Flags().StringVarP(&c.output, "output", "o", "table", "output format: table or yaml")
	_ = cmd.MarkFlagRequired("purpose")
	return cmd
}

func (c *calculation) run(w io.Writer, path string, accept func(binning.Calculator) bool) error {
	purpose, err := cfg.Purpose(c.purpose)
	if err != nil {
		return err
	}
	calc, err := purpose.Calculator()
	if err != nil {
		return fmt.Errorf("purpose %q: %w", c.purpose, err)
	}
	if !accept(calc) {
		return fmt.Errorf("purpose %q uses %s", c.purpose, calc.AssayVersion())
	}
	dest, err := purpose.Destination()
	if err != nil {
		return err
	}
	src, err := config.LoadPlate(path)
	if err != nil {
		return err
	}

	log := logger.With(zap.String("plate", src.Barcode), zap.String("purpose", c.purpose))
	res, err := batch.NewRunner(calc, dest, batch.WithLogger(log)).Process(src, c.childUUID)
	if err != nil {
		log.Error("calculation failed", zap.Error(err))
		return err
	}
	log.Info("calculated transfers", zap.Int("transfers", len(res.Requests)))

	if c.output == "yaml" {
		return writeYAML(w, res)
	}
	return writeResult(w, calc, dest, res)
}

type resultDoc struct {
	Barcode   string `yaml:"barcode"`
	ChildUUID string `yaml:"child_uuid"`
	Transfers any    `yaml:"transfers"`
	QCResults any    `yaml:"qc_results"`
}

func writeYAML(w io.Writer, res *batch.Result) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(resultDoc{
		Barcode:   res.Barcode,
		ChildUUID: res.ChildUUID,
		Transfers: res.Requests,
		QCResults: res.QCResults,
	})
}

func writeResult(w io.Writer, calc binning.Calculator, dest plate.Geometry, res *batch.Result) error {
	t := newTable(w, "source", "destination", "volume", "concentration", "colour", "pcr_cycles")
	for _, r := range res.Requests {
		tr := res.Transfers[r.Source]
		t.row(r.Source, r.Target, r.Volume, tr.Concentration, tr.Colour, tr.PCRCycles)
	}
	if err := t.flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)

	labels := make(map[string]string, len(res.Transfers))
	for src, tr := range res.Transfers {
		labels[tr.Destination] = src
		if tr.Colour != 0 {
			labels[tr.Destination] = fmt.Sprintf("%s/%d", src, tr.Colour)
		}
	}
	if err := plateMap(w, res.ChildUUID, dest, labels); err != nil {
		return err
	}
	fmt.Fprintln(w)

	printer.Fprintf(w, "%s: %d wells transferred, %v µl in total\n",
		calc.AssayVersion(), len(res.Requests), transfer.TotalVolume(res.Requests))
	return nil
}

func init() {
	rootCmd.AddCommand(
		newCalculationCmd("bin", "Bins source wells by concentration onto a child plate",
			`Each occupied well's amount (concentration x source volume) is put in the
first bin whose range holds it. Bins are laid down the child plate by column,
each starting a fresh column while there is room.`,
			func(c binning.Calculator) bool { _, ok := c.(*binning.ConcentrationBinning); return ok }),
		newCalculationCmd("normalise", "Normalises source wells towards a target amount, then bins them",
			`Takes enough of each well to reach the target amount in the target volume,
within the minimum source volume and the target volume, then bins the wells by
the amount actually reached.`,
			func(c binning.Calculator) bool { _, ok := c.(*binning.NormalisedBinning); return ok }),
		newCalculationCmd("fixed", "Stamps source wells across with a fixed dilution",
			`Every well goes to the same position on the child plate, diluted by the
purpose's source and diluent volumes.`,
			func(c binning.Calculator) bool { _, ok := c.(*binning.FixedNormalisation); return ok }),
	)
}
