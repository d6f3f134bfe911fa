/*
Copyright © 2023 Jonathan Taylor <jonrtaylor12@gmail.com>
*/

package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"platecalc/config"
	"platecalc/plate"
	"platecalc/tagging"
)

type tagsOptions struct {
	purpose   string
	strategy  string
	direction string
	offset    int
	group1    string
	group2    string
}

// tagsCmd represents the tags command
var tagsCmd = &cobra.Command{
	Use:   "tags <plate file>",
	Short: "Lays out sequencing tags over the occupied wells of a plate",
	Long: `Assigns a tag index to every occupied well. The purpose's tag_layout gives
the strategy, direction, offset and tag groups; flags override it. Wells that
run out of tags are shown as -1.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTags(cmd, cmd.OutOrStdout(), args[0])
	},
}

var tagsOpts tagsOptions

func resolveTagLayout(cmd *cobra.Command, o tagsOptions) (config.TagLayout, error) {
	var tl config.TagLayout
	var err error
	if o.purpose != "" {
		if tl, err = cfg.TagLayout(o.purpose); err != nil {
			return tl, err
		}
	} else {
		tl.Strategy = tagging.ByPlateSequential
		tl.Direction = plate.ByColumns
	}

	flags := cmd.Flags()
	if flags.Changed("strategy") {
		if tl.Strategy, err = tagging.ParseStrategy(o.strategy); err != nil {
			return tl, err
		}
	}
	if flags.Changed("direction") {
		if tl.Direction, err = tagging.ParseDirection(o.direction); err != nil {
			return tl, err
		}
	}
	if flags.Changed("offset") {
		tl.Offset = o.offset
	}
	if flags.Changed("tag-group-1") {
		if tl.Group1, err = cfg.TagGroup(o.group1); err != nil {
			return tl, err
		}
	}
	if flags.Changed("tag-group-2") {
		if tl.Group2, err = cfg.TagGroup(o.group2); err != nil {
			return tl, err
		}
	}
	return tl, nil
}

func runTags(cmd *cobra.Command, w io.Writer, path string) error {
	tl, err := resolveTagLayout(cmd, tagsOpts)
	if err != nil {
		return err
	}
	src, err := config.LoadPlate(path)
	if err != nil {
		return err
	}
	dims, err := src.Geometry()
	if err != nil {
		return err
	}

	layout, err := tl.Calculate(src.TaggingWells(), dims)
	if err != nil {
		return err
	}
	untagged := layout.Untagged()
	logger.Info("tag layout calculated",
		zap.String("plate", src.Barcode),
		zap.String("strategy", string(tl.Strategy)),
		zap.String("direction", string(tl.Direction)),
		zap.Int("wells", len(layout)),
		zap.Int("untagged", len(untagged)),
	)

	labels := make(map[string]string, len(layout))
	for well, index := range layout {
		labels[well] = strconv.Itoa(index)
	}
	if err := plateMap(w, src.Barcode, dims, labels); err != nil {
		return err
	}
	fmt.Fprintln(w)

	oligos := layout.Oligos(tl.Group1, tl.Group2)
	t := newTable(w, "well", "tag_index", "oligo")
	for _, well := range layout.WellsBy(tl.Direction) {
		t.row(well, layout[well], oligos[well])
	}
	if err := t.flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)

	printer.Fprintf(w, "%d wells tagged", len(layout)-len(untagged))
	if len(untagged) > 0 {
		printer.Fprintf(w, ", %d without a tag: %v", len(untagged), untagged)
	}
	fmt.Fprintln(w)
	return nil
}

func init() {
	f := tagsCmd.Flags()
	f.StringVarP(&tagsOpts.purpose, "purpose", "p", "", "purpose whose tag layout to use")
	f.StringVar(&tagsOpts.strategy, "strategy", "", "by_plate_seq, by_plate_fixed or by_pool")
	f.StringVar(&tagsOpts.direction, "direction", "", "by_columns or by_rows")
	f.IntVar(&tagsOpts.offset, "offset", 0, "tags to skip at the start of the tag list")
	f.StringVar(&tagsOpts.group1, "tag-group-1", "", "first tag group")
	f.StringVar(&tagsOpts.group2, "tag-group-2", "", "second tag group")
	rootCmd.AddCommand(tagsCmd)
}
