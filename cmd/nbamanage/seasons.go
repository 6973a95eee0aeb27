package main

import (
	"fmt"
	"strings"

	"github.com/fortuna/nbastats/internal/season"
	"github.com/fortuna/nbastats/internal/service"
	"github.com/spf13/cobra"
)

var seasonsCmd = &cobra.Command{
	Use:   "seasons FROM [TO]",
	Short: "Print season labels from FROM toward TO",
	Long: "Print season labels. FROM and TO accept years (2015, 15) or seasons\n" +
		"(2014-15). TO defaults to the current season. A positive --step stops\n" +
		"before TO; a negative one includes it.",
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		step, _ := cmd.Flags().GetInt("step")
		if step == 0 {
			return fmt.Errorf("--step must not be zero")
		}
		to := ""
		if len(args) == 2 {
			to = args[1]
		}
		labels, err := service.SeasonLabels(args[0], to, step)
		if err != nil {
			return err
		}
		if len(labels) > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(labels, "\n"))
		}
		return nil
	},
}

var currentSeasonCmd = &cobra.Command{
	Use:   "current",
	Short: "Print the current season label",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		offset, _ := cmd.Flags().GetInt("offset")
		fmt.Fprintln(cmd.OutOrStdout(), season.Current(offset))
		return nil
	},
}

func init() {
	seasonsCmd.Flags().Int("step", 1, "years between seasons (negative counts down)")
	currentSeasonCmd.Flags().Int("offset", 0, "years to shift the current season by")
	seasonsCmd.AddCommand(currentSeasonCmd)
	rootCmd.AddCommand(seasonsCmd)
}
