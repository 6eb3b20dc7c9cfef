package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mikey/spam-doctor/internal/adapters/filter"
	"github.com/mikey/spam-doctor/internal/core"
	"github.com/mikey/spam-doctor/internal/factory"
)

var (
	checkFile   string
	checkHTML   bool
	checkColor  bool
	checkFilter []string
)

var checkCmd = &cobra.Command{
	Use:   "check [text]",
	Short: "Check text for spam",
	Long: `Check a message for spam and print the verdict, score, matched lexicon
terms and the highlighted text.

Confirmed spam is logged, added to the training corpus and mined for new
lexicon terms.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(cmd, args, checkFile)
		if err != nil {
			return err
		}

		return invoke(func(
			logger *zap.Logger,
			doctor *core.SpamDoctor,
			stores *factory.Stores,
			classifier core.Classifier,
		) error {
			defer release(logger, stores, classifier)

			if len(checkFilter) > 0 {
				if err := doctor.SetFilterItems(checkFilter, true); err != nil {
					return err
				}
			}

			cli := filter.NewCliFilter(doctor, cmd.OutOrStdout(), checkColor, logger)
			_, err := cli.Check(cmd.Context(), text, checkHTML)
			return err
		})
	},
}

func init() {
	checkCmd.Flags().StringVarP(&checkFile, "file", "f", "", "Read the message from a file")
	checkCmd.Flags().BoolVar(&checkHTML, "html", false, "Treat the input as HTML")
	checkCmd.Flags().BoolVar(&checkColor, "color", false, "Highlight matched terms with terminal colors")
	checkCmd.Flags().StringSliceVar(&checkFilter, "filter", nil, "Extra terms to match for this check (comma-separated)")
}
