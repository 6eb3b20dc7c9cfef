package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mikey/spam-doctor/internal/core"
	"github.com/mikey/spam-doctor/internal/factory"
)

var teachFile string

var teachCmd = &cobra.Command{
	Use:   "teach [data]",
	Short: "Add lexicon terms from JSON or YAML data",
	Long: `Add every string found in nested JSON or YAML lists and objects to the spam
lexicon. Object keys are ignored, only values are taught.

  spam-doctor teach '["casino", {"offers": ["free money", ["jackpot"]]}]'`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(cmd, args, teachFile)
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

			added, err := doctor.TeachDoctor(cmd.Context(), []byte(data))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Taught %d new terms\n", added)
			return nil
		})
	},
}

func init() {
	teachCmd.Flags().StringVarP(&teachFile, "file", "f", "", "Read the data from a file")
}
