package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mikey/spam-doctor/internal/core"
	"github.com/mikey/spam-doctor/internal/factory"
)

var (
	trainLabel string
	trainFile  string
)

var trainCmd = &cobra.Command{
	Use:   "train [text]",
	Short: "Add a labeled training sample",
	Long: `Add a labeled sample to the training corpus. Spam samples are also written
to the spam log. Run 'retrain' afterwards to rebuild the model.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		label := core.Label(trainLabel)
		if label != core.LabelSpam && label != core.LabelHam {
			return fmt.Errorf("--label must be %q or %q", core.LabelSpam, core.LabelHam)
		}

		text, err := readInput(cmd, args, trainFile)
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

			if err := doctor.AddTrainingSample(cmd.Context(), text, label == core.LabelSpam); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s sample\n", label)
			return nil
		})
	},
}

var retrainCmd = &cobra.Command{
	Use:   "retrain",
	Short: "Rebuild the model from the training corpus",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return invoke(func(
			logger *zap.Logger,
			doctor *core.SpamDoctor,
			stores *factory.Stores,
			classifier core.Classifier,
		) error {
			defer release(logger, stores, classifier)

			if err := doctor.RetrainModel(cmd.Context()); err != nil {
				return err
			}
			stats, err := doctor.ModelStats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Model retrained on %d samples (%d spam, %d ham)\n",
				stats.TotalSamples, stats.SpamSamples, stats.HamSamples)
			return nil
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print training corpus and model statistics as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return invoke(func(
			logger *zap.Logger,
			doctor *core.SpamDoctor,
			stores *factory.Stores,
			classifier core.Classifier,
		) error {
			defer release(logger, stores, classifier)

			stats, err := doctor.ModelStats(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		})
	},
}

func init() {
	trainCmd.Flags().StringVarP(&trainLabel, "label", "l", "", "Sample label: spam or ham")
	trainCmd.Flags().StringVarP(&trainFile, "file", "f", "", "Read the sample from a file")
	_ = trainCmd.MarkFlagRequired("label")
}
