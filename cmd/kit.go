package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pathfinder-ai/pathfinder/internal/career"
)

var kitCmd = &cobra.Command{
	Use:   "kit",
	Short: "Generate a tailored application kit for an indexed job",
	Run: func(cmd *cobra.Command, _ []string) {
		kit(cmd)
	},
}

func init() {
	rootCmd.AddCommand(kitCmd)

	kitCmd.Flags().String("job-id", "", "id of an indexed job (required)")
	kitCmd.Flags().IntP("top-k", "k", career.DefaultMatchTopK, "number of resume chunks to retrieve")
	kitCmd.Flags().String("tone", career.DefaultTone, "tone for the generated materials")

	kitCmd.MarkFlagRequired("job-id")
}

func kit(cmd *cobra.Command) {
	ctx := context.Background()
	logger := newLogger()

	service, err := newService(ctx, logger)
	if err != nil {
		logger.Fatal("building the pipeline", zap.Error(err))
	}

	jobID, _ := cmd.Flags().GetString("job-id")
	topK, _ := cmd.Flags().GetInt("top-k")
	tone, _ := cmd.Flags().GetString("tone")

	resp, err := service.ApplyKit(ctx, jobID, topK, tone)
	if err != nil {
		logger.Fatal("generating apply kit", zap.Error(err))
	}

	if resp.ExtractionError != "" {
		logger.Warn("model output was not valid json, raw text preserved",
			zap.String("extraction_error", resp.ExtractionError),
		)
	}

	if err := printJSON(resp); err != nil {
		logger.Fatal("printing result", zap.Error(err))
	}
}
