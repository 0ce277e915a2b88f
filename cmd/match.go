package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pathfinder-ai/pathfinder/internal/career"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score the indexed resume against a job description",
	Run: func(cmd *cobra.Command, _ []string) {
		match(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().String("job-id", "", "id of an indexed job (required)")
	matchCmd.Flags().IntP("top-k", "k", career.DefaultMatchTopK, "number of resume chunks to retrieve")

	matchCmd.MarkFlagRequired("job-id")
}

func match(cmd *cobra.Command) {
	ctx := context.Background()
	logger := newLogger()

	service, err := newService(ctx, logger)
	if err != nil {
		logger.Fatal("building the pipeline", zap.Error(err))
	}

	jobID, _ := cmd.Flags().GetString("job-id")
	topK, _ := cmd.Flags().GetInt("top-k")

	resp, err := service.Match(ctx, jobID, topK)
	if err != nil {
		logger.Fatal("matching resume against job", zap.Error(err))
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
