package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pathfinder-ai/pathfinder/internal/career"
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Retrieve the resume chunks most relevant to a question",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		query(cmd, strings.Join(args, " "))
	},
}

var answerCmd = &cobra.Command{
	Use:   "answer [question]",
	Short: "Answer a question about the indexed resume, grounded in retrieved chunks",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		answer(cmd, strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(answerCmd)

	queryCmd.Flags().IntP("top-k", "k", career.DefaultQueryTopK, "number of chunks to retrieve")
	answerCmd.Flags().IntP("top-k", "k", career.DefaultQueryTopK, "number of chunks to retrieve")
}

func query(cmd *cobra.Command, question string) {
	ctx := context.Background()
	logger := newLogger()

	service, err := newService(ctx, logger)
	if err != nil {
		logger.Fatal("building the pipeline", zap.Error(err))
	}

	topK, _ := cmd.Flags().GetInt("top-k")

	blocks, err := service.Query(ctx, question, topK)
	if err != nil {
		logger.Fatal("querying the resume index", zap.Error(err))
	}

	if err := printJSON(blocks); err != nil {
		logger.Fatal("printing result", zap.Error(err))
	}
}

func answer(cmd *cobra.Command, question string) {
	ctx := context.Background()
	logger := newLogger()

	service, err := newService(ctx, logger)
	if err != nil {
		logger.Fatal("building the pipeline", zap.Error(err))
	}

	topK, _ := cmd.Flags().GetInt("top-k")

	resp, err := service.Answer(ctx, question, topK)
	if err != nil {
		logger.Fatal("answering the question", zap.Error(err))
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
