package cmd

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pathfinder-ai/pathfinder/internal/career"
	"github.com/pathfinder-ai/pathfinder/internal/extract"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var replacePrompt = promptui.Select{
	Label: "Resume with this id already indexed. Replace it?",
	Items: []string{PromptYes, PromptNo},
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index documents into the local vector store",
}

var indexJobCmd = &cobra.Command{
	Use:   "job",
	Short: "Index a job description",
	Run: func(cmd *cobra.Command, _ []string) {
		indexJob(cmd)
	},
}

var indexResumeCmd = &cobra.Command{
	Use:   "resume [file]",
	Short: "Index a resume from a pdf or plain-text file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		indexResume(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.AddCommand(indexJobCmd)
	indexCmd.AddCommand(indexResumeCmd)

	indexJobCmd.Flags().String("title", "", "job title (required)")
	indexJobCmd.Flags().String("company", "", "company name")
	indexJobCmd.Flags().String("location", "", "job location")
	indexJobCmd.Flags().String("file", "", "file with the job description (pdf or plain text)")
	indexJobCmd.Flags().String("text", "", "job description text, alternative to --file")

	indexResumeCmd.Flags().String("id", "", "resume id. Default is the file name.")
	indexResumeCmd.Flags().BoolP("yes", "y", false, "replace an already indexed resume without asking")
}

func indexJob(cmd *cobra.Command) {
	ctx := context.Background()
	logger := newLogger()

	service, err := newService(ctx, logger)
	if err != nil {
		logger.Fatal("building the pipeline", zap.Error(err))
	}

	title, _ := cmd.Flags().GetString("title")
	company, _ := cmd.Flags().GetString("company")
	location, _ := cmd.Flags().GetString("location")
	file, _ := cmd.Flags().GetString("file")
	text, _ := cmd.Flags().GetString("text")

	if file != "" && text != "" {
		logger.Fatal("--file and --text are mutually exclusive")
	}
	if file != "" {
		text, err = extract.File(file)
		if err != nil {
			logger.Fatal("extracting job description", zap.Error(err))
		}
	}

	result, err := service.IndexJob(ctx, career.JobUpload{
		Title:       title,
		Company:     company,
		Location:    location,
		Description: text,
	})
	if err != nil {
		logger.Fatal("indexing job", zap.Error(err))
	}

	if err := printJSON(result); err != nil {
		logger.Fatal("printing result", zap.Error(err))
	}
}

func indexResume(cmd *cobra.Command, path string) {
	ctx := context.Background()
	logger := newLogger()

	service, err := newService(ctx, logger)
	if err != nil {
		logger.Fatal("building the pipeline", zap.Error(err))
	}

	id, _ := cmd.Flags().GetString("id")
	if strings.TrimSpace(id) == "" {
		id = filepath.Base(path)
	}

	autoYes, _ := cmd.Flags().GetBool("yes")
	if !autoYes {
		exists, err := service.ResumeIndexedAlready(ctx, id)
		if err != nil {
			logger.Fatal("checking for an indexed resume", zap.Error(err))
		}
		if exists {
			_, action, err := replacePrompt.Run()
			if err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
			if action == PromptNo {
				logger.Info("exiting", zap.String("reason", "got no from prompt"))
				return
			}
		}
	}

	text, err := extract.File(path)
	if err != nil {
		logger.Fatal("extracting resume text", zap.Error(err))
	}

	result, err := service.IndexResume(ctx, career.ResumeUpload{
		ID:   id,
		Text: text,
		Metadata: map[string]any{
			"filename": filepath.Base(path),
		},
	})
	if err != nil {
		logger.Fatal("indexing resume", zap.Error(err))
	}

	if err := printJSON(result); err != nil {
		logger.Fatal("printing result", zap.Error(err))
	}
}
