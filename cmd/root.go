package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pathfinder-ai/pathfinder/internal/ai"
	"github.com/pathfinder-ai/pathfinder/internal/ai/gemini"
	"github.com/pathfinder-ai/pathfinder/internal/ai/ollama"
	"github.com/pathfinder-ai/pathfinder/internal/career"
	"github.com/pathfinder-ai/pathfinder/internal/chunker"
	"github.com/pathfinder-ai/pathfinder/internal/embeddings"
	"github.com/pathfinder-ai/pathfinder/internal/logger"
	"github.com/pathfinder-ai/pathfinder/internal/retrieval"
	"github.com/pathfinder-ai/pathfinder/internal/secrets"
	"github.com/pathfinder-ai/pathfinder/internal/vectorstore"
)

const (
	app = "pathfinder"
)

// Config is the root configuration, loaded from pathfinder.yaml and
// environment binds. Every key is optional.
type Config struct {
	Embeddings embeddings.Config `mapstructure:"embeddings"`
	Generation GenerationConfig  `mapstructure:"generation"`
	Store      StoreConfig       `mapstructure:"store"`
	Chunk      chunker.Config    `mapstructure:"chunk"`
}

// GenerationConfig selects and configures the text-generation backend.
type GenerationConfig struct {
	Provider     string        `mapstructure:"provider"`
	Model        string        `mapstructure:"model"`
	Endpoint     string        `mapstructure:"endpoint"`
	APIKeyFile   string        `mapstructure:"api-key-file"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxTokens    int           `mapstructure:"max-tokens"`
	MaxRetries   int           `mapstructure:"max-retries"`
	MaxLogLength int           `mapstructure:"max-log-length"`
}

// StoreConfig configures the vector store location and collection names.
type StoreConfig struct {
	Path              string `mapstructure:"path"`
	Compress          bool   `mapstructure:"compress"`
	JobsCollection    string `mapstructure:"jobs-collection"`
	ResumesCollection string `mapstructure:"resumes-collection"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "pathfinder matches resumes against job descriptions with a local RAG pipeline",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("embeddings.api-key-file", "EMBEDDINGS_API_KEY_FILE"); err != nil {
		log.Fatalf("binding EMBEDDINGS_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("generation.api-key-file", "GENERATION_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GENERATION_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is pathfinder.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
		viper.SetConfigType("yaml")
	}

	// All keys have defaults, so a missing config file is fine. A config
	// file that exists but does not parse is not.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func newLogger() *zap.Logger {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}

// newService wires the full pipeline from configuration.
func newService(ctx context.Context, log *zap.Logger) (*career.Service, error) {
	config, err := getConfig()
	if err != nil {
		return nil, fmt.Errorf("getting a config: %w", err)
	}

	embedLog := logger.WithCommonFields(log, config.Embeddings.Provider, config.Embeddings.Model)
	provider, err := embeddings.New(ctx, config.Embeddings, embedLog)
	if err != nil {
		return nil, fmt.Errorf("building embeddings provider: %w", err)
	}

	store, err := vectorstore.New(vectorstore.Config{
		Path:       config.Store.Path,
		Compress:   config.Store.Compress,
		VectorSize: provider.Dimension(),
	}, log)
	if err != nil {
		return nil, fmt.Errorf("opening vector store: %w", err)
	}

	generator, err := newGenerator(ctx, config.Generation, log)
	if err != nil {
		return nil, fmt.Errorf("building generation backend: %w", err)
	}

	assembler := retrieval.New(provider, store, log)
	engine := ai.NewEngine(generator, log, config.Generation.MaxLogLength)

	return career.NewService(provider, store, assembler, engine, career.Options{
		ChunkConfig:       config.Chunk,
		JobsCollection:    config.Store.JobsCollection,
		ResumesCollection: config.Store.ResumesCollection,
	}, log), nil
}

func newGenerator(ctx context.Context, cfg GenerationConfig, log *zap.Logger) (ai.Generator, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	genLog := logger.WithCommonFields(log, provider, cfg.Model)

	switch provider {
	case "", "ollama":
		return ollama.NewClient(ollama.Config{
			BaseURL:   cfg.Endpoint,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
			Timeout:   cfg.Timeout,
		}, genLog), nil
	case "gemini":
		apiKey, err := secrets.Load(secrets.Source{
			Name:    "gemini api key",
			Env:     "GEMINI_API_KEY",
			File:    cfg.APIKeyFile,
			FileKey: "generation.api-key-file",
		})
		if err != nil {
			return nil, err
		}
		return gemini.NewGenerator(ctx, apiKey, cfg.Model, cfg.MaxRetries, cfg.MaxTokens, genLog)
	default:
		return nil, fmt.Errorf("unsupported generation provider: %s", cfg.Provider)
	}
}

// printJSON writes command results to stdout; logs stay on stderr.
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
