package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-tagger/internal/config"
	"github.com/kozaktomas/face-tagger/internal/logger"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "face-tagger",
	Short: "Identify detected faces against a gallery of known people",
	Long: `Face Tagger crops detected faces out of an image, runs them through
an embedding model served over HTTP, and matches the resulting embeddings
against a gallery of known identities by cosine similarity. Faces whose best
match clears the score threshold are tagged with a name and score.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file overlaying environment settings")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

// loadConfig builds the effective configuration (env, then the optional
// YAML overlay) and initializes logging.
func loadConfig() (*config.Config, error) {
	cfg := config.Load()
	if configFile != "" {
		if err := cfg.ApplyFile(configFile); err != nil {
			return nil, err
		}
	}
	logger.Init(cfg.Log)
	return cfg, nil
}
