// Package main provides the resume_analyzer CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	a := newApp()

	rootCmd := &cobra.Command{
		Use:   "resume_analyzer",
		Short: "Resume skill analyzer",
		Long: "resume_analyzer extracts technical skills from a resume and a job description " +
			"and reports how well the resume covers the skills the job asks for.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			a.close()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to a config file (YAML, JSON or TOML)")
	flags.Bool("debug", false, "Enable debug logging")
	flags.Bool("json-logs", false, "Emit logs as JSON")
	_ = a.v.BindPFlag("log.debug", flags.Lookup("debug"))
	_ = a.v.BindPFlag("log.json", flags.Lookup("json-logs"))

	rootCmd.AddCommand(
		newAnalyzeCmd(a),
		newServeCmd(a),
		newSkillsCmd(a),
		newHistoryCmd(a),
	)
	return rootCmd
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
