package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goldfinchbio/aws-gatk-sv/cmd/cli/batchstatus"
	"github.com/goldfinchbio/aws-gatk-sv/cmd/cli/concordance"
	"github.com/goldfinchbio/aws-gatk-sv/pkg/logger"
)

// NewRootCmd wires up the operational subcommands of the toolkit.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gatk-sv-ops",
		Short: "Operational tooling for the AWS GATK-SV batch pipeline",
		Long:  "Operational tooling for the AWS GATK-SV batch pipeline",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			mode := logger.LogModeDefault
			if logType, set := os.LookupEnv("LOG_TYPE"); set {
				mode = logger.ParseLogMode(strings.ToLower(logType))
			}
			logger.ConfigureLogging(mode)
		},
	}

	rootCmd.AddCommand(batchstatus.NewCmd())
	rootCmd.AddCommand(concordance.NewCmd())
	return rootCmd
}

func Execute(version string) {
	rootCmd := NewRootCmd()
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("gatk-sv-ops version: %s\n", version))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
