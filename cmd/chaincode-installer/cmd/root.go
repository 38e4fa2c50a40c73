package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/chaincode-installer/internal/config"
	"github.com/oshokin/chaincode-installer/internal/service/installer"
	"github.com/oshokin/chaincode-installer/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// opts collects the install request from flags.
	opts installer.Options

	// rootCmd represents the base command for installing chaincode on a peer.
	rootCmd = &cobra.Command{
		Use:   "chaincode-installer",
		Short: "Package chaincode and install it on a peer",
		Long: "Resolve the chaincode source layout for its language, package the " +
			"source tree, and build an install proposal for the peer's lifecycle " +
			"system chaincode. The proposal is signed and sent to the configured " +
			"peer, or written to a file for offline signing.",
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			opts.ConfigPath = configPath

			return installer.Run(ctx, &opts)
		},
	}

	// configureCmd persists connection settings for later install runs.
	configureCmd = &cobra.Command{
		Use:   "configure [peer-address] [msp-id] [cert-file] [key-file]",
		Short: "Save peer connection and identity settings",
		Args:  cobra.ExactArgs(4),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg := &config.Config{
				PeerAddress: args[0],
				MSPID:       args[1],
				CertFile:    args[2],
				KeyFile:     args[3],
				Timeout:     30 * time.Second,
			}

			return config.Save(configPath, cfg)
		},
	}
)

// Execute runs the chaincode-installer CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c",
		config.DefaultConfigFilename, "path to configuration file")

	rootCmd.Flags().StringVarP(&opts.Name, "name", "n", "", "chaincode name")
	rootCmd.Flags().StringVarP(&opts.Path, "path", "p", "", "chaincode path within the source root")
	rootCmd.Flags().StringVarP(&opts.Version, "ccversion", "v", "1.0", "chaincode version")
	rootCmd.Flags().StringVarP(&opts.Language, "lang", "l", "golang", "chaincode language (golang, java)")
	rootCmd.Flags().StringVarP(&opts.SourceRoot, "source-root", "s", "", "chaincode source root directory")
	rootCmd.Flags().BoolVarP(&opts.DevMode, "dev-mode", "d", false, "build a development-mode proposal (no packaging)")
	rootCmd.Flags().StringVarP(&opts.OutputFile, "output", "o", "", "write the unsigned proposal to this file instead of sending it")

	_ = rootCmd.MarkFlagRequired("name")

	rootCmd.AddCommand(configureCmd)
}
