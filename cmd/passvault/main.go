package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/passvault/internal/cli"
	"github.com/dmitrijs2005/passvault/internal/config"
	"github.com/dmitrijs2005/passvault/internal/logging"
	"github.com/dmitrijs2005/passvault/internal/passgen"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile string
		dataDir    string
	)

	loadConfig := func() (*config.Config, error) {
		cfg, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		if dataDir != "" {
			cfg.DataDir = dataDir
		}
		return cfg, nil
	}

	rootCmd := &cobra.Command{
		Use:     "passvault",
		Short:   "Local encrypted credential and secret vault",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			app, err := cli.NewApp(cfg, logging.New(cfg.LogLevel))
			if err != nil {
				return err
			}
			app.Run(context.Background())
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to JSON config file")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "override the data directory")

	var length int
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a strong random password and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := passgen.Generate(length)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), pw)
			return nil
		},
	}
	generateCmd.Flags().IntVarP(&length, "length", "l", passgen.DefaultLength, "password length")
	rootCmd.AddCommand(generateCmd)

	return rootCmd.Execute()
}
