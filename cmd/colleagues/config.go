package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rohankatakam/colleagues/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect colleagues configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration after defaults, config file, .env files and
environment overrides are applied. Secrets are masked.`,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the effective configuration to a file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	shown := *cfg
	shown.Sink.Redis.Password = maskIfSet(shown.Sink.Redis.Password)
	shown.Sink.Neo4j.Password = maskIfSet(shown.Sink.Neo4j.Password)
	shown.Sink.HTTP.Token = config.MaskToken(shown.Sink.HTTP.Token)

	out, err := yaml.Marshal(&shown)
	if err != nil {
		return fmt.Errorf("render config: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(out))

	_, source := config.NewKeyringManager(logger.Logger).ResolveAPIToken(cfg)
	fmt.Fprintf(cmd.OutOrStdout(), "# api token source: %s\n", source)
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := ".colleagues/config.yaml"
	if len(args) == 1 {
		path = args[0]
	}

	if err := cfg.Save(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func maskIfSet(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}
