package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rohankatakam/colleagues/internal/config"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the analytics API token in the OS keychain",
}

var tokenSetCmd = &cobra.Command{
	Use:   "set [token]",
	Short: "Store the API token used by the http sink",
	Long: `Store the API token in the OS keychain. When no argument is given the
token is read from stdin, without echo on a terminal.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTokenSet,
}

var tokenDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the API token from the OS keychain",
	RunE:  runTokenDelete,
}

func init() {
	tokenCmd.AddCommand(tokenSetCmd)
	tokenCmd.AddCommand(tokenDeleteCmd)
}

func runTokenSet(cmd *cobra.Command, args []string) error {
	km := config.NewKeyringManager(logger.Logger)
	if !km.IsAvailable() {
		return fmt.Errorf("OS keychain is not available; set COLLEAGUES_API_TOKEN instead")
	}

	var token string
	if len(args) == 1 {
		token = args[0]
	} else {
		var err error
		if token, err = readToken(cmd); err != nil {
			return err
		}
	}

	token = strings.TrimSpace(token)
	if err := km.SetAPIToken(token); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Stored API token %s\n", config.MaskToken(token))
	return nil
}

func readToken(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(cmd.ErrOrStderr(), "API token: ")
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read token: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read token: %w", err)
	}
	return line, nil
}

func runTokenDelete(cmd *cobra.Command, args []string) error {
	if err := config.NewKeyringManager(logger.Logger).DeleteAPIToken(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "API token removed from keychain")
	return nil
}
