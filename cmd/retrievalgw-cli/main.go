// Command retrievalgw-cli is an operator tool for the retrieval gateway:
// validate a config file offline, or query a running gateway's /health
// and /providers endpoints.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	uirgateway "github.com/briefcasebrain/uir-gateway"
	"github.com/briefcasebrain/uir-gateway/internal/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "retrievalgw-cli",
		Short: "Operator tool for the unified information retrieval gateway",
	}

	var addr string
	root.PersistentFlags().StringVar(&addr, "addr", "http://localhost:8080", "base URL of a running retrievalgw server")

	root.AddCommand(newValidateCmd())
	root.AddCommand(newHealthCmd(&addr))
	root.AddCommand(newProvidersCmd(&addr))
	root.AddCommand(newVersionCmd())
	return root
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-path>",
		Short: "Load and validate a gateway config file without starting a server",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := uirgateway.LoadConfig(args[0])
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := uirgateway.ValidateConfig(*cfg); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			fmt.Printf("config valid: %d provider(s) configured\n", len(cfg.Providers))
			return nil
		},
	}
}

func newHealthCmd(addr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check a running gateway's /health endpoint",
		RunE: func(_ *cobra.Command, _ []string) error {
			return fetchAndPrint(*addr + "/health")
		},
	}
}

func newProvidersCmd(addr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List a running gateway's configured providers and their health",
		RunE: func(_ *cobra.Command, _ []string) error {
			return fetchAndPrint(*addr + "/providers")
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI build version",
		RunE: func(_ *cobra.Command, _ []string) error {
			fmt.Println(version.String())
			return nil
		},
	}
}

func fetchAndPrint(url string) error {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url) //nolint:gosec,noctx
	if err != nil {
		return fmt.Errorf("request %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%s returned %s: %s", url, resp.Status, string(body))
	}

	var pretty interface{}
	if err := json.Unmarshal(body, &pretty); err != nil {
		fmt.Println(string(body))
		return nil
	}
	encoded, err := json.MarshalIndent(pretty, "", "  ")
	if err != nil {
		fmt.Println(string(body))
		return nil
	}
	fmt.Println(string(encoded))
	return nil
}
