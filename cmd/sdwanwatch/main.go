// cmd/sdwanwatch/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/signalnine/sdwanwatch/internal/agent"
	"github.com/signalnine/sdwanwatch/internal/collector"
	"github.com/signalnine/sdwanwatch/internal/config"
	"github.com/signalnine/sdwanwatch/internal/logging"
	"github.com/signalnine/sdwanwatch/internal/snmp"
)

var version = "dev"

// exitCode is set by check so that the process exits with the worst severity
var exitCode int

var rootCmd = &cobra.Command{
	Use:           "sdwanwatch",
	Short:         "FortiGate SD-WAN health-check monitoring",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Poll FortiGates and report to the collector",
	RunE:  runAgent,
}

var collectorCmd = &cobra.Command{
	Use:   "collector",
	Short: "Run the central collector",
	RunE:  runCollector,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	agentCmd.Flags().StringP("config", "c", "/etc/sdwanwatch/agent.yaml", "agent config file")
	agentCmd.Flags().Bool("once", false, "run a single poll cycle and exit")
	collectorCmd.Flags().StringP("config", "c", "/etc/sdwanwatch/collector.yaml", "collector config file")

	rootCmd.AddCommand(agentCmd)
	rootCmd.AddCommand(collectorCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(versionCmd)
}

func runAgent(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	once, _ := cmd.Flags().GetBool("once")

	cfg, err := config.LoadAgentConfig(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := agent.New(cfg, snmp.NewGoSNMP(), log)
	if once {
		return a.RunOnce(ctx)
	}
	return a.Run(ctx)
}

func runCollector(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.LoadCollectorConfig(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := collector.NewServer(cfg, log)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(exitCode)
}
