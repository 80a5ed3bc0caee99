// cmd/sdwanwatch/check.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/signalnine/sdwanwatch/internal/agent"
	"github.com/signalnine/sdwanwatch/internal/config"
	"github.com/signalnine/sdwanwatch/internal/protocol"
	"github.com/signalnine/sdwanwatch/internal/sdwan"
	"github.com/signalnine/sdwanwatch/internal/snmp"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Classify a saved health-check table snapshot",
	Long: "Reads health-check rows (CSV, one row per line) and prints the verdict\n" +
		"of every link. The exit code is the worst severity found.",
	RunE: runCheck,
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "List the items found in a saved snapshot",
	RunE:  runDiscover,
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Walk a FortiGate and print its health-check rows as CSV",
	RunE:  runFetch,
}

func init() {
	checkCmd.Flags().String("rows", "-", "snapshot file, - for stdin")
	checkCmd.Flags().String("params", "", "YAML parameter file")
	checkCmd.Flags().Bool("legacy", false, "use the fixed legacy levels")
	checkCmd.Flags().String("item", "", "check a single item")
	checkCmd.Flags().String("device", "local", "device name shown in the output")
	checkCmd.Flags().Bool("json", false, "print results as JSON")

	discoverCmd.Flags().String("rows", "-", "snapshot file, - for stdin")

	fetchCmd.Flags().String("address", "", "device address, host[:port]")
	fetchCmd.Flags().String("version", "v2c", "SNMP version, v2c or v3")
	fetchCmd.Flags().String("community", os.Getenv("SDWANWATCH_COMMUNITY"), "v2c community")
	fetchCmd.Flags().String("v3-user", "", "v3 user")
	fetchCmd.Flags().String("v3-auth-proto", "SHA", "v3 auth protocol")
	fetchCmd.Flags().String("v3-auth-pass", "", "v3 auth passphrase")
	fetchCmd.Flags().String("v3-priv-proto", "AES", "v3 privacy protocol")
	fetchCmd.Flags().String("v3-priv-pass", "", "v3 privacy passphrase")
	fetchCmd.Flags().Duration("timeout", 3*time.Second, "per-request timeout")
	fetchCmd.MarkFlagRequired("address")
}

func readRows(path string) ([][]string, error) {
	if path == "-" {
		return snmp.ReadRows(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return snmp.ReadRows(f)
}

func checkParams(path string, legacy bool) (sdwan.ParameterSet, error) {
	if path != "" {
		return config.LoadParameterSet(path)
	}
	if legacy {
		return sdwan.LegacyParameters(), nil
	}
	return sdwan.DefaultParameters(), nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	rowsPath, _ := cmd.Flags().GetString("rows")
	paramsPath, _ := cmd.Flags().GetString("params")
	legacy, _ := cmd.Flags().GetBool("legacy")
	item, _ := cmd.Flags().GetString("item")
	device, _ := cmd.Flags().GetString("device")
	asJSON, _ := cmd.Flags().GetBool("json")

	p, err := checkParams(paramsPath, legacy)
	if err != nil {
		return fmt.Errorf("load params: %w", err)
	}
	rows, err := readRows(rowsPath)
	if err != nil {
		return err
	}

	results := checkRows(device, rows, item, p)
	exitCode = int(worstOf(results))
	return printResults(cmd.OutOrStdout(), results, asJSON)
}

// checkRows evaluates all items, or just one when item is set
func checkRows(device string, rows [][]string, item string, p sdwan.ParameterSet) []protocol.CheckResult {
	params := func(string) sdwan.ParameterSet { return p }
	if item == "" {
		return agent.Evaluate(device, rows, params)
	}
	records, err := sdwan.Decode(rows)
	if err != nil {
		return []protocol.CheckResult{agent.Unavailable(device, err)}
	}
	return []protocol.CheckResult{agent.CheckItem(device, records, item, params)}
}

func worstOf(results []protocol.CheckResult) sdwan.Severity {
	worst := sdwan.OK
	for _, r := range results {
		worst = sdwan.Worst(worst, r.Severity)
	}
	return worst
}

func printResults(w io.Writer, results []protocol.CheckResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for _, r := range results {
		name := r.Device
		if r.Item != "" {
			name += "/" + r.Item
		}
		fmt.Fprintf(w, "%s %s - %s\n", name, r.Severity, r.Summary)
		for _, o := range r.Observations {
			fmt.Fprintf(w, "    %s\n", o.Text)
		}
	}
	return nil
}

func runDiscover(cmd *cobra.Command, args []string) error {
	rowsPath, _ := cmd.Flags().GetString("rows")
	rows, err := readRows(rowsPath)
	if err != nil {
		return err
	}
	records, err := sdwan.Decode(rows)
	if err != nil {
		return err
	}
	printItems(cmd.OutOrStdout(), records)
	return nil
}

func printItems(w io.Writer, records []sdwan.LinkRecord) {
	for i, item := range sdwan.Discover(records) {
		fmt.Fprintf(w, "%s\t%s\t%s\n", item, records[i].Name, records[i].PortLabel())
	}
}

func runFetch(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	address, _ := f.GetString("address")
	ver, _ := f.GetString("version")
	community, _ := f.GetString("community")
	timeout, _ := f.GetDuration("timeout")

	target := snmp.Target{
		Name:    address,
		Address: address,
		Credentials: snmp.Credentials{
			Version:   ver,
			Community: community,
		},
	}
	if ver == "v3" {
		v3 := &snmp.AuthV3{}
		v3.User, _ = f.GetString("v3-user")
		v3.AuthProto, _ = f.GetString("v3-auth-proto")
		v3.AuthPass, _ = f.GetString("v3-auth-pass")
		v3.PrivProto, _ = f.GetString("v3-priv-proto")
		v3.PrivPass, _ = f.GetString("v3-priv-pass")
		target.Credentials.V3 = v3
	}

	fetcher := snmp.NewGoSNMP()
	fetcher.Timeout = timeout
	rows, err := fetcher.Fetch(cmd.Context(), target)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "# %s, %d rows\n", address, len(rows))
	return snmp.WriteRows(out, rows)
}
