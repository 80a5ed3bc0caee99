// internal/agent/evaluate.go
package agent

import (
	"fmt"

	"github.com/signalnine/sdwanwatch/internal/protocol"
	"github.com/signalnine/sdwanwatch/internal/sdwan"
)

// ParamsFunc resolves the thresholds of one item
type ParamsFunc func(item string) sdwan.ParameterSet

// Evaluate classifies every discovered link of one device snapshot.
// An undecodable snapshot yields a single UNKNOWN result for the device.
func Evaluate(device string, rows [][]string, params ParamsFunc) []protocol.CheckResult {
	records, err := sdwan.Decode(rows)
	if err != nil {
		return []protocol.CheckResult{Unavailable(device, err)}
	}

	// Records are classified positionally; ids need not be unique.
	items := sdwan.Discover(records)
	results := make([]protocol.CheckResult, 0, len(items))
	for i, item := range items {
		verdict, obs := sdwan.Classify(records[i], params(item))
		results = append(results, protocol.NewCheckResult(device, item, verdict, obs))
	}
	return results
}

// CheckItem classifies the first record carrying item. An item missing from
// the snapshot is reported as UNKNOWN rather than failing the cycle.
func CheckItem(device string, records []sdwan.LinkRecord, item string, params ParamsFunc) protocol.CheckResult {
	rec, err := sdwan.Lookup(records, item)
	if err != nil {
		return protocol.CheckResult{
			Device:   device,
			Item:     item,
			Severity: sdwan.Unknown,
			Summary:  err.Error(),
		}
	}
	verdict, obs := sdwan.Classify(rec, params(item))
	return protocol.NewCheckResult(device, item, verdict, obs)
}

// Unavailable reports a device for which no data could be used this cycle
func Unavailable(device string, err error) protocol.CheckResult {
	return protocol.CheckResult{
		Device:   device,
		Severity: sdwan.Unknown,
		Summary:  fmt.Sprintf("no data this cycle: %v", err),
	}
}
