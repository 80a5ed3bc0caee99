// internal/collector/db_test.go
package collector

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/signalnine/sdwanwatch/internal/protocol"
	"github.com/signalnine/sdwanwatch/internal/sdwan"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDB error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testReport(ts time.Time) *protocol.CheckReport {
	return &protocol.CheckReport{
		Hostname:  "poller-1",
		Timestamp: ts,
		Results: []protocol.CheckResult{
			{
				Device: "fw1", Item: "1", Severity: sdwan.OK,
				Summary: "[Interface wan1] - Alive [CHECK_8.8.8.8]",
				Observations: []protocol.Observation{
					{Label: "PacketLoss", Metric: "pl", Value: 0, Unit: "%", Severity: sdwan.OK, Text: "PacketLoss: 0.00%"},
				},
			},
			{
				Device: "fw1", Item: "2", Severity: sdwan.Crit,
				Summary: "[Interface wan2] - Dead [CHECK_1.1.1.1]",
			},
			{
				Device: "fw2", Severity: sdwan.Unknown,
				Summary: "no data this cycle: timeout",
			},
		},
	}
}

func TestDBInsertReportAndQuery(t *testing.T) {
	db := openTestDB(t)

	ts := time.Date(2026, 2, 3, 12, 30, 0, 0, time.UTC)
	if err := db.InsertReport(testReport(ts)); err != nil {
		t.Fatalf("InsertReport error: %v", err)
	}

	// Whole device
	results, err := db.QueryByItem("fw1", "", 10)
	if err != nil {
		t.Fatalf("QueryByItem error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("QueryByItem returned %d results, want 2", len(results))
	}

	// One item
	results, err = db.QueryByItem("fw1", "1", 10)
	if err != nil {
		t.Fatalf("QueryByItem error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("QueryByItem returned %d results, want 1", len(results))
	}
	r := results[0]
	if r.Hostname != "poller-1" || r.Severity != sdwan.OK {
		t.Errorf("result = %s %v, want poller-1 OK", r.Hostname, r.Severity)
	}
	if !r.CheckedAt.Equal(ts) {
		t.Errorf("CheckedAt = %v, want %v", r.CheckedAt, ts)
	}
	if len(r.Observations) != 1 || r.Observations[0].Metric != "pl" {
		t.Errorf("Observations = %+v, want one pl line", r.Observations)
	}

	// Non-OK results, including the device-level UNKNOWN
	results, err = db.QueryNonOK(10)
	if err != nil {
		t.Fatalf("QueryNonOK error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("QueryNonOK returned %d results, want 2", len(results))
	}
}

func TestDBQueryOrderAndLimit(t *testing.T) {
	db := openTestDB(t)

	base := time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := db.InsertResult(&protocol.StoredResult{
			Hostname:  "poller-1",
			Device:    "fw1",
			Item:      "1",
			Severity:  sdwan.Warn,
			CheckedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("InsertResult error: %v", err)
		}
	}

	results, err := db.QueryByItem("fw1", "1", 2)
	if err != nil {
		t.Fatalf("QueryByItem error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("QueryByItem returned %d results, want 2", len(results))
	}
	if want := base.Add(2 * time.Minute); !results[0].CheckedAt.Equal(want) {
		t.Errorf("newest CheckedAt = %v, want %v", results[0].CheckedAt, want)
	}
}

func TestDBSeverityCounts(t *testing.T) {
	db := openTestDB(t)

	now := time.Now()
	db.InsertReport(testReport(now))
	db.InsertReport(testReport(now.Add(time.Minute)))

	counts, err := db.SeverityCounts()
	if err != nil {
		t.Fatalf("SeverityCounts error: %v", err)
	}

	want := map[sdwan.Severity]int{sdwan.OK: 2, sdwan.Crit: 2, sdwan.Unknown: 2}
	for sev, n := range want {
		if counts[sev] != n {
			t.Errorf("%v count = %d, want %d", sev, counts[sev], n)
		}
	}
	if counts[sdwan.Warn] != 0 {
		t.Errorf("WARN count = %d, want 0", counts[sdwan.Warn])
	}
}
