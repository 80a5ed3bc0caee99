// internal/sdwan/decode.go
package sdwan

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformedRow matches every decode failure
var ErrMalformedRow = errors.New("malformed row")

// MalformedRowError identifies the row and column that failed to decode.
// Field is empty when the row itself has the wrong number of columns.
type MalformedRowError struct {
	Row   int
	Field string
	Value string
	Err   error
}

func (e *MalformedRowError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("row %d: field %s=%q: %v", e.Row, e.Field, e.Value, e.Err)
}

func (e *MalformedRowError) Unwrap() error { return e.Err }

func (e *MalformedRowError) Is(target error) bool { return target == ErrMalformedRow }

// column is one positional field of the health-check table
type column struct {
	name  string
	parse func(r *LinkRecord, s string) error
}

// linkColumns is the positional schema of fgVWLHealthCheckLinkTable,
// in OID column order 1..14.
var linkColumns = []column{
	{"id", func(r *LinkRecord, s string) (err error) { r.ID, err = parseInt(s); return }},
	{"name", func(r *LinkRecord, s string) error { r.Name = s; return nil }},
	{"sequence", func(r *LinkRecord, s string) (err error) { r.Sequence, err = parseInt(s); return }},
	{"state", func(r *LinkRecord, s string) (err error) { r.State, err = parseState(s); return }},
	{"latency", func(r *LinkRecord, s string) (err error) { r.LatencySeconds, err = parseFloat(s, 0, math.MaxFloat64); return }},
	{"jitter", func(r *LinkRecord, s string) (err error) { r.JitterSeconds, err = parseFloat(s, 0, math.MaxFloat64); return }},
	{"packets_sent", func(r *LinkRecord, s string) (err error) { r.PacketsSent, err = parseCounter(s); return }},
	{"packets_received", func(r *LinkRecord, s string) (err error) { r.PacketsReceived, err = parseCounter(s); return }},
	{"packet_loss", func(r *LinkRecord, s string) (err error) { r.PacketLossPercent, err = parseFloat(s, 0, 100); return }},
	{"vdom", func(r *LinkRecord, s string) error { r.Vdom = s; return nil }},
	{"bandwidth_in", func(r *LinkRecord, s string) (err error) { r.BandwidthInRaw, err = parseBandwidth(s); return }},
	{"bandwidth_out", func(r *LinkRecord, s string) (err error) { r.BandwidthOutRaw, err = parseBandwidth(s); return }},
	{"bandwidth_bi", func(r *LinkRecord, s string) (err error) { r.BandwidthBiRaw, err = parseBandwidth(s); return }},
	{"interface_name", func(r *LinkRecord, s string) error { r.InterfaceName = s; return nil }},
}

const (
	// LegacyColumns is the row width of firmware that does not expose the interface name
	LegacyColumns = 13
	// FullColumns adds fgVWLHealthCheckLinkIfName
	FullColumns = 14
)

// Decode converts one snapshot of table rows into link records, preserving order.
// Any bad row fails the whole snapshot.
func Decode(rows [][]string) ([]LinkRecord, error) {
	records := make([]LinkRecord, 0, len(rows))
	for i, row := range rows {
		rec, err := decodeRow(i, row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func decodeRow(idx int, row []string) (LinkRecord, error) {
	var rec LinkRecord
	if len(row) != LegacyColumns && len(row) != FullColumns {
		return rec, &MalformedRowError{
			Row: idx,
			Err: fmt.Errorf("expected %d or %d fields, got %d", LegacyColumns, FullColumns, len(row)),
		}
	}
	for i, value := range row {
		col := linkColumns[i]
		if err := col.parse(&rec, value); err != nil {
			return LinkRecord{}, &MalformedRowError{Row: idx, Field: col.name, Value: value, Err: err}
		}
	}
	return rec, nil
}

func parseInt(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid integer")
	}
	return v, nil
}

const (
	// MaxCounter keeps packet counters exact as float64 metric values
	MaxCounter = 1 << 53
	// MaxBandwidthRaw keeps scaled bandwidth exact as float64 metric values
	MaxBandwidthRaw = MaxCounter / BandwidthScale
)

func parseBandwidth(s string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer")
	}
	if v < 0 || v > MaxBandwidthRaw {
		return 0, fmt.Errorf("bandwidth out of range [0, %d]", MaxBandwidthRaw)
	}
	return v, nil
}

func parseCounter(s string) (uint64, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid counter")
	}
	if v > MaxCounter {
		return 0, fmt.Errorf("counter exceeds %d", uint64(MaxCounter))
	}
	return v, nil
}

// parseFloat accepts finite decimals within [lo, hi]
func parseFloat(s string, lo, hi float64) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid decimal")
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("value out of range")
	}
	return v, nil
}

func parseState(s string) (LinkState, error) {
	switch strings.TrimSpace(s) {
	case "0":
		return Alive, nil
	case "1":
		return Dead, nil
	default:
		return 0, fmt.Errorf("unknown link state")
	}
}
