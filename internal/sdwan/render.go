// internal/sdwan/render.go
package sdwan

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatValue renders a value in its display unit
func FormatValue(v float64, unit Unit) string {
	switch unit {
	case UnitPercent:
		return fmt.Sprintf("%.2f%%", v)
	case UnitSeconds:
		return time.Duration(v * float64(time.Second)).Round(time.Millisecond).String()
	case UnitBitsPerSecond:
		return humanize.SIWithDigits(v, 2, string(UnitBitsPerSecond))
	default:
		return humanize.Comma(int64(v))
	}
}

// render produces the detail line, e.g.
// "PacketLoss: 20.00% (warn/crit at 5.00%/10.00%)".
// Levels are only spelled out when they were breached.
func (o MetricObservation) render() string {
	text := fmt.Sprintf("%s: %s", o.Label, FormatValue(o.Value, o.Unit))
	if o.Levels == nil || o.Severity == OK {
		return text
	}
	rel := "at"
	if o.Bound == Lower {
		rel = "below"
	}
	return fmt.Sprintf("%s (warn/crit %s %s/%s)", text, rel,
		FormatValue(o.Levels.Warn, o.Unit), FormatValue(o.Levels.Crit, o.Unit))
}
