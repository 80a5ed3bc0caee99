// internal/sdwan/severity.go
package sdwan

import "fmt"

// Severity follows the monitoring plugin convention, so it doubles as an exit code
type Severity int

const (
	OK      Severity = 0
	Warn    Severity = 1
	Crit    Severity = 2
	Unknown Severity = 3
)

var severityNames = map[Severity]string{
	OK:      "OK",
	Warn:    "WARN",
	Crit:    "CRIT",
	Unknown: "UNKNOWN",
}

func (s Severity) String() string {
	if n, ok := severityNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// Worst returns the more severe of a and b. Unknown ranks between Warn and Crit.
func Worst(a, b Severity) Severity {
	if rank(b) > rank(a) {
		return b
	}
	return a
}

func rank(s Severity) int {
	switch s {
	case OK:
		return 0
	case Warn:
		return 1
	case Unknown:
		return 2
	default:
		return 3
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(b []byte) error {
	for sev, name := range severityNames {
		if name == string(b) {
			*s = sev
			return nil
		}
	}
	return fmt.Errorf("unknown severity %q", string(b))
}
