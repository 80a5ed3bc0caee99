// internal/agent/spool.go
package agent

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/signalnine/sdwanwatch/internal/protocol"
)

// ReadSpool reads a report that could not be delivered earlier.
// Returns nil if the file doesn't exist or is corrupt.
func ReadSpool(path string) (*protocol.CheckReport, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var report protocol.CheckReport
	if err := json.Unmarshal(data, &report); err != nil {
		// Corrupt spool - drop it
		return nil, nil
	}
	return &report, nil
}

// WriteSpool stores an undelivered report, replacing any older one.
// Creates parent directories if needed.
func WriteSpool(path string, report protocol.CheckReport) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ClearSpool removes the spool file after a successful delivery
func ClearSpool(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
