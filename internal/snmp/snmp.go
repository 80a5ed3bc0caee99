// internal/snmp/snmp.go
package snmp

// Fetching of the FortiGate SD-WAN health-check table. The collector only
// turns the table into text rows; decoding happens in package sdwan.

import (
	"context"
	"errors"
	"strings"
)

const (
	// SysObjectIDOID is sysObjectID.0
	SysObjectIDOID = ".1.3.6.1.2.1.1.2.0"
	// FortiGatePrefix identifies FortiGate devices by sysObjectID
	FortiGatePrefix = ".1.3.6.1.4.1.12356.101.1"
	// HealthCheckTable is FORTINET-FORTIGATE-MIB::fgVWLHealthCheckLinkEntry
	HealthCheckTable = ".1.3.6.1.4.1.12356.101.4.9.2.1"
	// MaxColumn is the last walked column (fgVWLHealthCheckLinkIfName)
	MaxColumn = 14
)

// ErrNotDetected is returned for devices that are not FortiGates
var ErrNotDetected = errors.New("device is not a FortiGate")

// AuthV3 holds SNMPv3 USM credentials
type AuthV3 struct {
	User      string
	AuthProto string // MD5/SHA/SHA224/SHA256/SHA384/SHA512
	AuthPass  string
	PrivProto string // DES/AES/AES192/AES256
	PrivPass  string
}

// Credentials selects v2c community or v3 USM access
type Credentials struct {
	Version   string // "v2c" or "v3"
	Community string
	V3        *AuthV3
}

// Target is one device to walk
type Target struct {
	Name        string
	Address     string // IP or FQDN, optional :port
	Credentials Credentials
}

// Fetcher returns the raw health-check rows of one device
type Fetcher interface {
	Fetch(ctx context.Context, t Target) ([][]string, error)
}

// Detect is the vendor predicate applied to sysObjectID.0
func Detect(sysObjectID string) bool {
	return strings.HasPrefix(normalizeOID(sysObjectID), FortiGatePrefix)
}

func normalizeOID(oid string) string {
	oid = strings.TrimSpace(oid)
	if oid != "" && !strings.HasPrefix(oid, ".") {
		return "." + oid
	}
	return oid
}
