// internal/collector/db.go
package collector

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/signalnine/sdwanwatch/internal/protocol"
	"github.com/signalnine/sdwanwatch/internal/sdwan"
	_ "modernc.org/sqlite"
)

// checkedAtLayout is fixed-width so that checked_at sorts as text
const checkedAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DB wraps SQLite connection
type DB struct {
	db *sql.DB
}

// NewDB opens or creates the SQLite database
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// Create schema
	schema := `
	CREATE TABLE IF NOT EXISTS check_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		checked_at TEXT NOT NULL,
		hostname TEXT NOT NULL,
		device TEXT NOT NULL,
		item TEXT NOT NULL,
		severity INTEGER NOT NULL,
		summary TEXT,
		observations TEXT,
		created_at TEXT DEFAULT (datetime('now'))
	);
	CREATE INDEX IF NOT EXISTS idx_check_results_item ON check_results(device, item);
	CREATE INDEX IF NOT EXISTS idx_check_results_severity ON check_results(severity);
	CREATE INDEX IF NOT EXISTS idx_check_results_checked_at ON check_results(checked_at);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db: db}, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}

// InsertReport stores every result of one report in a single transaction
func (d *DB) InsertReport(report *protocol.CheckReport) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range report.Results {
		obsJSON, err := json.Marshal(r.Observations)
		if err != nil {
			return err
		}
		_, err = stmt.Exec(report.Timestamp.UTC().Format(checkedAtLayout), report.Hostname,
			r.Device, r.Item, int(r.Severity), r.Summary, string(obsJSON))
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

const insertSQL = `
	INSERT INTO check_results (checked_at, hostname, device, item, severity, summary, observations)
	VALUES (?, ?, ?, ?, ?, ?, ?)
`

// InsertResult stores a single check result
func (d *DB) InsertResult(r *protocol.StoredResult) error {
	obsJSON, err := json.Marshal(r.Observations)
	if err != nil {
		return err
	}

	_, err = d.db.Exec(insertSQL, r.CheckedAt.UTC().Format(checkedAtLayout), r.Hostname,
		r.Device, r.Item, int(r.Severity), r.Summary, string(obsJSON))
	return err
}

const selectSQL = `
	SELECT id, checked_at, hostname, device, item, severity, summary, observations, created_at
	FROM check_results
`

// QueryByItem returns recent results for a device, optionally narrowed to one item
func (d *DB) QueryByItem(device, item string, limit int) ([]protocol.StoredResult, error) {
	rows, err := d.db.Query(selectSQL+`
		WHERE device = ? AND (? = '' OR item = ?)
		ORDER BY checked_at DESC, id DESC
		LIMIT ?
	`, device, item, item, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanResults(rows)
}

// QueryNonOK returns recent results whose severity is not OK
func (d *DB) QueryNonOK(limit int) ([]protocol.StoredResult, error) {
	rows, err := d.db.Query(selectSQL+`
		WHERE severity != ?
		ORDER BY checked_at DESC, id DESC
		LIMIT ?
	`, int(sdwan.OK), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanResults(rows)
}

// SeverityCounts returns count of results by severity
func (d *DB) SeverityCounts() (map[sdwan.Severity]int, error) {
	rows, err := d.db.Query(`
		SELECT severity, COUNT(*) FROM check_results GROUP BY severity
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[sdwan.Severity]int)
	for rows.Next() {
		var sev, count int
		if err := rows.Scan(&sev, &count); err != nil {
			return nil, err
		}
		counts[sdwan.Severity(sev)] = count
	}
	return counts, rows.Err()
}

func scanResults(rows *sql.Rows) ([]protocol.StoredResult, error) {
	var results []protocol.StoredResult
	for rows.Next() {
		var r protocol.StoredResult
		var checkedStr, createdStr string
		var sev int
		var summary, obsJSON sql.NullString

		err := rows.Scan(&r.ID, &checkedStr, &r.Hostname, &r.Device, &r.Item, &sev, &summary, &obsJSON, &createdStr)
		if err != nil {
			return nil, err
		}

		r.Severity = sdwan.Severity(sev)
		r.CheckedAt, _ = time.Parse(checkedAtLayout, checkedStr)
		r.CreatedAt, _ = time.Parse("2006-01-02 15:04:05", createdStr)
		if summary.Valid {
			r.Summary = summary.String
		}
		if obsJSON.Valid {
			json.Unmarshal([]byte(obsJSON.String), &r.Observations)
		}

		results = append(results, r)
	}
	return results, rows.Err()
}
