// Package analytics aggregates the API call journal into per-operation statistics.
package analytics

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/studiowebux/postboard/internal/migrations"
	"github.com/studiowebux/postboard/internal/types"
)

// DefaultCacheTTL is how long computed stats are reused before querying again
const DefaultCacheTTL = 30 * time.Second

const timestampLayout = "2006-01-02 15:04:05"

// Stats summarizes every journaled call of one operation and method
type Stats struct {
	Operation     types.Operation `json:"operation" yaml:"operation"`
	Method        string          `json:"method" yaml:"method"`
	TotalCalls    int             `json:"totalCalls" yaml:"totalCalls"`
	SuccessCount  int             `json:"successCount" yaml:"successCount"`
	ErrorCount    int             `json:"errorCount" yaml:"errorCount"`
	NetworkErrors int             `json:"networkErrors" yaml:"networkErrors"` // status 0: DNS, refused, timeout
	AvgDurationMs float64         `json:"avgDurationMs" yaml:"avgDurationMs"`
	MinDurationMs int64           `json:"minDurationMs" yaml:"minDurationMs"`
	MaxDurationMs int64           `json:"maxDurationMs" yaml:"maxDurationMs"`
	TotalReqSize  int64           `json:"totalRequestSize" yaml:"totalRequestSize"`
	TotalRespSize int64           `json:"totalResponseSize" yaml:"totalResponseSize"`
	StatusCodes   map[int]int     `json:"statusCodes" yaml:"statusCodes"`
	LastCalled    time.Time       `json:"lastCalled" yaml:"lastCalled"`
}

// SuccessRate returns the share of 2xx answers in percent
func (s Stats) SuccessRate() float64 {
	if s.TotalCalls == 0 {
		return 0
	}
	return float64(s.SuccessCount) / float64(s.TotalCalls) * 100
}

// Manager reads the journal database
type Manager struct {
	db    *sql.DB
	cache *statsCache
}

// NewManager opens the journal at dbPath, creating it when missing
func NewManager(dbPath string) (*Manager, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create analytics directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open analytics database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to analytics database: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Manager{db: db, cache: newStatsCache(DefaultCacheTTL)}, nil
}

// StatsPerOperation returns one row per operation and method, most recently
// called first. Results are cached for DefaultCacheTTL.
func (m *Manager) StatsPerOperation() ([]Stats, error) {
	if stats, ok := m.cache.get(); ok {
		return stats, nil
	}

	query := `
		WITH status_codes_agg AS (
			SELECT
				operation,
				method,
				json_group_object(CAST(status AS TEXT), count) AS status_codes_json
			FROM (
				SELECT operation, method, status, COUNT(*) AS count
				FROM calls
				GROUP BY operation, method, status
			)
			GROUP BY operation, method
		)
		SELECT
			c.operation,
			c.method,
			COUNT(*) AS total_calls,
			SUM(CASE WHEN c.status >= 200 AND c.status < 300 THEN 1 ELSE 0 END) AS success_count,
			SUM(CASE WHEN c.status >= 400 THEN 1 ELSE 0 END) AS error_count,
			SUM(CASE WHEN c.status = 0 THEN 1 ELSE 0 END) AS network_errors,
			AVG(c.duration_ms) AS avg_duration,
			MIN(c.duration_ms) AS min_duration,
			MAX(c.duration_ms) AS max_duration,
			SUM(c.request_size) AS total_req_size,
			SUM(c.response_size) AS total_resp_size,
			MAX(c.timestamp) AS last_called,
			COALESCE(s.status_codes_json, '{}') AS status_codes_json
		FROM calls c
		LEFT JOIN status_codes_agg s ON c.operation = s.operation AND c.method = s.method
		GROUP BY c.operation, c.method
		ORDER BY last_called DESC, c.operation
	`

	rows, err := m.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats per operation: %w", err)
	}
	defer rows.Close()

	var statsList []Stats
	for rows.Next() {
		var (
			s               Stats
			operation       string
			lastCalled      sql.NullString
			statusCodesJSON string
		)

		if err := rows.Scan(
			&operation,
			&s.Method,
			&s.TotalCalls,
			&s.SuccessCount,
			&s.ErrorCount,
			&s.NetworkErrors,
			&s.AvgDurationMs,
			&s.MinDurationMs,
			&s.MaxDurationMs,
			&s.TotalReqSize,
			&s.TotalRespSize,
			&lastCalled,
			&statusCodesJSON,
		); err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		s.Operation = types.Operation(operation)

		// Journal timestamps are local time without zone
		if lastCalled.Valid {
			if t, err := time.ParseInLocation(timestampLayout, lastCalled.String, time.Local); err == nil {
				s.LastCalled = t
			}
		}

		s.StatusCodes, err = parseStatusCodes(statusCodesJSON)
		if err != nil {
			return nil, err
		}

		statsList = append(statsList, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	m.cache.set(statsList)
	return statsList, nil
}

// Invalidate drops cached stats so the next call re-reads the journal
func (m *Manager) Invalidate() {
	m.cache.invalidate()
}

// Close closes the database
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

func parseStatusCodes(raw string) (map[int]int, error) {
	codes := make(map[int]int)
	if raw == "{}" {
		return codes, nil
	}

	var byText map[string]int
	if err := json.Unmarshal([]byte(raw), &byText); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status codes: %w", err)
	}
	for text, count := range byText {
		if code, err := strconv.Atoi(text); err == nil {
			codes[code] = count
		}
	}
	return codes, nil
}
