package storage

import (
	"database/sql"
	"fmt"
	"strings"

	// Register sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
)

type DB interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	Close() error
}

type Store struct{ db DB }

// UsageStats aggregates the commands of one category.
type UsageStats struct {
	Count    int
	Commands map[string]int
}

// TimeSeriesPoint is the command count of one bucket starting at Timestamp (unix seconds).
type TimeSeriesPoint struct {
	Timestamp int64
	Count     int
}

// OpenSQLite opens dsn with a single connection; sqlite serialises writers anyway
// and ":memory:" databases are per-connection.
func OpenSQLite(dsn string) (DB, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

func InitSchema(db DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS usage(
		chat_id INTEGER, user_id INTEGER, command TEXT, ts INTEGER
	)`); err != nil {
		return err
	}
	_, err := db.Exec(`CREATE INDEX IF NOT EXISTS usage_ts ON usage(ts)`)
	return err
}

func NewStore(db DB) *Store { return &Store{db: db} }

// Category groups bot commands for the usage report.
func Category(command string) string {
	switch strings.TrimPrefix(strings.ToLower(command), "/") {
	case "port", "compare":
		return "portfolio"
	case "advanced":
		return "structure"
	case "backtest":
		return "backtest"
	case "explain":
		return "commentary"
	default:
		return "other"
	}
}

func (s *Store) LogUsage(chatID, userID int64, command string, ts int64) error {
	_, err := s.db.Exec(`INSERT INTO usage(chat_id,user_id,command,ts) VALUES(?,?,?,?)`,
		chatID, userID, strings.ToLower(command), ts)
	return err
}

// UsageByCommand counts commands issued at or after since, grouped by Category.
func (s *Store) UsageByCommand(since int64) (map[string]*UsageStats, error) {
	rows, err := s.db.Query(`SELECT command, COUNT(*) FROM usage WHERE ts>=? GROUP BY command`, since)
	if err != nil {
		return nil, fmt.Errorf("query usage: %w", err)
	}
	defer rows.Close()
	out := map[string]*UsageStats{}
	for rows.Next() {
		var cmd string
		var n int
		if err := rows.Scan(&cmd, &n); err != nil {
			return nil, err
		}
		cat := Category(cmd)
		st, ok := out[cat]
		if !ok {
			st = &UsageStats{Commands: map[string]int{}}
			out[cat] = st
		}
		st.Count += n
		st.Commands[cmd] += n
	}
	return out, rows.Err()
}

// UsageTimeSeries buckets usage per category into bucket-second windows.
func (s *Store) UsageTimeSeries(since, bucket int64) (map[string][]TimeSeriesPoint, error) {
	if bucket <= 0 {
		bucket = 86400
	}
	rows, err := s.db.Query(`SELECT command, (ts/?)*? AS b, COUNT(*) FROM usage
		WHERE ts>=? GROUP BY command, b ORDER BY b ASC`, bucket, bucket, since)
	if err != nil {
		return nil, fmt.Errorf("query usage series: %w", err)
	}
	defer rows.Close()
	merged := map[string]map[int64]int{}
	var order []int64
	seen := map[int64]bool{}
	for rows.Next() {
		var cmd string
		var b int64
		var n int
		if err := rows.Scan(&cmd, &b, &n); err != nil {
			return nil, err
		}
		cat := Category(cmd)
		if merged[cat] == nil {
			merged[cat] = map[int64]int{}
		}
		merged[cat][b] += n
		if !seen[b] {
			seen[b] = true
			order = append(order, b)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out := make(map[string][]TimeSeriesPoint, len(merged))
	for cat, byBucket := range merged {
		for _, b := range order {
			if n, ok := byBucket[b]; ok {
				out[cat] = append(out[cat], TimeSeriesPoint{Timestamp: b, Count: n})
			}
		}
	}
	return out, nil
}
