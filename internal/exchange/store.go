package exchange

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ziadkadry99/smartie/internal/db"
)

// Store persists exchange records.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Record inserts a new exchange. If ex.ID is empty a UUID is generated.
func (s *Store) Record(ctx context.Context, ex Exchange) error {
	if ex.ID == "" {
		ex.ID = uuid.New().String()
	}
	if ex.Timestamp.IsZero() {
		ex.Timestamp = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO exchanges (
			id, session_id, outcome, status, detail, has_location, duration_ms, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ex.ID,
		ex.SessionID,
		string(ex.Outcome),
		ex.Status,
		ex.Detail,
		boolToInt(ex.HasLocation),
		ex.DurationMS,
		ex.Timestamp.UTC().Format(time.DateTime),
	)
	if err != nil {
		return fmt.Errorf("inserting exchange: %w", err)
	}
	return nil
}

// GetByID retrieves a single exchange.
func (s *Store) GetByID(ctx context.Context, id string) (*Exchange, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, outcome, status, detail, has_location, duration_ms, timestamp
		FROM exchanges WHERE id = ?`, id)
	return scanInto(row)
}

// QueryFilter controls which exchanges are returned by Query.
type QueryFilter struct {
	SessionID string
	Outcome   Outcome
	Since     *time.Time
	Limit     int
	Offset    int
}

// Query returns exchanges matching the filter, newest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Exchange, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.SessionID != "" {
		clauses = append(clauses, "session_id = ?")
		args = append(args, filter.SessionID)
	}
	if filter.Outcome != "" {
		clauses = append(clauses, "outcome = ?")
		args = append(args, string(filter.Outcome))
	}
	if filter.Since != nil {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, filter.Since.UTC().Format(time.DateTime))
	}

	query := "SELECT id, session_id, outcome, status, detail, has_location, duration_ms, timestamp FROM exchanges"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY timestamp DESC, rowid DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	} else if filter.Offset > 0 {
		query += " LIMIT -1"
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying exchanges: %w", err)
	}
	defer rows.Close()

	var out []Exchange
	for rows.Next() {
		ex, err := scanInto(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ex)
	}
	return out, rows.Err()
}

// Stats summarizes exchange outcomes.
type Stats struct {
	Answered int `json:"answered"`
	Failed   int `json:"failed"`
}

// Stats counts exchanges by outcome.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT outcome, COUNT(*) FROM exchanges GROUP BY outcome")
	if err != nil {
		return Stats{}, fmt.Errorf("counting exchanges: %w", err)
	}
	defer rows.Close()

	var st Stats
	for rows.Next() {
		var (
			outcome string
			n       int
		)
		if err := rows.Scan(&outcome, &n); err != nil {
			return Stats{}, err
		}
		switch Outcome(outcome) {
		case OutcomeAnswered:
			st.Answered = n
		case OutcomeFailed:
			st.Failed = n
		}
	}
	return st, rows.Err()
}

// DeleteBefore removes exchanges older than the given time and returns
// the number of deleted rows.
func (s *Store) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM exchanges WHERE timestamp < ?",
		before.UTC().Format(time.DateTime),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting old exchanges: %w", err)
	}
	return res.RowsAffected()
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanInto(sc scanner) (*Exchange, error) {
	var (
		ex          Exchange
		outcome, ts string
		hasLocation int
	)

	err := sc.Scan(&ex.ID, &ex.SessionID, &outcome, &ex.Status, &ex.Detail, &hasLocation, &ex.DurationMS, &ts)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("exchange not found: %w", err)
		}
		return nil, err
	}

	ex.Outcome = Outcome(outcome)
	ex.HasLocation = hasLocation != 0

	if t, parseErr := time.Parse(time.DateTime, ts); parseErr == nil {
		ex.Timestamp = t
	} else if t, parseErr := time.Parse(time.RFC3339, ts); parseErr == nil {
		ex.Timestamp = t
	}

	return &ex, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
