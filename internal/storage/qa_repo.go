package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_qa_store.go -package=mocks qa-history/internal/storage QAStore

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"
)

// timestampLayout is fixed width so that lexical order of the stored text
// matches chronological order.
const timestampLayout = "2006-01-02 15:04:05.000000000"

var (
	// ErrEmptyField is returned when a question or answer is empty on insert.
	ErrEmptyField = errors.New("question and answer must not be empty")
	// ErrInvalidPage is returned for page or page size values below 1.
	ErrInvalidPage = errors.New("page and page size must be at least 1")
)

// QAStore defines the interface for question/answer history storage.
type QAStore interface {
	// Insert appends a record and returns it with its assigned ID and timestamp.
	Insert(ctx context.Context, question, answer string) (*QARecord, error)
	// CountAll returns the total number of records.
	CountAll(ctx context.Context) (int, error)
	// GetPage returns records newest first, skipping (page-1)*pageSize records.
	GetPage(ctx context.Context, page, pageSize int) ([]QARecord, error)
}

// QARepo provides methods for question/answer records.
// It implements the QAStore interface.
type QARepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewQARepo creates a new QARepo.
func NewQARepo(db *sql.DB) *QARepo {
	return &QARepo{
		db:  db,
		now: time.Now,
	}
}

// withConn runs fn on a connection taken from the pool and always returns it.
func (r *QARepo) withConn(ctx context.Context, op string, fn func(conn *sql.Conn) error) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return &StorageError{Op: op, Err: err}
	}
	defer func() {
		_ = conn.Close()
	}()

	if err := fn(conn); err != nil {
		return &StorageError{Op: op, Err: err}
	}
	return nil
}

// Insert appends one question/answer record.
func (r *QARepo) Insert(ctx context.Context, question, answer string) (*QARecord, error) {
	if question == "" || answer == "" {
		return nil, &StorageError{Op: "insert", Err: ErrEmptyField}
	}

	ts := r.now().UTC()
	record := &QARecord{
		Question:  question,
		Answer:    answer,
		Timestamp: ts,
	}

	err := r.withConn(ctx, "insert", func(conn *sql.Conn) error {
		result, err := conn.ExecContext(ctx,
			"INSERT INTO questions (question, answer, timestamp) VALUES (?, ?, ?)",
			question, answer, ts.Format(timestampLayout),
		)
		if err != nil {
			return err
		}
		record.ID, err = result.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// CountAll returns the total number of stored records.
func (r *QARepo) CountAll(ctx context.Context) (int, error) {
	var count int
	err := r.withConn(ctx, "count", func(conn *sql.Conn) error {
		return conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM questions").Scan(&count)
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// GetPage returns at most pageSize records ordered by timestamp descending.
// Records sharing a timestamp are ordered by ID descending.
func (r *QARepo) GetPage(ctx context.Context, page, pageSize int) ([]QARecord, error) {
	if page < 1 || pageSize < 1 {
		return nil, &StorageError{Op: "get page", Err: ErrInvalidPage}
	}
	// An offset past MaxInt64 lies beyond any stored row.
	if page-1 > math.MaxInt64/pageSize {
		return []QARecord{}, nil
	}
	offset := (page - 1) * pageSize

	records := []QARecord{}
	err := r.withConn(ctx, "get page", func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx,
			`SELECT id, question, answer, timestamp
			 FROM questions
			 ORDER BY timestamp DESC, id DESC
			 LIMIT ? OFFSET ?`,
			pageSize, offset,
		)
		if err != nil {
			return err
		}
		defer func() {
			_ = rows.Close()
		}()

		for rows.Next() {
			var rec QARecord
			if err := rows.Scan(&rec.ID, &rec.Question, &rec.Answer, &rec.Timestamp); err != nil {
				return err
			}
			records = append(records, rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}
