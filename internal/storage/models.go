package storage

import (
	"fmt"
	"time"
)

// QARecord is one persisted question/answer exchange.
type QARecord struct {
	ID        int64
	Question  string
	Answer    string
	Timestamp time.Time
}

// StorageError is returned for any failure of the underlying SQL engine.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
