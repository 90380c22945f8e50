package ledger

import "errors"

var (
	// ErrKeyNotFound is returned by Txn.Get when nothing is stored under the key.
	ErrKeyNotFound = errors.New("key not found in store")

	// ErrReadOnly is returned when a write is attempted inside View.
	ErrReadOnly = errors.New("write inside a read-only transaction")

	// ErrClosed is returned by Apply once the ledger has been closed.
	ErrClosed = errors.New("ledger is closed")
)

// Txn is a transactional view of the store. Implementations are not safe for
// concurrent use; a Txn must stay within the callback that received it.
type Txn interface {
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(key []byte) ([]byte, error)

	// Set stores value under key. Inside View it fails with ErrReadOnly.
	Set(key, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key []byte) error

	// Iterate calls fn for every key starting with prefix, in ascending key
	// order. key and value are only valid for the duration of the call.
	Iterate(prefix []byte, fn func(key, value []byte) error) error
}

// Store is the persistence layer behind a Ledger. View runs fn against a
// consistent read-only snapshot. Update runs fn against a read-write
// transaction whose writes commit if and only if fn returns nil; a failed
// transaction leaves the store untouched.
type Store interface {
	View(fn func(Txn) error) error
	Update(fn func(Txn) error) error
	Close() error
}
