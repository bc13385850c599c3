package jsondb

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/sdomino/scribble"

	"github.com/ngoduykhanh/flatpost/store"
)

// Record is implemented by the value types kept in a Collection
type Record[T any] interface {
	RecordID() int
	WithID(id int) T
}

// Check inspects the current records before an append and may veto it
type Check[T any] func(records []T) error

// Collection is an ordered set of records persisted as one JSON array.
//
// Mutations hold the write lock for the whole load, compute and persist
// sequence, so two mutations of the same collection never interleave.
// scribble writes through a temp file and a rename, so readers only ever
// see a complete array.
type Collection[T Record[T]] struct {
	conn *scribble.Driver
	name string
	mu   sync.RWMutex
}

// NewCollection returns the collection stored under name
func NewCollection[T Record[T]](conn *scribble.Driver, name string) *Collection[T] {
	return &Collection[T]{conn: conn, name: name}
}

// Init creates an empty array for the collection if none is stored yet
func (c *Collection[T]) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.load(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return c.persist([]T{})
		}
		return err
	}
	return nil
}

// List returns every record in insertion order
func (c *Collection[T]) List() ([]T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	records, err := c.load()
	if errors.Is(err, fs.ErrNotExist) {
		return []T{}, nil
	}
	return records, err
}

// FindByID returns the record with id or store.ErrNotFound
func (c *Collection[T]) FindByID(id int) (T, error) {
	return c.Find(func(r T) bool { return r.RecordID() == id })
}

// Find returns the first record for which match is true
func (c *Collection[T]) Find(match func(T) bool) (T, error) {
	var zero T
	records, err := c.List()
	if err != nil {
		return zero, err
	}
	for _, r := range records {
		if match(r) {
			return r, nil
		}
	}
	return zero, store.ErrNotFound
}

// Append assigns the next id to record, adds it and persists the collection.
// Every check runs against the current records first; the first error aborts
// the append.
func (c *Collection[T]) Append(record T, checks ...Check[T]) (T, error) {
	var zero T
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.loadOrEmpty()
	if err != nil {
		return zero, err
	}
	for _, check := range checks {
		if err := check(records); err != nil {
			return zero, err
		}
	}

	record = record.WithID(nextID(records))
	if err := c.persist(append(records, record)); err != nil {
		return zero, err
	}
	return record, nil
}

// Update applies fn to the record with id and persists the collection.
// The id survives whatever fn returns.
func (c *Collection[T]) Update(id int, fn func(T) T) (T, error) {
	var zero T
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.loadOrEmpty()
	if err != nil {
		return zero, err
	}
	for i, r := range records {
		if r.RecordID() != id {
			continue
		}
		records[i] = fn(r).WithID(id)
		if err := c.persist(records); err != nil {
			return zero, err
		}
		return records[i], nil
	}
	return zero, store.ErrNotFound
}

// Remove deletes the record with id, reporting whether one was there
func (c *Collection[T]) Remove(id int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.loadOrEmpty()
	if err != nil {
		return false, err
	}
	kept := make([]T, 0, len(records))
	for _, r := range records {
		if r.RecordID() != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(records) {
		return false, nil
	}
	if err := c.persist(kept); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Collection[T]) load() ([]T, error) {
	var records []T
	if err := c.conn.Read(c.name, c.name, &records); err != nil {
		return nil, fmt.Errorf("cannot read %s collection: %w", c.name, err)
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

func (c *Collection[T]) loadOrEmpty() ([]T, error) {
	records, err := c.load()
	if errors.Is(err, fs.ErrNotExist) {
		return []T{}, nil
	}
	return records, err
}

func (c *Collection[T]) persist(records []T) error {
	if err := c.conn.Write(c.name, c.name, records); err != nil {
		return fmt.Errorf("cannot write %s collection: %w", c.name, err)
	}
	return nil
}

func nextID[T Record[T]](records []T) int {
	id := 0
	for _, r := range records {
		if r.RecordID() > id {
			id = r.RecordID()
		}
	}
	return id + 1
}
