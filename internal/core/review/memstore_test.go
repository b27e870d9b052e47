// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package review_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/taibuivan/bookreview/internal/core/catalog"
	"github.com/taibuivan/bookreview/internal/core/review"
)

// memStore is an in-memory [review.Store] with the transactional behaviour
// the service depends on:
//
//   - staged writes become visible to other transactions only on commit;
//   - an insert of a (title, author) pair that another open transaction has
//     already inserted blocks until that transaction ends, then fails with
//     [catalog.ErrDuplicate] if it committed (a unique index does the same);
//   - rollback discards every staged write.
type memStore struct {
	mu sync.Mutex

	clock   time.Time
	seq     int
	entries map[pairKey]*memEntry
	byID    map[string]*memEntry
	reviews []review.Review
	pending map[pairKey]chan struct{}

	// onMiss runs after every lookup miss, outside the lock.
	onMiss func(ctx context.Context)
	// failReviewInsert makes every review insert fail with this error.
	failReviewInsert error
	// forceDuplicate makes every catalog insert lose the race.
	forceDuplicate bool

	txCount   int
	commits   int
	rollbacks int
}

type pairKey struct {
	title  string
	author string
}

type memEntry struct {
	id        string
	title     string
	author    string
	genre     *string
	sum       int
	count     int
	createdAt time.Time
}

func newMemStore() *memStore {
	return &memStore{
		clock:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		entries: make(map[pairKey]*memEntry),
		byID:    make(map[string]*memEntry),
		pending: make(map[pairKey]chan struct{}),
	}
}

// nextLocked advances the fake clock and id sequence. Callers hold mu.
func (store *memStore) nextLocked(prefix string) (string, time.Time) {
	store.seq++
	store.clock = store.clock.Add(time.Millisecond)
	return fmt.Sprintf("%s-%04d", prefix, store.seq), store.clock
}

func (store *memStore) WithinTx(ctx context.Context, fn func(review.Tx) error) error {
	store.mu.Lock()
	store.txCount++
	store.mu.Unlock()

	tx := &memTx{store: store, entries: make(map[pairKey]*memEntry)}
	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	tx.commit()
	return nil
}

func (store *memStore) ListRecent(_ context.Context, limit int) ([]*review.ReviewWithAggregate, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	ordered := make([]review.Review, len(store.reviews))
	copy(ordered, store.reviews)
	sort.Slice(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
		}
		return ordered[i].ID > ordered[j].ID
	})

	result := make([]*review.ReviewWithAggregate, 0, min(limit, len(ordered)))
	for _, item := range ordered[:min(limit, len(ordered))] {
		entry := store.byID[item.BookID]
		result = append(result, &review.ReviewWithAggregate{
			Review:        item,
			AverageRating: float64(entry.sum) / float64(entry.count),
			TotalReviews:  entry.count,
		})
	}
	return result, nil
}

// # Inspection helpers

func (store *memStore) entryCount() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.entries)
}

func (store *memStore) entry(title, author string) *memEntry {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.entries[pairKey{title, author}]
}

func (store *memStore) committedReviews() []review.Review {
	store.mu.Lock()
	defer store.mu.Unlock()
	return append([]review.Review(nil), store.reviews...)
}

func (store *memStore) pendingCount() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.pending)
}

// # Transaction scope

type memTx struct {
	store    *memStore
	entries  map[pairKey]*memEntry
	reserved []pairKey
	reviews  []review.Review
	ratings  []stagedRating
}

type stagedRating struct {
	bookID string
	rating int
}

func (tx *memTx) Catalog() catalog.Store {
	return &memCatalog{tx: tx}
}

func (tx *memTx) Insert(ctx context.Context, item *review.Review) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if tx.store.failReviewInsert != nil {
		return tx.store.failReviewInsert
	}
	if !tx.exists(item.BookID) {
		return fmt.Errorf("insert review: book %s does not exist", item.BookID)
	}

	tx.store.mu.Lock()
	item.ID, item.CreatedAt = tx.store.nextLocked("review")
	tx.store.mu.Unlock()

	tx.reviews = append(tx.reviews, *item)
	return nil
}

func (tx *memTx) ApplyRating(ctx context.Context, bookID string, rating int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !tx.exists(bookID) {
		return fmt.Errorf("apply rating: book %s does not exist", bookID)
	}
	tx.ratings = append(tx.ratings, stagedRating{bookID: bookID, rating: rating})
	return nil
}

func (tx *memTx) exists(bookID string) bool {
	for _, entry := range tx.entries {
		if entry.id == bookID {
			return true
		}
	}
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	_, ok := tx.store.byID[bookID]
	return ok
}

func (tx *memTx) commit() {
	store := tx.store
	store.mu.Lock()
	defer store.mu.Unlock()

	for key, entry := range tx.entries {
		store.entries[key] = entry
		store.byID[entry.id] = entry
	}
	store.reviews = append(store.reviews, tx.reviews...)
	for _, staged := range tx.ratings {
		entry := store.byID[staged.bookID]
		entry.sum += staged.rating
		entry.count++
	}
	tx.release()
	store.commits++
}

func (tx *memTx) rollback() {
	store := tx.store
	store.mu.Lock()
	defer store.mu.Unlock()

	tx.release()
	store.rollbacks++
}

// release wakes writers blocked on this transaction's inserts. Callers hold mu.
func (tx *memTx) release() {
	for _, key := range tx.reserved {
		close(tx.store.pending[key])
		delete(tx.store.pending, key)
	}
	tx.reserved = nil
}

// # Catalog view

type memCatalog struct {
	tx *memTx
}

func (view *memCatalog) FindID(ctx context.Context, title, author string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := pairKey{title, author}
	if entry, ok := view.tx.entries[key]; ok {
		return entry.id, nil
	}

	store := view.tx.store
	store.mu.Lock()
	entry, ok := store.entries[key]
	store.mu.Unlock()
	if ok {
		return entry.id, nil
	}

	if store.onMiss != nil {
		store.onMiss(ctx)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "", catalog.ErrNotFound
}

func (view *memCatalog) Matches(ctx context.Context, id, title, author string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	key := pairKey{title, author}
	if entry, ok := view.tx.entries[key]; ok {
		return entry.id == id, nil
	}

	store := view.tx.store
	store.mu.Lock()
	defer store.mu.Unlock()
	entry, ok := store.entries[key]
	return ok && entry.id == id, nil
}

func (view *memCatalog) Insert(ctx context.Context, entry *catalog.Entry) error {
	store := view.tx.store
	if store.forceDuplicate {
		return catalog.ErrDuplicate
	}

	key := pairKey{entry.Title, entry.Author}
	for {
		store.mu.Lock()
		if _, ok := store.entries[key]; ok {
			store.mu.Unlock()
			return catalog.ErrDuplicate
		}

		wait, busy := store.pending[key]
		if !busy {
			id, createdAt := store.nextLocked("book")
			store.pending[key] = make(chan struct{})
			store.mu.Unlock()

			view.tx.reserved = append(view.tx.reserved, key)
			view.tx.entries[key] = &memEntry{
				id: id, title: entry.Title, author: entry.Author, genre: entry.Genre, createdAt: createdAt,
			}
			entry.ID = id
			entry.CreatedAt = createdAt
			return nil
		}
		store.mu.Unlock()

		// Another transaction holds the pair: wait for it to finish.
		select {
		case <-wait:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
