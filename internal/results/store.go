// Package results keeps scored uploads in memory and serves them back a
// page at a time.
package results

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"fraudscore/internal/data"
	"fraudscore/internal/scoring"
)

const (
	DefaultPageSize = 100
	maxIDAttempts   = 10
)

var (
	ErrNotFound        = errors.New("not found")
	ErrSessionNotFound = fmt.Errorf("session %w", ErrNotFound)
	ErrRowNotFound     = fmt.Errorf("row %w", ErrNotFound)
	ErrMismatch        = errors.New("prediction count does not match row count")
	ErrIDCollision     = errors.New("session id already in use")
)

// Options configure eviction. Zero MaxSessions or TTL disables that bound.
type Options struct {
	PageSize    int
	MaxSessions int
	TTL         time.Duration
	Now         func() time.Time
	NewID       func() (string, error)
}

type session struct {
	id          string
	table       data.Table
	predictions []scoring.Prediction
	csv         string
	fraudCount  int
	normalCount int
	createdAt   time.Time
	lastAccess  time.Time
}

// Page is one window of a stored upload plus the session aggregates.
type Page struct {
	ID          string     `json:"results_id"`
	Header      []string   `json:"columns"`
	Rows        [][]string `json:"rows"`
	Page        int        `json:"current_page"`
	PageSize    int        `json:"per_page"`
	TotalPages  int        `json:"total_pages"`
	TotalRows   int        `json:"total_rows"`
	FraudCount  int        `json:"fraud_count"`
	NormalCount int        `json:"normal_count"`
	CSV         string     `json:"csv_data"`
}

// Summary is the per-session aggregate computed once at Create.
type Summary struct {
	TotalRows   int `json:"total_rows"`
	FraudCount  int `json:"fraud_count"`
	NormalCount int `json:"normal_count"`
}

// Store maps session ids to scored uploads. Sessions are ordered by last
// access; the least recently used is evicted first. All methods are safe
// for concurrent use.
type Store struct {
	mu    sync.Mutex
	order *list.List
	index map[string]*list.Element
	opts  Options
}

// New returns an empty store. Zero PageSize uses DefaultPageSize; nil Now
// and NewID default to time.Now and random UUIDs.
func New(opts Options) *Store {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = newUUID
	}
	return &Store{order: list.New(), index: map[string]*list.Element{}, opts: opts}
}

func newUUID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Create stores a snapshot of table and its predictions and returns a new
// session id. The table is copied; later changes by the caller are not seen.
func (s *Store) Create(ctx context.Context, table data.Table, preds []scoring.Prediction) (string, error) {
	if len(preds) != len(table.Rows) {
		return "", fmt.Errorf("%w: %d predictions, %d rows", ErrMismatch, len(preds), len(table.Rows))
	}
	csv, err := data.EncodeCSV(table)
	if err != nil {
		return "", fmt.Errorf("serialize table: %w", err)
	}
	sess := &session{
		table:       table.Clone(),
		predictions: append([]scoring.Prediction(nil), preds...),
		csv:         csv,
	}
	for _, p := range preds {
		if p.Fraud() {
			sess.fraudCount++
		}
	}
	sess.normalCount = len(preds) - sess.fraudCount

	b := retry.WithMaxRetries(maxIDAttempts-1, retry.NewConstant(time.Millisecond))
	err = retry.Do(ctx, b, func(ctx context.Context) error {
		id, err := s.opts.NewID()
		if err != nil {
			return retry.RetryableError(err)
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		now := s.opts.Now()
		s.expireLocked(now)
		if _, taken := s.index[id]; taken {
			return retry.RetryableError(ErrIDCollision)
		}
		sess.id = id
		sess.createdAt, sess.lastAccess = now, now
		s.index[id] = s.order.PushFront(sess)
		s.evictLocked()
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("allocate session id: %w", err)
	}
	return sess.id, nil
}

// GetPage returns rows [(page-1)*pageSize, page*pageSize) clipped to the
// table. A page outside the table yields no rows but full metadata.
// pageSize <= 0 uses the store default.
func (s *Store) GetPage(id string, page, pageSize int) (Page, error) {
	if pageSize <= 0 {
		pageSize = s.opts.PageSize
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.lookupLocked(id)
	if !ok {
		return Page{}, ErrSessionNotFound
	}

	total := len(sess.table.Rows)
	p := Page{
		ID:          id,
		Header:      append([]string(nil), sess.table.Header...),
		Rows:        [][]string{},
		Page:        page,
		PageSize:    pageSize,
		TotalPages:  pageCount(total, pageSize),
		TotalRows:   total,
		FraudCount:  sess.fraudCount,
		NormalCount: sess.normalCount,
		CSV:         sess.csv,
	}
	if page < 1 || page > p.TotalPages {
		return p, nil
	}
	start := (page - 1) * pageSize
	end := min(start+pageSize, total)
	for i := start; i < end; i++ {
		p.Rows = append(p.Rows, append([]string(nil), sess.table.Rows[i]...))
	}
	return p, nil
}

func pageCount(total, pageSize int) int {
	n := total / pageSize
	if total%pageSize != 0 {
		n++
	}
	return n
}

// GetRowPrediction returns the prediction for a zero-based row index.
func (s *Store) GetRowPrediction(id string, row int) (scoring.Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.lookupLocked(id)
	if !ok {
		return scoring.Prediction{}, ErrSessionNotFound
	}
	if row < 0 || row >= len(sess.predictions) {
		return scoring.Prediction{}, ErrRowNotFound
	}
	return sess.predictions[row], nil
}

// Summary returns the aggregates of a session without copying rows.
func (s *Store) Summary(id string) (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.lookupLocked(id)
	if !ok {
		return Summary{}, ErrSessionNotFound
	}
	return Summary{
		TotalRows:   len(sess.table.Rows),
		FraudCount:  sess.fraudCount,
		NormalCount: sess.normalCount,
	}, nil
}

// Len is the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(s.opts.Now())
	return s.order.Len()
}

func (s *Store) lookupLocked(id string) (*session, bool) {
	now := s.opts.Now()
	s.expireLocked(now)
	el, ok := s.index[id]
	if !ok {
		return nil, false
	}
	sess := el.Value.(*session)
	sess.lastAccess = now
	s.order.MoveToFront(el)
	return sess, true
}

// expireLocked drops sessions idle for at least TTL. The list back is the
// least recently accessed, so it stops at the first live one.
func (s *Store) expireLocked(now time.Time) {
	if s.opts.TTL <= 0 {
		return
	}
	for el := s.order.Back(); el != nil; el = s.order.Back() {
		if now.Sub(el.Value.(*session).lastAccess) < s.opts.TTL {
			return
		}
		s.removeLocked(el)
	}
}

func (s *Store) evictLocked() {
	if s.opts.MaxSessions <= 0 {
		return
	}
	for s.order.Len() > s.opts.MaxSessions {
		s.removeLocked(s.order.Back())
	}
}

func (s *Store) removeLocked(el *list.Element) {
	s.order.Remove(el)
	delete(s.index, el.Value.(*session).id)
}
