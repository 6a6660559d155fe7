// internal/repository/memory/store.go
//
// Package memory is an in-process implementation of the repositories used by
// the service tests. Transactions snapshot the whole store and restore it on
// rollback; only one transaction runs at a time.
package memory

import (
	"context"
	"sync"
	"time"

	"edman-service/internal/domain/catalog"
	"edman-service/internal/domain/commission"
	"edman-service/internal/domain/lead"
	"edman-service/internal/domain/payout"
	"edman-service/internal/domain/user"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
)

type tables struct {
	users       map[string]user.User
	centers     map[string]catalog.Center
	courses     map[string]catalog.Course
	leads       map[string]lead.Lead
	commissions map[string]commission.Commission
	payouts     map[string]payout.Payout
}

func (t tables) clone() tables {
	return tables{
		users:       cloneMap(t.users),
		centers:     cloneMap(t.centers),
		courses:     cloneMap(t.courses),
		leads:       cloneMap(t.leads),
		commissions: cloneMap(t.commissions),
		payouts:     cloneMap(t.payouts),
	}
}

func cloneMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	data tables
	tick int64
}

func NewStore() *Store {
	return &Store{data: tables{
		users:       map[string]user.User{},
		centers:     map[string]catalog.Center{},
		courses:     map[string]catalog.Course{},
		leads:       map[string]lead.Lead{},
		commissions: map[string]commission.Commission{},
		payouts:     map[string]payout.Payout{},
	}}
}

// now returns strictly increasing timestamps so newest-first ordering is
// deterministic. Callers hold s.mu.
func (s *Store) now() time.Time {
	s.tick++
	return time.Now().Add(time.Duration(s.tick) * time.Millisecond)
}

func newID() string {
	return ulid.Make().String()
}

// BeginTx starts a transaction. It blocks while another one is open.
func (s *Store) BeginTx(ctx context.Context) (pgx.Tx, error) {
	s.txMu.Lock()
	s.mu.Lock()
	snap := s.data.clone()
	s.mu.Unlock()
	return &tx{store: s, snapshot: snap}, nil
}

// tx implements the parts of pgx.Tx the services call.
type tx struct {
	pgx.Tx
	store    *Store
	snapshot tables
	done     bool
}

func (t *tx) Commit(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.store.txMu.Unlock()
	return nil
}

func (t *tx) Rollback(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.store.mu.Lock()
	t.store.data = t.snapshot
	t.store.mu.Unlock()
	t.store.txMu.Unlock()
	return nil
}

func (s *Store) Users() *UserRepository             { return &UserRepository{s} }
func (s *Store) Centers() *CenterRepository         { return &CenterRepository{s} }
func (s *Store) Courses() *CourseRepository         { return &CourseRepository{s} }
func (s *Store) Leads() *LeadRepository             { return &LeadRepository{s} }
func (s *Store) Commissions() *CommissionRepository { return &CommissionRepository{s} }
func (s *Store) Payouts() *PayoutRepository         { return &PayoutRepository{s} }
