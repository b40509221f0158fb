package storage

import (
	"context"
	"fmt"
	"sync"

	models "github.com/fatflowers/pledge/internal/models"

	"github.com/samber/lo"
)

// Memory keeps all records in process. Records are cloned on the way in and out,
// so callers never share pointers with the tables.
type Memory struct {
	mu    sync.RWMutex
	subs  map[string]*models.Subscription
	order []string
	txns  []*models.Transaction
	logs  []*models.SubscriptionLog
}

func NewMemory() *Memory {
	return &Memory{subs: make(map[string]*models.Subscription)}
}

func (m *Memory) Subscriptions() SubscriptionTable { return memorySubscriptions{m: m} }

func (m *Memory) Transactions() TransactionTable { return memoryTransactions{m: m} }

func (m *Memory) SubscriptionLogs() SubscriptionLogTable { return memoryLogs{m: m} }

// InTx holds the write lock for the whole callback and stages writes until fn succeeds.
func (m *Memory) InTx(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memoryTx{m: m, subs: make(map[string]*models.Subscription)}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("memory tx aborted: %w", err)
	}
	tx.commit()
	return nil
}

// The unlocked helpers below require m.mu to be held by the caller.

func (m *Memory) getLocked(donorID string) (*models.Subscription, bool) {
	s, ok := m.subs[donorID]
	return s, ok
}

func (m *Memory) putLocked(sub *models.Subscription) {
	if _, ok := m.subs[sub.DonorID]; !ok {
		m.order = append(m.order, sub.DonorID)
	}
	m.subs[sub.DonorID] = sub
}

func (m *Memory) listLocked() []*models.Subscription {
	out := make([]*models.Subscription, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.subs[id])
	}
	return out
}

func filterTransactions(txns []*models.Transaction, f TransactionFilter) []*models.Transaction {
	var ids map[string]struct{}
	if f.SubscriptionIDs != nil {
		ids = lo.SliceToMap(f.SubscriptionIDs, func(id string) (string, struct{}) { return id, struct{}{} })
	}
	out := make([]*models.Transaction, 0)
	for _, t := range txns {
		if ids != nil {
			if _, ok := ids[t.SubscriptionID]; !ok {
				continue
			}
		}
		if f.DonorID != "" && t.DonorID != f.DonorID {
			continue
		}
		out = append(out, t.Clone())
	}
	return out
}

func filterLogs(logs []*models.SubscriptionLog, donorID string) []*models.SubscriptionLog {
	out := make([]*models.SubscriptionLog, 0)
	for _, l := range logs {
		if l.DonorID == donorID {
			out = append(out, l.Clone())
		}
	}
	return out
}

type memorySubscriptions struct{ m *Memory }

func (s memorySubscriptions) Get(_ context.Context, donorID string) (*models.Subscription, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	sub, ok := s.m.getLocked(donorID)
	if !ok {
		return nil, ErrNotFound
	}
	return sub.Clone(), nil
}

func (s memorySubscriptions) Insert(_ context.Context, sub *models.Subscription) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.getLocked(sub.DonorID); ok {
		return ErrDuplicate
	}
	s.m.putLocked(sub.Clone())
	return nil
}

func (s memorySubscriptions) Update(_ context.Context, sub *models.Subscription) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.getLocked(sub.DonorID); !ok {
		return ErrNotFound
	}
	s.m.putLocked(sub.Clone())
	return nil
}

func (s memorySubscriptions) List(_ context.Context) ([]*models.Subscription, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	return lo.Map(s.m.listLocked(), func(it *models.Subscription, _ int) *models.Subscription { return it.Clone() }), nil
}

type memoryTransactions struct{ m *Memory }

func (t memoryTransactions) Append(_ context.Context, txn *models.Transaction) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	t.m.txns = append(t.m.txns, txn.Clone())
	return nil
}

func (t memoryTransactions) List(_ context.Context, f TransactionFilter) ([]*models.Transaction, error) {
	t.m.mu.RLock()
	defer t.m.mu.RUnlock()
	return filterTransactions(t.m.txns, f), nil
}

type memoryLogs struct{ m *Memory }

func (l memoryLogs) Append(_ context.Context, entry *models.SubscriptionLog) error {
	l.m.mu.Lock()
	defer l.m.mu.Unlock()
	l.m.logs = append(l.m.logs, entry.Clone())
	return nil
}

func (l memoryLogs) List(_ context.Context, donorID string) ([]*models.SubscriptionLog, error) {
	l.m.mu.RLock()
	defer l.m.mu.RUnlock()
	return filterLogs(l.m.logs, donorID), nil
}

// memoryTx reads through its staged writes to the committed state.
type memoryTx struct {
	m        *Memory
	subs     map[string]*models.Subscription
	subOrder []string
	txns     []*models.Transaction
	logs     []*models.SubscriptionLog
}

func (tx *memoryTx) Subscriptions() SubscriptionTable { return txSubscriptions{tx: tx} }

func (tx *memoryTx) Transactions() TransactionTable { return txTransactions{tx: tx} }

func (tx *memoryTx) SubscriptionLogs() SubscriptionLogTable { return txLogs{tx: tx} }

func (tx *memoryTx) lookup(donorID string) (*models.Subscription, bool) {
	if s, ok := tx.subs[donorID]; ok {
		return s, true
	}
	return tx.m.getLocked(donorID)
}

func (tx *memoryTx) stage(sub *models.Subscription) {
	if _, ok := tx.subs[sub.DonorID]; !ok {
		tx.subOrder = append(tx.subOrder, sub.DonorID)
	}
	tx.subs[sub.DonorID] = sub.Clone()
}

func (tx *memoryTx) commit() {
	for _, id := range tx.subOrder {
		tx.m.putLocked(tx.subs[id])
	}
	tx.m.txns = append(tx.m.txns, tx.txns...)
	tx.m.logs = append(tx.m.logs, tx.logs...)
}

type txSubscriptions struct{ tx *memoryTx }

func (s txSubscriptions) Get(_ context.Context, donorID string) (*models.Subscription, error) {
	sub, ok := s.tx.lookup(donorID)
	if !ok {
		return nil, ErrNotFound
	}
	return sub.Clone(), nil
}

func (s txSubscriptions) Insert(_ context.Context, sub *models.Subscription) error {
	if _, ok := s.tx.lookup(sub.DonorID); ok {
		return ErrDuplicate
	}
	s.tx.stage(sub)
	return nil
}

func (s txSubscriptions) Update(_ context.Context, sub *models.Subscription) error {
	if _, ok := s.tx.lookup(sub.DonorID); !ok {
		return ErrNotFound
	}
	s.tx.stage(sub)
	return nil
}

func (s txSubscriptions) List(_ context.Context) ([]*models.Subscription, error) {
	out := make([]*models.Subscription, 0, len(s.tx.m.order)+len(s.tx.subOrder))
	for _, id := range s.tx.m.order {
		sub, _ := s.tx.lookup(id)
		out = append(out, sub.Clone())
	}
	for _, id := range s.tx.subOrder {
		if _, committed := s.tx.m.getLocked(id); !committed {
			out = append(out, s.tx.subs[id].Clone())
		}
	}
	return out, nil
}

type txTransactions struct{ tx *memoryTx }

func (t txTransactions) Append(_ context.Context, txn *models.Transaction) error {
	t.tx.txns = append(t.tx.txns, txn.Clone())
	return nil
}

func (t txTransactions) List(_ context.Context, f TransactionFilter) ([]*models.Transaction, error) {
	all := make([]*models.Transaction, 0, len(t.tx.m.txns)+len(t.tx.txns))
	all = append(all, t.tx.m.txns...)
	all = append(all, t.tx.txns...)
	return filterTransactions(all, f), nil
}

type txLogs struct{ tx *memoryTx }

func (l txLogs) Append(_ context.Context, entry *models.SubscriptionLog) error {
	l.tx.logs = append(l.tx.logs, entry.Clone())
	return nil
}

func (l txLogs) List(_ context.Context, donorID string) ([]*models.SubscriptionLog, error) {
	all := make([]*models.SubscriptionLog, 0, len(l.tx.m.logs)+len(l.tx.logs))
	all = append(all, l.tx.m.logs...)
	all = append(all, l.tx.logs...)
	return filterLogs(all, donorID), nil
}
