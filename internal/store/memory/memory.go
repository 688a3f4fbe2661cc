// Package memory implements the domain store interfaces with in-process
// maps. It backs the demo mode and the engine test suites; deployments use
// the Postgres store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/truthmarkets/marketd/internal/domain"
)

type key struct {
	marketID uint64
	addr     domain.Address
}

// state is one committed snapshot of the whole store.
type state struct {
	markets   map[uint64]domain.Market
	positions map[key]domain.Position
	providers map[key]domain.LiquidityProvider
	count     uint64
}

func newState() *state {
	return &state{
		markets:   make(map[uint64]domain.Market),
		positions: make(map[key]domain.Position),
		providers: make(map[key]domain.LiquidityProvider),
	}
}

func (st *state) clone() *state {
	c := &state{
		markets:   make(map[uint64]domain.Market, len(st.markets)),
		positions: make(map[key]domain.Position, len(st.positions)),
		providers: make(map[key]domain.LiquidityProvider, len(st.providers)),
		count:     st.count,
	}
	for id, m := range st.markets {
		c.markets[id] = m.Clone()
	}
	for k, p := range st.positions {
		c.positions[k] = p.Clone()
	}
	for k, lp := range st.providers {
		c.providers[k] = lp.Clone()
	}
	return c
}

// Store is a mutex-guarded in-memory domain.Store. WithinTx runs against a
// deep copy of the committed state and swaps it in only on success, so a
// failed operation leaves no partial writes.
type Store struct {
	mu sync.Mutex
	st *state
}

// New creates an empty Store.
func New() *Store {
	return &Store{st: newState()}
}

func (s *Store) Markets() domain.MarketStore              { return (*marketStore)(s) }
func (s *Store) Positions() domain.PositionStore          { return (*positionStore)(s) }
func (s *Store) Providers() domain.LiquidityProviderStore { return (*providerStore)(s) }
func (s *Store) Counter() domain.CounterStore             { return (*counterStore)(s) }

// WithinTx serializes all mutations behind the store mutex, which is also
// the at-most-one in-flight mutation guarantee of this backend.
func (s *Store) WithinTx(_ context.Context, fn func(domain.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &txStore{st: s.st.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	s.st = tx.st
	return nil
}

// view returns the committed state under the lock for read paths.
func (s *Store) view() (*state, func()) {
	s.mu.Lock()
	return s.st, s.mu.Unlock
}

// txStore is the uncommitted view handed to WithinTx callbacks. It runs on
// the calling goroutine under the store lock, so its accessors do not lock.
type txStore struct {
	st *state
}

func (t *txStore) Markets() domain.MarketStore              { return &txMarketStore{t.st} }
func (t *txStore) Positions() domain.PositionStore          { return &txPositionStore{t.st} }
func (t *txStore) Providers() domain.LiquidityProviderStore { return &txProviderStore{t.st} }
func (t *txStore) Counter() domain.CounterStore             { return &txCounterStore{t.st} }

func (t *txStore) WithinTx(_ context.Context, fn func(domain.Store) error) error {
	return fn(t)
}

// --- state-level operations, shared by the committed and tx views ---

func (st *state) createMarket(m domain.Market) error {
	if _, ok := st.markets[m.ID]; ok {
		return fmt.Errorf("memory: market %d: already exists", m.ID)
	}
	st.markets[m.ID] = m.Clone()
	return nil
}

func (st *state) getMarket(id uint64) (domain.Market, error) {
	m, ok := st.markets[id]
	if !ok {
		return domain.Market{}, fmt.Errorf("memory: market %d: %w", id, domain.ErrNotFound)
	}
	return m.Clone(), nil
}

func (st *state) updateMarket(m domain.Market) error {
	if _, ok := st.markets[m.ID]; !ok {
		return fmt.Errorf("memory: market %d: %w", m.ID, domain.ErrNotFound)
	}
	st.markets[m.ID] = m.Clone()
	return nil
}

func (st *state) listMarkets(opts domain.ListOpts) []domain.Market {
	ids := make([]uint64, 0, len(st.markets))
	for id := range st.markets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]domain.Market, 0, len(ids))
	for i, id := range ids {
		if opts.Offset > 0 && i < opts.Offset {
			continue
		}
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
		out = append(out, st.markets[id].Clone())
	}
	return out
}

func (st *state) getPosition(marketID uint64, holder domain.Address) (domain.Position, error) {
	p, ok := st.positions[key{marketID, holder}]
	if !ok {
		return domain.Position{}, fmt.Errorf("memory: position %d/%s: %w", marketID, holder, domain.ErrNotFound)
	}
	return p.Clone(), nil
}

func (st *state) upsertPosition(p domain.Position) {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	st.positions[key{p.MarketID, p.Holder}] = p.Clone()
}

func (st *state) listPositions(marketID uint64) []domain.Position {
	var out []domain.Position
	for k, p := range st.positions {
		if k.marketID == marketID {
			out = append(out, p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Holder < out[j].Holder })
	return out
}

func (st *state) getProvider(marketID uint64, provider domain.Address) (domain.LiquidityProvider, error) {
	lp, ok := st.providers[key{marketID, provider}]
	if !ok {
		return domain.LiquidityProvider{}, fmt.Errorf("memory: provider %d/%s: %w", marketID, provider, domain.ErrNotFound)
	}
	return lp.Clone(), nil
}

func (st *state) upsertProvider(lp domain.LiquidityProvider) {
	if lp.UpdatedAt.IsZero() {
		lp.UpdatedAt = time.Now().UTC()
	}
	st.providers[key{lp.MarketID, lp.Provider}] = lp.Clone()
}

func (st *state) listProviders(marketID uint64) []domain.LiquidityProvider {
	var out []domain.LiquidityProvider
	for k, lp := range st.providers {
		if k.marketID == marketID {
			out = append(out, lp.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Provider < out[j].Provider })
	return out
}

// --- committed-state adapters (lock per call) ---

type marketStore Store

func (s *marketStore) Create(_ context.Context, m domain.Market) error {
	st, unlock := (*Store)(s).view()
	defer unlock()
	return st.createMarket(m)
}

func (s *marketStore) Get(_ context.Context, id uint64) (domain.Market, error) {
	st, unlock := (*Store)(s).view()
	defer unlock()
	return st.getMarket(id)
}

func (s *marketStore) Update(_ context.Context, m domain.Market) error {
	st, unlock := (*Store)(s).view()
	defer unlock()
	return st.updateMarket(m)
}

func (s *marketStore) List(_ context.Context, opts domain.ListOpts) ([]domain.Market, error) {
	st, unlock := (*Store)(s).view()
	defer unlock()
	return st.listMarkets(opts), nil
}

type positionStore Store

func (s *positionStore) Get(_ context.Context, marketID uint64, holder domain.Address) (domain.Position, error) {
	st, unlock := (*Store)(s).view()
	defer unlock()
	return st.getPosition(marketID, holder)
}

func (s *positionStore) Upsert(_ context.Context, p domain.Position) error {
	st, unlock := (*Store)(s).view()
	defer unlock()
	st.upsertPosition(p)
	return nil
}

func (s *positionStore) ListByMarket(_ context.Context, marketID uint64) ([]domain.Position, error) {
	st, unlock := (*Store)(s).view()
	defer unlock()
	return st.listPositions(marketID), nil
}

type providerStore Store

func (s *providerStore) Get(_ context.Context, marketID uint64, provider domain.Address) (domain.LiquidityProvider, error) {
	st, unlock := (*Store)(s).view()
	defer unlock()
	return st.getProvider(marketID, provider)
}

func (s *providerStore) Upsert(_ context.Context, lp domain.LiquidityProvider) error {
	st, unlock := (*Store)(s).view()
	defer unlock()
	st.upsertProvider(lp)
	return nil
}

func (s *providerStore) ListByMarket(_ context.Context, marketID uint64) ([]domain.LiquidityProvider, error) {
	st, unlock := (*Store)(s).view()
	defer unlock()
	return st.listProviders(marketID), nil
}

type counterStore Store

func (s *counterStore) Next(_ context.Context) (uint64, error) {
	st, unlock := (*Store)(s).view()
	defer unlock()
	st.count++
	return st.count, nil
}

func (s *counterStore) Current(_ context.Context) (uint64, error) {
	st, unlock := (*Store)(s).view()
	defer unlock()
	return st.count, nil
}

// --- tx adapters (no locking; the tx owns the lock) ---

type txMarketStore struct{ st *state }

func (s *txMarketStore) Create(_ context.Context, m domain.Market) error { return s.st.createMarket(m) }
func (s *txMarketStore) Get(_ context.Context, id uint64) (domain.Market, error) {
	return s.st.getMarket(id)
}
func (s *txMarketStore) Update(_ context.Context, m domain.Market) error { return s.st.updateMarket(m) }
func (s *txMarketStore) List(_ context.Context, opts domain.ListOpts) ([]domain.Market, error) {
	return s.st.listMarkets(opts), nil
}

type txPositionStore struct{ st *state }

func (s *txPositionStore) Get(_ context.Context, marketID uint64, holder domain.Address) (domain.Position, error) {
	return s.st.getPosition(marketID, holder)
}
func (s *txPositionStore) Upsert(_ context.Context, p domain.Position) error {
	s.st.upsertPosition(p)
	return nil
}
func (s *txPositionStore) ListByMarket(_ context.Context, marketID uint64) ([]domain.Position, error) {
	return s.st.listPositions(marketID), nil
}

type txProviderStore struct{ st *state }

func (s *txProviderStore) Get(_ context.Context, marketID uint64, provider domain.Address) (domain.LiquidityProvider, error) {
	return s.st.getProvider(marketID, provider)
}
func (s *txProviderStore) Upsert(_ context.Context, lp domain.LiquidityProvider) error {
	s.st.upsertProvider(lp)
	return nil
}
func (s *txProviderStore) ListByMarket(_ context.Context, marketID uint64) ([]domain.LiquidityProvider, error) {
	return s.st.listProviders(marketID), nil
}

type txCounterStore struct{ st *state }

func (s *txCounterStore) Next(_ context.Context) (uint64, error) {
	s.st.count++
	return s.st.count, nil
}
func (s *txCounterStore) Current(_ context.Context) (uint64, error) {
	return s.st.count, nil
}
