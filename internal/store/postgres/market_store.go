package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/truthmarkets/marketd/internal/domain"
)

// MarketStore implements domain.MarketStore using PostgreSQL.
type MarketStore struct {
	db querier
}

const marketColumns = `
	id, creator, description,
	shares_yes::text, shares_no::text,
	total_liquidity::text, total_liquidity_shares::text,
	fees_collected::text, fee_bps,
	resolved, winning_outcome,
	price_yes::text, price_no::text,
	created_at, updated_at`

// Create inserts a new market row.
func (s *MarketStore) Create(ctx context.Context, m domain.Market) error {
	const query = `
		INSERT INTO markets (
			id, creator, description,
			shares_yes, shares_no,
			total_liquidity, total_liquidity_shares,
			fees_collected, fee_bps,
			resolved, winning_outcome,
			price_yes, price_no,
			created_at, updated_at
		) VALUES (
			$1, $2, $3,
			$4, $5,
			$6, $7,
			$8, $9,
			$10, $11,
			$12, $13,
			$14, $15
		)`

	_, err := s.db.Exec(ctx, query,
		int64(m.ID), string(m.Creator), m.Description,
		m.SharesYes.Dec(), m.SharesNo.Dec(),
		m.TotalLiquidity.Dec(), m.TotalLiquidityShares.Dec(),
		m.FeesCollected.Dec(), int32(m.FeeBps),
		m.Resolved, outcomeParam(m.WinningOutcome),
		m.PriceYes.Dec(), m.PriceNo.Dec(),
		m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: create market %d: %w", m.ID, err)
	}
	return nil
}

// Get returns a market by id.
func (s *MarketStore) Get(ctx context.Context, id uint64) (domain.Market, error) {
	const query = `SELECT ` + marketColumns + ` FROM markets WHERE id = $1`

	m, err := scanMarket(s.db.QueryRow(ctx, query, int64(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Market{}, fmt.Errorf("postgres: market %d: %w", id, domain.ErrNotFound)
		}
		return domain.Market{}, fmt.Errorf("postgres: get market %d: %w", id, err)
	}
	return m, nil
}

// Update overwrites the mutable columns of an existing market.
func (s *MarketStore) Update(ctx context.Context, m domain.Market) error {
	const query = `
		UPDATE markets SET
			shares_yes      = $2,
			shares_no       = $3,
			total_liquidity = $4,
			fees_collected  = $5,
			resolved        = $6,
			winning_outcome = $7,
			price_yes       = $8,
			price_no        = $9,
			updated_at      = $10
		WHERE id = $1`

	tag, err := s.db.Exec(ctx, query,
		int64(m.ID),
		m.SharesYes.Dec(), m.SharesNo.Dec(),
		m.TotalLiquidity.Dec(), m.FeesCollected.Dec(),
		m.Resolved, outcomeParam(m.WinningOutcome),
		m.PriceYes.Dec(), m.PriceNo.Dec(),
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: update market %d: %w", m.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres: market %d: %w", m.ID, domain.ErrNotFound)
	}
	return nil
}

// List returns markets in ascending id order.
func (s *MarketStore) List(ctx context.Context, opts domain.ListOpts) ([]domain.Market, error) {
	query := `SELECT ` + marketColumns + ` FROM markets ORDER BY id`
	args := []any{}
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list markets: %w", err)
	}
	defer rows.Close()

	var out []domain.Market
	for rows.Next() {
		m, err := scanMarket(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: list markets: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list markets: %w", err)
	}
	return out, nil
}

// scanMarket scans a single market row into a domain.Market.
func scanMarket(row pgx.Row) (domain.Market, error) {
	var (
		m        domain.Market
		id       int64
		creator  string
		feeBps   int32
		winning  *string
		amounts  [7]string
	)
	err := row.Scan(
		&id, &creator, &m.Description,
		&amounts[0], &amounts[1],
		&amounts[2], &amounts[3],
		&amounts[4], &feeBps,
		&m.Resolved, &winning,
		&amounts[5], &amounts[6],
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return domain.Market{}, err
	}

	m.ID = uint64(id)
	m.Creator = domain.Address(creator)
	m.FeeBps = uint32(feeBps)
	if winning != nil {
		o, err := domain.ParseOutcome(*winning)
		if err != nil {
			return domain.Market{}, err
		}
		m.WinningOutcome = &o
	}

	if m.SharesYes, err = parseAmount("shares_yes", amounts[0]); err != nil {
		return domain.Market{}, err
	}
	if m.SharesNo, err = parseAmount("shares_no", amounts[1]); err != nil {
		return domain.Market{}, err
	}
	if m.TotalLiquidity, err = parseAmount("total_liquidity", amounts[2]); err != nil {
		return domain.Market{}, err
	}
	if m.TotalLiquidityShares, err = parseAmount("total_liquidity_shares", amounts[3]); err != nil {
		return domain.Market{}, err
	}
	if m.FeesCollected, err = parseAmount("fees_collected", amounts[4]); err != nil {
		return domain.Market{}, err
	}
	if m.PriceYes, err = parseAmount("price_yes", amounts[5]); err != nil {
		return domain.Market{}, err
	}
	if m.PriceNo, err = parseAmount("price_no", amounts[6]); err != nil {
		return domain.Market{}, err
	}
	return m, nil
}

// outcomeParam maps an optional winning outcome to a nullable text column.
func outcomeParam(o *domain.Outcome) *string {
	if o == nil {
		return nil
	}
	s := string(*o)
	return &s
}
