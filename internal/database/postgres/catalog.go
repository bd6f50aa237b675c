package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/PackOpener_Go/internal/domain"
)

// CatalogRepository implements repository.Catalog and repository.Pricer for PostgreSQL
type CatalogRepository struct {
	db *pgxpool.Pool
}

// NewCatalogRepository creates a new CatalogRepository
func NewCatalogRepository(db *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// GetUser returns the user or nil when it does not exist. Malformed ids are treated as unknown.
func (r *CatalogRepository) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	id, err := parseUserUUID(userID)
	if err != nil {
		return nil, nil
	}

	var user domain.User
	err = r.db.QueryRow(ctx,
		`SELECT user_id::text, username, created_at FROM users WHERE user_id = $1`, id,
	).Scan(&user.ID, &user.Username, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetUser, err)
	}
	return &user, nil
}

// GetPack returns the pack spec or nil when it does not exist
func (r *CatalogRepository) GetPack(ctx context.Context, packID int64) (*domain.PackSpec, error) {
	var p domain.PackSpec
	err := r.db.QueryRow(ctx, `
		SELECT pack_id, set_id, pack_name, cards_per_pack, guaranteed_rares, guaranteed_holos
		FROM packs WHERE pack_id = $1`, packID,
	).Scan(&p.ID, &p.SetID, &p.Name, &p.CardsPerPack, &p.GuaranteedRares, &p.GuaranteedHolos)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetPack, err)
	}
	return &p, nil
}

// GetBox returns the box spec or nil when it does not exist
func (r *CatalogRepository) GetBox(ctx context.Context, boxID int64) (*domain.BoxSpec, error) {
	var b domain.BoxSpec
	err := r.db.QueryRow(ctx,
		`SELECT box_id, box_name, pack_id, packs_per_box FROM boxes WHERE box_id = $1`, boxID,
	).Scan(&b.ID, &b.Name, &b.PackID, &b.PacksPerBox)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetBox, err)
	}
	return &b, nil
}

// GetCardSet returns the set with its rarity weights or nil when it does not exist
func (r *CatalogRepository) GetCardSet(ctx context.Context, setID int64) (*domain.CardSet, error) {
	var (
		set     domain.CardSet
		status  string
		weights []byte
	)
	err := r.db.QueryRow(ctx, `
		SELECT set_id, set_name, status, rarity_weights, non_repeating
		FROM card_sets WHERE set_id = $1`, setID,
	).Scan(&set.ID, &set.Name, &status, &weights, &set.NonRepeating)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetCardSet, err)
	}

	set.Status = domain.SetStatus(status)
	if err := json.Unmarshal(weights, &set.RarityWeights); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToDecodeWeights, err)
	}
	return &set, nil
}

// ListCardsBySet returns the cards of a set ordered by card id
func (r *CatalogRepository) ListCardsBySet(ctx context.Context, setID int64) ([]domain.Card, error) {
	rows, err := r.db.Query(ctx, `
		SELECT card_id, set_id, card_name, rarity, is_holo
		FROM cards WHERE set_id = $1 ORDER BY card_id`, setID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListCards, err)
	}
	defer rows.Close()

	var cards []domain.Card
	for rows.Next() {
		var (
			c      domain.Card
			rarity string
		)
		if err := rows.Scan(&c.ID, &c.SetID, &c.Name, &rarity, &c.IsHolo); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToScanRow, err)
		}
		c.Rarity = domain.CardRarity(rarity)
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToIterateRows, err)
	}
	return cards, nil
}

// ListPacksBySet returns every pack printed from a set
func (r *CatalogRepository) ListPacksBySet(ctx context.Context, setID int64) ([]domain.PackSpec, error) {
	rows, err := r.db.Query(ctx, `
		SELECT pack_id, set_id, pack_name, cards_per_pack, guaranteed_rares, guaranteed_holos
		FROM packs WHERE set_id = $1 ORDER BY pack_id`, setID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListPacks, err)
	}

	packs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PackSpec, error) {
		var p domain.PackSpec
		err := row.Scan(&p.ID, &p.SetID, &p.Name, &p.CardsPerPack, &p.GuaranteedRares, &p.GuaranteedHolos)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListPacks, err)
	}
	return packs, nil
}

// UpdateCardSetStatus moves a set through its lifecycle
func (r *CatalogRepository) UpdateCardSetStatus(ctx context.Context, setID int64, status domain.SetStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE card_sets SET status = $2 WHERE set_id = $1`, setID, string(status))
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToUpdateSet, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", domain.ErrSetNotFound, setID)
	}
	return nil
}

// CurrentValues returns the catalog value of each known card. Unknown ids are omitted.
func (r *CatalogRepository) CurrentValues(ctx context.Context, cardIDs []int64) (map[int64]int64, error) {
	values := make(map[int64]int64, len(cardIDs))
	if len(cardIDs) == 0 {
		return values, nil
	}

	rows, err := r.db.Query(ctx, `SELECT card_id, current_value FROM cards WHERE card_id = ANY($1)`, cardIDs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetPrices, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, value int64
		if err := rows.Scan(&id, &value); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToScanRow, err)
		}
		values[id] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToIterateRows, err)
	}
	return values, nil
}
