package composer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/PackOpener_Go/internal/domain"
	"github.com/osse101/PackOpener_Go/internal/draw"
	"github.com/osse101/PackOpener_Go/internal/logger"
	"github.com/osse101/PackOpener_Go/internal/raritytable"
	"github.com/osse101/PackOpener_Go/internal/repository"
)

// Composer turns draws into opening results. It never writes anything;
// the only external read is the price snapshot.
type Composer struct {
	engine *draw.Engine
	pricer repository.Pricer
	now    func() time.Time
}

// New creates a Composer.
func New(engine *draw.Engine, pricer repository.Pricer) *Composer {
	return &Composer{
		engine: engine,
		pricer: pricer,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ComposePack draws one pack and snapshots the value of every card.
func (c *Composer) ComposePack(ctx context.Context, userID string, pack domain.PackSpec, table *raritytable.Table) (*domain.PackOpeningResult, error) {
	drawn, err := c.engine.Draw(table, pack)
	if err != nil {
		return nil, fmt.Errorf("%s %d: %w", ErrContextFailedToDraw, pack.ID, err)
	}

	values, err := c.snapshot(ctx, drawn.Cards)
	if err != nil {
		return nil, err
	}

	result := c.packResult(userID, pack.ID, drawn, values)
	return &result, nil
}

// ComposeBox draws PacksPerBox packs, each from a fresh random source, and
// aggregates them. Prices are snapshotted once so every pack in the box
// sees the same catalog values.
func (c *Composer) ComposeBox(ctx context.Context, userID string, box domain.BoxSpec, pack domain.PackSpec, table *raritytable.Table) (*domain.BoxOpeningResult, error) {
	if err := box.Validate(); err != nil {
		return nil, err
	}
	if box.PackID != pack.ID {
		return nil, fmt.Errorf("%w: %s (box %d holds pack %d, got %d)",
			domain.ErrInvalidBoxSpec, ErrContextBoxPackMismatch, box.ID, box.PackID, pack.ID)
	}

	draws := make([]domain.DrawResult, 0, box.PacksPerBox)
	var all []domain.DrawnCard
	for i := 0; i < box.PacksPerBox; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		drawn, err := c.engine.Draw(table, pack)
		if err != nil {
			return nil, fmt.Errorf("%s %d (%d of %d): %w", ErrContextFailedToDraw, pack.ID, i+1, box.PacksPerBox, err)
		}
		draws = append(draws, drawn)
		all = append(all, drawn.Cards...)
	}

	values, err := c.snapshot(ctx, all)
	if err != nil {
		return nil, err
	}

	result := &domain.BoxOpeningResult{
		ID:              uuid.New(),
		UserID:          userID,
		BoxID:           box.ID,
		Packs:           make([]domain.PackOpeningResult, 0, len(draws)),
		RarityBreakdown: make(map[domain.CardRarity]int),
		OpenedAt:        c.now(),
	}
	for _, drawn := range draws {
		p := c.packResult(userID, pack.ID, drawn, values)
		p.OpenedAt = result.OpenedAt
		result.Packs = append(result.Packs, p)
		result.TotalCardsObtained += p.CardCount()
		result.TotalValue += p.TotalValue
		for rarity, n := range p.RarityBreakdown {
			result.RarityBreakdown[rarity] += n
		}
	}
	return result, nil
}

func (c *Composer) packResult(userID string, packID int64, drawn domain.DrawResult, values map[int64]int64) domain.PackOpeningResult {
	result := domain.PackOpeningResult{
		ID:              uuid.New(),
		UserID:          userID,
		PackID:          packID,
		Cards:           make([]domain.DrawnCard, len(drawn.Cards)),
		RarityBreakdown: make(map[domain.CardRarity]int),
		OpenedAt:        c.now(),
	}
	for i, card := range drawn.Cards {
		card.Value = values[card.CardID]
		result.Cards[i] = card
		result.TotalValue += card.Value
		result.RarityBreakdown[card.Rarity]++
	}
	return result
}

// snapshot reads the current value of every distinct card once.
// A drawn card without a current value fails the whole snapshot.
func (c *Composer) snapshot(ctx context.Context, cards []domain.DrawnCard) (map[int64]int64, error) {
	if len(cards) == 0 {
		return map[int64]int64{}, nil
	}

	seen := make(map[int64]struct{}, len(cards))
	ids := make([]int64, 0, len(cards))
	for _, card := range cards {
		if _, ok := seen[card.CardID]; ok {
			continue
		}
		seen[card.CardID] = struct{}{}
		ids = append(ids, card.CardID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	values, err := c.pricer.CurrentValues(ctx, ids)
	if err != nil {
		return nil, domain.Internal(ErrContextFailedToPrice, err)
	}

	var missing []int64
	for _, id := range ids {
		if _, ok := values[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		logger.FromContext(ctx).Error(LogMsgMissingPrice, LogFieldCardIDs, missing)
		return nil, domain.Internal(ErrContextFailedToPrice, fmt.Errorf("%s %v", ErrMsgMissingPrice, missing))
	}
	return values, nil
}
