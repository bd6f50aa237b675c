package opening

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/osse101/PackOpener_Go/internal/composer"
	"github.com/osse101/PackOpener_Go/internal/domain"
	"github.com/osse101/PackOpener_Go/internal/event"
	"github.com/osse101/PackOpener_Go/internal/ledger"
	"github.com/osse101/PackOpener_Go/internal/logger"
	"github.com/osse101/PackOpener_Go/internal/metrics"
	"github.com/osse101/PackOpener_Go/internal/raritytable"
	"github.com/osse101/PackOpener_Go/internal/repository"
)

// Service opens packs and boxes for users. Each call is idempotent on (userID, requestID).
type Service interface {
	OpenPack(ctx context.Context, userID string, packID int64, requestID string) (*domain.PackOpeningResult, error)
	OpenBox(ctx context.Context, userID string, boxID int64, requestID string) (*domain.BoxOpeningResult, error)
}

type service struct {
	catalog        repository.Catalog
	stock          repository.Stock
	tables         raritytable.Service
	composer       *composer.Composer
	ledger         ledger.Service
	bus            event.Bus
	releaseTimeout time.Duration
}

// NewService creates the opening orchestrator. A non-positive releaseTimeout uses DefaultReleaseTimeout.
func NewService(
	catalog repository.Catalog,
	stock repository.Stock,
	tables raritytable.Service,
	comp *composer.Composer,
	ledgerSvc ledger.Service,
	bus event.Bus,
	releaseTimeout time.Duration,
) Service {
	if releaseTimeout <= 0 {
		releaseTimeout = DefaultReleaseTimeout
	}
	return &service{
		catalog:        catalog,
		stock:          stock,
		tables:         tables,
		composer:       comp,
		ledger:         ledgerSvc,
		bus:            bus,
		releaseTimeout: releaseTimeout,
	}
}

// request identifies one open call.
type request struct {
	kind      domain.ProductKind
	userID    string
	targetID  int64
	requestID string
}

// plan is everything loaded before stock is touched.
type plan struct {
	pack  domain.PackSpec
	box   *domain.BoxSpec
	table *raritytable.Table
}

func (s *service) OpenPack(ctx context.Context, userID string, packID int64, requestID string) (*domain.PackOpeningResult, error) {
	record, err := s.open(ctx, request{kind: domain.ProductPack, userID: userID, targetID: packID, requestID: requestID})
	if err != nil {
		return nil, err
	}
	return record.Pack, nil
}

func (s *service) OpenBox(ctx context.Context, userID string, boxID int64, requestID string) (*domain.BoxOpeningResult, error) {
	record, err := s.open(ctx, request{kind: domain.ProductBox, userID: userID, targetID: boxID, requestID: requestID})
	if err != nil {
		return nil, err
	}
	return record.Box, nil
}

func (s *service) open(ctx context.Context, req request) (record *domain.CommittedOpening, err error) {
	start := time.Now()
	kind := string(req.kind)
	log := logger.FromContext(ctx).With(
		LogFieldUserID, req.userID,
		LogFieldRequestID, req.requestID,
		LogFieldKind, req.kind,
		LogFieldTargetID, req.targetID,
	)

	defer func() {
		metrics.OpeningDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
		switch {
		case err != nil:
			metrics.OpeningsTotal.WithLabelValues(kind, outcomeOf(err)).Inc()
			log.Warn(LogMsgOpeningFailed, LogFieldError, err)
		case record.Replayed:
			metrics.OpeningsTotal.WithLabelValues(kind, metrics.OutcomeReplayed).Inc()
			metrics.Replays.WithLabelValues(kind).Inc()
		default:
			metrics.OpeningsTotal.WithLabelValues(kind, metrics.OutcomeSuccess).Inc()
		}
	}()

	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// A committed request never reserves stock again.
	existing, err := s.ledger.Lookup(ctx, req.userID, req.requestID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if !existing.Matches(req.kind, req.targetID) {
			return nil, fmt.Errorf("%w (request %q was used for %s %d)",
				domain.ErrRequestIDReused, req.requestID, existing.Kind, existing.TargetID)
		}
		log.Info(LogMsgOpeningReplayed)
		return existing, nil
	}

	p, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	f := newFlow()
	token, err := s.stock.ReserveStock(ctx, req.kind, req.targetID, 1)
	if err != nil {
		_ = f.advance(StateFailed)
		return nil, reserveErr(err)
	}
	if err := f.advance(StateStockReserved); err != nil {
		return nil, domain.Internal(ErrContextIllegalTransition, err)
	}
	log = log.With(LogFieldReservationID, token.ID)

	opening, err := s.compose(ctx, req, p)
	if err != nil {
		s.compensate(ctx, log, f, req, token, releaseReason(err, ReasonDrawFailed))
		return nil, err
	}
	if err := f.advance(StateDrawn); err != nil {
		s.compensate(ctx, log, f, req, token, ReasonDrawFailed)
		return nil, domain.Internal(ErrContextIllegalTransition, err)
	}

	record, err = s.ledger.Apply(ctx, req.userID, req.requestID, opening)
	if err != nil {
		s.compensate(ctx, log, f, req, token, releaseReason(err, ReasonApplyFailed))
		return nil, err
	}
	if record.Replayed {
		// Lost the race to a concurrent call with the same request id.
		log.Info(LogMsgDuplicateDetected)
		s.compensate(ctx, log, f, req, token, ReasonDuplicate)
		return record, nil
	}
	if err := f.advance(StateApplied); err != nil {
		return nil, domain.Internal(ErrContextIllegalTransition, err)
	}

	for _, card := range opening.Cards() {
		metrics.CardsDrawn.WithLabelValues(string(card.Rarity)).Inc()
	}
	if err := s.bus.Publish(ctx, event.NewOpeningCompletedEvent(record, opening)); err != nil {
		log.Error(LogMsgPublishFailed, LogFieldError, err)
	}

	log.Info(LogMsgOpeningCompleted,
		LogFieldCards, len(opening.Cards()),
		LogFieldValue, opening.TotalValue())
	return record, nil
}

// prepare loads the user, the product and its rarity table, and checks the pack
// against the table so that no stock is reserved for an undrawable pack.
func (s *service) prepare(ctx context.Context, req request) (*plan, error) {
	user, err := s.catalog.GetUser(ctx, req.userID)
	if err != nil {
		return nil, domain.Internal(ErrContextFailedToLoadUser, err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, req.userID)
	}

	p := &plan{}
	packID := req.targetID
	if req.kind == domain.ProductBox {
		box, err := s.catalog.GetBox(ctx, req.targetID)
		if err != nil {
			return nil, domain.Internal(ErrContextFailedToLoadBox, err)
		}
		if box == nil {
			return nil, fmt.Errorf("%w: %d", domain.ErrBoxNotFound, req.targetID)
		}
		if err := box.Validate(); err != nil {
			return nil, err
		}
		p.box = box
		packID = box.PackID
	}

	pack, err := s.catalog.GetPack(ctx, packID)
	if err != nil {
		return nil, domain.Internal(ErrContextFailedToLoadPack, err)
	}
	if pack == nil {
		if p.box != nil {
			return nil, fmt.Errorf("%w: %s %d", domain.ErrPackNotFound, ErrContextBoxReferencesNoPack, packID)
		}
		return nil, fmt.Errorf("%w: %d", domain.ErrPackNotFound, packID)
	}
	p.pack = *pack

	table, err := s.tables.Table(ctx, pack.SetID)
	if err != nil {
		return nil, err
	}
	if err := table.CheckPack(p.pack); err != nil {
		return nil, err
	}
	p.table = table
	return p, nil
}

func (s *service) compose(ctx context.Context, req request, p *plan) (domain.Opening, error) {
	if req.kind == domain.ProductBox {
		box, err := s.composer.ComposeBox(ctx, req.userID, *p.box, p.pack, p.table)
		if err != nil {
			return domain.Opening{}, err
		}
		return domain.Opening{Kind: domain.ProductBox, Box: box}, nil
	}
	pack, err := s.composer.ComposePack(ctx, req.userID, p.pack, p.table)
	if err != nil {
		return domain.Opening{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.Opening{}, err
	}
	return domain.Opening{Kind: domain.ProductPack, Pack: pack}, nil
}

// compensate hands the reservation back. It runs detached from the caller's
// context so a cancelled request still releases its stock.
func (s *service) compensate(ctx context.Context, log *slog.Logger, f *flow, req request, token domain.ReservationToken, reason string) {
	if err := f.advance(StateReleased); err != nil {
		log.Error(LogMsgReleaseFailed, LogFieldState, f.Current(), LogFieldError, err)
		return
	}

	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.releaseTimeout)
	defer cancel()

	if err := s.stock.ReleaseStock(releaseCtx, token); err != nil {
		log.Error(LogMsgReleaseFailed, LogFieldReason, reason, LogFieldError, err)
	} else {
		log.Info(LogMsgStockReleased, LogFieldReason, reason)
	}

	if reason != ReasonDuplicate {
		_ = f.advance(StateFailed)
	}
	if err := s.bus.Publish(releaseCtx, event.NewStockReleasedEvent(req.userID, req.requestID, token, reason)); err != nil {
		log.Error(LogMsgPublishFailed, LogFieldError, err)
	}
}

func validateRequest(req request) error {
	if req.userID == "" {
		return fmt.Errorf("%w: user_id is required", domain.ErrInvalidRequest)
	}
	if req.requestID == "" {
		return fmt.Errorf("%w: request_id is required", domain.ErrInvalidRequest)
	}
	if req.targetID <= 0 {
		return fmt.Errorf("%w: %s id must be positive", domain.ErrInvalidRequest, req.kind)
	}
	return nil
}

func reserveErr(err error) error {
	if errors.Is(err, domain.ErrConflict) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return domain.Internal(ErrContextFailedToReserve, err)
}

func releaseReason(err error, fallback string) string {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ReasonCancelled
	}
	return fallback
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, domain.ErrConflict):
		return metrics.OutcomeConflict
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrNotFound):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeFailed
	}
}
