package service

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/printprice/printprice/internal/api/dto"
	"github.com/printprice/printprice/internal/domain/attribute"
	"github.com/printprice/printprice/internal/domain/geozone"
	"github.com/printprice/printprice/internal/domain/modifier"
	"github.com/printprice/printprice/internal/domain/pricebook"
	"github.com/printprice/printprice/internal/domain/pricing"
	"github.com/printprice/printprice/internal/domain/product"
	"github.com/printprice/printprice/internal/domain/segment"
	"github.com/printprice/printprice/internal/types"
	webhookDto "github.com/printprice/printprice/internal/webhook/dto"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/pool"
)

// PricingService resolves prices and persists snapshots. Resolution is a
// pure computation; only CreatePriceSnapshot writes.
type PricingService interface {
	// ResolvePrice computes the full price for a request without persisting
	// anything. Safe to call for storefront price previews.
	ResolvePrice(ctx context.Context, req dto.PricingRequest) (*dto.PricingResult, error)

	// CreatePriceSnapshot resolves the price for an order and persists the
	// snapshot, its calculation logs and the promo redemptions in one
	// transaction.
	CreatePriceSnapshot(ctx context.Context, req dto.CreatePriceSnapshotRequest) (*dto.CreatePriceSnapshotResponse, error)

	GetPriceSnapshot(ctx context.Context, id string) (*dto.PriceSnapshotResponse, error)
	GetSnapshotByOrder(ctx context.Context, orderID string) (*dto.PriceSnapshotResponse, error)
	ListPriceSnapshots(ctx context.Context, filter *types.PriceSnapshotFilter) (*dto.ListPriceSnapshotsResponse, error)
	ListCalculationLogs(ctx context.Context, snapshotID string) (*dto.ListCalculationLogsResponse, error)
}

type pricingService struct {
	ServiceParams

	geoZoneService   GeoZoneService
	segmentService   UserSegmentService
	priceBookService PriceBookService
	attributeService AttributeService
}

// NewPricingService creates a new pricing service
func NewPricingService(params ServiceParams) PricingService {
	return &pricingService{
		ServiceParams:    params,
		geoZoneService:   NewGeoZoneService(params),
		segmentService:   NewUserSegmentService(params),
		priceBookService: NewPriceBookService(params),
		attributeService: NewAttributeService(params),
	}
}

// resolution carries everything one price resolution computed, so snapshot
// creation can persist it without recomputing.
type resolution struct {
	result  *dto.PricingResult
	product *product.Product
	book    *pricebook.PriceBook
	entry   *pricebook.PriceBookEntry

	// appliedPromoIDs are the PROMO_CODE modifiers that changed the price,
	// in application order; each needs a usage commit at snapshot time
	appliedPromoIDs []string
}

// ResolvePrice computes the price for a request
func (s *pricingService) ResolvePrice(ctx context.Context, req dto.PricingRequest) (*dto.PricingResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	res, err := s.resolve(ctx, req, "")
	if err != nil {
		return nil, err
	}

	return res.result, nil
}

// CreatePriceSnapshot resolves and persists the price for an order. The
// snapshot, its calculation logs and the promo usage commits succeed or fail
// together; a promo racing out of capacity aborts the whole write with a
// version conflict instead of over-redeeming.
func (s *pricingService) CreatePriceSnapshot(ctx context.Context, req dto.CreatePriceSnapshotRequest) (*dto.CreatePriceSnapshotResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	res, err := s.resolve(ctx, req.PricingRequest, req.OrderID)
	if err != nil {
		return nil, err
	}

	snapshot := s.buildSnapshot(ctx, req.OrderID, res)
	logs := s.buildCalculationLogs(ctx, snapshot)

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.PricingRepo.CreateSnapshot(ctx, snapshot); err != nil {
			return err
		}
		if len(logs) > 0 {
			if err := s.PricingRepo.CreateCalculationLogs(ctx, logs); err != nil {
				return err
			}
		}
		for _, modifierID := range res.appliedPromoIDs {
			if err := s.PriceModifierRepo.IncrementUsage(ctx, modifierID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// The order exists on the caller's side at this point; make the
		// failure loud so the missing snapshot is found before settlement.
		s.Logger.Errorw("failed to persist price snapshot",
			"order_id", req.OrderID,
			"product_id", req.ProductID,
			"error", err,
		)
		return nil, err
	}

	s.publishSnapshotCreated(ctx, snapshot)

	return &dto.CreatePriceSnapshotResponse{
		Snapshot: &dto.PriceSnapshotResponse{PriceSnapshot: snapshot},
		Result:   res.result,
	}, nil
}

// GetPriceSnapshot retrieves a snapshot by ID
func (s *pricingService) GetPriceSnapshot(ctx context.Context, id string) (*dto.PriceSnapshotResponse, error) {
	snapshot, err := s.PricingRepo.GetSnapshot(ctx, id)
	if err != nil {
		return nil, err
	}

	return &dto.PriceSnapshotResponse{PriceSnapshot: snapshot}, nil
}

// GetSnapshotByOrder retrieves the latest snapshot for an order
func (s *pricingService) GetSnapshotByOrder(ctx context.Context, orderID string) (*dto.PriceSnapshotResponse, error) {
	snapshot, err := s.PricingRepo.GetSnapshotByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	return &dto.PriceSnapshotResponse{PriceSnapshot: snapshot}, nil
}

// ListPriceSnapshots lists snapshots matching the filter
func (s *pricingService) ListPriceSnapshots(ctx context.Context, filter *types.PriceSnapshotFilter) (*dto.ListPriceSnapshotsResponse, error) {
	if filter == nil {
		filter = types.NewPriceSnapshotFilter()
	}

	if err := filter.Validate(); err != nil {
		return nil, err
	}

	snapshots, err := s.PricingRepo.ListSnapshots(ctx, filter)
	if err != nil {
		return nil, err
	}

	count, err := s.PricingRepo.CountSnapshots(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.PriceSnapshotResponse, len(snapshots))
	for i, snapshot := range snapshots {
		items[i] = &dto.PriceSnapshotResponse{PriceSnapshot: snapshot}
	}

	response := types.NewListResponse(items, count, filter.GetLimit(), filter.GetOffset())
	return &response, nil
}

// ListCalculationLogs returns a snapshot's audit rows ordered by step
func (s *pricingService) ListCalculationLogs(ctx context.Context, snapshotID string) (*dto.ListCalculationLogsResponse, error) {
	if _, err := s.PricingRepo.GetSnapshot(ctx, snapshotID); err != nil {
		return nil, err
	}

	logs, err := s.PricingRepo.ListCalculationLogs(ctx, snapshotID)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.CalculationLogResponse, len(logs))
	for i, log := range logs {
		items[i] = &dto.CalculationLogResponse{CalculationLog: log}
	}

	return &dto.ListCalculationLogsResponse{
		Items: items,
		Total: len(items),
	}, nil
}

// resolve runs the full pipeline: product, zone chain and segment, attribute
// signals, price book entry, modifier application, tax. orderID is empty for
// preview resolutions and only feeds discrepancy reporting.
func (s *pricingService) resolve(ctx context.Context, req dto.PricingRequest, orderID string) (*resolution, error) {
	prod, err := s.ProductRepo.Get(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	// Zone and segment resolution hit independent tables; run them
	// concurrently.
	var (
		zoneChain []*geozone.GeoZone
		seg       *segment.UserSegment
	)

	p := pool.New().WithErrors().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		chain, err := s.geoZoneService.ResolveChain(ctx, req.Pincode)
		if err != nil {
			return err
		}
		zoneChain = chain
		return nil
	})
	p.Go(func(ctx context.Context) error {
		resolved, err := s.segmentService.Resolve(ctx, req.UserID)
		if err != nil {
			return err
		}
		seg = resolved
		return nil
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}

	signals, err := s.attributeService.ExtractSignals(ctx, req.ProductID, req.Attributes)
	if err != nil {
		return nil, err
	}

	book, entry, err := s.priceBookService.SelectEntry(ctx, req.ProductID, zoneChain, req.Quantity)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	zoneIDs := make([]string, len(zoneChain))
	for i, zone := range zoneChain {
		zoneIDs[i] = zone.ID
	}

	candidates, err := s.PriceModifierRepo.ListCandidates(ctx, modifier.CandidateParams{
		GeoZoneIDs:    zoneIDs,
		UserSegmentID: seg.ID,
		ProductID:     req.ProductID,
		PricingKeys:   attribute.Keys(signals),
		PromoCodes:    req.PromoCodes,
	})
	if err != nil {
		return nil, err
	}

	active, ignored := partitionPromoCandidates(candidates, req.PromoCodes, now)

	// Deterministic application order: priority, then scope precedence
	// (broad before narrow), then id.
	sort.SliceStable(active, func(i, j int) bool {
		if active[i].Priority != active[j].Priority {
			return active[i].Priority < active[j].Priority
		}
		if active[i].AppliesTo.Precedence() != active[j].AppliesTo.Precedence() {
			return active[i].AppliesTo.Precedence() < active[j].AppliesTo.Precedence()
		}
		return active[i].ID < active[j].ID
	})

	running := entry.BasePrice
	applied := make([]pricing.AppliedModifier, 0, len(active))
	var appliedPromoIDs []string

	for _, m := range active {
		before := running
		after, clamped := m.Apply(running)

		reason := m.Name
		if clamped {
			reason += " (clamped to zero)"
		}

		applied = append(applied, pricing.AppliedModifier{
			ModifierID:   m.ID,
			Scope:        m.AppliesTo,
			PricingKey:   lo.FromPtr(m.PricingKey),
			BeforeAmount: before,
			AfterAmount:  after,
			Reason:       reason,
		})
		running = after

		if m.AppliesTo == types.ModifierScopePromoCode {
			appliedPromoIDs = append(appliedPromoIDs, m.ID)
		}
	}

	// RANGE_TOTAL base prices already cover the whole quantity tier
	subtotal := running
	if entry.PriceKind != types.PriceKindRangeTotal {
		subtotal = running.Mul(decimal.NewFromInt(int64(req.Quantity)))
	}

	gstAmount, totalPayable := computeGST(subtotal, prod.GSTPercentage, prod.ShowPriceIncludingGST)

	result := &dto.PricingResult{
		BasePrice:         entry.BasePrice,
		UnitPrice:         running,
		Quantity:          req.Quantity,
		Subtotal:          subtotal,
		GSTPercentage:     prod.GSTPercentage,
		GSTAmount:         gstAmount,
		TotalPayable:      totalPayable,
		Currency:          book.Currency,
		DisplayTotal:      types.CurrencySymbol(book.Currency) + totalPayable.StringFixed(2),
		AppliedModifiers:  applied,
		IgnoredPromoCodes: ignored,
		ZoneChain:         zoneIDs,
		SegmentCode:       seg.Code,
		CalculatedAt:      now,
	}

	if req.ExpectedTotal != nil && !req.ExpectedTotal.Equal(result.TotalPayable) {
		s.reportDiscrepancy(ctx, req, result, orderID)
	}

	return &resolution{
		result:          result,
		product:         prod,
		book:            book,
		entry:           entry,
		appliedPromoIDs: appliedPromoIDs,
	}, nil
}

// partitionPromoCandidates drops promo modifiers that are outside their
// validity window or out of capacity and reports why. The capacity read is
// advisory; the conditional increment at snapshot time is authoritative.
// Supplied codes that matched no modifier at all are reported as unknown.
func partitionPromoCandidates(candidates []*modifier.PriceModifier, promoCodes []string, now time.Time) ([]*modifier.PriceModifier, []dto.IgnoredPromoCode) {
	active := make([]*modifier.PriceModifier, 0, len(candidates))
	var ignored []dto.IgnoredPromoCode
	matched := make(map[string]bool, len(promoCodes))

	for _, m := range candidates {
		if m.AppliesTo != types.ModifierScopePromoCode {
			active = append(active, m)
			continue
		}

		code := lo.FromPtr(m.PromoCode)
		matched[code] = true

		if !m.IsActiveAt(now) {
			ignored = append(ignored, dto.IgnoredPromoCode{
				Code:   code,
				Reason: "outside validity window",
			})
			continue
		}
		if !m.HasUsageCapacity() {
			ignored = append(ignored, dto.IgnoredPromoCode{
				Code:   code,
				Reason: "usage limit reached",
			})
			continue
		}

		active = append(active, m)
	}

	for _, code := range promoCodes {
		if !matched[code] {
			ignored = append(ignored, dto.IgnoredPromoCode{
				Code:   code,
				Reason: "unknown promo code",
			})
		}
	}

	return active, ignored
}

// computeGST returns the tax amount and total for a subtotal. Tax-inclusive
// products already carry GST inside the subtotal, so the amount is
// back-calculated; tax-exclusive products add it on top. Only the final
// figures are rounded.
func computeGST(subtotal decimal.Decimal, gstPercentage decimal.Decimal, inclusive bool) (gstAmount decimal.Decimal, totalPayable decimal.Decimal) {
	hundred := decimal.NewFromInt(100)

	if inclusive {
		totalPayable = subtotal.Round(2)
		gstAmount = subtotal.Mul(gstPercentage).Div(hundred.Add(gstPercentage)).Round(2)
		return gstAmount, totalPayable
	}

	gstAmount = subtotal.Mul(gstPercentage).Div(hundred).Round(2)
	totalPayable = subtotal.Add(gstAmount).Round(2)
	return gstAmount, totalPayable
}

func (s *pricingService) buildSnapshot(ctx context.Context, orderID string, res *resolution) *pricing.PriceSnapshot {
	result := res.result
	return &pricing.PriceSnapshot{
		ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PRICE_SNAPSHOT),
		OrderID:          orderID,
		ProductID:        res.product.ID,
		BasePrice:        result.BasePrice,
		UnitPrice:        result.UnitPrice,
		Quantity:         result.Quantity,
		AppliedModifiers: pricing.JSONBAppliedModifiers(result.AppliedModifiers),
		Subtotal:         result.Subtotal,
		GSTPercentage:    result.GSTPercentage,
		GSTAmount:        result.GSTAmount,
		TotalPayable:     result.TotalPayable,
		Currency:         result.Currency,
		CalculatedAt:     result.CalculatedAt,
		BaseModel:        types.GetDefaultBaseModel(ctx),
	}
}

func (s *pricingService) buildCalculationLogs(ctx context.Context, snapshot *pricing.PriceSnapshot) []*pricing.CalculationLog {
	logs := make([]*pricing.CalculationLog, len(snapshot.AppliedModifiers))
	for i, step := range snapshot.AppliedModifiers {
		logs[i] = &pricing.CalculationLog{
			ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CALCULATION_LOG),
			SnapshotID:   snapshot.ID,
			OrderID:      snapshot.OrderID,
			StepIndex:    i,
			ModifierID:   step.ModifierID,
			Scope:        step.Scope,
			PricingKey:   step.PricingKey,
			BeforeAmount: step.BeforeAmount,
			AfterAmount:  step.AfterAmount,
			Reason:       step.Reason,
			BaseModel:    types.GetDefaultBaseModel(ctx),
		}
	}
	return logs
}

// reportDiscrepancy logs and webhooks a mismatch between the client estimate
// and the server price. The server price always wins; this exists to catch
// drifting storefront price code before customers do.
func (s *pricingService) reportDiscrepancy(ctx context.Context, req dto.PricingRequest, result *dto.PricingResult, orderID string) {
	traceID := types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_PRICING_TRACE)

	s.Logger.Warnw("client price estimate differs from server price",
		"trace_id", traceID,
		"product_id", req.ProductID,
		"order_id", orderID,
		"expected_total", req.ExpectedTotal,
		"total_payable", result.TotalPayable,
	)

	payload, err := json.Marshal(webhookDto.InternalPricingDiscrepancyEvent{
		TraceID:       traceID,
		ProductID:     req.ProductID,
		OrderID:       orderID,
		ExpectedTotal: *req.ExpectedTotal,
		ComputedTotal: result.TotalPayable,
		TenantID:      types.GetTenantID(ctx),
	})
	if err != nil {
		s.Logger.Errorw("failed to marshal webhook payload", "error", err)
		return
	}

	s.publishWebhookEvent(ctx, types.WebhookEventPricingDiscrepancy, payload)
}

func (s *pricingService) publishSnapshotCreated(ctx context.Context, snapshot *pricing.PriceSnapshot) {
	payload, err := json.Marshal(webhookDto.InternalPriceSnapshotEvent{
		SnapshotID: snapshot.ID,
		OrderID:    snapshot.OrderID,
		TenantID:   types.GetTenantID(ctx),
	})
	if err != nil {
		s.Logger.Errorw("failed to marshal webhook payload", "error", err)
		return
	}

	s.publishWebhookEvent(ctx, types.WebhookEventPriceSnapshotCreated, payload)
}

func (s *pricingService) publishWebhookEvent(ctx context.Context, eventName string, payload json.RawMessage) {
	webhookEvent := &types.WebhookEvent{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_WEBHOOK_EVENT),
		EventName: eventName,
		TenantID:  types.GetTenantID(ctx),
		UserID:    types.GetUserID(ctx),
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	if err := s.WebhookPublisher.PublishWebhook(ctx, webhookEvent); err != nil {
		s.Logger.Errorf("failed to publish %s event: %v", webhookEvent.EventName, err)
	}
}
