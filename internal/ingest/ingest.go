// Package ingest runs the upload pipeline: parse a platform export, normalize
// timestamps, window-filter, deduplicate, persist, and link the new orders to
// the matching shift.
package ingest

import (
	"context"
	"fmt"
	"time"

	"arbitrage-shift-tracker/internal/database"
	"arbitrage-shift-tracker/internal/linker"
	"arbitrage-shift-tracker/internal/logging"
	"arbitrage-shift-tracker/internal/parser"
	"arbitrage-shift-tracker/internal/platform"
)

// Store is the persistence surface of the pipeline. Transact runs fn against
// a store bound to a single transaction; every write the pipeline makes goes
// through it so a mid-batch failure rolls the whole upload back.
type Store interface {
	linker.Store

	// ExistingOrderIDs reports which of the given platform-scoped order ids
	// are already persisted
	ExistingOrderIDs(ctx context.Context, platformName string, orderIDs []string) (map[string]bool, error)
	InsertOrders(ctx context.Context, orders []database.Order) error

	Transact(ctx context.Context, fn func(Store) error) error
}

// ProfitRefresher recomputes the stored profit figures of a report after its
// order set changed
type ProfitRefresher interface {
	RecomputeReport(ctx context.Context, reportID int64) error
}

// Request is one uploaded export file
type Request struct {
	Platform string
	Filename string
	Data     []byte

	// AccountName is the display name of the account the upload was made
	// for; export files do not carry a usable account column, so every
	// persisted row gets this name
	AccountName string

	// Optional shift window, reference time zone. When both bounds are set
	// only rows inside [WindowStart, WindowEnd] are persisted.
	WindowStart *time.Time
	WindowEnd   *time.Time

	// Report to link the persisted orders to, if the upload belongs to a
	// shift report submission
	Report *database.ShiftReport
}

// Summary reports what the pipeline did with the file
type Summary struct {
	TotalParsed int `json:"total_parsed"`
	Created     int `json:"count"`
	Skipped     int `json:"skipped"`
	Linked      int `json:"linked"`
}

// Service wires the parser, timezone normalizer and linker over one store
type Service struct {
	parser  *parser.Parser
	tz      *platform.Normalizer
	store   Store
	refresh ProfitRefresher
	log     *logging.Logger
}

// New creates the ingestion service. refresh may be nil when profit figures
// are recomputed elsewhere.
func New(p *parser.Parser, tz *platform.Normalizer, store Store, refresh ProfitRefresher) *Service {
	return &Service{
		parser:  p,
		tz:      tz,
		store:   store,
		refresh: refresh,
		log:     logging.WithComponent("ingest"),
	}
}

// Ingest runs the full pipeline for one file. Parse failures yield an empty
// summary and an error; everything after parsing runs in one transaction.
func (s *Service) Ingest(ctx context.Context, req Request) (Summary, error) {
	platformName, err := platform.Validate(req.Platform)
	if err != nil {
		return Summary{}, err
	}

	result, err := s.parser.ParseFile(platformName, req.Filename, req.Data)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to parse %s export: %w", platformName, err)
	}

	summary := Summary{TotalParsed: result.Parsed}

	candidates := s.normalize(platformName, result.Orders, req.WindowStart, req.WindowEnd)
	if len(candidates) == 0 {
		s.log.Info("no rows usable after window filtering",
			"platform", platformName, "parsed", result.Parsed)
		return summary, nil
	}

	err = s.store.Transact(ctx, func(tx Store) error {
		created, skipped, err := s.persist(ctx, tx, platformName, candidates, req)
		if err != nil {
			return err
		}
		summary.Created = created
		summary.Skipped = skipped

		if req.Report != nil {
			linked, err := linker.New(tx).Link(ctx, req.Report)
			if err != nil {
				return err
			}
			summary.Linked = linked
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}

	if req.Report != nil && s.refresh != nil && summary.Created > 0 {
		if err := s.refresh.RecomputeReport(ctx, req.Report.ID); err != nil {
			return summary, fmt.Errorf("failed to recompute report profit: %w", err)
		}
	}

	s.log.Info("ingested platform export",
		"platform", platformName,
		"file", req.Filename,
		"parsed", summary.TotalParsed,
		"created", summary.Created,
		"skipped", summary.Skipped,
		"linked", summary.Linked)
	return summary, nil
}

// normalize converts row timestamps to the reference time zone, exactly once,
// then applies the inclusive shift window
func (s *Service) normalize(platformName string, rows []parser.ParsedOrder, start, end *time.Time) []parser.ParsedOrder {
	out := make([]parser.ParsedOrder, 0, len(rows))
	for _, row := range rows {
		row.ExecutedAt = s.tz.ToCanonical(platformName, row.ExecutedAt)
		if start != nil && end != nil {
			if row.ExecutedAt.Before(*start) || row.ExecutedAt.After(*end) {
				continue
			}
		}
		out = append(out, row)
	}
	return out
}

func (s *Service) persist(ctx context.Context, tx Store, platformName string, rows []parser.ParsedOrder, req Request) (created, skipped int, err error) {
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.OrderID)
	}
	existing, err := tx.ExistingOrderIDs(ctx, platformName, ids)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to check existing orders: %w", err)
	}

	var employeeID *int64
	if req.Report != nil && req.Report.EmployeeID != 0 {
		e := req.Report.EmployeeID
		employeeID = &e
	}

	now := time.Now()
	batch := make([]database.Order, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		if existing[row.OrderID] || seen[row.OrderID] {
			skipped++
			continue
		}
		seen[row.OrderID] = true

		order := database.Order{
			OrderID:     row.OrderID,
			EmployeeID:  employeeID,
			Platform:    platformName,
			AccountName: req.AccountName,
			Symbol:      row.Symbol,
			Side:        row.Side,
			Quantity:    row.Quantity,
			Price:       row.Price,
			TotalUSDT:   row.TotalUSDT,
			FeesUSDT:    row.FeesUSDT,
			Status:      row.Status,
			ExecutedAt:  row.ExecutedAt,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if row.RawStatus != "" {
			raw := row.RawStatus
			order.RawStatus = &raw
		}
		if row.Counterparty != "" {
			cp := row.Counterparty
			order.Counterparty = &cp
		}
		batch = append(batch, order)
	}

	if len(batch) > 0 {
		if err := tx.InsertOrders(ctx, batch); err != nil {
			return 0, 0, fmt.Errorf("failed to insert orders: %w", err)
		}
	}
	return len(batch), skipped, nil
}
