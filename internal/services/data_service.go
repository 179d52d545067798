package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"salespulse/internal/analytics"
	"salespulse/internal/dataset"
)

// RangeInfo echoes the effective filter window back to the caller.
type RangeInfo struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
	Rows int    `json:"rows"`
}

// OverviewView is the global dashboard view.
type OverviewView struct {
	Range          RangeInfo               `json:"range"`
	Overview       analytics.Overview      `json:"overview"`
	TopFamilies    []analytics.FamilySales `json:"top_families"`
	SalesByStore   []analytics.StoreSales  `json:"sales_by_store"`
	TopPromoStores []analytics.StoreSales  `json:"top_promo_stores"`
	Seasonality    analytics.Seasonality   `json:"seasonality"`
}

// StoreView is the per-store dashboard view.
type StoreView struct {
	Range RangeInfo            `json:"range"`
	Stats analytics.StoreStats `json:"stats"`
}

// StateView is the per-state dashboard view.
type StateView struct {
	Range RangeInfo            `json:"range"`
	Stats analytics.StateStats `json:"stats"`
}

// InsightsView is the extra-insights dashboard view.
type InsightsView struct {
	Range        RangeInfo              `json:"range"`
	PromoShare   analytics.PromoShare   `json:"promo_share"`
	DailySeries  []analytics.DailyPoint `json:"daily_series"`
	StateRanking []analytics.StateSales `json:"state_ranking"`
}

// HealthInfo describes dataset readiness for the health endpoint.
type HealthInfo struct {
	DatasetLoaded   bool      `json:"dataset_loaded"`
	SalesRows       int       `json:"sales_rows"`
	TransactionRows int       `json:"transaction_rows"`
	LoadedAt        time.Time `json:"loaded_at,omitempty"`
	Error           string    `json:"error,omitempty"`
}

// DataService orchestrates the memoized dataset store and the analyzer.
// Every call re-evaluates the requested view against the immutable base
// tables; only a changed archive triggers a re-read.
type DataService struct {
	store    *dataset.Store
	analyzer *analytics.Analyzer
	logger   *slog.Logger
}

// NewDataService creates a data service.
func NewDataService(store *dataset.Store, analyzer *analytics.Analyzer, logger *slog.Logger) *DataService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataService{
		store:    store,
		analyzer: analyzer,
		logger:   logger.With(slog.String("component", "data_service")),
	}
}

// Overview returns the global view for the given range.
func (ds *DataService) Overview(ctx context.Context, rng dataset.DateRange) (*OverviewView, error) {
	sales, _, err := ds.filtered(ctx, rng)
	if err != nil {
		return nil, err
	}
	cfg := ds.analyzer.TopN()
	return &OverviewView{
		Range:          rangeInfo(rng, sales.Len()),
		Overview:       ds.analyzer.Overview(sales),
		TopFamilies:    ds.analyzer.TopFamilies(sales, cfg.TopFamilies),
		SalesByStore:   ds.analyzer.SalesByStore(sales),
		TopPromoStores: ds.analyzer.TopPromoStores(sales, cfg.TopStores),
		Seasonality:    ds.analyzer.Seasonality(sales),
	}, nil
}

// Stores returns the store numbers present in the range.
func (ds *DataService) Stores(ctx context.Context, rng dataset.DateRange) ([]int64, error) {
	sales, _, err := ds.filtered(ctx, rng)
	if err != nil {
		return nil, err
	}
	return ds.analyzer.Stores(sales), nil
}

// StoreStats returns the per-store view, or ErrStoreNotFound when the
// store has no rows in range.
func (ds *DataService) StoreStats(ctx context.Context, rng dataset.DateRange, store int64) (*StoreView, error) {
	sales, _, err := ds.filtered(ctx, rng)
	if err != nil {
		return nil, err
	}
	stats, ok := ds.analyzer.StoreStats(sales, store)
	if !ok {
		return nil, fmt.Errorf("store %d: %w", store, ErrStoreNotFound)
	}
	return &StoreView{Range: rangeInfo(rng, sales.Len()), Stats: stats}, nil
}

// States returns the states present in the range. An absent state column
// yields an empty list, not an error.
func (ds *DataService) States(ctx context.Context, rng dataset.DateRange) ([]string, error) {
	sales, _, err := ds.filtered(ctx, rng)
	if err != nil {
		return nil, err
	}
	return ds.analyzer.States(sales), nil
}

// StateStats returns the per-state view, or ErrStateNotFound when the
// state has no rows in range (or the column is absent entirely).
func (ds *DataService) StateStats(ctx context.Context, rng dataset.DateRange, state string) (*StateView, error) {
	sales, tx, err := ds.filtered(ctx, rng)
	if err != nil {
		return nil, err
	}
	stats, ok := ds.analyzer.StateStats(sales, tx, state)
	if !ok {
		return nil, fmt.Errorf("state %q: %w", state, ErrStateNotFound)
	}
	return &StateView{Range: rangeInfo(rng, sales.Len()), Stats: stats}, nil
}

// Insights returns the extra-insights view for the given range.
func (ds *DataService) Insights(ctx context.Context, rng dataset.DateRange) (*InsightsView, error) {
	sales, _, err := ds.filtered(ctx, rng)
	if err != nil {
		return nil, err
	}
	cfg := ds.analyzer.TopN()
	return &InsightsView{
		Range:        rangeInfo(rng, sales.Len()),
		PromoShare:   ds.analyzer.PromoShare(sales),
		DailySeries:  ds.analyzer.DailySeries(sales),
		StateRanking: ds.analyzer.StateRanking(sales, cfg.TopStates),
	}, nil
}

// Health reports dataset readiness. A fatal archive failure is reported,
// not returned, so the health endpoint itself never errors.
func (ds *DataService) Health(ctx context.Context) HealthInfo {
	d, err := ds.store.Dataset(ctx)
	if err != nil {
		return HealthInfo{DatasetLoaded: false, Error: err.Error()}
	}
	return HealthInfo{
		DatasetLoaded:   true,
		SalesRows:       d.Sales.Len(),
		TransactionRows: d.Transactions.Len(),
		LoadedAt:        d.LoadedAt,
	}
}

func (ds *DataService) filtered(ctx context.Context, rng dataset.DateRange) (*dataset.SalesTable, *dataset.TransactionTable, error) {
	d, err := ds.store.Dataset(ctx)
	if err != nil {
		ds.logger.ErrorContext(ctx, "dataset load failed",
			slog.String("error", err.Error()))
		return nil, nil, err
	}
	return dataset.FilterSales(d.Sales, rng), dataset.FilterTransactions(d.Transactions, rng), nil
}

func rangeInfo(rng dataset.DateRange, rows int) RangeInfo {
	info := RangeInfo{Rows: rows}
	if !rng.From.IsZero() {
		info.From = rng.From.Format("2006-01-02")
	}
	if !rng.To.IsZero() {
		info.To = rng.To.Format("2006-01-02")
	}
	return info
}
