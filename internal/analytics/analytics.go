package analytics

import (
	"log/slog"
	"sort"
	"time"

	"salespulse/internal/dataset"
)

// weekdayOrder fixes the display order of day_of_week labels when the
// source supplies them as English day names.
var weekdayOrder = map[string]int{
	"Monday":    0,
	"Tuesday":   1,
	"Wednesday": 2,
	"Thursday":  3,
	"Friday":    4,
	"Saturday":  5,
	"Sunday":    6,
}

// Config holds the tunable sizes of the aggregate views.
type Config struct {
	TopFamilies   int // family ranking size
	TopStores     int // store ranking size (promo and per-state)
	TopStates     int // state ranking size
	RollingWindow int // trailing days of the daily rolling mean
}

// DefaultConfig mirrors the dashboard's fixed top-N and window sizes.
func DefaultConfig() Config {
	return Config{
		TopFamilies:   10,
		TopStores:     10,
		TopStates:     15,
		RollingWindow: 14,
	}
}

// Analyzer computes the aggregate views over already-filtered tables.
// All methods are pure; the tables are never mutated.
type Analyzer struct {
	cfg    Config
	logger *slog.Logger
}

// NewAnalyzer creates an analyzer, filling zero config fields with defaults.
func NewAnalyzer(cfg Config, logger *slog.Logger) *Analyzer {
	def := DefaultConfig()
	if cfg.TopFamilies <= 0 {
		cfg.TopFamilies = def.TopFamilies
	}
	if cfg.TopStores <= 0 {
		cfg.TopStores = def.TopStores
	}
	if cfg.TopStates <= 0 {
		cfg.TopStates = def.TopStates
	}
	if cfg.RollingWindow <= 0 {
		cfg.RollingWindow = def.RollingWindow
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{cfg: cfg, logger: logger.With(slog.String("component", "analyzer"))}
}

// Overview counts the distinct stores, families, states and year-months
// present in the table. Absent optional columns yield zero, never an error.
func (a *Analyzer) Overview(sales *dataset.SalesTable) Overview {
	stores := make(map[int64]struct{})
	families := make(map[string]struct{})
	states := make(map[string]struct{})
	months := make(map[int]struct{})

	hasFamily := sales.HasColumn(dataset.ColFamily)
	hasState := sales.HasColumn(dataset.ColState)

	for _, r := range sales.Rows {
		if r.StoreNbr.Valid {
			stores[r.StoreNbr.Int64] = struct{}{}
		}
		if hasFamily && r.Family != "" {
			families[r.Family] = struct{}{}
		}
		if hasState && r.State != "" {
			states[r.State] = struct{}{}
		}
		if !r.Date.IsZero() {
			months[r.Date.Year()*100+int(r.Date.Month())] = struct{}{}
		}
	}

	return Overview{
		Stores:         len(stores),
		Families:       len(families),
		States:         len(states),
		MonthsWithData: len(months),
	}
}

// TopFamilies ranks product families by total sales, descending.
func (a *Analyzer) TopFamilies(sales *dataset.SalesTable, n int) []FamilySales {
	if !sales.HasColumn(dataset.ColFamily) {
		return nil
	}
	totals := make(map[string]float64)
	for _, r := range sales.Rows {
		if r.Family == "" {
			continue
		}
		totals[r.Family] += r.Sales
	}
	ranked := make([]FamilySales, 0, len(totals))
	for family, sum := range totals {
		ranked = append(ranked, FamilySales{Family: family, Sales: sum})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Sales != ranked[j].Sales {
			return ranked[i].Sales > ranked[j].Sales
		}
		return ranked[i].Family < ranked[j].Family
	})
	return truncateFamilies(ranked, n)
}

// SalesByStore sums sales per store across the whole table, descending.
func (a *Analyzer) SalesByStore(sales *dataset.SalesTable) []StoreSales {
	totals := make(map[int64]float64)
	for _, r := range sales.Rows {
		if !r.StoreNbr.Valid {
			continue
		}
		totals[r.StoreNbr.Int64] += r.Sales
	}
	return rankStores(totals, 0)
}

// TopPromoStores ranks stores by sales on promoted rows (onpromotion > 0).
func (a *Analyzer) TopPromoStores(sales *dataset.SalesTable, n int) []StoreSales {
	totals := make(map[int64]float64)
	for _, r := range sales.Rows {
		if r.OnPromotion <= 0 || !r.StoreNbr.Valid {
			continue
		}
		totals[r.StoreNbr.Int64] += r.Sales
	}
	return rankStores(totals, n)
}

// Seasonality computes mean sales by day of week (when present), ISO week
// and month.
func (a *Analyzer) Seasonality(sales *dataset.SalesTable) Seasonality {
	out := Seasonality{
		ByWeek:  a.periodMeans(sales, func(r dataset.SalesRecord) int { return r.Week }),
		ByMonth: a.periodMeans(sales, func(r dataset.SalesRecord) int { return r.Month }),
	}

	if !sales.HasColumn(dataset.ColDayOfWeek) {
		return out
	}
	out.HasDayOfWeek = true

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range sales.Rows {
		if r.DayOfWeek == "" {
			continue
		}
		sums[r.DayOfWeek] += r.Sales
		counts[r.DayOfWeek]++
	}
	for day, sum := range sums {
		out.ByDayOfWeek = append(out.ByDayOfWeek, DayOfWeekMean{
			DayOfWeek: day,
			MeanSales: sum / float64(counts[day]),
		})
	}
	sort.Slice(out.ByDayOfWeek, func(i, j int) bool {
		oi, iok := weekdayOrder[out.ByDayOfWeek[i].DayOfWeek]
		oj, jok := weekdayOrder[out.ByDayOfWeek[j].DayOfWeek]
		if iok && jok {
			return oi < oj
		}
		if iok != jok {
			return iok
		}
		return out.ByDayOfWeek[i].DayOfWeek < out.ByDayOfWeek[j].DayOfWeek
	})
	return out
}

func (a *Analyzer) periodMeans(sales *dataset.SalesTable, key func(dataset.SalesRecord) int) []PeriodMean {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, r := range sales.Rows {
		k := key(r)
		if k == 0 {
			continue
		}
		sums[k] += r.Sales
		counts[k]++
	}
	means := make([]PeriodMean, 0, len(sums))
	for k, sum := range sums {
		means = append(means, PeriodMean{Period: k, MeanSales: sum / float64(counts[k])})
	}
	sort.Slice(means, func(i, j int) bool { return means[i].Period < means[j].Period })
	return means
}

// Stores lists the distinct store numbers in the table, ascending.
func (a *Analyzer) Stores(sales *dataset.SalesTable) []int64 {
	set := make(map[int64]struct{})
	for _, r := range sales.Rows {
		if r.StoreNbr.Valid {
			set[r.StoreNbr.Int64] = struct{}{}
		}
	}
	stores := make([]int64, 0, len(set))
	for s := range set {
		stores = append(stores, s)
	}
	sort.Slice(stores, func(i, j int) bool { return stores[i] < stores[j] })
	return stores
}

// States lists the distinct states in the table, ascending. Returns nil
// when the column is absent.
func (a *Analyzer) States(sales *dataset.SalesTable) []string {
	if !sales.HasColumn(dataset.ColState) {
		return nil
	}
	set := make(map[string]struct{})
	for _, r := range sales.Rows {
		if r.State != "" {
			set[r.State] = struct{}{}
		}
	}
	states := make([]string, 0, len(set))
	for s := range set {
		states = append(states, s)
	}
	sort.Strings(states)
	return states
}

// StoreStats builds the per-store view. The second return value is false
// when the store has no rows in the table.
func (a *Analyzer) StoreStats(sales *dataset.SalesTable, store int64) (StoreStats, bool) {
	stats := StoreStats{StoreNbr: store}
	byYear := make(map[int]float64)
	families := make(map[string]struct{})
	found := false

	for _, r := range sales.Rows {
		if !r.StoreNbr.Valid || r.StoreNbr.Int64 != store {
			continue
		}
		found = true
		stats.TotalSales += r.Sales
		if r.OnPromotion > 0 {
			stats.PromoSales += r.Sales
		}
		if r.Family != "" {
			families[r.Family] = struct{}{}
		}
		if r.Year != 0 {
			byYear[r.Year] += r.Sales
		}
	}
	if !found {
		return StoreStats{}, false
	}

	stats.Families = len(families)
	stats.SalesByYear = sortYears(byYear)
	return stats, true
}

// StateStats builds the per-state view. Transaction totals come from the
// deduplicated transactions table so family fan-out never inflates them.
// The second return value is false when the state has no sales rows.
func (a *Analyzer) StateStats(sales *dataset.SalesTable, tx *dataset.TransactionTable, state string) (StateStats, bool) {
	if !sales.HasColumn(dataset.ColState) {
		return StateStats{}, false
	}

	stats := StateStats{State: state}
	storeTotals := make(map[int64]float64)
	familyTotals := make(map[string]float64)
	found := false

	for _, r := range sales.Rows {
		if r.State != state {
			continue
		}
		found = true
		if r.StoreNbr.Valid {
			storeTotals[r.StoreNbr.Int64] += r.Sales
		}
		if r.Family != "" {
			familyTotals[r.Family] += r.Sales
		}
	}
	if !found {
		return StateStats{}, false
	}

	txByYear := make(map[int]float64)
	if tx != nil && tx.HasColumn(dataset.ColState) {
		for _, r := range tx.Rows {
			if r.State != state || r.Year == 0 {
				continue
			}
			txByYear[r.Year] += r.Transactions
		}
	}

	stats.TransactionsByYear = sortYears(txByYear)
	stats.TopStores = rankStores(storeTotals, a.cfg.TopStores)

	families := make([]FamilySales, 0, len(familyTotals))
	for family, sum := range familyTotals {
		families = append(families, FamilySales{Family: family, Sales: sum})
	}
	sort.Slice(families, func(i, j int) bool {
		if families[i].Sales != families[j].Sales {
			return families[i].Sales > families[j].Sales
		}
		return families[i].Family < families[j].Family
	})
	stats.TopFamilies = truncateFamilies(families, a.cfg.TopFamilies)
	return stats, true
}

// PromoShare computes the promotion weight of total sales.
func (a *Analyzer) PromoShare(sales *dataset.SalesTable) PromoShare {
	var share PromoShare
	for _, r := range sales.Rows {
		share.TotalSales += r.Sales
		if r.OnPromotion > 0 {
			share.PromoSales += r.Sales
		}
	}
	if share.TotalSales > 0 {
		share.SharePercent = share.PromoSales / share.TotalSales * 100
	}
	return share
}

// DailySeries sums sales per calendar day and attaches a trailing rolling
// mean over the configured window. The window shrinks at the start of the
// series rather than emitting empty points.
func (a *Analyzer) DailySeries(sales *dataset.SalesTable) []DailyPoint {
	totals := make(map[time.Time]float64)
	for _, r := range sales.Rows {
		if r.Date.IsZero() {
			continue
		}
		day := time.Date(r.Date.Year(), r.Date.Month(), r.Date.Day(), 0, 0, 0, 0, time.UTC)
		totals[day] += r.Sales
	}

	series := make([]DailyPoint, 0, len(totals))
	for day, sum := range totals {
		series = append(series, DailyPoint{Date: day, Sales: sum})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })

	window := a.cfg.RollingWindow
	var sum float64
	for i := range series {
		sum += series[i].Sales
		if i >= window {
			sum -= series[i-window].Sales
		}
		n := i + 1
		if n > window {
			n = window
		}
		series[i].RollingMean = sum / float64(n)
	}
	return series
}

// StateRanking ranks states by total sales, descending.
func (a *Analyzer) StateRanking(sales *dataset.SalesTable, n int) []StateSales {
	if !sales.HasColumn(dataset.ColState) {
		return nil
	}
	totals := make(map[string]float64)
	for _, r := range sales.Rows {
		if r.State == "" {
			continue
		}
		totals[r.State] += r.Sales
	}
	ranked := make([]StateSales, 0, len(totals))
	for state, sum := range totals {
		ranked = append(ranked, StateSales{State: state, Sales: sum})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Sales != ranked[j].Sales {
			return ranked[i].Sales > ranked[j].Sales
		}
		return ranked[i].State < ranked[j].State
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// TopN exposes the configured ranking sizes for callers assembling views.
func (a *Analyzer) TopN() Config {
	return a.cfg
}

func rankStores(totals map[int64]float64, n int) []StoreSales {
	ranked := make([]StoreSales, 0, len(totals))
	for store, sum := range totals {
		ranked = append(ranked, StoreSales{StoreNbr: store, Sales: sum})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Sales != ranked[j].Sales {
			return ranked[i].Sales > ranked[j].Sales
		}
		return ranked[i].StoreNbr < ranked[j].StoreNbr
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func truncateFamilies(ranked []FamilySales, n int) []FamilySales {
	if n > 0 && len(ranked) > n {
		return ranked[:n]
	}
	return ranked
}

func sortYears(byYear map[int]float64) []YearValue {
	years := make([]YearValue, 0, len(byYear))
	for year, value := range byYear {
		years = append(years, YearValue{Year: year, Value: value})
	}
	sort.Slice(years, func(i, j int) bool { return years[i].Year < years[j].Year })
	return years
}
