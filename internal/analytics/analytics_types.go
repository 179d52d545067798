package analytics

import "time"

// Overview holds the headline counts of the global view.
type Overview struct {
	Stores         int `json:"stores"`
	Families       int `json:"families"`
	States         int `json:"states"`
	MonthsWithData int `json:"months_with_data"`
}

// FamilySales is total sales attributed to one product family.
type FamilySales struct {
	Family string  `json:"family"`
	Sales  float64 `json:"sales"`
}

// StoreSales is total sales attributed to one store.
type StoreSales struct {
	StoreNbr int64   `json:"store_nbr"`
	Sales    float64 `json:"sales"`
}

// StateSales is total sales attributed to one state.
type StateSales struct {
	State string  `json:"state"`
	Sales float64 `json:"sales"`
}

// YearValue is one yearly bucket of an aggregate.
type YearValue struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// DayOfWeekMean is the mean sales for one weekday label.
type DayOfWeekMean struct {
	DayOfWeek string  `json:"day_of_week"`
	MeanSales float64 `json:"mean_sales"`
}

// PeriodMean is the mean sales for one calendar bucket (week or month).
type PeriodMean struct {
	Period    int     `json:"period"`
	MeanSales float64 `json:"mean_sales"`
}

// Seasonality captures the three seasonal profiles of the global view.
// ByDayOfWeek is only populated when the source carried a day_of_week
// column; HasDayOfWeek tells the two cases apart.
type Seasonality struct {
	HasDayOfWeek bool            `json:"has_day_of_week"`
	ByDayOfWeek  []DayOfWeekMean `json:"by_day_of_week,omitempty"`
	ByWeek       []PeriodMean    `json:"by_week"`
	ByMonth      []PeriodMean    `json:"by_month"`
}

// StoreStats is the per-store view.
type StoreStats struct {
	StoreNbr    int64       `json:"store_nbr"`
	SalesByYear []YearValue `json:"sales_by_year"`
	TotalSales  float64     `json:"total_sales"`
	PromoSales  float64     `json:"promo_sales"`
	Families    int         `json:"families"`
}

// StateStats is the per-state view. TransactionsByYear comes from the
// deduplicated transactions table only.
type StateStats struct {
	State              string        `json:"state"`
	TransactionsByYear []YearValue   `json:"transactions_by_year"`
	TopStores          []StoreSales  `json:"top_stores"`
	TopFamilies        []FamilySales `json:"top_families"`
}

// PromoShare is the promotion weight insight. SharePercent is 0 when there
// are no sales at all.
type PromoShare struct {
	TotalSales   float64 `json:"total_sales"`
	PromoSales   float64 `json:"promo_sales"`
	SharePercent float64 `json:"share_percent"`
}

// DailyPoint is one day of the daily sales series with its trailing
// rolling mean.
type DailyPoint struct {
	Date        time.Time `json:"date"`
	Sales       float64   `json:"sales"`
	RollingMean float64   `json:"rolling_mean"`
}
