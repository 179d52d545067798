package exporter

import (
	"fmt"
	"log/slog"
	"strconv"

	"salespulse/internal/services"
)

// ReportBuilder renders the dashboard views into the reports directory:
// one CSV per section plus a combined xlsx workbook.
type ReportBuilder struct {
	csv    *CSVWriter
	excel  *ExcelWriter
	logger *slog.Logger
}

// NewReportBuilder creates a report builder writing under reportsDir.
func NewReportBuilder(reportsDir string, logger *slog.Logger) *ReportBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportBuilder{
		csv:    NewCSVWriter(reportsDir),
		excel:  NewExcelWriter(reportsDir),
		logger: logger.With(slog.String("component", "report_builder")),
	}
}

// Build writes all report files for the given views.
func (b *ReportBuilder) Build(overview *services.OverviewView, insights *services.InsightsView) error {
	if err := b.writeOverview(overview); err != nil {
		return fmt.Errorf("overview report: %w", err)
	}
	if err := b.writeFamilies(overview); err != nil {
		return fmt.Errorf("families report: %w", err)
	}
	if err := b.writeStores(overview); err != nil {
		return fmt.Errorf("stores report: %w", err)
	}
	if err := b.writeDailySeries(insights); err != nil {
		return fmt.Errorf("daily series report: %w", err)
	}
	if err := b.writeStateRanking(insights); err != nil {
		return fmt.Errorf("state ranking report: %w", err)
	}
	if err := b.excel.WriteDashboard("dashboard.xlsx", overview, insights); err != nil {
		return fmt.Errorf("dashboard workbook: %w", err)
	}

	b.logger.Info("reports written",
		slog.Int("daily_points", len(insights.DailySeries)),
		slog.Int("stores", len(overview.SalesByStore)))
	return nil
}

func (b *ReportBuilder) writeOverview(overview *services.OverviewView) error {
	records := [][]string{
		{"stores", strconv.Itoa(overview.Overview.Stores)},
		{"families", strconv.Itoa(overview.Overview.Families)},
		{"states", strconv.Itoa(overview.Overview.States)},
		{"months_with_data", strconv.Itoa(overview.Overview.MonthsWithData)},
		{"rows_in_range", strconv.Itoa(overview.Range.Rows)},
	}
	return b.csv.WriteSimpleCSV("overview.csv", []string{"metric", "value"}, records)
}

func (b *ReportBuilder) writeFamilies(overview *services.OverviewView) error {
	records := make([][]string, 0, len(overview.TopFamilies))
	for _, f := range overview.TopFamilies {
		records = append(records, []string{f.Family, formatFloat(f.Sales)})
	}
	return b.csv.WriteSimpleCSV("top_families.csv", []string{"family", "sales"}, records)
}

func (b *ReportBuilder) writeStores(overview *services.OverviewView) error {
	records := make([][]string, 0, len(overview.SalesByStore))
	for _, s := range overview.SalesByStore {
		records = append(records, []string{formatInt(s.StoreNbr), formatFloat(s.Sales)})
	}
	return b.csv.WriteSimpleCSV("sales_by_store.csv", []string{"store_nbr", "sales"}, records)
}

func (b *ReportBuilder) writeDailySeries(insights *services.InsightsView) error {
	records := make([][]string, 0, len(insights.DailySeries))
	for _, p := range insights.DailySeries {
		records = append(records, []string{formatDate(p.Date), formatFloat(p.Sales), formatFloat(p.RollingMean)})
	}
	return b.csv.WriteSimpleCSV("daily_sales.csv", []string{"date", "sales", "rolling_mean"}, records)
}

func (b *ReportBuilder) writeStateRanking(insights *services.InsightsView) error {
	records := make([][]string, 0, len(insights.StateRanking))
	for _, s := range insights.StateRanking {
		records = append(records, []string{s.State, formatFloat(s.Sales)})
	}
	return b.csv.WriteSimpleCSV("state_ranking.csv", []string{"state", "sales"}, records)
}
