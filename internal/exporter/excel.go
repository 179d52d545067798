package exporter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"salespulse/internal/services"
)

// ExcelWriter writes the dashboard views into a single xlsx workbook,
// one sheet per view section.
type ExcelWriter struct {
	reportsDir string
}

// NewExcelWriter creates a new Excel writer instance.
func NewExcelWriter(reportsDir string) *ExcelWriter {
	return &ExcelWriter{reportsDir: reportsDir}
}

// WriteDashboard writes a workbook with the overview and insights views.
func (w *ExcelWriter) WriteDashboard(name string, overview *services.OverviewView, insights *services.InsightsView) error {
	fullPath := name
	if !filepath.IsAbs(fullPath) {
		fullPath = filepath.Join(w.reportsDir, name)
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := w.writeOverviewSheet(f, overview); err != nil {
		return err
	}
	if err := w.writeFamiliesSheet(f, overview); err != nil {
		return err
	}
	if err := w.writeStoresSheet(f, overview); err != nil {
		return err
	}
	if err := w.writeSeasonalitySheet(f, overview); err != nil {
		return err
	}
	if err := w.writeInsightsSheet(f, insights); err != nil {
		return err
	}

	// Drop the default sheet so the workbook opens on Overview.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}
	if idx, err := f.GetSheetIndex("Overview"); err == nil {
		f.SetActiveSheet(idx)
	}

	if err := f.SaveAs(fullPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func (w *ExcelWriter) writeOverviewSheet(f *excelize.File, overview *services.OverviewView) error {
	const sheet = "Overview"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Stores", overview.Overview.Stores},
		{"Product families", overview.Overview.Families},
		{"States", overview.Overview.States},
		{"Months with data", overview.Overview.MonthsWithData},
		{"Rows in range", overview.Range.Rows},
	}
	return writeRows(f, sheet, rows)
}

func (w *ExcelWriter) writeFamiliesSheet(f *excelize.File, overview *services.OverviewView) error {
	const sheet = "Top Families"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	rows := [][]interface{}{{"Family", "Sales"}}
	for _, fam := range overview.TopFamilies {
		rows = append(rows, []interface{}{fam.Family, fam.Sales})
	}
	return writeRows(f, sheet, rows)
}

func (w *ExcelWriter) writeStoresSheet(f *excelize.File, overview *services.OverviewView) error {
	const sheet = "Stores"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	rows := [][]interface{}{{"Store", "Sales", "Top Promo"}}
	promo := make(map[int64]bool, len(overview.TopPromoStores))
	for _, s := range overview.TopPromoStores {
		promo[s.StoreNbr] = true
	}
	for _, s := range overview.SalesByStore {
		rows = append(rows, []interface{}{s.StoreNbr, s.Sales, promo[s.StoreNbr]})
	}
	return writeRows(f, sheet, rows)
}

func (w *ExcelWriter) writeSeasonalitySheet(f *excelize.File, overview *services.OverviewView) error {
	const sheet = "Seasonality"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	rows := [][]interface{}{{"Bucket", "Key", "Mean Sales"}}
	for _, d := range overview.Seasonality.ByDayOfWeek {
		rows = append(rows, []interface{}{"day_of_week", d.DayOfWeek, d.MeanSales})
	}
	for _, p := range overview.Seasonality.ByWeek {
		rows = append(rows, []interface{}{"week", p.Period, p.MeanSales})
	}
	for _, p := range overview.Seasonality.ByMonth {
		rows = append(rows, []interface{}{"month", p.Period, p.MeanSales})
	}
	return writeRows(f, sheet, rows)
}

func (w *ExcelWriter) writeInsightsSheet(f *excelize.File, insights *services.InsightsView) error {
	const sheet = "Insights"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	rows := [][]interface{}{
		{"Promo share %", insights.PromoShare.SharePercent},
		{"Promo sales", insights.PromoShare.PromoSales},
		{"Total sales", insights.PromoShare.TotalSales},
		{},
		{"Date", "Sales", "Rolling Mean"},
	}
	for _, p := range insights.DailySeries {
		rows = append(rows, []interface{}{formatDate(p.Date), p.Sales, p.RollingMean})
	}
	rows = append(rows, []interface{}{}, []interface{}{"State", "Sales"})
	for _, s := range insights.StateRanking {
		rows = append(rows, []interface{}{s.State, s.Sales})
	}
	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+1, sheet, err)
		}
	}
	return nil
}
