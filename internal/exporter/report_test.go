package exporter_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"salespulse/internal/analytics"
	"salespulse/internal/dataset"
	"salespulse/internal/exporter"
	"salespulse/internal/services"
	"salespulse/internal/shared/testutil"
)

const header = "date,store_nbr,family,sales,onpromotion,state,city,transactions"

func buildViews(t *testing.T) (*services.OverviewView, *services.InsightsView) {
	t.Helper()
	dir := t.TempDir()
	part1 := header + "\n" +
		"2023-01-01,1,GROCERY,100.0,2,Pichincha,Quito,50\n" +
		"2023-01-01,2,GROCERY,60.0,1,Guayas,Guayaquil,80\n"
	part2 := header + "\n" +
		"2023-01-02,2,DAIRY,30.0,0,Guayas,Guayaquil,70\n"
	p1 := testutil.WriteSalesArchive(t, dir, "part_1.zip", part1)
	p2 := testutil.WriteSalesArchive(t, dir, "part_2.zip", part2)

	store := dataset.NewStore(p1, p2, nil, nil)
	service := services.NewDataService(store, analytics.NewAnalyzer(analytics.DefaultConfig(), nil), nil)

	overview, err := service.Overview(context.Background(), dataset.DateRange{})
	require.NoError(t, err)
	insights, err := service.Insights(context.Background(), dataset.DateRange{})
	require.NoError(t, err)
	return overview, insights
}

func TestReportBuilder_WritesAllFiles(t *testing.T) {
	overview, insights := buildViews(t)
	out := t.TempDir()

	require.NoError(t, exporter.NewReportBuilder(out, nil).Build(overview, insights))

	for _, name := range []string{
		"overview.csv",
		"top_families.csv",
		"sales_by_store.csv",
		"daily_sales.csv",
		"state_ranking.csv",
		"dashboard.xlsx",
	} {
		assert.FileExists(t, filepath.Join(out, name), name)
	}

	families, err := os.ReadFile(filepath.Join(out, "top_families.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(families), "GROCERY,160.00")

	daily, err := os.ReadFile(filepath.Join(out, "daily_sales.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(daily), "2023-01-01,160.00")
	assert.Contains(t, string(daily), "2023-01-02,30.00")
}

func TestExcelWriter_WorkbookSheets(t *testing.T) {
	overview, insights := buildViews(t)
	out := t.TempDir()

	w := exporter.NewExcelWriter(out)
	require.NoError(t, w.WriteDashboard("dashboard.xlsx", overview, insights))

	f, err := excelize.OpenFile(filepath.Join(out, "dashboard.xlsx"))
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	for _, want := range []string{"Overview", "Top Families", "Stores", "Seasonality", "Insights"} {
		assert.Contains(t, sheets, want)
	}

	stores, err := f.GetCellValue("Overview", "B2")
	require.NoError(t, err)
	assert.Equal(t, "2", stores)
}
