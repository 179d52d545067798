package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/analytics"
	"salespulse/internal/dataset"
	"salespulse/internal/services"
	"salespulse/internal/shared/testutil"
)

const header = "date,store_nbr,family,sales,onpromotion,state,city,transactions"

func newService(t *testing.T) *services.DataService {
	t.Helper()
	dir := t.TempDir()
	part1 := header + "\n" +
		"2023-01-01,1,GROCERY,100.0,2,Pichincha,Quito,50\n" +
		"2023-01-01,1,BEVERAGES,40.0,0,Pichincha,Quito,50\n" +
		"2023-01-01,2,GROCERY,60.0,1,Guayas,Guayaquil,80\n"
	part2 := header + "\n" +
		"2023-01-02,2,DAIRY,30.0,0,Guayas,Guayaquil,70\n" +
		"2023-01-02,3,GROCERY,10.0,0,Pichincha,Quito,20\n"
	p1 := testutil.WriteSalesArchive(t, dir, "part_1.zip", part1)
	p2 := testutil.WriteSalesArchive(t, dir, "part_2.zip", part2)

	store := dataset.NewStore(p1, p2, nil, nil)
	analyzer := analytics.NewAnalyzer(analytics.DefaultConfig(), nil)
	return services.NewDataService(store, analyzer, nil)
}

func brokenService(t *testing.T) *services.DataService {
	t.Helper()
	dir := t.TempDir()
	store := dataset.NewStore(dir+"/a.zip", dir+"/b.zip", nil, nil)
	return services.NewDataService(store, analytics.NewAnalyzer(analytics.DefaultConfig(), nil), nil)
}

func TestOverview_UnboundedRange(t *testing.T) {
	view, err := newService(t).Overview(context.Background(), dataset.DateRange{})
	require.NoError(t, err)

	assert.Equal(t, 5, view.Range.Rows)
	assert.Empty(t, view.Range.From)
	assert.Equal(t, 3, view.Overview.Stores)
	assert.Equal(t, 3, view.Overview.Families)
	require.NotEmpty(t, view.TopFamilies)
	assert.Equal(t, "GROCERY", view.TopFamilies[0].Family)
	assert.Equal(t, 170.0, view.TopFamilies[0].Sales)
}

func TestOverview_FilteredRange(t *testing.T) {
	rng := dataset.DateRange{
		From: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	view, err := newService(t).Overview(context.Background(), rng)
	require.NoError(t, err)

	assert.Equal(t, 3, view.Range.Rows)
	assert.Equal(t, "2023-01-01", view.Range.From)
	assert.Equal(t, "2023-01-01", view.Range.To)
	assert.Equal(t, 2, view.Overview.Stores)
}

func TestStores_ListsDistinctStores(t *testing.T) {
	stores, err := newService(t).Stores(context.Background(), dataset.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, stores)
}

func TestStoreStats_NotFoundSentinel(t *testing.T) {
	_, err := newService(t).StoreStats(context.Background(), dataset.DateRange{}, 42)
	assert.ErrorIs(t, err, services.ErrStoreNotFound)
}

func TestStoreStats_Found(t *testing.T) {
	view, err := newService(t).StoreStats(context.Background(), dataset.DateRange{}, 1)
	require.NoError(t, err)
	assert.Equal(t, 140.0, view.Stats.TotalSales)
	assert.Equal(t, 100.0, view.Stats.PromoSales)
}

func TestStateStats_NotFoundSentinel(t *testing.T) {
	_, err := newService(t).StateStats(context.Background(), dataset.DateRange{}, "Atlantis")
	assert.ErrorIs(t, err, services.ErrStateNotFound)
}

func TestStateStats_TransactionsNotDoubleCounted(t *testing.T) {
	view, err := newService(t).StateStats(context.Background(), dataset.DateRange{}, "Pichincha")
	require.NoError(t, err)

	require.Len(t, view.Stats.TransactionsByYear, 1)
	// Store 1 sells two families on 2023-01-01 but its 50 transactions
	// count once.
	assert.Equal(t, 70.0, view.Stats.TransactionsByYear[0].Value)
}

func TestInsights_PromoShareAndRanking(t *testing.T) {
	view, err := newService(t).Insights(context.Background(), dataset.DateRange{})
	require.NoError(t, err)

	assert.Equal(t, 240.0, view.PromoShare.TotalSales)
	assert.Equal(t, 160.0, view.PromoShare.PromoSales)
	require.Len(t, view.DailySeries, 2)
	require.NotEmpty(t, view.StateRanking)
	assert.Equal(t, "Pichincha", view.StateRanking[0].State)
}

func TestService_PropagatesLoadFailure(t *testing.T) {
	svc := brokenService(t)

	_, err := svc.Overview(context.Background(), dataset.DateRange{})
	assert.ErrorIs(t, err, dataset.ErrArchiveMissing)

	_, err = svc.Insights(context.Background(), dataset.DateRange{})
	assert.ErrorIs(t, err, dataset.ErrArchiveMissing)
}

func TestHealth(t *testing.T) {
	info := newService(t).Health(context.Background())
	assert.True(t, info.DatasetLoaded)
	assert.Equal(t, 5, info.SalesRows)
	assert.Equal(t, 4, info.TransactionRows)
	assert.False(t, info.LoadedAt.IsZero())

	broken := brokenService(t).Health(context.Background())
	assert.False(t, broken.DatasetLoaded)
	assert.NotEmpty(t, broken.Error)
}
