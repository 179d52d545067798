package dataset_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/dataset"
	"salespulse/internal/shared/testutil"
)

const salesHeader = "date,store_nbr,family,sales,onpromotion,state,city,transactions"

func loadTable(t *testing.T, part1CSV, part2CSV string) *dataset.SalesTable {
	t.Helper()
	dir := t.TempDir()
	p1 := testutil.WriteSalesArchive(t, dir, "part_1.zip", part1CSV)
	p2 := testutil.WriteSalesArchive(t, dir, "part_2.zip", part2CSV)

	table, err := dataset.NewLoader(p1, p2, nil).Load(context.Background())
	require.NoError(t, err)
	return table
}

func TestLoader_ConcatenatesPart1BeforePart2(t *testing.T) {
	part1 := salesHeader + "\n" +
		"2023-01-01,1,GROCERY,10.0,0,Pichincha,Quito,50\n" +
		"2023-01-01,1,BEVERAGES,5.0,1,Pichincha,Quito,50\n"
	part2 := salesHeader + "\n" +
		"2023-01-02,2,GROCERY,20.0,0,Guayas,Guayaquil,80\n"

	table := loadTable(t, part1, part2)

	require.Equal(t, 3, table.Len())
	// Part-1 rows keep their relative order and precede part-2 rows.
	assert.Equal(t, "GROCERY", table.Rows[0].Family)
	assert.Equal(t, "BEVERAGES", table.Rows[1].Family)
	assert.Equal(t, int64(2), table.Rows[2].StoreNbr.Int64)
}

func TestLoader_DropsStrayIndexColumn(t *testing.T) {
	part1 := "Unnamed: 0," + salesHeader + "\n" +
		"0,2023-01-01,1,GROCERY,10.0,0,Pichincha,Quito,50\n"
	part2 := salesHeader + "\n" +
		"2023-01-02,2,GROCERY,20.0,0,Guayas,Guayaquil,80\n"

	table := loadTable(t, part1, part2)

	assert.False(t, table.HasColumn("Unnamed: 0"))
	assert.True(t, table.HasColumn(dataset.ColDate))
	assert.Equal(t, int64(1), table.Rows[0].StoreNbr.Int64)
	assert.Equal(t, 10.0, table.Rows[0].Sales)
}

func TestLoader_LenientCoercion(t *testing.T) {
	part1 := salesHeader + "\n" +
		"not-a-date,abc,GROCERY,garbage,maybe,Pichincha,Quito,oops\n" +
		"2023-03-15,12.0,DAIRY,,,Azuay,Cuenca,\n"
	part2 := salesHeader + "\n" +
		"2023-01-02,2,GROCERY,20.0,0,Guayas,Guayaquil,80\n"

	table := loadTable(t, part1, part2)
	require.Equal(t, 3, table.Len())

	bad := table.Rows[0]
	assert.True(t, bad.Date.IsZero(), "unparseable date degrades to missing")
	assert.False(t, bad.StoreNbr.Valid, "unparseable store degrades to missing")
	assert.Equal(t, 0.0, bad.Sales, "unparseable sales defaults to 0.0")
	assert.Equal(t, int64(0), bad.OnPromotion, "unparseable onpromotion defaults to 0")
	assert.Equal(t, 0.0, bad.Transactions)

	floaty := table.Rows[1]
	assert.True(t, floaty.StoreNbr.Valid)
	assert.Equal(t, int64(12), floaty.StoreNbr.Int64, "integral float store is accepted")
	assert.Equal(t, 0.0, floaty.Sales, "empty sales defaults to 0.0")
}

func TestLoader_DerivesCalendarFields(t *testing.T) {
	part1 := salesHeader + "\n" +
		"2023-01-02,1,GROCERY,10.0,0,Pichincha,Quito,50\n" +
		"not-a-date,1,DAIRY,5.0,0,Pichincha,Quito,50\n"
	part2 := salesHeader + "\n" +
		"2024-12-31,2,GROCERY,20.0,0,Guayas,Guayaquil,80\n"

	table := loadTable(t, part1, part2)

	assert.True(t, table.HasColumn(dataset.ColYear))
	assert.True(t, table.HasColumn(dataset.ColMonth))
	assert.True(t, table.HasColumn(dataset.ColWeek))

	first := table.Rows[0]
	assert.Equal(t, 2023, first.Year)
	assert.Equal(t, 1, first.Month)
	// 2023-01-02 is a Monday, ISO week 1.
	assert.Equal(t, 1, first.Week)

	missing := table.Rows[1]
	assert.Zero(t, missing.Year)
	assert.Zero(t, missing.Week)

	last := table.Rows[2]
	assert.Equal(t, 2024, last.Year)
	// 2024-12-31 belongs to ISO week 1 of 2025.
	assert.Equal(t, 1, last.Week)
}

func TestLoader_KeepsSourceCalendarColumns(t *testing.T) {
	header := salesHeader + ",year,month,week"
	part1 := header + "\n" +
		"2023-01-02,1,GROCERY,10.0,0,Pichincha,Quito,50,1999,7,42\n"
	part2 := header + "\n" +
		"2023-01-03,2,GROCERY,20.0,0,Guayas,Guayaquil,80,1999,7,42\n"

	table := loadTable(t, part1, part2)

	// Source-supplied calendar columns win over derivation.
	assert.Equal(t, 1999, table.Rows[0].Year)
	assert.Equal(t, 7, table.Rows[0].Month)
	assert.Equal(t, 42, table.Rows[0].Week)
}

func TestLoader_PropagatesArchiveFailure(t *testing.T) {
	dir := t.TempDir()
	p1 := testutil.WriteSalesArchive(t, dir, "part_1.zip", salesHeader+"\n2023-01-01,1,GROCERY,1,0,P,Q,5\n")

	_, err := dataset.NewLoader(p1, dir+"/missing.zip", nil).Load(context.Background())

	assert.ErrorIs(t, err, dataset.ErrArchiveMissing)
}

func TestLoader_DifferentColumnOrderAcrossParts(t *testing.T) {
	part1 := "date,store_nbr,family,sales,onpromotion,state,city,transactions\n" +
		"2023-01-01,1,GROCERY,10.0,0,Pichincha,Quito,50\n"
	part2 := "sales,date,family,store_nbr,onpromotion,state,city,transactions\n" +
		"20.0,2023-01-02,DAIRY,2,1,Guayas,Guayaquil,80\n"

	table := loadTable(t, part1, part2)

	require.Equal(t, 2, table.Len())
	second := table.Rows[1]
	assert.Equal(t, 20.0, second.Sales)
	assert.Equal(t, time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), second.Date)
	assert.Equal(t, int64(2), second.StoreNbr.Int64)
}
