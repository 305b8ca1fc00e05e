package data

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCropCSV(t *testing.T) {
	ds, err := LoadCropCSV("testdata/crops.csv", 2004)
	require.NoError(t, err)
	require.Len(t, ds.Records, 7)

	wheat := ds.Records[0]
	assert.Equal(t, 0, wheat.Row)
	assert.Equal(t, "Wheat", wheat.Crop)
	assert.Equal(t, "Kansas", wheat.Location)
	assert.Equal(t, time.Date(2004, 9, 15, 0, 0, 0, 0, time.UTC), wheat.PlantStart)
	assert.Equal(t, time.Date(2004, 7, 15, 0, 0, 0, 0, time.UTC), wheat.HarvestEnd)
	assert.Equal(t, 120.5, wheat.HarvestedArea)
	assert.Equal(t, 270.0, wheat.TotalDays)
	assert.Equal(t, 280.0, wheat.PlantMedian)

	assert.True(t, math.IsNaN(ds.Records[4].HarvestedArea), "empty numeric cell is NaN")
	assert.True(t, ds.Records[6].PlantStart.IsZero(), "empty date cell is zero time")
}

func TestLoadCropCSV_AddsDerivedDateColumns(t *testing.T) {
	ds, err := LoadCropCSV("testdata/crops.csv", 2004)
	require.NoError(t, err)

	names := ds.Frame.Names()
	assert.Contains(t, names, "Plant.start.datetime")
	assert.Contains(t, names, "Harvest.end.datetime")
	assert.Contains(t, names, "Data.ID", "unused source columns are kept")

	col := ds.Frame.Col("Plant.start.datetime").Records()
	assert.Equal(t, "2004-09-15", col[0])
}

func TestReadCropCSV_LeapYearStamp(t *testing.T) {
	csv := "Crop,Location,Plant.start.date,Plant.end.date,Harvest.start.date,Harvest.end.date," +
		"temp.min,temp.max,precip.min,precip.max,harvested.area,tot.days,Plant.median,precip.at.planting,temp.at.planting\n" +
		"Oats,X,2/29,3/1,7/1,7/2,1,2,3,4,5,6,7,8,9\n"

	ds, err := ReadCropCSV(strings.NewReader(csv), 2004)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2004, 2, 29, 0, 0, 0, 0, time.UTC), ds.Records[0].PlantStart)

	ds, err = ReadCropCSV(strings.NewReader(csv), 2005)
	require.NoError(t, err)
	assert.True(t, ds.Records[0].PlantStart.IsZero(), "Feb 29 does not exist in 2005")
}

func TestReadCropCSV_MissingMarkersBecomeBlank(t *testing.T) {
	csv := "Crop,Location,Plant.start.date,Plant.end.date,Harvest.start.date,Harvest.end.date," +
		"temp.min,temp.max,precip.min,precip.max,harvested.area,tot.days,Plant.median,precip.at.planting,temp.at.planting\n" +
		"Oats,X,NA,3/1,7/1,7/2,1,2,3,4,NA,NaN,7,8,9\n"

	ds, err := ReadCropCSV(strings.NewReader(csv), 2004)
	require.NoError(t, err)
	rec := ds.Records[0]
	assert.True(t, rec.PlantStart.IsZero())
	assert.True(t, math.IsNaN(rec.HarvestedArea))
	assert.True(t, math.IsNaN(rec.TotalDays))

	var buf bytes.Buffer
	require.NoError(t, WriteRecordsCSV(&buf, ds, []int{0}))
	rows := readCSV(t, buf.Bytes())
	require.Len(t, rows, 2)
	cell := func(name string) string {
		for i, n := range rows[0] {
			if n == name {
				return rows[1][i]
			}
		}
		t.Fatalf("column %s not written", name)
		return ""
	}
	assert.Equal(t, "", cell(ColPlantStart))
	assert.Equal(t, "", cell(ColHarvestedArea))
	assert.Equal(t, "", cell(ColTotalDays))
	assert.Equal(t, "", cell("Plant.start.datetime"))
	assert.Equal(t, "3/1", cell(ColPlantEnd))
}

func TestReadCropCSV_MissingColumns(t *testing.T) {
	_, err := ReadCropCSV(strings.NewReader("Crop,Location\nWheat,Kansas\n"), 2004)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "temp.min")
}

func TestLoadCropCSV_MissingFile(t *testing.T) {
	_, err := LoadCropCSV("testdata/nope.csv", 2004)
	require.Error(t, err)
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, 1.5, parseNumber(" 1.5 "))
	assert.True(t, math.IsNaN(parseNumber("")))
	assert.True(t, math.IsNaN(parseNumber("n/a")))
}
