package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFirmsCSV(t *testing.T, dir, name string, rows []string) string {
	t.Helper()
	content := "latitude,longitude,acq_date,confidence\n" + strings.Join(rows, "\n") + "\n"
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestIsHighConfidence(t *testing.T) {
	cases := []struct {
		confidence string
		expected   bool
	}{
		{"h", true},
		{"high", true},
		{"95", true},
		{"80", true},
		{"79", false},
		{"n", false},
		{"l", false},
		{"low", false},
		{"", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, isHighConfidence(tc.confidence), "confidence %q", tc.confidence)
	}
}

func TestShiftDate(t *testing.T) {
	shifted, err := shiftDate("2023-07-15", -safeShiftDays)
	require.NoError(t, err)
	assert.Equal(t, "2023-01-16", shifted)

	_, err = shiftDate("15/07/2023", -safeShiftDays)
	assert.Error(t, err)
}

func TestSampleFirePoints_PairsEachFireWithShiftedNegative(t *testing.T) {
	dir := t.TempDir()
	writeFirmsCSV(t, dir, "portugal.csv", []string{
		"39.500000,-8.200000,2023-08-01,h",
		"39.600000,-8.300000,2023-08-02,95",
		"39.700000,-8.400000,2023-08-03,n",
		"39.800000,-8.500000,2023-08-04,40",
	})

	points, err := SampleFirePoints(dir, 10)
	require.NoError(t, err)

	// Two high-confidence fires, each paired with a negative twin.
	require.Len(t, points, 4)

	fires := 0
	negatives := 0
	for _, p := range points {
		if p.FireOccurred == 1 {
			fires++
		} else {
			negatives++
			// The negative keeps the location but moves half a year back.
			shifted, shiftErr := shiftDate(p.AcqDate, safeShiftDays)
			require.NoError(t, shiftErr)
			found := false
			for _, q := range points {
				if q.FireOccurred == 1 && q.Latitude == p.Latitude && q.Longitude == p.Longitude && q.AcqDate == shifted {
					found = true
				}
			}
			assert.True(t, found, "negative at (%f, %f) has no positive twin", p.Latitude, p.Longitude)
		}
	}
	assert.Equal(t, 2, fires)
	assert.Equal(t, 2, negatives)
}

func TestSampleFirePoints_CapsSampleAtTarget(t *testing.T) {
	dir := t.TempDir()
	rows := make([]string, 0, 30)
	for i := 0; i < 30; i++ {
		rows = append(rows, fmt.Sprintf("40.%06d,-8.000000,2023-08-01,h", i))
	}
	writeFirmsCSV(t, dir, "spain.csv", rows)

	points, err := SampleFirePoints(dir, 5)
	require.NoError(t, err)
	assert.Len(t, points, 10)
}

func TestSampleFirePoints_CapsFiresPerCountry(t *testing.T) {
	dir := t.TempDir()
	rows := make([]string, 0, maxFiresPerCountry+20)
	for i := 0; i < maxFiresPerCountry+20; i++ {
		rows = append(rows, fmt.Sprintf("40.%06d,-8.000000,2023-08-01,h", i))
	}
	writeFirmsCSV(t, dir, "greece.csv", rows)

	points, err := SampleFirePoints(dir, 1000)
	require.NoError(t, err)
	assert.Len(t, points, maxFiresPerCountry*2)
}

func TestSampleFirePoints_NoFilesFound(t *testing.T) {
	_, err := SampleFirePoints(t.TempDir(), 10)
	assert.ErrorContains(t, err, "no CSV files found")
}

func TestSampleFirePoints_NoHighConfidenceFires(t *testing.T) {
	dir := t.TempDir()
	writeFirmsCSV(t, dir, "iceland.csv", []string{
		"64.100000,-21.900000,2023-08-01,l",
	})

	_, err := SampleFirePoints(dir, 10)
	assert.ErrorContains(t, err, "no high-confidence fires")
}

func TestWriteSampledPoints_RoundTrip(t *testing.T) {
	points := []LabeledPoint{
		{Latitude: 39.5, Longitude: -8.2, AcqDate: "2023-08-01", FireOccurred: 1},
		{Latitude: 39.5, Longitude: -8.2, AcqDate: "2023-02-02", FireOccurred: 0},
	}

	outputFile := filepath.Join(t.TempDir(), "sampled.csv")
	require.NoError(t, WriteSampledPoints(points, outputFile))

	readBack, err := readLabeledPoints(outputFile)
	require.NoError(t, err)
	assert.Equal(t, points, readBack)
}
