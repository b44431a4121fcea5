package sentinel

import (
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/airbusgeo/godal"
	"github.com/firewatch/firewatch-risk-api/internal/raster"
)

// bandOrder matches the evalscript output layout.
var bandOrder = []string{raster.BandBlue, raster.BandGreen, raster.BandRed, raster.BandNIR, "dataMask"}

var driversOnce sync.Once

// registerDrivers loads the GDAL driver registry. godal only checks the GDAL
// version on import; without this call GDALOpenEx cannot recognize GeoTIFF.
func registerDrivers() {
	driversOnce.Do(godal.RegisterAll)
}

// ParseCube decodes a process API GeoTIFF response into a raster cube.
// Pixels where the data mask is zero become NaN in every reflectance band;
// a fully masked scene yields ErrNoSatelliteData.
func ParseCube(tiff []byte) (*raster.Cube, error) {
	registerDrivers()

	tmp, err := os.CreateTemp("", "firewatch_scene_*.tif")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary TIFF file: %v", err)
	}
	tmpFile := tmp.Name()
	defer os.Remove(tmpFile)
	if _, err := tmp.Write(tiff); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to write temporary TIFF file: %v", err)
	}
	tmp.Close()

	ds, err := godal.Open(tmpFile, godal.ErrLogger(func(ec godal.ErrorCategory, code int, msg string) error {
		if ec == godal.CE_Warning {
			return nil
		}
		return fmt.Errorf("gdal error %d: %s", code, msg)
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to open TIFF: %v", err)
	}
	defer ds.Close()

	dsBands := ds.Bands()
	if len(dsBands) < len(bandOrder) {
		return nil, fmt.Errorf("expected %d bands in response, got %d", len(bandOrder), len(dsBands))
	}

	width := ds.Structure().SizeX
	height := ds.Structure().SizeY

	grids := make(map[string][][]float64, len(bandOrder))
	for i, name := range bandOrder {
		data := make([]float64, width*height)
		if err := dsBands[i].Read(0, 0, data, width, height); err != nil {
			return nil, fmt.Errorf("failed to read band %s: %v", name, err)
		}
		grid := make([][]float64, height)
		for y := 0; y < height; y++ {
			grid[y] = data[y*width : (y+1)*width]
		}
		grids[name] = grid
	}

	mask := grids["dataMask"]
	delete(grids, "dataMask")

	anyValid := false
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if mask[y][x] == 0 {
				for _, name := range bandOrder[:4] {
					grids[name][y][x] = math.NaN()
				}
				continue
			}
			anyValid = true
		}
	}
	if !anyValid {
		return nil, ErrNoSatelliteData
	}

	return raster.NewCube(grids)
}
