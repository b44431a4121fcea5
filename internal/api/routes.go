package api

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/firewatch/firewatch-risk-api/internal/analysis"
	"github.com/firewatch/firewatch-risk-api/internal/geo"
	"github.com/firewatch/firewatch-risk-api/internal/weather"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// Analyzer runs one analysis request. Satisfied by analysis.Service.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (analysis.Result, error)
}

// AnalyzeRequest is the JSON body of POST /api/analyze. The bbox is ordered
// [min_lon, min_lat, max_lon, max_lat] and dates are ISO (YYYY-MM-DD).
type AnalyzeRequest struct {
	BBox        []float64 `json:"bbox" validate:"required,len=4"`
	Zoom        float64   `json:"zoom" validate:"gte=0"`
	StartDate   string    `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string    `json:"end_date" validate:"required,datetime=2006-01-02"`
	IncludeWind bool      `json:"include_wind"`
}

// AnalyzeResponse mirrors the frontend contract: images travel base64
// encoded, bounds as [[min_lat, min_lon], [max_lat, max_lon]].
type AnalyzeResponse struct {
	Status    string           `json:"status"`
	Message   string           `json:"message,omitempty"`
	RiskScore int              `json:"risk_score"`
	Weather   *weather.Summary `json:"weather,omitempty"`
	ImageNDVI string           `json:"image_ndvi,omitempty"`
	ImageRGB  string           `json:"image_rgb,omitempty"`
	ImageWind string           `json:"image_wind,omitempty"`
	Bounds    [][]float64      `json:"bounds,omitempty"`
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, analyzer Analyzer) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Post("/api/analyze", func(c *fiber.Ctx) error {
		var req AnalyzeRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		bbox, err := geo.NewBoundingBox(req.BBox[0], req.BBox[1], req.BBox[2], req.BBox[3])
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		startDate, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid start_date")
		}
		endDate, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid end_date")
		}

		result, _ := analyzer.Analyze(c.Context(), analysis.Request{
			BBox:        bbox,
			Zoom:        req.Zoom,
			StartDate:   startDate,
			EndDate:     endDate,
			IncludeWind: req.IncludeWind,
		})

		return c.JSON(toResponse(result))
	})
}

func toResponse(result analysis.Result) AnalyzeResponse {
	if result.Status != analysis.StatusSuccess {
		return AnalyzeResponse{Status: result.Status, Message: result.Message}
	}

	summary := result.Weather
	resp := AnalyzeResponse{
		Status:    result.Status,
		RiskScore: result.RiskScore,
		Weather:   &summary,
		ImageNDVI: base64.StdEncoding.EncodeToString(result.ImageNDVI),
		ImageRGB:  base64.StdEncoding.EncodeToString(result.ImageRGB),
		Bounds: [][]float64{
			{result.Bounds[0][0], result.Bounds[0][1]},
			{result.Bounds[1][0], result.Bounds[1][1]},
		},
	}
	if len(result.ImageWind) > 0 {
		resp.ImageWind = base64.StdEncoding.EncodeToString(result.ImageWind)
	}
	return resp
}
