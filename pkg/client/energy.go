package client

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/evdash/evdash-backend-go/pkg/models"
)

const dateLayout = "2006-01-02"

// Calculator is a session around the cost/emissions comparison. It
// starts in default mode (GET, server-side defaults); SetCustom
// switches to custom mode (POST) until Reset.
type Calculator struct {
	client *Client

	mu     sync.Mutex
	custom *models.EnergyRequest
}

// NewCalculator creates a calculator in default mode.
func NewCalculator(client *Client) *Calculator {
	return &Calculator{client: client}
}

// SetCustom installs a custom parameter set and optional inclusive
// date range for subsequent Fetch calls. All parameters must be
// present and non-negative and the range well-formed; violations are
// rejected locally with no network traffic.
func (calc *Calculator) SetCustom(params models.EnergyParams, dateFrom, dateTo string) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"electricity_price", params.ElectricityPrice},
		{"gasoline_price", params.GasolinePrice},
		{"diesel_price", params.DieselPrice},
		{"gasoline_consumption", params.GasolineConsumption},
		{"diesel_consumption", params.DieselConsumption},
		{"co2_gasoline", params.CO2Gasoline},
		{"co2_diesel", params.CO2Diesel},
	}
	for _, f := range fields {
		if f.value < 0 {
			return validationErrorf("%s must not be negative", f.name)
		}
	}
	if err := checkDateRange(dateFrom, dateTo); err != nil {
		return err
	}

	calc.mu.Lock()
	calc.custom = &models.EnergyRequest{
		ElectricityPrice:    &params.ElectricityPrice,
		GasolinePrice:       &params.GasolinePrice,
		DieselPrice:         &params.DieselPrice,
		GasolineConsumption: &params.GasolineConsumption,
		DieselConsumption:   &params.DieselConsumption,
		CO2Gasoline:         &params.CO2Gasoline,
		CO2Diesel:           &params.CO2Diesel,
		DateFrom:            dateFrom,
		DateTo:              dateTo,
	}
	calc.mu.Unlock()
	return nil
}

// Reset drops any custom parameters; the next Fetch uses the server
// defaults over the full history again.
func (calc *Calculator) Reset() {
	calc.mu.Lock()
	calc.custom = nil
	calc.mu.Unlock()
}

// Custom reports whether a custom parameter set is active.
func (calc *Calculator) Custom() bool {
	calc.mu.Lock()
	defer calc.mu.Unlock()
	return calc.custom != nil
}

// Fetch retrieves the comparison for the session's current mode.
func (calc *Calculator) Fetch(ctx context.Context) (*models.EnergyComparison, error) {
	calc.mu.Lock()
	custom := calc.custom
	calc.mu.Unlock()

	if custom == nil {
		return calc.client.EnergyDefault(ctx)
	}
	return calc.client.EnergyCustom(ctx, *custom)
}

// Compare mirrors the server's comparison math so a UI can recompute
// locally without a round trip. Identical inputs yield the exact
// payload the server would return, custom_calculation flag aside.
func Compare(totals models.EnergyTotals, p models.EnergyParams) models.EnergyComparison {
	electricCost := totals.ConsumptionKwh * p.ElectricityPrice
	gasolineCost := totals.DistanceKm / 100 * p.GasolineConsumption * p.GasolinePrice
	dieselCost := totals.DistanceKm / 100 * p.DieselConsumption * p.DieselPrice

	return models.EnergyComparison{
		Totals: models.EnergyTotals{
			DistanceKm:     round1(totals.DistanceKm),
			ConsumptionKwh: round1(totals.ConsumptionKwh),
		},
		Prices: models.PriceSet{
			Electricity: p.ElectricityPrice,
			Gasoline:    p.GasolinePrice,
			Diesel:      p.DieselPrice,
		},
		Consumptions: models.ConsumptionSet{
			GasolineL100km: p.GasolineConsumption,
			DieselL100km:   p.DieselConsumption,
		},
		EmissionsFactors: models.EmissionFactorSet{
			GasolineGKm: p.CO2Gasoline,
			DieselGKm:   p.CO2Diesel,
		},
		Costs: models.CostSet{
			Electric: round2(electricCost),
			Gasoline: round2(gasolineCost),
			Diesel:   round2(dieselCost),
		},
		Savings: models.SavingsSet{
			VsGasoline: fuelSavings(gasolineCost, electricCost),
			VsDiesel:   fuelSavings(dieselCost, electricCost),
		},
		Emissions: models.EmissionSet{
			GasolineKg: round1(totals.DistanceKm * p.CO2Gasoline / 1000),
			DieselKg:   round1(totals.DistanceKm * p.CO2Diesel / 1000),
			ElectricKg: 0,
		},
	}
}

func fuelSavings(fossilCost, electricCost float64) models.FuelSavings {
	amount := fossilCost - electricCost
	pct := 0.0
	if fossilCost > 0 {
		pct = amount / fossilCost * 100
	}
	return models.FuelSavings{
		Amount:     round2(amount),
		Percentage: round1(pct),
	}
}

func checkDateRange(from, to string) error {
	if from == "" && to == "" {
		return nil
	}
	if from == "" || to == "" {
		return validationErrorf("date_from and date_to must be provided together")
	}
	fromDate, err := time.Parse(dateLayout, from)
	if err != nil {
		return validationErrorf("date_from is not a valid date: %s", from)
	}
	toDate, err := time.Parse(dateLayout, to)
	if err != nil {
		return validationErrorf("date_to is not a valid date: %s", to)
	}
	if fromDate.After(toDate) {
		return validationErrorf("date_from must not be after date_to")
	}
	return nil
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
