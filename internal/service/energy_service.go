package service

import (
	"math"
	"time"

	"github.com/evdash/evdash-backend-go/internal/config"
	"github.com/evdash/evdash-backend-go/internal/repository"
	"github.com/evdash/evdash-backend-go/pkg/models"
)

const dateLayout = "2006-01-02"

// EnergyService computes the electric-vs-fossil cost and emissions
// comparison.
type EnergyService struct {
	trips    *repository.TripRepository
	defaults config.EnergyDefaults
}

// NewEnergyService creates a new energy service
func NewEnergyService(trips *repository.TripRepository, defaults config.EnergyDefaults) *EnergyService {
	return &EnergyService{trips: trips, defaults: defaults}
}

// DefaultParams returns the server baseline parameter set.
func (s *EnergyService) DefaultParams() models.EnergyParams {
	return models.EnergyParams{
		ElectricityPrice:    s.defaults.ElectricityPrice,
		GasolinePrice:       s.defaults.GasolinePrice,
		DieselPrice:         s.defaults.DieselPrice,
		GasolineConsumption: s.defaults.GasolineConsumption,
		DieselConsumption:   s.defaults.DieselConsumption,
		CO2Gasoline:         s.defaults.CO2Gasoline,
		CO2Diesel:           s.defaults.CO2Diesel,
	}
}

// DefaultComparison computes the comparison over the full history with
// the baseline parameter set.
func (s *EnergyService) DefaultComparison() (*models.EnergyComparison, error) {
	distance, consumption, err := s.trips.Totals("", "")
	if err != nil {
		return nil, err
	}

	result := Compare(models.EnergyTotals{DistanceKm: distance, ConsumptionKwh: consumption}, s.DefaultParams())
	return &result, nil
}

// CustomComparison computes the comparison with caller-supplied
// parameters, optionally restricted to an inclusive date range.
// Missing parameters fall back to the server defaults.
func (s *EnergyService) CustomComparison(req models.EnergyRequest) (*models.EnergyComparison, error) {
	params, err := s.resolveParams(req)
	if err != nil {
		return nil, err
	}

	dateFrom, dateTo, err := validateDateRange(req.DateFrom, req.DateTo)
	if err != nil {
		return nil, err
	}

	distance, consumption, err := s.trips.Totals(dateFrom, dateTo)
	if err != nil {
		return nil, err
	}

	result := Compare(models.EnergyTotals{DistanceKm: distance, ConsumptionKwh: consumption}, params)
	result.CustomCalculation = true
	return &result, nil
}

func (s *EnergyService) resolveParams(req models.EnergyRequest) (models.EnergyParams, error) {
	params := s.DefaultParams()

	fields := []struct {
		name  string
		src   *float64
		dst   *float64
	}{
		{"electricity_price", req.ElectricityPrice, &params.ElectricityPrice},
		{"gasoline_price", req.GasolinePrice, &params.GasolinePrice},
		{"diesel_price", req.DieselPrice, &params.DieselPrice},
		{"gasoline_consumption", req.GasolineConsumption, &params.GasolineConsumption},
		{"diesel_consumption", req.DieselConsumption, &params.DieselConsumption},
		{"co2_gasoline", req.CO2Gasoline, &params.CO2Gasoline},
		{"co2_diesel", req.CO2Diesel, &params.CO2Diesel},
	}
	for _, f := range fields {
		if f.src == nil {
			continue
		}
		if *f.src < 0 {
			return models.EnergyParams{}, validationErrorf("%s must not be negative", f.name)
		}
		*f.dst = *f.src
	}

	return params, nil
}

// validateDateRange checks an optional [from, to] filter. The filter
// only applies when both bounds are present, matching the contract of
// the dashboard's custom calculation form.
func validateDateRange(from, to string) (string, string, error) {
	if from == "" || to == "" {
		return "", "", nil
	}

	fromDate, err := time.Parse(dateLayout, from)
	if err != nil {
		return "", "", validationErrorf("date_from is not a valid date: %s", from)
	}
	toDate, err := time.Parse(dateLayout, to)
	if err != nil {
		return "", "", validationErrorf("date_to is not a valid date: %s", to)
	}
	if fromDate.After(toDate) {
		return "", "", validationErrorf("date_from must not be after date_to")
	}

	return from, to, nil
}

// Compare derives the full comparison from totals and a parameter set.
// It is a pure function: identical inputs always yield identical
// results.
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
			VsGasoline: savings(gasolineCost, electricCost),
			VsDiesel:   savings(dieselCost, electricCost),
		},
		Emissions: models.EmissionSet{
			GasolineKg: round1(totals.DistanceKm * p.CO2Gasoline / 1000),
			DieselKg:   round1(totals.DistanceKm * p.CO2Diesel / 1000),
			ElectricKg: 0,
		},
	}
}

// savings reports the electric saving against one fossil baseline.
// A zero fossil cost yields a zero percentage, never a division error.
func savings(fossilCost, electricCost float64) models.FuelSavings {
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

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
