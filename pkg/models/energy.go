package models

// EnergyParams is a fully resolved parameter set for the cost/emissions
// comparison. All fields must be >= 0.
type EnergyParams struct {
	ElectricityPrice    float64 `json:"electricity_price"`    // EUR/kWh
	GasolinePrice       float64 `json:"gasoline_price"`       // EUR/L
	DieselPrice         float64 `json:"diesel_price"`         // EUR/L
	GasolineConsumption float64 `json:"gasoline_consumption"` // L/100km
	DieselConsumption   float64 `json:"diesel_consumption"`   // L/100km
	CO2Gasoline         float64 `json:"co2_gasoline"`         // g/km
	CO2Diesel           float64 `json:"co2_diesel"`           // g/km
}

// EnergyRequest is the POST /api/energy_costs body. Missing fields fall
// back to the server defaults; an optional date range restricts which
// trips feed the totals (inclusive of both endpoints).
type EnergyRequest struct {
	ElectricityPrice    *float64 `json:"electricity_price"`
	GasolinePrice       *float64 `json:"gasoline_price"`
	DieselPrice         *float64 `json:"diesel_price"`
	GasolineConsumption *float64 `json:"gasoline_consumption"`
	DieselConsumption   *float64 `json:"diesel_consumption"`
	CO2Gasoline         *float64 `json:"co2_gasoline"`
	CO2Diesel           *float64 `json:"co2_diesel"`
	DateFrom            string   `json:"date_from"` // YYYY-MM-DD
	DateTo              string   `json:"date_to"`
}

// EnergyTotals are the trip aggregates a comparison was computed from.
type EnergyTotals struct {
	DistanceKm     float64 `json:"distance_km"`
	ConsumptionKwh float64 `json:"consumption_kwh"`
}

// PriceSet echoes the prices used.
type PriceSet struct {
	Electricity float64 `json:"electricity"`
	Gasoline    float64 `json:"gasoline"`
	Diesel      float64 `json:"diesel"`
}

// ConsumptionSet echoes the fossil consumption figures used.
type ConsumptionSet struct {
	GasolineL100km float64 `json:"gasoline_l_100km"`
	DieselL100km   float64 `json:"diesel_l_100km"`
}

// EmissionFactorSet echoes the CO2 factors used.
type EmissionFactorSet struct {
	GasolineGKm float64 `json:"gasoline_g_km"`
	DieselGKm   float64 `json:"diesel_g_km"`
}

// CostSet holds the per-energy-source cost of the trip set.
type CostSet struct {
	Electric float64 `json:"electric"`
	Gasoline float64 `json:"gasoline"`
	Diesel   float64 `json:"diesel"`
}

// FuelSavings is the electric saving against one fossil baseline.
type FuelSavings struct {
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// SavingsSet groups savings per fossil baseline.
type SavingsSet struct {
	VsGasoline FuelSavings `json:"vs_gasoline"`
	VsDiesel   FuelSavings `json:"vs_diesel"`
}

// EmissionSet holds CO2 figures in kg. The electric figure is reported
// as zero: the comparison frames fossil emissions as avoided, gross of
// any generation mix.
type EmissionSet struct {
	GasolineKg float64 `json:"gasoline_kg"`
	DieselKg   float64 `json:"diesel_kg"`
	ElectricKg float64 `json:"electric_kg"`
}

// EnergyComparison is the payload of GET/POST /api/energy_costs.
type EnergyComparison struct {
	Totals            EnergyTotals      `json:"totals"`
	Prices            PriceSet          `json:"prices"`
	Consumptions      ConsumptionSet    `json:"consumptions"`
	EmissionsFactors  EmissionFactorSet `json:"emissions_factors"`
	Costs             CostSet           `json:"costs"`
	Savings           SavingsSet        `json:"savings"`
	Emissions         EmissionSet       `json:"emissions"`
	CustomCalculation bool              `json:"custom_calculation"`
}
