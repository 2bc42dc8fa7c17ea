package domain

import "time"

var (
	CarFuelTypes     = []string{"Petrol", "Diesel", "Electric", "Hybrid"}
	CarTransmissions = []string{"Automatic", "Manual"}
	CarCategories    = []string{"Sedan", "SUV", "Sports", "Luxury", "Electric", "Compact"}
)

// MaxCarImages caps how many images one listing carries.
const MaxCarImages = 5

// FeaturedCarsLimit is how many cars the featured listing returns.
const FeaturedCarsLimit = 6

type Car struct {
	ID             int64     `json:"id"`
	AgentID        int64     `json:"agent_id"`
	Brand          string    `json:"brand"`
	Model          string    `json:"model"`
	Year           int       `json:"year"`
	Color          string    `json:"color"`
	LicensePlate   string    `json:"license_plate"`
	FuelType       string    `json:"fuel_type"`
	Transmission   string    `json:"transmission"`
	Seats          int       `json:"seats"`
	PricePerDay    Money     `json:"price_per_day"`
	GuaranteePrice Money     `json:"guarantee_price"`
	Category       string    `json:"category"`
	Images         []string  `json:"images"`
	IsAvailable    bool      `json:"is_available"`
	AverageRating  float64   `json:"average_rating"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CarFilter narrows the public catalog. Zero values mean "any".
type CarFilter struct {
	Category     string
	MinPrice     Money
	MaxPrice     Money
	Transmission string
	FuelType     string
	Search       string
	// IncludeUnavailable lists booked cars as well; the public catalog leaves it off.
	IncludeUnavailable bool
}

// CarUpdate carries the editable listing fields. Nil means unchanged.
type CarUpdate struct {
	Brand          *string `json:"brand,omitempty"`
	Model          *string `json:"model,omitempty"`
	Year           *int    `json:"year,omitempty"`
	Color          *string `json:"color,omitempty"`
	FuelType       *string `json:"fuel_type,omitempty"`
	Transmission   *string `json:"transmission,omitempty"`
	Seats          *int    `json:"seats,omitempty"`
	PricePerDay    *Money  `json:"price_per_day,omitempty"`
	GuaranteePrice *Money  `json:"guarantee_price,omitempty"`
	Category       *string `json:"category,omitempty"`
}

func (u CarUpdate) Apply(c *Car) {
	if u.Brand != nil {
		c.Brand = *u.Brand
	}
	if u.Model != nil {
		c.Model = *u.Model
	}
	if u.Year != nil {
		c.Year = *u.Year
	}
	if u.Color != nil {
		c.Color = *u.Color
	}
	if u.FuelType != nil {
		c.FuelType = *u.FuelType
	}
	if u.Transmission != nil {
		c.Transmission = *u.Transmission
	}
	if u.Seats != nil {
		c.Seats = *u.Seats
	}
	if u.PricePerDay != nil {
		c.PricePerDay = *u.PricePerDay
	}
	if u.GuaranteePrice != nil {
		c.GuaranteePrice = *u.GuaranteePrice
	}
	if u.Category != nil {
		c.Category = *u.Category
	}
}
