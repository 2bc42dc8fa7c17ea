package http

import (
	"time"

	"karhubty-backend/internal/domain"
	"karhubty-backend/internal/utils"
)

type registerUserRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
}

type registerAgentRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8"`
	FirstName     string `json:"first_name" validate:"required"`
	LastName      string `json:"last_name" validate:"required"`
	AgencyName    string `json:"agency_name" validate:"required"`
	AgencyAddress string `json:"agency_address"`
	City          string `json:"city" validate:"required"`
	Phone         string `json:"phone" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken string         `json:"access_token"`
	Account     domain.Account `json:"account"`
}

type carRequest struct {
	Brand          string       `json:"brand" validate:"required"`
	Model          string       `json:"model" validate:"required"`
	Year           int          `json:"year" validate:"required,gte=1950,lte=2100"`
	Color          string       `json:"color"`
	LicensePlate   string       `json:"license_plate" validate:"required"`
	FuelType       string       `json:"fuel_type" validate:"omitempty,oneof=Petrol Diesel Electric Hybrid"`
	Transmission   string       `json:"transmission" validate:"omitempty,oneof=Automatic Manual"`
	Seats          int          `json:"seats" validate:"omitempty,gte=1,lte=60"`
	PricePerDay    domain.Money `json:"price_per_day" validate:"gt=0"`
	GuaranteePrice domain.Money `json:"guarantee_price" validate:"gte=0"`
	Category       string       `json:"category" validate:"omitempty,oneof=Sedan SUV Sports Luxury Electric Compact"`
}

func (c carRequest) toCar() *domain.Car {
	return &domain.Car{
		Brand:          c.Brand,
		Model:          c.Model,
		Year:           c.Year,
		Color:          c.Color,
		LicensePlate:   c.LicensePlate,
		FuelType:       c.FuelType,
		Transmission:   c.Transmission,
		Seats:          c.Seats,
		PricePerDay:    c.PricePerDay,
		GuaranteePrice: c.GuaranteePrice,
		Category:       c.Category,
	}
}

type availabilityRequest struct {
	IsAvailable *bool `json:"is_available" validate:"required"`
}

// dateRangeRequest carries yyyy-mm-dd calendar dates.
type dateRangeRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

func (d dateRangeRequest) parse() (time.Time, time.Time, error) {
	start, err := utils.ParseDate(d.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, domain.BadRequest("start_date: %v", err)
	}
	end, err := utils.ParseDate(d.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, domain.BadRequest("end_date: %v", err)
	}
	return start, end, nil
}

type createRentalRequest struct {
	CarID int64 `json:"car_id" validate:"required,gt=0"`
	dateRangeRequest
}

type priceRequest struct {
	CarID int64 `json:"car_id" validate:"required,gt=0"`
	dateRangeRequest
}

type overlapResponse struct {
	HasOverlap bool           `json:"has_overlap"`
	Rental     *domain.Rental `json:"conflicting_rental,omitempty"`
}

type verifyDocumentRequest struct {
	Approved        *bool  `json:"approved" validate:"required"`
	RejectionReason string `json:"rejection_reason"`
}

type reviewRequest struct {
	CarID    int64  `json:"car_id" validate:"required,gt=0"`
	RentalID int64  `json:"rental_id" validate:"gte=0"`
	Rating   int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment  string `json:"comment" validate:"max=2000"`
}

type updateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

type reasonRequest struct {
	Reason string `json:"reason" validate:"max=1000"`
}

type requestDocumentsRequest struct {
	RequiredDocuments []string `json:"required_documents" validate:"required,min=1,dive,required"`
	Message           string   `json:"message" validate:"max=2000"`
}

type userActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

type ratingResponse struct {
	CarID         int64   `json:"car_id"`
	AverageRating float64 `json:"average_rating"`
}
