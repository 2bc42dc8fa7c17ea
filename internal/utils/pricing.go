package utils

import (
	"fmt"
	"math"
	"time"

	"karhubty-backend/internal/domain"
)

// DateLayout is the wire format of rental dates.
const DateLayout = "2006-01-02"

const day = 24 * time.Hour

// ParseDate converts a yyyy-mm-dd string into a calendar date at UTC midnight.
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, dateStr, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format, expected yyyy-mm-dd: %w", err)
	}
	return t, nil
}

// TruncateToDate drops the time of day, keeping the calendar date of t in UTC.
func TruncateToDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a calendar date in DateLayout.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// RentalDays is the number of billable days between start and end, rounded up.
// A rental from the 1st to the 3rd is two days.
func RentalDays(startDate, endDate time.Time) (int64, error) {
	diff := endDate.Sub(startDate)
	if diff <= 0 {
		return 0, fmt.Errorf("end date must be after start date")
	}
	return int64(math.Ceil(float64(diff) / float64(day))), nil
}

// CalculateRentalCost prices a booking of car for [startDate, endDate].
// The guarantee is charged once and folded into the total.
func CalculateRentalCost(startDate, endDate time.Time, car *domain.Car) (domain.PriceQuote, error) {
	days, err := RentalDays(startDate, endDate)
	if err != nil {
		return domain.PriceQuote{}, err
	}

	subtotal := domain.Money(days) * car.PricePerDay
	total := subtotal + car.GuaranteePrice

	return domain.PriceQuote{
		Days:            days,
		PricePerDay:     car.PricePerDay,
		Subtotal:        subtotal,
		GuaranteeAmount: car.GuaranteePrice,
		TotalPrice:      total,
		Total:           total,
	}, nil
}
