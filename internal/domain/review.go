package domain

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	CarID      int64     `json:"car_id"`
	RentalID   int64     `json:"rental_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	IsApproved bool      `json:"is_approved"`
	ReviewDate time.Time `json:"review_date"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}
