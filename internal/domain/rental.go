package domain

import "time"

type RentalStatus string

const (
	RentalStatusPending   RentalStatus = "pending"
	RentalStatusApproved  RentalStatus = "approved"
	RentalStatusRejected  RentalStatus = "rejected"
	RentalStatusCancelled RentalStatus = "cancelled"
	RentalStatusCompleted RentalStatus = "completed"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// ActiveRentalStatuses are the statuses that hold a car's calendar.
var ActiveRentalStatuses = []RentalStatus{RentalStatusPending, RentalStatusApproved}

var rentalTransitions = map[RentalStatus][]RentalStatus{
	RentalStatusPending:  {RentalStatusApproved, RentalStatusRejected, RentalStatusCancelled},
	RentalStatusApproved: {RentalStatusCancelled, RentalStatusCompleted},
}

// CanTransitionTo reports whether the rental state machine allows s -> next.
func (s RentalStatus) CanTransitionTo(next RentalStatus) bool {
	for _, allowed := range rentalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s RentalStatus) IsTerminal() bool {
	return len(rentalTransitions[s]) == 0
}

func (s RentalStatus) IsActive() bool {
	return s == RentalStatusPending || s == RentalStatusApproved
}

// Rental is a booking of one car by one user. StartDate and EndDate are
// calendar dates held at UTC midnight. Prices are captured at creation and
// never recomputed.
type Rental struct {
	ID              int64         `json:"id"`
	UserID          int64         `json:"user_id"`
	CarID           int64         `json:"car_id"`
	AgentID         int64         `json:"agent_id"`
	StartDate       time.Time     `json:"start_date"`
	EndDate         time.Time     `json:"end_date"`
	TotalPrice      Money         `json:"total_price"`
	GuaranteeAmount Money         `json:"guarantee_amount"`
	Status          RentalStatus  `json:"status"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	RequestDate     time.Time     `json:"request_date"`
	ApprovalDate    *time.Time    `json:"approval_date,omitempty"`
	CompletionDate  *time.Time    `json:"completion_date,omitempty"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Period returns the rental's booked interval.
func (r *Rental) Period() DateRange {
	return DateRange{Start: r.StartDate, End: r.EndDate}
}

// DateRange is a closed interval of calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Overlaps is the inclusive-inclusive test: ranges that touch on a boundary
// date collide.
func (d DateRange) Overlaps(o DateRange) bool {
	return !d.Start.After(o.End) && !d.End.Before(o.Start)
}

// OverlapsStrict lets a range end on the same date another starts.
func (d DateRange) OverlapsStrict(o DateRange) bool {
	return d.Start.Before(o.End) && d.End.After(o.Start)
}

// PriceQuote is the result of pricing a date range for a car.
// TotalPrice and Total are equal: the guarantee is bundled into the total and
// also reported separately.
type PriceQuote struct {
	Days            int64 `json:"days"`
	PricePerDay     Money `json:"price_per_day"`
	Subtotal        Money `json:"subtotal"`
	GuaranteeAmount Money `json:"guarantee_amount"`
	TotalPrice      Money `json:"total_price"`
	Total           Money `json:"total"`
}

type RentalStats struct {
	Total        int64 `json:"total"`
	Pending      int64 `json:"pending"`
	Approved     int64 `json:"approved"`
	Completed    int64 `json:"completed"`
	Cancelled    int64 `json:"cancelled"`
	TotalRevenue Money `json:"total_revenue"`
}

// RentalFilter narrows rental listings. Zero values mean "any".
type RentalFilter struct {
	UserID  int64
	AgentID int64
	CarID   int64
	Status  RentalStatus
}
