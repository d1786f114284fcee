package domain

import (
	"strings"
	"time"
)

// Terminal failure reasons published on assignment results.
const (
	ReasonInvalidRequest = "invalid request"
	ReasonNoCouriers     = "no couriers in area"
	ReasonAllBusy        = "all couriers busy"
	ReasonInternal       = "internal error"
)

// OrderItem is informational order content carried on a request.
type OrderItem struct {
	ID       string
	Name     string
	Quantity int
	Price    float64
}

// AssignmentRequest asks for a courier for one order. Immutable once created.
type AssignmentRequest struct {
	OrderID             string
	Restaurant          Point
	Customer            Point
	PreparationTime     int // minutes remaining
	RadiusKm            float64
	Items               []OrderItem
	TotalAmount         float64
	SpecialInstructions string
}

// Validate checks required fields and coordinate ranges.
func (r AssignmentRequest) Validate() error {
	if strings.TrimSpace(r.OrderID) == "" {
		return MissingField("orderId")
	}
	if err := r.Restaurant.Validate(); err != nil {
		return err
	}
	if err := r.Customer.Validate(); err != nil {
		return err
	}
	if r.PreparationTime < 0 || r.RadiusKm < 0 {
		return ErrNegativeValue
	}
	return nil
}

// ResultStatus discriminates AssignmentResult.
type ResultStatus string

// Result statuses.
const (
	ResultAssigned ResultStatus = "assigned"
	ResultFailed   ResultStatus = "failed"
)

// AssignmentResult is the terminal outcome of a request: either an assignment
// (CourierID, ETA, AssignedAt) or a failure (Reason, FailedAt).
type AssignmentResult struct {
	Status     ResultStatus
	OrderID    string
	CourierID  string
	ETA        int
	AssignedAt time.Time
	Reason     string
	FailedAt   time.Time
}

// Assigned builds a successful result.
func Assigned(orderID, courierID string, eta int, at time.Time) AssignmentResult {
	return AssignmentResult{
		Status:     ResultAssigned,
		OrderID:    orderID,
		CourierID:  courierID,
		ETA:        eta,
		AssignedAt: at,
	}
}

// Failed builds a failed result.
func Failed(orderID, reason string, at time.Time) AssignmentResult {
	return AssignmentResult{
		Status:   ResultFailed,
		OrderID:  orderID,
		Reason:   reason,
		FailedAt: at,
	}
}

// IsAssigned reports whether the result carries a courier.
func (r AssignmentResult) IsAssigned() bool {
	return r.Status == ResultAssigned
}

// OrderDetails is persisted on a successful claim so that ETA recomputation
// can find the route of an active order.
type OrderDetails struct {
	OrderID         string    `json:"orderId"`
	CourierID       string    `json:"driverId"`
	Restaurant      Point     `json:"restaurant"`
	Customer        Point     `json:"customer"`
	PreparationTime int       `json:"preparationTime"`
	ETAMinutes      int       `json:"eta"`
	AssignedAt      time.Time `json:"assignedAt"`
}

// ETARecord is the current ETA of an order. Superseded, never versioned.
type ETARecord struct {
	OrderID    string    `json:"orderId"`
	ETAMinutes int       `json:"eta"`
	Courier    Point     `json:"driverLocation"`
	ComputedAt time.Time `json:"calculatedAt"`
}
