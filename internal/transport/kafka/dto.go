package kafka

import (
	"strings"
	"time"

	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/transport/jsontime"
)

// PositionEventDTO is the enriched GPS event on driver_location.<shard> topics.
type PositionEventDTO struct {
	EventID         string        `json:"eventId"`
	DriverID        string        `json:"driverId"`
	Latitude        *float64      `json:"latitude"`
	Longitude       *float64      `json:"longitude"`
	Timestamp       jsontime.Time `json:"timestamp"`
	Accuracy        *float64      `json:"accuracy,omitempty"`
	Speed           *float64      `json:"speed,omitempty"`
	Heading         *float64      `json:"heading,omitempty"`
	Altitude        *float64      `json:"altitude,omitempty"`
	BatteryLevel    *float64      `json:"batteryLevel,omitempty"`
	NetworkType     string        `json:"networkType,omitempty"`
	ProcessedAt     jsontime.Time `json:"processedAt"`
	ServiceInstance string        `json:"serviceInstance"`
}

// PositionFromDomain converts a domain.CourierPosition into its event form.
func PositionFromDomain(p domain.CourierPosition) PositionEventDTO {
	lat, lon := p.Point.Latitude, p.Point.Longitude
	return PositionEventDTO{
		EventID:         p.EventID,
		DriverID:        p.CourierID,
		Latitude:        &lat,
		Longitude:       &lon,
		Timestamp:       jsontime.New(p.Timestamp),
		Accuracy:        p.Accuracy,
		Speed:           p.Speed,
		Heading:         p.Heading,
		Altitude:        p.Altitude,
		BatteryLevel:    p.BatteryLevel,
		NetworkType:     p.NetworkType,
		ProcessedAt:     jsontime.New(p.ProcessedAt),
		ServiceInstance: p.ServiceInstance,
	}
}

// ToDomain converts the event and validates what the location engine relies on.
func (dto PositionEventDTO) ToDomain() (domain.CourierPosition, error) {
	if dto.Latitude == nil {
		return domain.CourierPosition{}, domain.MissingField("latitude")
	}
	if dto.Longitude == nil {
		return domain.CourierPosition{}, domain.MissingField("longitude")
	}
	p := domain.CourierPosition{
		EventID:         strings.TrimSpace(dto.EventID),
		CourierID:       strings.TrimSpace(dto.DriverID),
		Point:           domain.Point{Latitude: *dto.Latitude, Longitude: *dto.Longitude},
		Timestamp:       dto.Timestamp.Time,
		Accuracy:        dto.Accuracy,
		Speed:           dto.Speed,
		Heading:         dto.Heading,
		Altitude:        dto.Altitude,
		BatteryLevel:    dto.BatteryLevel,
		NetworkType:     dto.NetworkType,
		ProcessedAt:     dto.ProcessedAt.Time,
		ServiceInstance: dto.ServiceInstance,
	}
	if err := p.Validate(); err != nil {
		return domain.CourierPosition{}, err
	}
	return p, nil
}

// OrderItemDTO is an informational order line.
type OrderItemDTO struct {
	ID       string  `json:"id,omitempty"`
	Name     string  `json:"name,omitempty"`
	Quantity int     `json:"quantity,omitempty"`
	Price    float64 `json:"price,omitempty"`
}

// AssignmentRequestDTO is the wire form of an assignment request.
type AssignmentRequestDTO struct {
	OrderID             string         `json:"orderId"`
	RestaurantLatitude  *float64       `json:"restaurantLatitude"`
	RestaurantLongitude *float64       `json:"restaurantLongitude"`
	CustomerLatitude    *float64       `json:"customerLatitude"`
	CustomerLongitude   *float64       `json:"customerLongitude"`
	PreparationTime     *int           `json:"preparationTime"`
	Radius              *float64       `json:"radius,omitempty"`
	Items               []OrderItemDTO `json:"items,omitempty"`
	TotalAmount         float64        `json:"totalAmount,omitempty"`
	SpecialInstructions string         `json:"specialInstructions,omitempty"`
}

// ToDomain converts the request, reporting the first missing required field.
// The order id is trimmed and kept even on error so a failure can be answered.
func (dto AssignmentRequestDTO) ToDomain() (domain.AssignmentRequest, error) {
	req := domain.AssignmentRequest{
		OrderID:             strings.TrimSpace(dto.OrderID),
		TotalAmount:         dto.TotalAmount,
		SpecialInstructions: dto.SpecialInstructions,
	}
	required := []struct {
		name string
		v    *float64
	}{
		{"restaurantLatitude", dto.RestaurantLatitude},
		{"restaurantLongitude", dto.RestaurantLongitude},
		{"customerLatitude", dto.CustomerLatitude},
		{"customerLongitude", dto.CustomerLongitude},
	}
	for _, f := range required {
		if f.v == nil {
			return req, domain.MissingField(f.name)
		}
	}
	if dto.PreparationTime == nil {
		return req, domain.MissingField("preparationTime")
	}

	req.Restaurant = domain.Point{Latitude: *dto.RestaurantLatitude, Longitude: *dto.RestaurantLongitude}
	req.Customer = domain.Point{Latitude: *dto.CustomerLatitude, Longitude: *dto.CustomerLongitude}
	req.PreparationTime = *dto.PreparationTime
	if dto.Radius != nil {
		req.RadiusKm = *dto.Radius
	}
	for _, it := range dto.Items {
		req.Items = append(req.Items, domain.OrderItem{ID: it.ID, Name: it.Name, Quantity: it.Quantity, Price: it.Price})
	}
	return req, req.Validate()
}

// AssignmentRequestFromDomain converts a request into its wire form.
func AssignmentRequestFromDomain(r domain.AssignmentRequest) AssignmentRequestDTO {
	rl, rn := r.Restaurant.Latitude, r.Restaurant.Longitude
	cl, cn := r.Customer.Latitude, r.Customer.Longitude
	prep := r.PreparationTime
	dto := AssignmentRequestDTO{
		OrderID:             r.OrderID,
		RestaurantLatitude:  &rl,
		RestaurantLongitude: &rn,
		CustomerLatitude:    &cl,
		CustomerLongitude:   &cn,
		PreparationTime:     &prep,
		TotalAmount:         r.TotalAmount,
		SpecialInstructions: r.SpecialInstructions,
	}
	if r.RadiusKm > 0 {
		radius := r.RadiusKm
		dto.Radius = &radius
	}
	for _, it := range r.Items {
		dto.Items = append(dto.Items, OrderItemDTO{ID: it.ID, Name: it.Name, Quantity: it.Quantity, Price: it.Price})
	}
	return dto
}

// AssignmentResultDTO is the wire form of an assignment result on
// driver_assignment.responses.
type AssignmentResultDTO struct {
	OrderID    string         `json:"orderId"`
	DriverID   string         `json:"driverId,omitempty"`
	ETA        int            `json:"eta,omitempty"`
	AssignedAt *jsontime.Time `json:"assignedAt,omitempty"`
	Error      string         `json:"error,omitempty"`
	FailedAt   *jsontime.Time `json:"failedAt,omitempty"`
	Status     string         `json:"status"`
}

// ResultFromDomain converts an assignment result into its wire form.
func ResultFromDomain(r domain.AssignmentResult) AssignmentResultDTO {
	dto := AssignmentResultDTO{OrderID: r.OrderID, Status: string(r.Status)}
	if r.IsAssigned() {
		at := jsontime.New(r.AssignedAt)
		dto.DriverID = r.CourierID
		dto.ETA = r.ETA
		dto.AssignedAt = &at
		return dto
	}
	at := jsontime.New(r.FailedAt)
	dto.Error = r.Reason
	dto.FailedAt = &at
	return dto
}

// ToDomain converts the wire form back to a result.
func (dto AssignmentResultDTO) ToDomain() (domain.AssignmentResult, error) {
	orderID := strings.TrimSpace(dto.OrderID)
	if orderID == "" {
		return domain.AssignmentResult{}, domain.MissingField("orderId")
	}
	switch domain.ResultStatus(dto.Status) {
	case domain.ResultAssigned:
		if strings.TrimSpace(dto.DriverID) == "" {
			return domain.AssignmentResult{}, domain.MissingField("driverId")
		}
		r := domain.Assigned(orderID, strings.TrimSpace(dto.DriverID), dto.ETA, timeOf(dto.AssignedAt))
		return r, nil
	case domain.ResultFailed:
		return domain.Failed(orderID, dto.Error, timeOf(dto.FailedAt)), nil
	default:
		return domain.AssignmentResult{}, domain.MissingField("status")
	}
}

func timeOf(t *jsontime.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.Time
}
