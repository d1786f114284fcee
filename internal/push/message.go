package push

import (
	"encoding/json"
	"time"

	"courier-dispatch/internal/domain"
)

// Message types.
const (
	TypeConnected      = "connected"
	TypeHeartbeat      = "heartbeat"
	TypeLocationUpdate = "driver_location_update"
	TypeETAUpdate      = "order_eta_update"
)

// Message is a live push frame. It is encoded flat:
// {"type": ..., <fields>..., "timestamp": ...}.
type Message struct {
	Type      string
	Fields    map[string]any
	Timestamp time.Time
}

// MarshalJSON implements json.Marshaler.
func (m Message) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Fields)+2)
	for k, v := range m.Fields {
		out[k] = v
	}
	out["type"] = m.Type
	out["timestamp"] = m.Timestamp.UTC().Format(time.RFC3339Nano)
	return json.Marshal(out)
}

// Connected acknowledges a freshly opened connection.
func Connected(connectionID string, at time.Time) Message {
	return Message{Type: TypeConnected, Fields: map[string]any{"connectionId": connectionID}, Timestamp: at}
}

// Heartbeat is the keep-alive frame.
func Heartbeat(at time.Time) Message {
	return Message{Type: TypeHeartbeat, Timestamp: at}
}

// LocationUpdate carries a courier's new position.
func LocationUpdate(courierID string, loc domain.CourierLocation, at time.Time) Message {
	fields := map[string]any{
		"driverId":  courierID,
		"latitude":  loc.Point.Latitude,
		"longitude": loc.Point.Longitude,
	}
	if loc.Speed != nil {
		fields["speed"] = *loc.Speed
	}
	if loc.Heading != nil {
		fields["heading"] = *loc.Heading
	}
	if loc.Accuracy != nil {
		fields["accuracy"] = *loc.Accuracy
	}
	return Message{Type: TypeLocationUpdate, Fields: fields, Timestamp: at}
}

// ETAUpdate carries a recomputed order ETA.
func ETAUpdate(rec domain.ETARecord, courierID string) Message {
	return Message{
		Type: TypeETAUpdate,
		Fields: map[string]any{
			"orderId":  rec.OrderID,
			"driverId": courierID,
			"eta":      rec.ETAMinutes,
			"driverLocation": map[string]float64{
				"latitude":  rec.Courier.Latitude,
				"longitude": rec.Courier.Longitude,
			},
		},
		Timestamp: rec.ComputedAt,
	}
}
