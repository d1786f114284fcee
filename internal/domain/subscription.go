package domain

import "strings"

// Topic key prefixes for live subscriptions.
const (
	TopicCourierLocation = "courier_location"
	TopicOrderETA        = "order_eta"
)

// CourierLocationTopic returns the subscription key for a courier's position.
func CourierLocationTopic(courierID string) string {
	return TopicCourierLocation + ":" + courierID
}

// OrderETATopic returns the subscription key for an order's ETA.
func OrderETATopic(orderID string) string {
	return TopicOrderETA + ":" + orderID
}

// ValidTopic checks that key is "<known prefix>:<non-empty id>".
func ValidTopic(key string) bool {
	prefix, id, ok := strings.Cut(key, ":")
	if !ok || strings.TrimSpace(id) == "" {
		return false
	}
	return prefix == TopicCourierLocation || prefix == TopicOrderETA
}
