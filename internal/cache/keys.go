package cache

import "fmt"

const geoKey = "courier_locations"

func locationKey(courierID string) string     { return "courier:" + courierID + ":location" }
func statusKey(courierID string) string       { return "courier:" + courierID + ":status" }
func activeOrdersKey(courierID string) string { return "courier:" + courierID + ":active_orders" }
func busyKey(courierID string) string         { return "courier:" + courierID + ":busy" }
func orderDetailsKey(orderID string) string   { return "order:" + orderID + ":details" }
func orderETAKey(orderID string) string       { return "order:" + orderID + ":eta" }

func activeCouriersKey(date string) string {
	return "analytics:courier_activity:" + date + ":active_couriers"
}

func hourKey(date string, hour int) string {
	return fmt.Sprintf("analytics:courier_activity:%s:hour_%d", date, hour)
}
