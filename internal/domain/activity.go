package domain

// DailyActivity aggregates courier activity for one UTC day.
type DailyActivity struct {
	Date           string
	ActiveCouriers int64
	// Hourly holds position events per UTC hour, index 0..23.
	Hourly [24]int64
}
