package domain

// CourierRecord is the persistent courier row as read by the commit protocol.
type CourierRecord struct {
	ID           string
	Busy         bool
	CurrentOrder string
	Version      int64
}

// OrderRecord is the persistent order row as read by the commit protocol.
type OrderRecord struct {
	ID       string
	DriverID string
	Version  int64
}
