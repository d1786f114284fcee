package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/transport/jsontime"
)

type gpsReportRequest struct {
	DriverID     string        `json:"driverId"`
	Latitude     *float64      `json:"latitude"`
	Longitude    *float64      `json:"longitude"`
	Timestamp    jsontime.Time `json:"timestamp"`
	Accuracy     *float64      `json:"accuracy,omitempty"`
	Speed        *float64      `json:"speed,omitempty"`
	Heading      *float64      `json:"heading,omitempty"`
	Altitude     *float64      `json:"altitude,omitempty"`
	BatteryLevel *float64      `json:"batteryLevel,omitempty"`
	NetworkType  string        `json:"networkType,omitempty"`
}

// Entries are decoded one by one so a bad entry is rejected on its own.
type gpsBatchRequest struct {
	Locations []json.RawMessage `json:"locations"`
}

type gpsAcceptedResponse struct {
	Success        bool   `json:"success"`
	EventID        string `json:"eventId"`
	ProcessingTime int64  `json:"processingTime"`
}

type gpsRejectedResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}

type gpsBatchEntry struct {
	Index    int    `json:"index"`
	DriverID string `json:"driverId,omitempty"`
	Success  bool   `json:"success"`
	EventID  string `json:"eventId,omitempty"`
	Error    string `json:"error,omitempty"`
}

type gpsBatchResponse struct {
	Success        bool            `json:"success"`
	TotalProcessed int             `json:"totalProcessed"`
	Successful     int             `json:"successful"`
	Failed         int             `json:"failed"`
	ProcessingTime int64           `json:"processingTime"`
	Results        []gpsBatchEntry `json:"results"`
}

func (r gpsReportRequest) toModel() domain.PositionReport {
	return domain.PositionReport{
		CourierID:    strings.TrimSpace(r.DriverID),
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		Timestamp:    r.Timestamp.Time,
		Accuracy:     r.Accuracy,
		Speed:        r.Speed,
		Heading:      r.Heading,
		Altitude:     r.Altitude,
		BatteryLevel: r.BatteryLevel,
		NetworkType:  r.NetworkType,
	}
}

func decodeBatchEntry(raw json.RawMessage) (gpsReportRequest, error) {
	var req gpsReportRequest
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return gpsReportRequest{}, err
	}
	return req, nil
}

// malformedEntry builds the result for an entry that failed to decode.
// The courier id is taken on a best-effort basis.
func malformedEntry(index int, raw json.RawMessage, err error) gpsBatchEntry {
	var id struct {
		DriverID string `json:"driverId"`
	}
	_ = json.Unmarshal(raw, &id)

	reason := "invalid json"
	if errors.Is(err, jsontime.ErrInvalid) {
		reason = "invalid timestamp"
	}
	return gpsBatchEntry{Index: index, DriverID: strings.TrimSpace(id.DriverID), Error: reason}
}
