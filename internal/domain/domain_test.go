package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"courier-dispatch/internal/apperr"
)

func fptr(v float64) *float64 { return &v }

func TestPositionReport_Validate(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	w := FreshnessWindow{MaxAge: 5 * time.Minute, MaxSkew: 2 * time.Minute}

	valid := PositionReport{
		CourierID: "driver-1",
		Latitude:  fptr(40.7128),
		Longitude: fptr(-74.0060),
		Timestamp: now.Add(-30 * time.Second),
	}

	tests := []struct {
		name    string
		mutate  func(r *PositionReport)
		wantErr error
	}{
		{name: "valid", mutate: func(*PositionReport) {}},
		{name: "zero coordinates are present", mutate: func(r *PositionReport) { r.Latitude = fptr(0); r.Longitude = fptr(0) }},
		{name: "missing courier", mutate: func(r *PositionReport) { r.CourierID = " " }, wantErr: ErrMissingField},
		{name: "missing latitude", mutate: func(r *PositionReport) { r.Latitude = nil }, wantErr: ErrMissingField},
		{name: "missing timestamp", mutate: func(r *PositionReport) { r.Timestamp = time.Time{} }, wantErr: ErrMissingField},
		{name: "latitude out of range", mutate: func(r *PositionReport) { r.Latitude = fptr(91) }, wantErr: ErrInvalidLatitude},
		{name: "longitude out of range", mutate: func(r *PositionReport) { r.Longitude = fptr(-180.5) }, wantErr: ErrInvalidLongitude},
		{name: "ten minutes old", mutate: func(r *PositionReport) { r.Timestamp = now.Add(-10 * time.Minute) }, wantErr: ErrStaleTimestamp},
		{name: "three minutes ahead", mutate: func(r *PositionReport) { r.Timestamp = now.Add(3 * time.Minute) }, wantErr: ErrFutureTimestamp},
		{name: "one minute ahead", mutate: func(r *PositionReport) { r.Timestamp = now.Add(time.Minute) }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := valid
			tt.mutate(&r)
			p, err := r.Validate(now, w)
			if tt.wantErr == nil {
				require.NoError(t, err)
				require.Equal(t, *r.Latitude, p.Latitude)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
			require.ErrorIs(t, err, apperr.ErrInvalid)
		})
	}
}

func TestAssignmentRequest_Validate(t *testing.T) {
	t.Parallel()

	req := AssignmentRequest{
		OrderID:         "order-1",
		Restaurant:      Point{Latitude: 40.7128, Longitude: -74.0060},
		Customer:        Point{Latitude: 40.7589, Longitude: -73.9851},
		PreparationTime: 15,
	}
	require.NoError(t, req.Validate())

	bad := req
	bad.OrderID = ""
	require.ErrorIs(t, bad.Validate(), ErrMissingField)

	bad = req
	bad.Customer.Latitude = -95
	require.ErrorIs(t, bad.Validate(), ErrInvalidLatitude)

	bad = req
	bad.PreparationTime = -1
	require.ErrorIs(t, bad.Validate(), ErrNegativeValue)
}

func TestResults(t *testing.T) {
	t.Parallel()

	at := time.Unix(1700000000, 0).UTC()
	ok := Assigned("o1", "d1", 16, at)
	require.True(t, ok.IsAssigned())
	require.Equal(t, ResultAssigned, ok.Status)
	require.Empty(t, ok.Reason)

	fail := Failed("o1", ReasonAllBusy, at)
	require.False(t, fail.IsAssigned())
	require.Empty(t, fail.CourierID)
	require.Equal(t, at, fail.FailedAt)
}

func TestReason(t *testing.T) {
	t.Parallel()

	require.Equal(t, "missing required field: orderId", Reason(MissingField("orderId")))
	require.Equal(t, "boom", Reason(errors.New("boom")))
	require.Empty(t, Reason(nil))
}

func TestTopics(t *testing.T) {
	t.Parallel()

	require.Equal(t, "courier_location:d1", CourierLocationTopic("d1"))
	require.Equal(t, "order_eta:o1", OrderETATopic("o1"))
	require.True(t, ValidTopic("order_eta:o1"))
	require.False(t, ValidTopic("order_eta:"))
	require.False(t, ValidTopic("weather:o1"))
	require.False(t, ValidTopic("nocolon"))
}

func TestCourierState_Available(t *testing.T) {
	t.Parallel()

	require.True(t, CourierState{CourierID: "d1"}.Available())
	require.False(t, CourierState{CourierID: "d1", ActiveOrders: []string{"o1"}, Busy: true}.Available())
	require.True(t, LivenessActive.Valid())
	require.False(t, Liveness("sleeping").Valid())
}
