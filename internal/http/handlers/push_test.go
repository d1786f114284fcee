package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"courier-dispatch/internal/auth"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/push"
)

func newPushServer(t *testing.T, reg *push.Registry, verifier tokenVerifier) *httptest.Server {
	t.Helper()
	h := NewPushHandler(nil, reg, verifier, nil)
	r := chi.NewRouter()
	r.Get("/sse/location/{connectionId}", h.SSE)
	r.Get("/ws/location/{connectionId}", h.WS)
	r.Post("/sse/subscribe/courier/{connectionId}/{courierId}", h.SubscribeCourier)
	r.Post("/sse/subscribe/order/{connectionId}/{orderId}", h.SubscribeOrder)
	r.Delete("/sse/subscribe/{connectionId}/{topicKey}", h.Unsubscribe)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func readEvent(t *testing.T, sc *bufio.Scanner) map[string]any {
	t.Helper()
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &m))
		return m
	}
	t.Fatalf("stream ended: %v", sc.Err())
	return nil
}

func TestPushHandler_SSEFlow(t *testing.T) {
	t.Parallel()

	reg := push.NewRegistry(nil, nil, nil)
	srv := newPushServer(t, reg, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/sse/location/cust-1", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	sc := bufio.NewScanner(resp.Body)
	require.Equal(t, push.TypeConnected, readEvent(t, sc)["type"])

	sub, err := http.Post(srv.URL+"/sse/subscribe/courier/cust-1/d1", "application/json", nil)
	require.NoError(t, err)
	sub.Body.Close()
	require.Equal(t, http.StatusOK, sub.StatusCode)

	loc := domain.CourierLocation{Point: domain.Point{Latitude: 40.71, Longitude: -74}}
	require.Equal(t, 1, reg.Publish(ctx, domain.CourierLocationTopic("d1"), push.LocationUpdate("d1", loc, time.Now())))
	require.Equal(t, 0, reg.Publish(ctx, domain.CourierLocationTopic("d2"), push.LocationUpdate("d2", loc, time.Now())))

	ev := readEvent(t, sc)
	require.Equal(t, push.TypeLocationUpdate, ev["type"])
	require.Equal(t, "d1", ev["driverId"])

	del, err := http.NewRequest(http.MethodDelete, srv.URL+"/sse/subscribe/cust-1/"+domain.CourierLocationTopic("d1"), nil)
	require.NoError(t, err)
	delResp, err := http.DefaultClient.Do(del)
	require.NoError(t, err)
	delResp.Body.Close()
	require.Equal(t, http.StatusOK, delResp.StatusCode)
	require.Empty(t, reg.Subscriptions("cust-1"))
}

func TestPushHandler_SubscribeUnknownConnection(t *testing.T) {
	t.Parallel()

	srv := newPushServer(t, push.NewRegistry(nil, nil, nil), nil)

	resp, err := http.Post(srv.URL+"/sse/subscribe/order/nobody/o-1", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPushHandler_RequiresToken(t *testing.T) {
	t.Parallel()

	const secret = "push-secret"
	reg := push.NewRegistry(nil, nil, nil)
	srv := newPushServer(t, reg, auth.NewVerifier(secret))

	resp, err := http.Get(srv.URL + "/sse/location/cust-1")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "someone-else",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	resp, err = http.Get(srv.URL + "/sse/location/cust-1?token=" + tok)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Zero(t, reg.Connections())
}

func TestPushHandler_WebSocketFlow(t *testing.T) {
	t.Parallel()

	reg := push.NewRegistry(nil, nil, nil)
	srv := newPushServer(t, reg, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/location/cust-2", nil)
	require.NoError(t, err)
	defer c.CloseNow()

	var ack map[string]any
	require.NoError(t, wsjson.Read(ctx, c, &ack))
	require.Equal(t, push.TypeConnected, ack["type"])

	topic := domain.OrderETATopic("o-1")
	require.NoError(t, wsjson.Write(ctx, c, map[string]string{"action": "subscribe", "topic": topic}))
	require.Eventually(t, func() bool {
		subs := reg.Subscriptions("cust-2")
		return len(subs) == 1 && subs[0] == topic
	}, 2*time.Second, 10*time.Millisecond)

	rec := domain.ETARecord{OrderID: "o-1", ETAMinutes: 13, ComputedAt: time.Now()}
	require.Equal(t, 1, reg.Publish(ctx, topic, push.ETAUpdate(rec, "d1")))

	var ev map[string]any
	require.NoError(t, wsjson.Read(ctx, c, &ev))
	require.Equal(t, push.TypeETAUpdate, ev["type"])
	require.Equal(t, float64(13), ev["eta"])

	require.NoError(t, c.Close(websocket.StatusNormalClosure, "bye"))
	require.Eventually(t, func() bool { return reg.Connections() == 0 }, 2*time.Second, 10*time.Millisecond)
}
