package client

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jonasfh/picobell-api/models"
)

// WSRingSource subscribes to the server's websocket ring feed. Token is the
// session JWT obtained from Login.
type WSRingSource struct {
	BaseURL string
	Token   string
	Dialer  *websocket.Dialer
}

// Subscribe dials /ws/doorbell and streams ring events until the context is
// cancelled or the connection drops. The returned channel is closed on exit.
func (s *WSRingSource) Subscribe(ctx context.Context) (<-chan RingEvent, error) {
	endpoint, err := s.wsURL()
	if err != nil {
		return nil, err
	}
	dialer := s.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, resp, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	events := make(chan RingEvent)
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	go func() {
		defer close(events)
		defer conn.Close()
		for {
			var payload models.RingPayload
			if err := conn.ReadJSON(&payload); err != nil {
				return
			}
			ev := RingEvent{
				ApartmentID: payload.ApartmentID,
				Address:     payload.Address,
				Timestamp:   time.Unix(payload.Timestamp, 0),
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}

func (s *WSRingSource) wsURL() (string, error) {
	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https", "wss":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws/doorbell"
	q := u.Query()
	q.Set("token", s.Token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
