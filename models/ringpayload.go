package models

// RingPayload is the data-only payload delivered to clients when someone
// rings. No title or body is sent; the receiving app renders the
// notification itself so delivery works while backgrounded.
type RingPayload struct {
	ApartmentID string `json:"apartment_id"`
	Address     string `json:"address"`
	Timestamp   int64  `json:"timestamp"`
}
