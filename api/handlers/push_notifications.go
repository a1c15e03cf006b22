package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	expoPushURL    = "https://exp.host/--/api/v2/push/send"
	expoBatchLimit = 100
)

// ExpoPushMessage represents a single push notification message for the Expo push API.
// Doorbell pushes are data-only: no title, body or sound, so the receiving
// app renders the notification itself and delivery works while backgrounded.
type ExpoPushMessage struct {
	To        string                 `json:"to"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Priority  string                 `json:"priority,omitempty"`
	ChannelID string                 `json:"channelId,omitempty"`
}

// PushSender is the token-addressed send primitive of the external push
// channel. Implementations report per-token tallies and never return an
// error; the ring acknowledgment does not depend on delivery.
type PushSender interface {
	Send(tokens []string, data map[string]interface{}) (sent int, failed int)
}

// ExpoPushSender sends data-only pushes through the Expo push API.
type ExpoPushSender struct {
	URL    string
	Client *http.Client
}

// NewExpoPushSender returns a sender against the given URL, or the public
// Expo endpoint when empty.
func NewExpoPushSender(url string) *ExpoPushSender {
	if url == "" {
		url = expoPushURL
	}
	return &ExpoPushSender{
		URL:    url,
		Client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Send delivers one data-only message per token, batched per the Expo API
// limit. A failed batch counts all of its tokens as failed and the
// remaining batches are still attempted.
func (s *ExpoPushSender) Send(tokens []string, data map[string]interface{}) (int, int) {
	if len(tokens) == 0 {
		return 0, 0
	}

	var messages []ExpoPushMessage
	for _, token := range tokens {
		messages = append(messages, ExpoPushMessage{
			To:        token,
			Data:      data,
			Priority:  "high",
			ChannelID: "doorbell",
		})
	}

	sent, failed := 0, 0
	for i := 0; i < len(messages); i += expoBatchLimit {
		end := i + expoBatchLimit
		if end > len(messages) {
			end = len(messages)
		}
		batch := messages[i:end]

		if err := s.sendBatch(batch); err != nil {
			zap.S().Errorf("Failed to send Expo push batch (tokens %d-%d): %v", i, end-1, err)
			failed += len(batch)
			continue
		}
		sent += len(batch)
	}

	return sent, failed
}

func (s *ExpoPushSender) sendBatch(messages []ExpoPushMessage) error {
	jsonData, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("failed to marshal push messages: %w", err)
	}

	req, err := http.NewRequest("POST", s.URL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create push request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, deflate")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send push request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("expo push API returned status %d", resp.StatusCode)
	}

	zap.S().Infof("Successfully sent %d push notification(s) via Expo", len(messages))
	return nil
}
