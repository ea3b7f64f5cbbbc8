// Package notify sends best-effort SMS notifications through an
// HTTP gateway. Delivery failures are logged and swallowed; nothing in
// the portal flow depends on a message going out.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/atlasgate/visaport/internal/config"
)

// SMSService posts messages to the configured gateway.
type SMSService struct {
	settings *config.Service
	client   *http.Client
}

// NewSMSService creates an SMS service over the runtime settings.
func NewSMSService(settings *config.Service) *SMSService {
	return &SMSService{
		settings: settings,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether the gateway is configured and switched on.
func (s *SMSService) Enabled() bool {
	return s.settings.GetBool(config.KeySMSEnabled) &&
		s.settings.GetString(config.KeySMSGatewayURL) != ""
}

// Send posts one message. Returns an error for callers that care;
// SendAsync is the fire-and-forget variant the portal uses.
func (s *SMSService) Send(ctx context.Context, phone, message string) error {
	if !s.Enabled() {
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"to":      phone,
		"message": message,
		"sender":  s.settings.GetString(config.KeySMSSender),
	})
	if err != nil {
		return fmt.Errorf("failed to encode sms payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.settings.GetString(config.KeySMSGatewayURL), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if key := s.settings.GetString(config.KeySMSAPIKey); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}
	return nil
}

// SendAsync delivers in the background with its own timeout, logging
// failures instead of returning them.
func (s *SMSService) SendAsync(phone, message string) {
	if !s.Enabled() || phone == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.Send(ctx, phone, message); err != nil {
			log.Printf("Warning: sms delivery failed: %v", err)
		}
	}()
}
