// Copyright (c) 2026 Sentra. All rights reserved.
// Author: dev@sentra.id

/*
Package mail implements the outbound transactional email dispatcher.

It talks to the Brevo (ex-Sendinblue) REST API over HTTPS. Delivery is
synchronous: the caller learns immediately whether the provider accepted the
message, and nothing in this package retries on its own.

Architecture:

  - Dispatcher: The concrete Brevo client.
  - Injection: Domain services depend on the small interface they declare,
    never on this package directly.
*/
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	// brevoEndpoint is the transactional email API endpoint.
	brevoEndpoint = "https://api.brevo.com/v3/smtp/email"

	// sendTimeout bounds a single delivery attempt.
	sendTimeout = 10 * time.Second
)

// Dispatcher sends transactional emails through the Brevo REST API.
type Dispatcher struct {
	apiKey      string
	fromName    string
	fromAddress string
	appURL      string
	httpClient  *http.Client
	logger      *slog.Logger
}

// NewDispatcher constructs a Brevo-backed [Dispatcher].
func NewDispatcher(apiKey, fromName, fromAddress, appURL string, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		apiKey:      apiKey,
		fromName:    fromName,
		fromAddress: fromAddress,
		appURL:      appURL,
		httpClient:  &http.Client{Timeout: sendTimeout},
		logger:      logger,
	}
}

// # Wire Types

type party struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type sendEmailRequest struct {
	Sender      party   `json:"sender"`
	To          []party `json:"to"`
	Subject     string  `json:"subject"`
	HTMLContent string  `json:"htmlContent"`
}

// # Delivery

/*
SendPasswordResetEmail delivers a password-reset link carrying the raw token.

Description: Renders the reset URL into the standard template and posts it to
the provider. The raw token travels only over this channel; the server keeps
just its hash.

Parameters:
  - context: context.Context
  - email: string (recipient address)
  - rawToken: string (single-use reset token)

Returns:
  - error: Provider rejection or transport failure
*/
func (dispatcher *Dispatcher) SendPasswordResetEmail(context context.Context, email, rawToken string) error {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", dispatcher.appURL, rawToken)

	payload := sendEmailRequest{
		Sender:  party{Name: dispatcher.fromName, Email: dispatcher.fromAddress},
		To:      []party{{Email: email}},
		Subject: "Password Reset",
		HTMLContent: fmt.Sprintf(
			`<p>We received a request to reset your password. Click the link below to choose a new one.</p>`+
				`<p><a href="%s">Reset Password</a></p>`+
				`<p>The link is valid for 30 minutes. If you did not request this change, you can safely ignore this email.</p>`,
			resetURL,
		),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("mail: failed to encode payload: %w", err)
	}

	request, err := http.NewRequestWithContext(context, http.MethodPost, brevoEndpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("mail: failed to build request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")
	request.Header.Set("api-key", dispatcher.apiKey)

	response, err := dispatcher.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("mail: delivery request failed: %w", err)
	}
	defer func() { _ = response.Body.Close() }()

	// Brevo answers 201 Created when the message is queued.
	if response.StatusCode >= 300 {
		// Read a bounded slice of the body for diagnostics only.
		snippet, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		dispatcher.logger.Error("mail_delivery_rejected",
			slog.Int("status", response.StatusCode),
			slog.String("provider_response", string(snippet)),
		)
		return fmt.Errorf("mail: provider rejected delivery with status %d", response.StatusCode)
	}

	dispatcher.logger.Info("mail_password_reset_sent", slog.String("email", email))

	return nil
}
