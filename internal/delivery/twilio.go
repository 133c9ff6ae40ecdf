// internal/delivery/twilio.go
package delivery

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	twilio "github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"nutriplan/pkg/logger"
)

// TwilioMessenger sends WhatsApp messages through Twilio. Documents are
// referenced by media URL, so rendered files must be reachable under
// documentBaseURL (the HTTP server exposes the temp dir for this).
type TwilioMessenger struct {
	client          *twilio.RestClient
	whatsAppNumber  string
	documentBaseURL string
	logger          *logger.Logger
}

type TwilioConfig struct {
	AccountSID      string
	AuthToken       string
	WhatsAppNumber  string
	DocumentBaseURL string
}

func NewTwilioMessenger(cfg TwilioConfig, log *logger.Logger) (*TwilioMessenger, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.WhatsAppNumber == "" {
		return nil, fmt.Errorf("twilio configuration is incomplete")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return &TwilioMessenger{
		client:          client,
		whatsAppNumber:  cfg.WhatsAppNumber,
		documentBaseURL: strings.TrimRight(cfg.DocumentBaseURL, "/"),
		logger:          log,
	}, nil
}

func (t *TwilioMessenger) SendMessage(ctx context.Context, to, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetFrom("whatsapp:" + t.whatsAppNumber)
	params.SetTo("whatsapp:" + to)
	params.SetBody(body)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("twilio send message: %w", err)
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	t.logger.Infow("WhatsApp message sent", "to", to, "sid", sid)
	return sid, nil
}

func (t *TwilioMessenger) SendDocument(ctx context.Context, to, body, filePath, displayName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	mediaURL := t.documentBaseURL + "/" + filepath.Base(filePath)

	params := &twilioapi.CreateMessageParams{}
	params.SetFrom("whatsapp:" + t.whatsAppNumber)
	params.SetTo("whatsapp:" + to)
	params.SetBody(body)
	params.SetMediaUrl([]string{mediaURL})

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("twilio send document: %w", err)
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	t.logger.Infow("WhatsApp document sent", "to", to, "sid", sid, "document", displayName)
	return sid, nil
}
