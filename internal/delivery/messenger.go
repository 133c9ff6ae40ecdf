// internal/delivery/messenger.go
package delivery

import (
	"context"
	"time"
)

// Messenger is the messaging collaborator. `to` must carry the
// international prefix marker (+) by the time it reaches an implementation.
type Messenger interface {
	// SendMessage sends a text message and returns the provider receipt id.
	SendMessage(ctx context.Context, to, body string) (string, error)
	// SendDocument sends a document with an accompanying body text.
	SendDocument(ctx context.Context, to, body, filePath, displayName string) (string, error)
}

// Receipt reports a completed delivery.
type Receipt struct {
	MessageSID  string    `json:"messageSid"`
	DocumentSID string    `json:"documentSid"`
	SentAt      time.Time `json:"sentAt"`
}
