// internal/delivery/dispatcher.go
package delivery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"nutriplan/internal/apperr"
	"nutriplan/internal/models"
	"nutriplan/internal/tasks"
	"nutriplan/pkg/logger"
)

const followUpBody = "Lembre-se de manter uma rotina de alimentação saudável e beber água regularmente! 💧🍎"

// Dispatcher sends a rendered plan document to the user: a welcome message
// first, then the document, then a best-effort follow-up reminder after a
// fixed delay. The follow-up runs after the pipeline has returned, so its
// failure can only ever be logged.
type Dispatcher struct {
	messenger     Messenger
	scheduler     *tasks.Scheduler
	followUpDelay time.Duration
	logger        *logger.Logger
}

func NewDispatcher(messenger Messenger, scheduler *tasks.Scheduler, followUpDelay time.Duration, log *logger.Logger) *Dispatcher {
	if followUpDelay == 0 {
		followUpDelay = 60 * time.Second
	}
	return &Dispatcher{
		messenger:     messenger,
		scheduler:     scheduler,
		followUpDelay: followUpDelay,
		logger:        log,
	}
}

// Deliver sends the welcome message and the document, in that order. If
// the welcome message fails the document is not sent.
func (d *Dispatcher) Deliver(ctx context.Context, phone string, profile models.UserProfile, documentPath string) (*Receipt, error) {
	if !strings.HasPrefix(phone, "+") {
		return nil, apperr.Delivery(apperr.KindInvalidRecipient,
			"número de telefone deve incluir código do país (ex: +55)", nil)
	}

	name := profile.Name
	if name == "" {
		name = "cliente"
	}

	welcome := fmt.Sprintf("Olá %s! 🎉\n\n"+
		"Seu plano nutricional personalizado está pronto!\n"+
		"Aqui está o documento com todas as informações da sua dieta.\n\n"+
		"Qualquer dúvida, estamos à disposição!", name)

	msgSID, err := d.messenger.SendMessage(ctx, phone, welcome)
	if err != nil {
		d.logger.Errorw("welcome message failed, document not sent", "to", phone, "error", err)
		return nil, apperr.Delivery(apperr.KindProviderError, "falha ao enviar mensagem pelo WhatsApp", err)
	}

	displayName := strings.ReplaceAll(fmt.Sprintf("Plano_Nutricional_%s.pdf", name), " ", "_")
	docSID, err := d.messenger.SendDocument(ctx, phone, displayName, documentPath, displayName)
	if err != nil {
		d.logger.Errorw("document delivery failed", "to", phone, "error", err)
		return nil, apperr.Delivery(apperr.KindProviderError, "falha ao enviar documento pelo WhatsApp", err)
	}

	// Best-effort reminder; failure is logged by the scheduler, never surfaced.
	d.scheduler.AfterFunc(d.followUpDelay, "whatsapp follow-up", func() error {
		_, err := d.messenger.SendMessage(context.Background(), phone, followUpBody)
		return err
	})

	return &Receipt{MessageSID: msgSID, DocumentSID: docSID, SentAt: time.Now()}, nil
}
