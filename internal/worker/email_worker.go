package worker

// Consumes QueueEmail: messages that carry their own recipient, subject and
// body (relatórios de fechamento, avisos avulsos). No retry here — a failed
// send is logged and dropped; the fechamento PDF stays on disk either way.

import (
	"context"
	"encoding/json"

	"cantina/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail string `json:"para"`
	Subject string `json:"assunto"`
	Body    string `json:"corpo"`
	PDFPath string `json:"pdf_path,omitempty"`
}

type EmailWorker struct {
	mailer *infra.Mailer
}

func NewEmailWorker(mailer *infra.Mailer) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: payload inválido")
		return
	}
	if payload.ToEmail == "" {
		log.Warn().Str("assunto", payload.Subject).Msg("email_worker: job sem destinatário")
		return
	}

	if err := w.mailer.SendNotificacao(payload.ToEmail, payload.Subject, payload.Body, payload.PDFPath); err != nil {
		log.Error().Err(err).Str("para", payload.ToEmail).Msg("email_worker: envio falhou")
		return
	}
	log.Info().Str("para", payload.ToEmail).Str("assunto", payload.Subject).Msg("email_worker: enviado")
}
