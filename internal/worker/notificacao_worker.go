package worker

// notificacao_worker.go
// Processes guardian notification jobs from QueueNotificacoes:
//   - "recibo":      PDF receipt mailed after a sale debited the student account
//   - "saldo_baixo": warning mailed when the balance drops below the threshold
//
// SMTP calls go through a circuit breaker with exponential backoff (max 3
// attempts). Exhausted jobs land in the DLQ.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cantina/internal/infra"
	"cantina/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const maxEnvioAttempts = 3

// NotificacaoJobPayload is the job envelope sent to QueueNotificacoes.
type NotificacaoJobPayload struct {
	Tipo    string  `json:"tipo"` // recibo | saldo_baixo
	AlunoRA string  `json:"aluno_ra"`
	VendaID *string `json:"venda_id,omitempty"`
	Saldo   string  `json:"saldo,omitempty"`
}

// NotificacaoWorker resolves the guardian email and delivers the notification.
type NotificacaoWorker struct {
	mailer         *infra.Mailer
	cb             *infra.CircuitBreaker
	rdb            *redis.Client
	alunoRepo      repository.AlunoRepository
	vendaRepo      repository.VendaRepository
	pdfStoragePath string
}

func NewNotificacaoWorker(
	mailer *infra.Mailer,
	cb *infra.CircuitBreaker,
	rdb *redis.Client,
	alunoRepo repository.AlunoRepository,
	vendaRepo repository.VendaRepository,
	pdfStoragePath string,
) *NotificacaoWorker {
	return &NotificacaoWorker{
		mailer:         mailer,
		cb:             cb,
		rdb:            rdb,
		alunoRepo:      alunoRepo,
		vendaRepo:      vendaRepo,
		pdfStoragePath: pdfStoragePath,
	}
}

// Process handles a single notification job:
//  1. Parse NotificacaoJobPayload from the job envelope
//  2. Resolve the student and the guardian email (missing email: skip, no DLQ)
//  3. recibo: fetch the Venda and render the PDF receipt
//  4. Send through the circuit breaker with exponential backoff
func (w *NotificacaoWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload NotificacaoJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("notificacao_worker: invalid payload")
		return
	}

	aluno, err := w.alunoRepo.FindByRA(ctx, payload.AlunoRA)
	if err != nil {
		log.Error().Str("ra", payload.AlunoRA).Err(err).Msg("notificacao_worker: aluno not found")
		return
	}
	if aluno.EmailResponsavel == nil || *aluno.EmailResponsavel == "" {
		log.Debug().Str("ra", payload.AlunoRA).Msg("notificacao_worker: aluno sem email do responsável — skipping")
		return
	}
	to := *aluno.EmailResponsavel

	var subject, body, pdfPath string
	switch payload.Tipo {
	case "recibo":
		if payload.VendaID == nil {
			log.Error().Msg("notificacao_worker: recibo job without venda_id")
			return
		}
		vendaID, err := uuid.Parse(*payload.VendaID)
		if err != nil {
			log.Error().Str("venda_id", *payload.VendaID).Msg("notificacao_worker: invalid venda_id")
			return
		}
		venda, err := w.vendaRepo.FindByID(ctx, vendaID)
		if err != nil {
			log.Error().Str("venda_id", *payload.VendaID).Err(err).Msg("notificacao_worker: venda not found")
			return
		}
		pdfPath, err = infra.GerarReciboPDF(venda, aluno.Nome, w.pdfStoragePath)
		if err != nil {
			// Send without the attachment rather than dropping the notice
			log.Error().Err(err).Msg("notificacao_worker: failed to generate recibo PDF")
			pdfPath = ""
		}
		subject = fmt.Sprintf("Cantina — recibo da compra nº %d", venda.Numero)
		body = fmt.Sprintf(
			"Compra de %s (RA %s) em %s no valor de R$ %s, debitada da conta da cantina.",
			aluno.Nome, aluno.RA, venda.CreatedAt.Format("02/01/2006 15:04"), venda.Total.StringFixed(2))

	case "saldo_baixo":
		subject = "Cantina — saldo baixo"
		body = fmt.Sprintf(
			"O saldo da conta da cantina de %s (RA %s) está em R$ %s. Recomendamos uma nova recarga.",
			aluno.Nome, aluno.RA, payload.Saldo)

	default:
		log.Error().Str("tipo", payload.Tipo).Msg("notificacao_worker: unknown tipo")
		return
	}

	if err := w.sendWithRetry(to, subject, body, pdfPath); err != nil {
		SendToDLQ(ctx, w.rdb, QueueNotificacoes, payload.Tipo, raw, err.Error(), maxEnvioAttempts)
		return
	}
	log.Info().Str("to", to).Str("tipo", payload.Tipo).Msg("notificacao_worker: notificação enviada")
}

// sendWithRetry pushes the email through the circuit breaker, backing off
// exponentially (1s, 2s, 4s) between attempts. ErrCircuitOpen is not retried
// locally — the job goes straight to the DLQ for later replay.
func (w *NotificacaoWorker) sendWithRetry(to, subject, body, pdfPath string) error {
	var lastErr error
	for attempt := 0; attempt < maxEnvioAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<uint(attempt-1)) * time.Second)
		}
		lastErr = w.cb.Execute(func() error {
			return w.mailer.SendNotificacao(to, subject, body, pdfPath)
		})
		if lastErr == nil {
			return nil
		}
		if lastErr == infra.ErrCircuitOpen {
			return lastErr
		}
		log.Warn().Err(lastErr).Int("attempt", attempt+1).Str("to", to).Msg("notificacao_worker: send failed")
	}
	return lastErr
}
