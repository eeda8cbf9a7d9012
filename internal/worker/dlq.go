package worker

// Jobs that still fail after the retry budget are parked in a Redis list
// ("fila de descarte") so an operator can inspect and replay them.
// One list per source queue, keyed descarte:{fila}.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const dlqKeyPrefix = "descarte:"

// FailedJob is the envelope stored in the discard list. It carries enough
// context to replay the original job by hand.
type FailedJob struct {
	Fila       string          `json:"fila"`
	Tipo       string          `json:"tipo"`
	Payload    json.RawMessage `json:"payload"`
	Erro       string          `json:"erro"`
	Tentativas int             `json:"tentativas"`
	FalhouEm   time.Time       `json:"falhou_em"`
}

// SendToDLQ parks an exhausted job in the discard list of its source queue.
// Failures here are logged and swallowed: losing a notification is preferable
// to blocking the worker.
func SendToDLQ(ctx context.Context, rdb *redis.Client, fila, tipo string, payload json.RawMessage, motivo string, tentativas int) {
	entry := FailedJob{
		Fila:       fila,
		Tipo:       tipo,
		Payload:    payload,
		Erro:       motivo,
		Tentativas: tentativas,
		FalhouEm:   time.Now().UTC(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("fila", fila).Msg("dlq: marshal do job descartado falhou")
		return
	}
	if err := rdb.LPush(ctx, dlqKeyPrefix+fila, data).Err(); err != nil {
		log.Error().Err(err).Str("fila", fila).Msg("dlq: push para a fila de descarte falhou")
		return
	}

	log.Warn().
		Str("fila", fila).
		Str("tipo", tipo).
		Str("erro", motivo).
		Int("tentativas", tentativas).
		Msg("dlq: job descartado após esgotar tentativas")
}

// DLQDepth reports how many discarded jobs each queue has accumulated.
// Surfaced on the health endpoint so operators notice a stuck mailer.
func DLQDepth(ctx context.Context, rdb *redis.Client) map[string]int64 {
	depths := make(map[string]int64, 2)
	for _, fila := range []string{QueueNotificacoes, QueueEmail} {
		n, err := rdb.LLen(ctx, dlqKeyPrefix+fila).Result()
		if err != nil {
			continue
		}
		depths[fila] = n
	}
	return depths
}
