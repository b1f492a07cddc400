package worker

// alert_worker.go
// Processes limit-alert jobs from QueueLimitAlerts.
// Delivers cash-limit alert emails via SMTP behind a circuit breaker;
// undeliverable jobs land in the DLQ.

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/nathards133/apiless/internal/infra"
)

// AlertWorker delivers cash-limit alert emails.
type AlertWorker struct {
	mailer  *infra.Mailer
	breaker *infra.CircuitBreaker
	rdb     *redis.Client
	to      string
}

func NewAlertWorker(mailer *infra.Mailer, breaker *infra.CircuitBreaker, rdb *redis.Client, to string) *AlertWorker {
	return &AlertWorker{mailer: mailer, breaker: breaker, rdb: rdb, to: to}
}

// Handle sends the alert email. Delivery is best-effort: the alert record is
// already in the store by the time this runs, so a failed send only loses the
// email, never the notification.
func (w *AlertWorker) Handle(ctx context.Context, raw json.RawMessage) {
	var payload LimitAlertPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("alert_worker: invalid payload")
		return
	}
	if w.to == "" {
		log.Debug().Msg("alert_worker: no recipient configured — skipping")
		return
	}

	subject := "Alerta de limite de caixa"
	err := w.breaker.Execute(func() error {
		return w.mailer.SendAlert(w.to, subject, payload.Message)
	})
	if err != nil {
		log.Error().Err(err).Str("session_id", payload.SessionID).Msg("alert_worker: failed to send alert email")
		SendToDLQ(ctx, w.rdb, QueueLimitAlerts, "limit_alert", raw, err.Error(), 1)
		return
	}
	log.Info().Str("session_id", payload.SessionID).Msg("alert_worker: alert email sent")
}
