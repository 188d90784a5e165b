package handlers

import (
	"github.com/duyn/calofit-api/internal/config"
	"github.com/duyn/calofit-api/internal/services"
	"github.com/duyn/calofit-api/internal/store"
)

// Handler carries the injected dependencies for all HTTP handlers.
type Handler struct {
	cfg      *config.Config
	users    *store.UserStore
	tokens   *store.TokenStore
	records  *store.NotificationStore
	metrics  *store.MetricsStore
	logs     *store.LogStore
	otps     *store.OTPStore
	notifier *services.Notifier
	ai       *services.AIClient
}

func New(cfg *config.Config, users *store.UserStore, tokens *store.TokenStore, records *store.NotificationStore, metrics *store.MetricsStore, logs *store.LogStore, otps *store.OTPStore, notifier *services.Notifier, ai *services.AIClient) *Handler {
	return &Handler{
		cfg:      cfg,
		users:    users,
		tokens:   tokens,
		records:  records,
		metrics:  metrics,
		logs:     logs,
		otps:     otps,
		notifier: notifier,
		ai:       ai,
	}
}
