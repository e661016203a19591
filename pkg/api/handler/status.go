package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ashevelev/chatweb/pkg/api/response"
	"github.com/ashevelev/chatweb/pkg/digitalocean"
	"github.com/ashevelev/chatweb/pkg/logger"
)

type BalanceProvider interface {
	GetBalance(ctx context.Context) (*digitalocean.Balance, error)
}

type status struct {
	balance BalanceProvider
	writer  response.JSONWriter
}

// NewStatus builds the ops status handler. balance may be nil when no
// hosting token is configured.
func NewStatus(balance BalanceProvider) *status {
	return &status{balance: balance}
}

func (s *status) Status(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"status": "ok"}

	if s.balance != nil {
		if balance, err := s.balance.GetBalance(r.Context()); err != nil {
			slog.WarnContext(r.Context(), "fetching hosting balance", logger.Err(err))
		} else {
			body["balance"] = balance
		}
	}

	s.writer.WriteJSON(w, http.StatusOK, body)
}
