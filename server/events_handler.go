package server

import (
	"net/http"

	"groovy/core/events"
	"groovy/logger"
)

// EventsHandler upgrades to a websocket that receives catalog change events.
func (h *APIHandler) EventsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", logger.ErrorField(err))
		return
	}
	p := principal(r)
	logger.Info("事件订阅连接建立", logger.Int64("userId", p.UserID), logger.String("remote", r.RemoteAddr))
	events.NewClient(h.hub, conn).Serve()
}
