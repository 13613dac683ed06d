package api

import (
	"net/http"

	"photolog/internal/websocket"

	"go.uber.org/zap"
)

// @Summary      Gallery event feed
// @Description  Upgrades to a websocket that receives image.uploaded and image.deleted events as JSON.
// @Tags         events
// @Success      101
// @Router       /ws [get]
func (s *Server) ServeWsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	if !s.wsHub.Serve(websocket.NewClient(s.wsHub, conn)) {
		conn.Close()
	}
}
