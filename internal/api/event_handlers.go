package api

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// @Summary      Get gallery events
// @Description  Returns journaled image.uploaded and image.deleted events with an id above since, oldest first. Clients that lost the websocket feed use it to catch up.
// @Tags         events
// @Produce      json
// @Param        since  query     int  false  "The id of the last event received. Omit or use 0 to get all events."
// @Param        limit  query     int  false  "At most this many events, up to 100"
// @Success      200    {array}   models.Event
// @Failure      400    {object}  ErrorResponse
// @Failure      500    {object}  ErrorResponse
// @Router       /api/v1/events [get]
func (s *Server) GetEventsHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var sinceID int64
	if raw := query.Get("since"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid 'since' parameter, must be a non-negative number")
			return
		}
		sinceID = n
	}

	limit := 0
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "Invalid 'limit' parameter")
			return
		}
		limit = n
	}

	events, err := s.journal.GetEventsSince(r.Context(), sinceID, limit)
	if err != nil {
		s.log.Error("failed to read event journal", zap.Int64("since", sinceID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to retrieve events")
		return
	}

	writeJSON(w, http.StatusOK, events)
}
