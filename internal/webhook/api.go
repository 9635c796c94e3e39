package webhook

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"courtq/internal/engine"
	"courtq/internal/logging"
	"courtq/internal/queue"
)

// EntryView is the JSON form of a queue entry.
type EntryView struct {
	ActorID     string    `json:"actor_id"`
	DisplayName string    `json:"display_name"`
	Sequence    int64     `json:"sequence"`
	EnrolledAt  time.Time `json:"enrolled_at"`
}

// CourtView is the JSON form of one court roster.
type CourtView struct {
	Court   string      `json:"court"`
	Head    *EntryView  `json:"head"`
	Waiting []EntryView `json:"waiting"`
}

// CourtsResponse is returned by GET /api/v1/courts.
type CourtsResponse struct {
	Courts []CourtView `json:"courts"`
}

func entryView(entry queue.Entry) EntryView {
	return EntryView{
		ActorID:     entry.ActorID,
		DisplayName: entry.DisplayName,
		Sequence:    entry.Sequence,
		EnrolledAt:  entry.CreatedAt,
	}
}

func courtView(roster engine.Roster) CourtView {
	view := CourtView{Court: string(roster.Resource), Waiting: []EntryView{}}
	for i, entry := range roster.Entries {
		if i == 0 {
			head := entryView(entry)
			view.Head = &head
			continue
		}
		view.Waiting = append(view.Waiting, entryView(entry))
	}
	return view
}

func (s *Server) handleCourts(c echo.Context) error {
	rosters, err := s.deps.Rosters.Rosters(c.Request().Context())
	if err != nil {
		s.logger.Error("list courts failed", logging.Error(err))
		return c.JSON(http.StatusInternalServerError, errorBody(err.Error()))
	}
	resp := CourtsResponse{Courts: make([]CourtView, 0, len(rosters))}
	for _, roster := range rosters {
		resp.Courts = append(resp.Courts, courtView(roster))
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleCourt(c echo.Context) error {
	court := queue.Resource(strings.ToUpper(strings.TrimSpace(c.Param("court"))))
	if !s.deps.Rosters.Has(court) {
		return c.JSON(http.StatusNotFound, errorBody("court not found"))
	}
	roster, err := s.deps.Rosters.Roster(c.Request().Context(), court)
	if err != nil {
		s.logger.Error("read court failed", logging.Error(err))
		return c.JSON(http.StatusInternalServerError, errorBody(err.Error()))
	}
	return c.JSON(http.StatusOK, courtView(roster))
}
