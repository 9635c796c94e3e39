package webhook

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"courtq/internal/dispatch"
	"courtq/internal/line"
	"courtq/internal/logging"
)

func (s *Server) handleCallback(c echo.Context) error {
	req := c.Request()
	body, err := io.ReadAll(io.LimitReader(req.Body, maxBodyBytes))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("unreadable body"))
	}

	payload, err := line.ParseRequest(s.secret, body, req.Header.Get(line.SignatureHeader))
	if errors.Is(err, line.ErrInvalidSignature) {
		s.logger.Warn("rejected webhook with invalid signature")
		return c.JSON(http.StatusBadRequest, errorBody("invalid signature"))
	}
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid payload"))
	}

	for _, event := range payload.Events {
		s.handleEvent(req.Context(), event)
	}
	return c.String(http.StatusOK, "OK")
}

func (s *Server) handleEvent(ctx context.Context, event line.WebhookEvent) {
	kind, ok := event.Kind()
	if !ok {
		return
	}
	ctx = logging.WithCorrelationID(ctx, event.WebhookEventID)
	ctx = logging.WithScopeID(ctx, event.Source.GroupID)
	logger := logging.WithContext(ctx, s.logger).With(
		logging.String(logging.FieldEventType, kind.String()),
		logging.String(logging.FieldActorID, event.Source.UserID),
	)

	var name string
	if kind != dispatch.EventJoin {
		name = s.deps.Line.Profile(ctx, event.Source.GroupID, event.Source.UserID)
	}
	ev, ok := event.ToEvent(name)
	if !ok {
		return
	}

	resp, err := s.deps.Dispatcher.Dispatch(ctx, ev)
	if err != nil {
		logger.Error("event handling failed", logging.Error(err))
		return
	}
	if resp == nil {
		return
	}

	courts := s.deps.Rosters.Resources()
	if kind != dispatch.EventMessage {
		courts = nil
	}
	if err := s.deps.Line.Reply(ctx, event.ReplyToken, resp.Text, courts); err != nil {
		logger.Warn("reply failed", logging.Error(err))
	}

	if resp.Promotion != nil && s.deps.Notifier != nil {
		if err := s.deps.Notifier.NotifyHead(ctx, *resp.Promotion); err != nil {
			logger.Warn("head notification failed",
				logging.String(logging.FieldCourt, string(resp.Promotion.Resource)),
				logging.Error(err),
			)
		}
	}
}
