package dungeon

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/dungeonwave/internal/game/match"
	"github.com/nfrund/dungeonwave/internal/game/service"
	"github.com/nfrund/dungeonwave/internal/handlers"
	"github.com/nfrund/dungeonwave/internal/middleware"
	"github.com/nfrund/dungeonwave/internal/websocket"
)

const defaultLogLimit = 100

// Handler holds dependencies for the dungeon HTTP and websocket handlers.
type Handler struct {
	svc *service.Service
}

// NewHandler creates a new dungeon handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// CreateMatch handles POST /api/matches.
func (h *Handler) CreateMatch(c echo.Context) error {
	var req CreateMatchRequest
	if err := c.Bind(&req); err != nil {
		return handlers.NewHTTPError(http.StatusBadRequest, string(match.CodeInvalidSetup), "invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return handlers.NewHTTPError(http.StatusBadRequest, string(match.CodeInvalidSetup), err.Error())
	}

	m, err := h.svc.CreateMatch(c.Request().Context(), req.toService())
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

// GetMatch handles GET /api/matches/:id.
func (h *Handler) GetMatch(c echo.Context) error {
	m, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// PerformAction handles POST /api/matches/:id/actions.
func (h *Handler) PerformAction(c echo.Context) error {
	var req ActionRequest
	if err := c.Bind(&req); err != nil {
		return handlers.NewHTTPError(http.StatusBadRequest, string(match.CodeInvalidAction), "invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return handlers.NewHTTPError(http.StatusBadRequest, string(match.CodeInvalidAction), err.Error())
	}
	a, err := req.ToAction()
	if err != nil {
		return httpError(c, err)
	}

	res, m, err := h.svc.Perform(c.Request().Context(), c.Param("id"), a)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, ActionResponse{Result: res, State: m})
}

// EndTurn handles POST /api/matches/:id/end-turn.
func (h *Handler) EndTurn(c echo.Context) error {
	out, m, err := h.svc.EndTurn(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}
	spawned := out.Spawned
	if spawned == nil {
		spawned = []string{}
	}
	return c.JSON(http.StatusOK, EndTurnResponse{Spawned: spawned, Acted: out.Acted, Result: out.Result, State: m})
}

// MatchLog handles GET /api/matches/:id/log?limit=.
func (h *Handler) MatchLog(c echo.Context) error {
	limit := defaultLogLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return handlers.NewHTTPError(http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer")
		}
		limit = n
	}

	id := c.Param("id")
	entries, err := h.svc.Log(c.Request().Context(), id, limit)
	if err != nil {
		return httpError(c, err)
	}
	if entries == nil {
		entries = []match.Entry{}
	}
	return c.JSON(http.StatusOK, LogResponse{MatchID: id, Entries: entries})
}

// Authorize admits websocket clients to existing matches. A named player
// must be seated in the match.
func (h *Handler) Authorize(ctx context.Context, matchID, playerID string) error {
	m, err := h.svc.Get(ctx, matchID)
	if err != nil {
		return failureResponse(err)
	}
	if playerID != "" && m.Player(playerID) == nil {
		return failureResponse(match.Fail(match.CodePlayerNotFound, "player %q in match %q", playerID, matchID))
	}
	return nil
}

// Inbound applies an action sent over a websocket. The acting player is
// always the one the connection was opened for.
func (h *Handler) Inbound(ctx context.Context, in websocket.Incoming) *websocket.Message {
	if in.PlayerID == "" {
		return websocket.NewError(string(match.CodeInvalidAction), "spectators cannot act")
	}
	var req ActionRequest
	if err := json.Unmarshal(in.Payload, &req); err != nil {
		return websocket.NewError(string(match.CodeInvalidAction), "malformed message")
	}
	req.PlayerID = in.PlayerID

	if req.Type == "end_turn" {
		out, _, err := h.svc.EndTurn(ctx, in.MatchID)
		if err != nil {
			return wsError(err)
		}
		return websocket.NewAck(map[string]any{"type": req.Type, "spawned": out.Spawned, "acted": out.Acted, "result": out.Result})
	}

	a, err := req.ToAction()
	if err != nil {
		return wsError(err)
	}
	res, _, err := h.svc.Perform(ctx, in.MatchID, a)
	if err != nil {
		return wsError(err)
	}
	return websocket.NewAck(res)
}

// httpError maps typed failures to 400, 404 and 409. Anything else goes to
// the server's error handler as a 500.
func httpError(c echo.Context, err error) error {
	var f *match.Failure
	if !errors.As(err, &f) {
		middleware.FromContext(c.Request().Context()).Error("dungeon request failed", "error", err)
		return err
	}
	return failureResponse(f)
}

func failureResponse(err error) error {
	var f *match.Failure
	if !errors.As(err, &f) {
		return err
	}
	status := http.StatusBadRequest
	switch {
	case errors.Is(f, match.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(f, match.ErrTerminalState):
		status = http.StatusConflict
	}
	return handlers.NewHTTPError(status, string(f.Code), f.Error())
}

func wsError(err error) *websocket.Message {
	var f *match.Failure
	if errors.As(err, &f) {
		return websocket.NewError(string(f.Code), f.Error())
	}
	return websocket.NewError("internal", "internal error")
}
