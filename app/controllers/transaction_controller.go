package controllers

import (
	"time"

	"github.com/shashiranjanraj/uniformhub/app/services"
	"github.com/shashiranjanraj/uniformhub/pkg/ctx"
	"github.com/shashiranjanraj/uniformhub/pkg/logger"
	"github.com/shashiranjanraj/uniformhub/pkg/sse"
	"github.com/shashiranjanraj/uniformhub/pkg/ws"
)

type TransactionController struct {
	txs *services.TransactionService
	hub *ws.Hub
}

func NewTransactionController(s *services.TransactionService, hub *ws.Hub) *TransactionController {
	return &TransactionController{txs: s, hub: hub}
}

func (tc *TransactionController) Index(c *ctx.Context) {
	out, page, err := tc.txs.List(c.Context(), c.Principal(), services.TransactionFilter{
		Status: c.Query("status"),
		Role:   c.Query("role"),
	}, c.Page())
	if err != nil {
		fail(c, err)
		return
	}
	c.Paginated(out, page)
}

func (tc *TransactionController) Store(c *ctx.Context) {
	var in services.TransactionInput
	if !c.BindJSON(&in) {
		return
	}
	t, err := tc.txs.Create(c.Context(), c.Principal(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(t)
}

func (tc *TransactionController) Show(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	t, err := tc.txs.Get(c.Context(), c.Principal(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(t)
}

func (tc *TransactionController) Complete(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	t, err := tc.txs.Complete(c.Context(), c.Principal(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(t)
}

func (tc *TransactionController) Cancel(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	t, err := tc.txs.Cancel(c.Context(), c.Principal(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(t)
}

func (tc *TransactionController) Messages(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	out, err := tc.txs.Messages(c.Context(), c.Principal(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(out)
}

func (tc *TransactionController) PostMessage(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	var in services.MessageInput
	if !c.BindJSON(&in) {
		return
	}
	m, err := tc.txs.PostMessage(c.Context(), c.Principal(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(m)
}

// Socket GET /api/transactions/{id}/ws upgrades to a WebSocket joined to
// the transaction's room.
func (tc *TransactionController) Socket(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	if err := tc.txs.CanWatch(c.Context(), c.Principal(), id); err != nil {
		fail(c, err)
		return
	}
	if err := tc.hub.Serve(c.W, c.R, services.Room(id)); err != nil {
		logger.WithCtx(c.Context()).Debug("websocket upgrade failed", "transaction_id", id, "error", err)
	}
}

// Events GET /api/transactions/{id}/events streams the same room as
// server-sent events.
func (tc *TransactionController) Events(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	if err := tc.txs.CanWatch(c.Context(), c.Principal(), id); err != nil {
		fail(c, err)
		return
	}
	stream := sse.New(c.W, c.R)
	if stream == nil {
		return
	}
	ch, cancel := tc.hub.Subscribe(services.Room(id))
	defer cancel()
	stream.Pipe(c.Context(), "transaction", ch, 25*time.Second)
}
