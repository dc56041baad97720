package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/cauiki/casa-ink-financeiro/internal/currency"
	"github.com/cauiki/casa-ink-financeiro/internal/ledger"
	"github.com/cauiki/casa-ink-financeiro/internal/model"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// feedFrame is one full-snapshot message on the live feed. Every frame
// replaces the previous one wholesale; there is no delta contract.
type feedFrame struct {
	Transactions []model.Transaction `json:"transactions"`
	DayTotal     decimal.Decimal     `json:"dayTotal"`
	Display      string              `json:"display"`
	Loading      bool                `json:"loading"`
}

// liveFeed streams the projection over a WebSocket, one connection per
// viewer. The viewer's timezone (tz query param) defines its "today";
// it defaults to the studio timezone.
func (h *Handler) liveFeed(c *gin.Context) {
	loc := h.loc
	if tz := c.Query("tz"); tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warnf("websocket upgrade: %v", err)
		return
	}

	p := ledger.NewProjection(loc)
	// onUpdate runs on the subscription goroutine, so writes are naturally
	// serialized. A write failure closes the connection, which in turn ends
	// the read loop below.
	p.Start(h.store, func(st ledger.State) {
		frame := feedFrame{
			Transactions: st.Transactions,
			DayTotal:     st.DayTotal,
			Display:      currency.ToDisplay(st.DayTotal),
			Loading:      st.Loading,
		}
		if err := conn.WriteJSON(frame); err != nil {
			conn.Close()
		}
	})

	// Block until the client goes away; clients send nothing meaningful.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	conn.Close()
	p.Stop()
	h.log.Infow("live feed closed", "user", c.GetString(ctxUserID))
}
