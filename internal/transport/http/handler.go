package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cauiki/casa-ink-financeiro/internal/auth"
	"github.com/cauiki/casa-ink-financeiro/internal/config"
	"github.com/cauiki/casa-ink-financeiro/internal/currency"
	"github.com/cauiki/casa-ink-financeiro/internal/export"
	"github.com/cauiki/casa-ink-financeiro/internal/ledger"
	"github.com/cauiki/casa-ink-financeiro/internal/store"
)

// confirmHeader carries the explicit deletion confirmation. Without it the
// delete request is declined without touching the store.
const confirmHeader = "X-Confirm-Delete"

// Handler wires the ledger core to gin routes.
type Handler struct {
	store      *store.Store
	sessions   *auth.Manager
	studio     config.StudioConfig
	loc        *time.Location
	projection *ledger.Projection
	log        *zap.SugaredLogger

	controllers sync.Map // userID -> *ledger.Controller
}

// NewHandler builds the handler and starts the server-wide projection, which
// evaluates "today" in the studio timezone.
func NewHandler(s *store.Store, sessions *auth.Manager, studio config.StudioConfig, loc *time.Location, log *zap.SugaredLogger) *Handler {
	h := &Handler{
		store:      s,
		sessions:   sessions,
		studio:     studio,
		loc:        loc,
		projection: ledger.NewProjection(loc),
		log:        log,
	}
	h.projection.Start(s, nil)
	return h
}

// Close tears down the server-wide projection.
func (h *Handler) Close() { h.projection.Stop() }

// RegisterHandlers mounts all routes.
func RegisterHandlers(r *gin.Engine, h *Handler) {
	r.POST("/v1/sessions", h.createSession)

	v1 := r.Group("/v1", AuthMiddleware(h.sessions))
	{
		v1.DELETE("/sessions", h.deleteSession)
		v1.POST("/transactions", h.submitTransaction)
		v1.DELETE("/transactions/:id", h.deleteTransaction)
		v1.GET("/transactions", h.listTransactions)
		v1.GET("/transactions/export", h.exportCSV)
		v1.GET("/ledger/today", h.todayTotal)
		v1.GET("/ledger/live", h.liveFeed)
	}
}

func (h *Handler) controllerFor(userID string) *ledger.Controller {
	if c, ok := h.controllers.Load(userID); ok {
		return c.(*ledger.Controller)
	}
	c, _ := h.controllers.LoadOrStore(userID, ledger.NewController(h.store, h.studio, userID, h.log))
	return c.(*ledger.Controller)
}

func (h *Handler) createSession(c *gin.Context) {
	s, err := h.sessions.Create(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session backend unavailable"})
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (h *Handler) deleteSession(c *gin.Context) {
	token := c.GetString(ctxToken)
	if err := h.sessions.Revoke(c.Request.Context(), token); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session backend unavailable"})
		return
	}
	h.controllers.Delete(c.GetString(ctxUserID))
	c.Status(http.StatusNoContent)
}

func (h *Handler) submitTransaction(c *gin.Context) {
	var draft ledger.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctrl := h.controllerFor(c.GetString(ctxUserID))
	err := ctrl.Submit(c.Request.Context(), &draft)
	switch {
	case errors.Is(err, ledger.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrSubmitInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save transaction"})
	default:
		// draft comes back with client name, value and obs cleared
		c.JSON(http.StatusCreated, gin.H{"draft": draft})
	}
}

func (h *Handler) deleteTransaction(c *gin.Context) {
	id := c.Param("id")
	confirmed := c.GetHeader(confirmHeader) == "yes"
	confirm := ledger.ConfirmFunc(func(context.Context, string) bool { return confirmed })

	ctrl := h.controllerFor(c.GetString(ctxUserID))
	err := ctrl.RequestDelete(c.Request.Context(), id, confirm)
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete transaction"})
	default:
		c.JSON(http.StatusOK, gin.H{"deleted": confirmed})
	}
}

func (h *Handler) listTransactions(c *gin.Context) {
	st := h.projection.Current()
	c.JSON(http.StatusOK, gin.H{
		"transactions": st.Transactions,
		"loading":      st.Loading,
	})
}

func (h *Handler) todayTotal(c *gin.Context) {
	st := h.projection.Current()
	c.JSON(http.StatusOK, gin.H{
		"dayTotal": st.DayTotal,
		"display":  currency.ToDisplay(st.DayTotal),
		"loading":  st.Loading,
	})
}

func (h *Handler) exportCSV(c *gin.Context) {
	st := h.projection.Current()
	now := time.Now().In(h.loc)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+export.Filename(now)+`"`)
	if err := export.Write(c.Writer, st.Transactions, h.loc); err != nil {
		h.log.Errorf("csv export: %v", err)
	}
}
