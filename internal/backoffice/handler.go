package backoffice

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nimasrn/purchase-ledger/internal/model"
	"github.com/nimasrn/purchase-ledger/internal/queue"
	"github.com/nimasrn/purchase-ledger/internal/services"
	"github.com/rs/zerolog/log"
)

type ReportService interface {
	Transaction(ctx context.Context, id int64) (*model.TransactionReport, error)
	UserStatement(ctx context.Context, userID int64) (*model.UserStatement, error)
	LowStock(ctx context.Context, threshold int64) (*model.LowStockReport, error)
}

type QueueStats interface {
	GetStats(ctx context.Context) (*queue.QueueStats, error)
}

// Handler serves read-only reports for operators.
type Handler struct {
	reports ReportService
	queue   QueueStats
}

// NewHandler builds the backoffice handler. queue may be nil when the
// compensation stream is not configured.
func NewHandler(reports ReportService, queue QueueStats) *Handler {
	return &Handler{reports: reports, queue: queue}
}

func (h *Handler) TransactionReport(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	report, err := h.reports.Transaction(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) UserStatement(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	statement, err := h.reports.UserStatement(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, statement)
}

func (h *Handler) LowStock(c *gin.Context) {
	threshold := int64(services.DefaultLowStockThreshold)
	if raw := c.Query("threshold"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(c, model.ErrInvalidRequest.WithMessage("threshold must be a number"))
			return
		}
		threshold = n
	}

	report, err := h.reports.LowStock(c.Request.Context(), threshold)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) CompensationQueue(c *gin.Context) {
	if h.queue == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"code": model.ErrInternal.Code, "message": "compensation queue is not configured"})
		return
	}
	stats, err := h.queue.GetStats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total":       stats.TotalMessages,
		"pending":     stats.PendingMessages,
		"consumers":   stats.ConsumerCount,
		"deadLetters": stats.DeadLetters,
	})
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, model.ErrInvalidRequest.WithMessage("id must be a positive integer"))
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	e := model.AsError(err)
	if e == model.ErrInternal {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("report failed")
	}
	c.JSON(e.Status, gin.H{"code": e.Code, "message": e.Message})
}
