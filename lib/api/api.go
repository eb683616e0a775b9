// Package api exposes an HTTP control surface for the simulator: it
// originates MO messages and status reports towards connected clients and
// reports sessions, recent traffic and counters.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/go-smsc/emi-smsc/lib/charset"
	"github.com/go-smsc/emi-smsc/lib/msglog"
	"github.com/go-smsc/emi-smsc/lib/protocol"
	"github.com/go-smsc/emi-smsc/lib/session"
	"github.com/go-smsc/emi-smsc/lib/stats"
	"github.com/go-smsc/emi-smsc/lib/util"
)

// DefaultMessageLimit is the number of entries /v1/messages returns
// when no limit is given.
const DefaultMessageLimit = 100

// MORequest is the body of POST /v1/mo.
type MORequest struct {
	Sender   string `json:"sender" binding:"required"`
	Receiver string `json:"receiver" binding:"required"`
	Text     string `json:"text"`
	Format   string `json:"format"`
}

// SRRequest is the body of POST /v1/sr.
type SRRequest struct {
	OAdC string `json:"oadc" binding:"required"`
	AdC  string `json:"adc" binding:"required"`
	SCTS string `json:"scts"`
	Dst  int    `json:"dst"`
	Rsn  string `json:"rsn"`
	Text string `json:"text"`
}

// Accepted is returned when a frame was queued on a session.
type Accepted struct {
	Session string `json:"session"`
}

// SessionInfo describes one connected client.
type SessionInfo struct {
	ID             string    `json:"id"`
	Remote         string    `json:"remote"`
	State          string    `json:"state"`
	Account        string    `json:"account,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	PendingReports int       `json:"pending_reports"`
}

// Handler serves the control API.
type Handler struct {
	dispatcher *session.Dispatcher
	registry   session.Registry
	recorder   *msglog.Recorder
	stats      *stats.Stats
	log        *logrus.Entry
}

// NewHandler creates a handler. recorder and st may be nil; the
// corresponding endpoints then return empty results.
func NewHandler(d *session.Dispatcher, r session.Registry, recorder *msglog.Recorder, st *stats.Stats, log *logrus.Logger) *Handler {
	return &Handler{
		dispatcher: d,
		registry:   r,
		recorder:   recorder,
		stats:      st,
		log:        log.WithField("component", "api"),
	}
}

// Router returns the gin engine with every route registered.
func (h *Handler) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.logRequests)

	router.GET("/healthz", h.healthz)

	v1 := router.Group("/v1")
	v1.POST("/mo", h.postMO)
	v1.POST("/sr", h.postSR)
	v1.GET("/sessions", h.getSessions)
	v1.GET("/messages", h.getMessages)
	v1.GET("/stats", h.getStats)
	return router
}

func (h *Handler) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	h.log.WithFields(logrus.Fields{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"latency": time.Since(start),
	}).Debug("request")
}

func (h *Handler) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": h.registry.Count()})
}

func (h *Handler) postMO(c *gin.Context) {
	var req MORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	format, err := charset.ParseFormat(req.Format)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	id, err := h.dispatcher.OriginateMO(protocol.MORequest{
		Sender:   req.Sender,
		Receiver: req.Receiver,
		Text:     req.Text,
		Format:   format,
	})
	h.respond(c, id, err)
}

func (h *Handler) postSR(c *gin.Context) {
	var req SRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	id, err := h.dispatcher.OriginateSR(protocol.SRRequest{
		AdC:  req.AdC,
		OAdC: req.OAdC,
		SCTS: req.SCTS,
		Dst:  req.Dst,
		Rsn:  req.Rsn,
		Text: req.Text,
	})
	h.respond(c, id, err)
}

func (h *Handler) respond(c *gin.Context, id string, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusAccepted, Accepted{Session: id})
	case unavailable(err):
		h.log.WithError(err).Warn("originate failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"cause": err.Error()})
	default:
		h.badRequest(c, err)
	}
}

// unavailable reports errors that depend on connected clients rather
// than on the request.
func unavailable(err error) bool {
	return util.IsRetryable(err) || errors.Is(err, util.ErrSessionClosed)
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"cause": err.Error()})
}

func (h *Handler) getSessions(c *gin.Context) {
	sessions := h.registry.All()
	out := make([]SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, SessionInfo{
			ID:             s.ID(),
			Remote:         s.Remote(),
			State:          s.State(),
			Account:        s.Account(),
			CreatedAt:      s.CreatedAt(),
			PendingReports: s.PendingReports(),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) getMessages(c *gin.Context) {
	limit := DefaultMessageLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"cause": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	entries := []msglog.Entry{}
	if h.recorder != nil {
		entries = h.recorder.Last(limit)
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) getStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.stats.Snapshot())
}
