package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tonearm/services"
	"tonearm/websocket"
)

// ScanHandler handles scan status and progress endpoints
type ScanHandler struct {
	library *services.LocalFiles
	hub     websocket.Hub
	log     *zap.Logger
}

// NewScanHandler creates a new scan handler
func NewScanHandler(library *services.LocalFiles, hub websocket.Hub, logger *zap.Logger) *ScanHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScanHandler{library: library, hub: hub, log: logger}
}

// Status returns the status of the most recent library scan
func (h *ScanHandler) Status(c *gin.Context) {
	job := h.library.ScanStatus()
	if job == nil {
		c.JSON(http.StatusOK, gin.H{
			"message": "no scan has been started",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"scan": job})
}

// HandleWebSocketConnection subscribes a WebSocket client to progress
// events for one scan
func (h *ScanHandler) HandleWebSocketConnection(c *gin.Context) {
	scanID := c.Param("scanId")
	if scanID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scan ID is required"})
		return
	}

	h.subscribe(c, scanID)
}

// HandleWebSocketAllConnection subscribes a WebSocket client to
// progress events for every scan
func (h *ScanHandler) HandleWebSocketAllConnection(c *gin.Context) {
	h.subscribe(c, websocket.AllScans)
}

func (h *ScanHandler) subscribe(c *gin.Context, scanID string) {
	upgrader := websocket.GetUpgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := websocket.NewClient(h.hub, conn, scanID, h.log)
	h.hub.RegisterClient(client)
	client.StartPumps()
}
