package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tonearm/services"
	"tonearm/types"
)

// LibraryHandler handles library browsing and streaming endpoints
type LibraryHandler struct {
	library *services.LocalFiles
	log     *zap.Logger
}

// NewLibraryHandler creates a new library handler
func NewLibraryHandler(library *services.LocalFiles, logger *zap.Logger) *LibraryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LibraryHandler{library: library, log: logger}
}

// ListURIs returns a snapshot of the discovered track URIs. The first
// request triggers the background scan; the list keeps growing while
// the scan runs.
func (h *LibraryHandler) ListURIs(c *gin.Context) {
	collection := h.library.GetURIList(c.Request.Context())
	uris := collection.Snapshot()

	c.JSON(http.StatusOK, gin.H{
		"uris":  uris,
		"count": len(uris),
		"scan":  h.library.ScanStatus(),
	})
}

// GetEntry returns the library entry for a URI: the root folder record
// or the probed track metadata.
func (h *LibraryHandler) GetEntry(c *gin.Context) {
	uri := c.Query("uri")
	if uri == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "query parameter 'uri' is required",
		})
		return
	}

	ctx := c.Request.Context()

	// The details contract requires an existence check first. The root
	// folder is synthetic and skips it.
	if uri != "file:/" {
		if ok, err := h.library.CanPlayURI(ctx, uri); err != nil {
			h.abortWithError(c, err)
			return
		} else if !ok {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "uri is not playable",
				"uri":   uri,
			})
			return
		}
	}

	entry, err := h.library.GetURIDetails(ctx, uri)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

// CanPlay reports whether a URI's target exists and is playable
func (h *LibraryHandler) CanPlay(c *gin.Context) {
	uri := c.Query("uri")
	if uri == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "query parameter 'uri' is required",
		})
		return
	}

	ok, err := h.library.CanPlayURI(c.Request.Context(), uri)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"uri":     uri,
		"canPlay": ok,
	})
}

// StreamEntry streams the file behind a track URI, with range-request
// support for seeking.
func (h *LibraryHandler) StreamEntry(c *gin.Context) {
	uri := c.Query("uri")
	if uri == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "query parameter 'uri' is required",
		})
		return
	}

	ctx := c.Request.Context()

	if ok, err := h.library.CanPlayURI(ctx, uri); err != nil {
		h.abortWithError(c, err)
		return
	} else if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "uri is not playable",
			"uri":   uri,
		})
		return
	}

	entry, err := h.library.GetURIDetails(ctx, uri)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	path, err := h.library.GetStream(entry)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	// http.ServeFile behind c.File handles Range headers for seeking.
	c.Header("Content-Type", services.ContentType(path))
	c.Header("Cache-Control", "public, max-age=3600")
	c.File(path)
}

// Search filters the discovered URIs by a case-insensitive substring
func (h *LibraryHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "query parameter 'q' is required",
		})
		return
	}

	needle := strings.ToLower(query)
	var matches []string
	for _, uri := range h.library.GetURIList(c.Request.Context()).Snapshot() {
		if strings.Contains(strings.ToLower(uri), needle) {
			matches = append(matches, uri)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"results": matches,
		"count":   len(matches),
	})
}

// abortWithError maps library error codes onto HTTP statuses
func (h *LibraryHandler) abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case types.IsCode(err, types.CodeInvalidInput):
		status = http.StatusBadRequest
	case types.IsCode(err, types.CodeNotFound):
		status = http.StatusNotFound
	case types.IsCode(err, types.CodeSequence):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		h.log.Error("library request failed", zap.Error(err))
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
