package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"rooftop-vision/metrics"
	"rooftop-vision/middleware"
	"rooftop-vision/vision"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

const (
	ServiceName = "rooftop-vision"

	// FormFieldImage is the multipart field carrying the photo.
	FormFieldImage = "image"

	HeaderAnalysisSource = "X-Analysis-Source"

	// multipartOverhead is allowed on top of the image limit for the form's
	// boundaries and part headers.
	multipartOverhead = 64 << 10
)

var (
	errNoImage  = errors.New("no image in request")
	errTooLarge = errors.New("image exceeds upload limit")
)

// Handlers represents the HTTP handlers
type Handlers struct {
	analyzer       vision.Analyzer
	maxUploadBytes int64
}

// NewHandlers creates new HTTP handlers
func NewHandlers(analyzer vision.Analyzer, maxUploadBytes int64) *Handlers {
	return &Handlers{
		analyzer:       analyzer,
		maxUploadBytes: maxUploadBytes,
	}
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"service":  ServiceName,
		"provider": h.analyzer.SourceName(),
	})
}

// AnalyzeRooftop accepts a rooftop photo, either as the "image" field of a
// multipart form or as the raw request body, and returns the analysis
// result mapping.
func (h *Handlers) AnalyzeRooftop(c *gin.Context) {
	imageData, err := h.readImage(c)
	switch {
	case errors.Is(err, errTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error":   "Image too large",
			"details": fmt.Sprintf("Uploads are limited to %d bytes", h.maxUploadBytes),
		})
		return
	case errors.Is(err, errNoImage):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Image is required",
		})
		return
	case err != nil:
		log.WithError(err).Warn("Failed to read uploaded image")
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Failed to read image",
			"details": err.Error(),
		})
		return
	}

	metrics.UploadBytes.Observe(float64(len(imageData)))

	result := h.analyzer.AnalyzeRooftop(c.Request.Context(), imageData)

	log.WithFields(log.Fields{
		"request_id": c.GetString(middleware.ContextRequestID),
		"source":     h.analyzer.SourceName(),
		"result":     result.Outcome(),
	}).Info("Rooftop analysis request served")

	c.Header(HeaderAnalysisSource, h.analyzer.SourceName())
	c.JSON(StatusFor(result), result)
}

// StatusFor maps an analysis result to the HTTP status returned to clients.
func StatusFor(result *vision.Result) int {
	if result.OK() {
		return http.StatusOK
	}
	switch result.Kind {
	case vision.KindConfigMissing:
		return http.StatusServiceUnavailable
	case vision.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func (h *Handlers) readImage(c *gin.Context) ([]byte, error) {
	isMultipart := strings.HasPrefix(c.ContentType(), "multipart/form-data")

	if h.maxUploadBytes > 0 {
		bodyLimit := h.maxUploadBytes
		if isMultipart {
			bodyLimit += multipartOverhead
		}
		if c.Request.ContentLength > bodyLimit {
			return nil, errTooLarge
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, bodyLimit)
	}

	var (
		data []byte
		err  error
	)
	if isMultipart {
		data, err = h.readFormFile(c, FormFieldImage)
	} else {
		data, err = io.ReadAll(c.Request.Body)
	}
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, errTooLarge
		}
		return nil, err
	}
	if len(data) == 0 {
		return nil, errNoImage
	}
	return data, nil
}

func (h *Handlers) readFormFile(c *gin.Context, field string) ([]byte, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, errNoImage
	}
	if err != nil {
		return nil, err
	}
	if h.maxUploadBytes > 0 && fh.Size > h.maxUploadBytes {
		return nil, errTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer f.Close()

	return io.ReadAll(f)
}
