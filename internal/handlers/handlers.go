package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nganaremba-rem/plant-disease-detection-backend/internal/classify"
	"github.com/nganaremba-rem/plant-disease-detection-backend/internal/mailer"
)

// Dispatcher sends one disease alert email per call.
type Dispatcher interface {
	Send(ctx context.Context, recipients []string, records []mailer.ResultsForUI) error
}

// Handler wires the classification pipeline and the notification
// dispatcher to their HTTP routes.
type Handler struct {
	pipeline         *classify.Pipeline
	dispatcher       Dispatcher
	modelName        string
	maxBytes         int64
	inferenceTimeout time.Duration
	log              *zap.Logger
}

func NewHandler(pipeline *classify.Pipeline, dispatcher Dispatcher, modelName string,
	maxBytes int64, inferenceTimeout time.Duration, log *zap.Logger) *Handler {
	return &Handler{
		pipeline:         pipeline,
		dispatcher:       dispatcher,
		modelName:        modelName,
		maxBytes:         maxBytes,
		inferenceTimeout: inferenceTimeout,
		log:              log,
	}
}

// Health reports that the process is serving and which model it loaded.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"model":  h.modelName,
	})
}

// Classify accepts a multipart image upload in the "file" field and
// returns ranked disease labels with confidence scores.
func (h *Handler) Classify(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"detail": "No image file provided. Use 'file' as the form field name",
		})
		return
	}
	defer file.Close()

	// Read one byte past the cap so the validator judges bytes actually
	// received, not the client-declared length.
	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Failed to read uploaded file"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.inferenceTimeout)
	defer cancel()

	results, err := h.pipeline.Classify(ctx, classify.Request{
		Filename: header.Filename,
		Data:     data,
	})
	if err != nil {
		h.classifyError(c, header.Filename, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"classification_results": results})
}

func (h *Handler) classifyError(c *gin.Context, filename string, err error) {
	var cerr *classify.Error
	if errors.As(err, &cerr) && cerr.ClientFacing() {
		c.JSON(http.StatusBadRequest, gin.H{"detail": cerr.Detail()})
		return
	}

	// Server-side faults keep their detail in the logs only.
	h.log.Error("classification failed",
		zap.String("filename", filename), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error classifying image"})
}

type sendEmailRequest struct {
	Email []string              `json:"email" binding:"required"`
	Data  []mailer.ResultsForUI `json:"data" binding:"required,dive"`
}

// SendEmail validates the recipient list and hands the report records to
// the dispatcher for a single templated delivery.
func (h *Handler) SendEmail(c *gin.Context) {
	var req sendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	if err := h.dispatcher.Send(c.Request.Context(), req.Email, req.Data); err != nil {
		var rerr *mailer.RecipientError
		if errors.As(err, &rerr) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": rerr.Error()})
			return
		}
		h.log.Error("email delivery failed",
			zap.Int("recipients", len(req.Email)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to send disease alert email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Disease alert email has been sent"})
}
