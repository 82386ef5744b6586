package httpapi

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/artid/internal/core/domain"
	"github.com/custodia-labs/artid/internal/logger"
)

const (
	defaultLanguage = "en"

	// bodySlack covers JSON or multipart framing around the encoded image.
	bodySlack = 64 << 10
)

// recognizeJSON is the JSON request body for POST /v1/recognize.
type recognizeJSON struct {
	ImageBase64 string `json:"image_base64" binding:"required"`
	MIMEType    string `json:"mime_type"`
	Language    string `json:"language"`
	UserID      string `json:"user_id"`
	Save        bool   `json:"save"`
}

func (s *Server) recognize(c *gin.Context) {
	req, err := s.bindRecognition(c)
	if err != nil {
		writeError(c, err)
		return
	}

	resp, err := s.services.Recognition.Recognize(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// bindRecognition reads either a multipart upload or a JSON body.
// The X-User-ID header fills in a missing user_id.
func (s *Server) bindRecognition(c *gin.Context) (domain.RecognitionRequest, error) {
	var req domain.RecognitionRequest

	// Base64 inflates the image by 4/3.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxImageBytes*4/3+bodySlack)

	if strings.HasPrefix(c.ContentType(), "application/json") {
		var body recognizeJSON
		if err := c.ShouldBindJSON(&body); err != nil {
			if tooLarge(err) {
				return req, s.errTooLarge()
			}
			return req, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		data, err := base64.StdEncoding.DecodeString(body.ImageBase64)
		if err != nil {
			return req, fmt.Errorf("%w: image_base64: %v", domain.ErrInvalidInput, err)
		}
		if int64(len(data)) > s.cfg.MaxImageBytes {
			return req, s.errTooLarge()
		}
		req.Image = domain.Image{Data: data, MIMEType: mimeOr(body.MIMEType, data)}
		req.Language = body.Language
		req.UserID = body.UserID
		req.SaveToCollection = body.Save
	} else {
		fh, err := c.FormFile("image")
		if err != nil {
			if tooLarge(err) {
				return req, s.errTooLarge()
			}
			return req, fmt.Errorf("%w: image file is required", domain.ErrInvalidInput)
		}
		if fh.Size > s.cfg.MaxImageBytes {
			return req, s.errTooLarge()
		}
		f, err := fh.Open()
		if err != nil {
			return req, fmt.Errorf("open upload: %w", err)
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxImageBytes))
		if err != nil {
			return req, fmt.Errorf("read upload: %w", err)
		}
		req.Image = domain.Image{Data: data, MIMEType: mimeOr(fh.Header.Get("Content-Type"), data)}
		req.Language = c.PostForm("language")
		req.UserID = c.PostForm("user_id")
		if v := c.PostForm("save"); v != "" {
			save, err := strconv.ParseBool(v)
			if err != nil {
				return req, fmt.Errorf("%w: save must be a boolean", domain.ErrInvalidInput)
			}
			req.SaveToCollection = save
		}
	}

	if req.UserID == "" {
		req.UserID = c.GetHeader(headerUserID)
	}
	if req.Language == "" {
		req.Language = defaultLanguage
	}
	return req, nil
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func (s *Server) errTooLarge() error {
	return fmt.Errorf("%w: image exceeds %d bytes", domain.ErrInvalidInput, s.cfg.MaxImageBytes)
}

// mimeOr keeps a declared image type and sniffs anything else.
func mimeOr(declared string, data []byte) string {
	if strings.HasPrefix(declared, "image/") {
		return declared
	}
	return http.DetectContentType(data)
}

func (s *Server) listCatalog(c *gin.Context) {
	if s.services.Catalog == nil {
		c.JSON(http.StatusOK, []domain.CatalogEntry{})
		return
	}
	entries, err := s.services.Catalog.List(c.Request.Context(), c.Query("language"))
	if err != nil {
		writeError(c, err)
		return
	}
	if entries == nil {
		entries = []domain.CatalogEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) listCollection(c *gin.Context) {
	if s.services.Collection == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "collections are not enabled"})
		return
	}
	userID := c.Param("userId")
	if caller := c.GetHeader(headerUserID); caller != "" && caller != userID {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "cannot read another user's collection"})
		return
	}
	items, err := s.services.Collection.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	if items == nil {
		items = []domain.CollectionItem{}
	}
	c.JSON(http.StatusOK, items)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAuthRequired):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		message = "internal error"
	}
	c.AbortWithStatusJSON(status, domain.RecognitionResponse{
		Success: false,
		Message: message,
	})
}
