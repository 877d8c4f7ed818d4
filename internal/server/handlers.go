package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/jmylchreest/covergen/internal/apperr"
	"github.com/jmylchreest/covergen/internal/auth"
)

type monthlyRequest struct {
	Month string `json:"month" binding:"required"`
	Year  *int   `json:"year" binding:"required"`
}

type weeklyRequest struct {
	Date1 string `json:"date1" binding:"required"`
	Date2 string `json:"date2" binding:"required"`
	Year  *int   `json:"year" binding:"required"`
}

type coverResponse struct {
	URL string `json:"url"`
}

type errorResponse struct {
	Error   string              `json:"error"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

func (s *Server) handleMonthly(c *gin.Context) {
	if !s.authorize(c) {
		return
	}
	var req monthlyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, bindError(err))
		return
	}

	res, err := s.covers.CreateMonthly(c.Request.Context(), req.Month, *req.Year)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, coverResponse{URL: res.URL})
}

func (s *Server) handleWeekly(c *gin.Context) {
	if !s.authorize(c) {
		return
	}
	var req weeklyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, bindError(err))
		return
	}

	res, err := s.covers.CreateWeekly(c.Request.Context(), req.Date1, req.Date2, *req.Year)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, coverResponse{URL: res.URL})
}

// authorize writes a 401 and returns false when the API key does not match.
func (s *Server) authorize(c *gin.Context) bool {
	if err := auth.Authenticate(c.GetHeader(auth.HeaderName), s.apiKey); err != nil {
		s.writeError(c, err)
		return false
	}
	return true
}

// writeError maps the error taxonomy onto status codes. Internal details are
// logged, never sent to the client.
func (s *Server) writeError(c *gin.Context, err error) {
	var (
		verr *apperr.ValidationError
		cerr *apperr.ConfigurationError
		rerr *apperr.RenderError
		serr *apperr.StorageError
	)

	logger := s.logger.With("request_id", c.GetString(requestIDKey), "path", c.Request.URL.Path)

	switch {
	case errors.Is(err, apperr.ErrUnauthorized):
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: apperr.ErrUnauthorized.Error()})
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, errorResponse{Error: "validation failed", Details: verr.Fields})
	case errors.As(err, &cerr):
		logger.Error("configuration error", "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: "server misconfigured"})
	case errors.As(err, &rerr):
		logger.Error("render failed", "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: "cover could not be rendered"})
	case errors.As(err, &serr):
		logger.Error("upload failed", "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: "cover could not be stored"})
	default:
		logger.Error("unexpected error", "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// bindError converts gin binding failures into a ValidationError so that
// malformed bodies and missing fields share the 422 shape.
func bindError(err error) error {
	verr := &apperr.ValidationError{}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			verr.Add(strings.ToLower(fe.Field()), "is %s", fe.Tag())
		}
		return verr
	}
	return verr.Add("body", "%v", err)
}
