// Package e turns handler errors into JSON responses. Internal failures are
// logged and reported, and the caller only sees a generic message.
package e

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator"
	"github.com/iancoleman/strcase"
	log "github.com/sirupsen/logrus"
)

var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
)

const internalMessage = "DB Error"

// Mapper translates a domain error into a response. ok is false when the
// mapper does not recognise err.
type Mapper func(err error) (status int, code, message string, ok bool)

var mappers []Mapper

// Register adds m to the mappers consulted before the package's own errors.
// It is meant to be called from init.
func Register(m Mapper) {
	mappers = append(mappers, m)
}

// BadRequest marks err as the caller's fault.
func BadRequest(err error) error {
	return fmt.Errorf("%w: %w", ErrBadRequest, err)
}

func BadRequestf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, fmt.Sprintf(format, args...))
}

func Forbidden(msg string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, msg)
}

type Error struct {
	err     error
	status  int
	message string
}

func With(err error) *Error {
	return &Error{err: err}
}

// Msg overrides the message sent to the caller.
func (e *Error) Msg(message string) *Error {
	e.message = message
	return e
}

func (e *Error) Write(c *gin.Context) {
	status, code, message := e.resolve()
	if e.message != "" {
		message = e.message
	}

	if status >= http.StatusInternalServerError {
		log.WithFields(log.Fields{
			"layer":  "handler",
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).WithError(e.err).Error("request failed")
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.CaptureException(e.err)
		}
		_ = c.Error(e.err)
	}

	c.AbortWithStatusJSON(status, gin.H{"code": code, "message": message})
}

func (e *Error) resolve() (int, string, string) {
	err := e.err
	if err == nil {
		err = errors.New("unknown error")
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return http.StatusBadRequest, "VALIDATION", describe(verrs)
	}
	for _, m := range mappers {
		if status, code, message, ok := m(err); ok {
			return status, code, message
		}
	}

	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "BAD_REQUEST", Clean(err, ErrBadRequest)
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", Clean(err, ErrUnauthorized)
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN", Clean(err, ErrForbidden)
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "Not found"
	}
	return http.StatusInternalServerError, "INTERNAL", internalMessage
}

// Clean drops the sentinel prefix so the caller reads only the detail.
func Clean(err, sentinel error) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error())
	msg = strings.TrimPrefix(msg, ": ")
	if msg == "" {
		return sentinel.Error()
	}
	return msg
}

func describe(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed on '%s'", strcase.ToLowerCamel(fe.Field()), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
