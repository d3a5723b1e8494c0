package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/labstack/echo/v4"

	"orderflow/internal/core/domain/model/agent"
	"orderflow/internal/core/domain/model/catalog"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
)

// Error is the body of every non-2xx response.
type Error struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

const (
	KindValidation                = "ValidationError"
	KindNotFound                  = "NotFound"
	KindForbidden                 = "Forbidden"
	KindInvalidTransition         = "InvalidTransition"
	KindInvalidDeliveryTransition = "InvalidDeliveryTransition"
	KindReturnWindowExpired       = "ReturnWindowExpired"
	KindNotReturnable             = "NotReturnable"
	KindAlreadyAssigned           = "AlreadyAssigned"
	KindAgentUnavailable          = "AgentUnavailable"
	KindConflict                  = "Conflict"
	KindInsufficientStock         = "InsufficientStock"
	KindInvoiceAlreadyIssued      = "InvoiceAlreadyIssued"
	KindExpired                   = "Expired"
	KindInvalidCode               = "InvalidCode"
	KindTooManyAttempts           = "TooManyAttempts"
	KindInternal                  = "Internal"
)

type classification struct {
	target error
	status int
	kind   string
}

// Order matters: specific domain errors first, since several of them also wrap one of
// the generic errs sentinels.
var classifications = []classification{
	{order.ErrChallengeExpired, http.StatusGone, KindExpired},
	{order.ErrInvalidCode, http.StatusUnprocessableEntity, KindInvalidCode},
	{order.ErrTooManyAttempts, http.StatusTooManyRequests, KindTooManyAttempts},
	{order.ErrInvalidTransition, http.StatusUnprocessableEntity, KindInvalidTransition},
	{order.ErrInvalidDeliveryTransition, http.StatusUnprocessableEntity, KindInvalidDeliveryTransition},
	{order.ErrReturnWindowExpired, http.StatusUnprocessableEntity, KindReturnWindowExpired},
	{order.ErrNotReturnable, http.StatusUnprocessableEntity, KindNotReturnable},
	{order.ErrAlreadyAssigned, http.StatusConflict, KindAlreadyAssigned},
	{order.ErrInvoiceAlreadyIssued, http.StatusConflict, KindInvoiceAlreadyIssued},
	{agent.ErrAgentUnavailable, http.StatusUnprocessableEntity, KindAgentUnavailable},
	{catalog.ErrInsufficientStock, http.StatusConflict, KindInsufficientStock},
	{errs.ErrVersionIsInvalid, http.StatusConflict, KindConflict},
	{errs.ErrForbidden, http.StatusForbidden, KindForbidden},
	{errs.ErrObjectNotFound, http.StatusNotFound, KindNotFound},
	{errs.ErrValueIsRequired, http.StatusBadRequest, KindValidation},
	{errs.ErrValueIsInvalid, http.StatusBadRequest, KindValidation},
	{errs.ErrValueIsOutOfRange, http.StatusBadRequest, KindValidation},
}

// Classify maps an error to its HTTP status and stable kind. ok is false for errors the
// caller is not meant to see.
func Classify(err error) (status int, kind string, ok bool) {
	for _, c := range classifications {
		if errors.Is(err, c.target) {
			return c.status, c.kind, true
		}
	}

	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		return http.StatusBadRequest, KindValidation, true
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code, kindForStatus(httpErr.Code), true
	}

	return http.StatusInternalServerError, KindInternal, false
}

func kindForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusConflict:
		return KindConflict
	default:
		return http.StatusText(status)
	}
}

// NewErrorHandler returns an echo.HTTPErrorHandler writing Error bodies. Unclassified
// errors are logged and answered with a generic 500.
func NewErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	logger = logger.With("component", "HTTPErrorHandler")

	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, kind, ok := Classify(err)
		body := Error{Code: status, Kind: kind, Message: err.Error()}

		var httpErr *echo.HTTPError
		if ok && errors.As(err, &httpErr) {
			if msg, isString := httpErr.Message.(string); isString {
				body.Message = msg
			}
		}
		if !ok {
			logger.ErrorContext(c.Request().Context(), "unhandled error",
				"method", c.Request().Method, "path", c.Path(), "error", err)
			body.Message = "internal error"
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			logger.ErrorContext(c.Request().Context(), "write error response", "error", writeErr)
		}
	}
}
