package httperr

import (
	"net/http"

	"parking-lot-manager/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

var statusByKind = map[errs.Kind]int{
	errs.KindNotFound:         http.StatusNotFound,
	errs.KindInvalidState:     http.StatusConflict,
	errs.KindNotParked:        http.StatusConflict,
	errs.KindUserHasActive:    http.StatusConflict,
	errs.KindLotBusy:          http.StatusConflict,
	errs.KindDuplicate:        http.StatusConflict,
	errs.KindNoSpotAvailable:  http.StatusConflict,
	errs.KindPermissionDenied: http.StatusForbidden,
	errs.KindUnauthenticated:  http.StatusUnauthorized,
	errs.KindInvalidArgument:  http.StatusBadRequest,
	errs.KindTimeout:          http.StatusGatewayTimeout,
	errs.KindTransientStore:   http.StatusServiceUnavailable,
	errs.KindInternal:         http.StatusInternalServerError,
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind errs.Kind) int {
	if status, ok := statusByKind[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Abort classifies err and responds with the matching status. Internal
// errors never leak their message.
func Abort(c *gin.Context, err error) {
	kind := errs.KindOf(err)
	msg := err.Error()
	if kind == errs.KindInternal {
		msg = "Internal server error"
	}
	AbortWithError(c, StatusFor(kind), err, msg, nil)
}

// preserves original error for future monitoring
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := Response{Status: status}
	resp.Error.Message = msg
	resp.Error.Code = string(codeFor(status, err))
	resp.Detail = detail

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}

// BadRequest reports a malformed request body or path parameter.
func BadRequest(c *gin.Context, err error, msg string) {
	AbortWithError(c, http.StatusBadRequest, errs.Mark(err, errs.ErrInvalidArgument), msg, nil)
}

func codeFor(status int, err error) errs.Kind {
	kind := errs.KindOf(err)
	if kind != errs.KindInternal || status == http.StatusInternalServerError {
		return kind
	}
	switch status {
	case http.StatusBadRequest:
		return errs.KindInvalidArgument
	case http.StatusUnauthorized:
		return errs.KindUnauthenticated
	case http.StatusForbidden:
		return errs.KindPermissionDenied
	case http.StatusNotFound:
		return errs.KindNotFound
	default:
		return kind
	}
}
