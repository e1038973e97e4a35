package response

import (
	"trackforge/internal/api/dto"
	"trackforge/internal/pkg/apperr"
	"trackforge/internal/service"
	"errors"
	log "log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

const (
	Ok                  = 200
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	InternalServerError = 500
)

var kindToCode = map[apperr.Kind]int{
	apperr.KindRateLimited: 429,
	apperr.KindAuthFailed:  Unauthorized,
	apperr.KindTransient:   InternalServerError,
	apperr.KindParse:       InternalServerError,
	apperr.KindConflict:    409,
	apperr.KindNotFound:    NotFound,
	apperr.KindFatal:       InternalServerError,
}

func Success(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, dto.Response{
		Code:    Ok,
		Message: "success",
		Data:    data,
	})
}

func Fail(c *gin.Context, businessCode int, message string) {
	c.JSON(http.StatusOK, dto.Response{
		Code:    businessCode,
		Message: message,
		Data:    nil,
	})
}

// Error dispatches on apperr.Kind when err carries one, falling back to
// validator/JSON decode errors and then a generic 500.
func Error(c *gin.Context, err error) {
	if errors.Is(err, service.ErrParamInvalid) {
		Fail(c, BadRequest, err.Error())
		return
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		Fail(c, BadRequest, "invalid request parameters")
		return
	}

	var unmarshalTypeError *json.UnmarshalTypeError
	if errors.As(err, &unmarshalTypeError) {
		Fail(c, BadRequest, "malformed JSON body")
		return
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		code, ok := kindToCode[appErr.Kind]
		if !ok {
			code = InternalServerError
		}
		Fail(c, code, appErr.Error())
		return
	}

	log.Error("unclassified handler error", "err", err)
	Fail(c, InternalServerError, err.Error())
}
