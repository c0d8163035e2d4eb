package bizerror

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

// ErrorHandling converts panics and the last gin error of a request into an ErrorBody.
func ErrorHandling() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if ret := recover(); ret != nil {
				err, ok := ret.(error)
				if !ok {
					err = fmt.Errorf("%v", ret)
				}
				HandleError(c, err)
				return
			}
			if err := c.Errors.Last(); err != nil {
				HandleError(c, err)
			}
		}()
		c.Next()
	}
}

func HandleError(c *gin.Context, err error) {
	detail := Resolve(err)
	if detail.Status >= http.StatusInternalServerError {
		logrus.Error(err)
	} else {
		logrus.Info(err)
	}
	c.JSON(detail.Status, &ErrorBody{Code: detail.Code, Message: detail.Message, Data: detail.Data})
	c.Abort()
}

// Resolve maps err to the response it should produce. Errors outside of this package
// end up as internal server errors.
func Resolve(err error) *BizErrorDetail {
	cause := err
	var ginErr *gin.Error
	if errors.As(err, &ginErr) {
		cause = ginErr.Err
	}

	var bizErr BizError
	if errors.As(cause, &bizErr) {
		detail := *bizErr.Respond()
		detail.Cause = cause
		return &detail
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var validationErr validator.ValidationErrors
	switch {
	case errors.Is(cause, io.EOF):
		return &BizErrorDetail{Status: http.StatusBadRequest, Code: "bad_request.body_not_found", Message: "body not found"}
	case errors.As(cause, &syntaxErr):
		return &BizErrorDetail{Status: http.StatusBadRequest, Code: "bad_request.invalid_body_format",
			Message: "invalid body format", Data: syntaxErr.Error()}
	case errors.As(cause, &typeErr):
		return &BizErrorDetail{Status: http.StatusBadRequest, Code: "bad_request.invalid_body_format",
			Message: "invalid body format", Data: typeErr.Field + ": " + typeErr.Error()}
	case errors.As(cause, &validationErr):
		return &BizErrorDetail{Status: http.StatusBadRequest, Code: "bad_request.validation_failed",
			Message: "validation failed", Data: validationErr.Error()}
	case errors.Is(cause, ErrUnauthenticated):
		return &BizErrorDetail{Status: http.StatusUnauthorized, Code: "common.unauthenticated", Message: "unauthenticated"}
	case gorm.IsRecordNotFoundError(cause), errors.Is(cause, gorm.ErrRecordNotFound):
		return &BizErrorDetail{Status: http.StatusNotFound, Code: "common.record_not_found", Message: "record not found"}
	}
	return &BizErrorDetail{Status: http.StatusInternalServerError, Code: CommonInternalServerError, Message: err.Error()}
}
