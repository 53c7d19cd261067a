// Package controllers adapts HTTP requests to service calls.
package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

// fail writes the response for err. Expected service failures map to their
// status; anything else is logged and answered with a 500.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	svcErr, ok := services.AsError(err)
	if !ok {
		logger.WithCtx(r.Context()).Error("request failed", "error", err)
		response.InternalError(w)
		return
	}

	switch svcErr.Kind {
	case services.KindNotFound:
		response.NotFound(w, svcErr.Message)
	case services.KindValidation:
		response.ValidationError(w, svcErr.Violations)
	case services.KindConflict:
		response.Error(w, http.StatusBadRequest, svcErr.Message)
	case services.KindUnauthorized:
		response.Error(w, http.StatusUnauthorized, svcErr.Message)
	default:
		logger.WithCtx(r.Context()).Error(svcErr.Message, "error", errors.Unwrap(svcErr))
		response.Error(w, http.StatusInternalServerError, svcErr.Message)
	}
}

// badRequest answers a body that could not be decoded.
func badRequest(w http.ResponseWriter, err error) {
	response.Error(w, http.StatusBadRequest, err.Error())
}

// queryInt reads a positive integer query parameter. Absent, non-numeric
// and non-positive values read as 0 so the service applies its default.
func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 1 {
		return 0
	}
	return n
}
