package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/adminhub/ai-gateway/services"
	"github.com/adminhub/ai-gateway/utils"
)

// HandleServiceError maps domain errors to HTTP responses
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	var details map[string]interface{}
	var domainErr *services.DomainError
	if errors.As(err, &domainErr) {
		details = domainErr.Details
	}

	switch {
	case services.IsType(err, services.ErrorTypeValidation),
		services.IsType(err, services.ErrorTypeUnsupported):
		if werr := utils.WriteBadRequest(w, err.Error(), details); werr != nil {
			logger.Error("failed to write bad request response", zap.Error(werr))
		}

	case services.IsType(err, services.ErrorTypeNoProvider):
		if werr := utils.WriteServiceUnavailable(w, err.Error(), details); werr != nil {
			logger.Error("failed to write service unavailable response", zap.Error(werr))
		}

	case services.IsType(err, services.ErrorTypeProviderCall):
		if werr := utils.WriteBadGateway(w, err.Error(), details); werr != nil {
			logger.Error("failed to write bad gateway response", zap.Error(werr))
		}

	default:
		// Internal and unrecognized errors get a generic message
		logger.Error("internal server error", zap.Error(err))
		if werr := utils.WriteInternalServerError(w, "An internal error occurred"); werr != nil {
			logger.Error("failed to write internal error response", zap.Error(werr))
		}
	}
}

// HandleValidationError handles validation errors from request parsing
func HandleValidationError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if utils.IsValidationError(err) {
		fields := utils.GetValidationFields(err)
		details := make(map[string]interface{}, len(fields))
		for k, v := range fields {
			details[k] = v
		}
		if werr := utils.WriteBadRequest(w, "Validation failed", details); werr != nil {
			logger.Error("failed to write validation error response", zap.Error(werr))
		}
		return
	}

	if werr := utils.WriteBadRequest(w, err.Error(), nil); werr != nil {
		logger.Error("failed to write validation error response", zap.Error(werr))
	}
}
