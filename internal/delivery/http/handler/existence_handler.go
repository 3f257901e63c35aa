package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"care-registry/internal/converter"
	"care-registry/internal/delivery/dto"
	"care-registry/internal/domain/entity"
	"care-registry/internal/usecase"
	"care-registry/pkg/response"
	"care-registry/pkg/validator"

	"github.com/sirupsen/logrus"
)

// maxRequestBodyBytes caps the existence check body
const maxRequestBodyBytes = 1 << 20

type ExistenceHandler struct {
	existenceUsecase usecase.ExistenceUsecase
	validator        *validator.CustomValidator
	log              *logrus.Logger
}

func NewExistenceHandler(existenceUsecase usecase.ExistenceUsecase, validator *validator.CustomValidator, log *logrus.Logger) *ExistenceHandler {
	return &ExistenceHandler{
		existenceUsecase: existenceUsecase,
		validator:        validator,
		log:              log,
	}
}

// CheckExistence answers {"exist": true} with 200 or {"exist": false} with 400.
// The body is read as JSON whatever the Content-Type says.
func (h *ExistenceHandler) CheckExistence(w http.ResponseWriter, r *http.Request) {
	var req dto.ExistenceCheckRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	dob, err := time.Parse(dto.DateLayout, req.DOB)
	if err != nil {
		response.ValidationError(w, map[string]string{"dob": "dob must be a valid date (YYYY-MM-DD)"})
		return
	}

	result, err := h.existenceUsecase.Resolve(r.Context(), entity.ParseRole(req.Role.Value), req.Name, dob)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrStoreUnavailable):
			response.InternalServerError(w, "Failed to check record existence")
		default:
			h.log.Errorf("Unexpected existence check failure: %+v", err)
			response.InternalServerError(w, "")
		}
		return
	}

	response.JSON(w, result.Status, converter.ExistenceResultToResponse(result))
}
