package converter

import (
	"care-registry/internal/delivery/dto"
	"care-registry/internal/domain/entity"
)

// ExistenceResultToResponse converts an ExistenceResult to the wire response
func ExistenceResultToResponse(result *entity.ExistenceResult) *dto.ExistenceCheckResponse {
	if result == nil {
		return nil
	}

	return &dto.ExistenceCheckResponse{
		Exist: result.Exists,
	}
}
