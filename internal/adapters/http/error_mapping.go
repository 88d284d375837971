package httpadapter

import (
	"net/http"

	"github.com/dsemenov/studycraft/internal/core/domain"
	"github.com/dsemenov/studycraft/internal/infrastructure/resilience"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput),
		domain.IsKind(err, domain.ErrUnsupportedFormat),
		domain.IsKind(err, domain.ErrUnsupportedCombination):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrFetchFailed), resilience.IsCircuitOpen(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
