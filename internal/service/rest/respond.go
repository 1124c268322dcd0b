package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// httpStatusFor переводит категорию доменной ошибки в HTTP-статус.
// Категории validation / cart_empty / stock — ошибки клиента или состояния
// мира; persistence / internal — сбои на нашей стороне.
func httpStatusFor(category domain.ErrorCategory) int {
	switch category {
	case domain.ErrorCategoryValidation:
		return http.StatusUnprocessableEntity
	case domain.ErrorCategoryCartEmpty:
		return http.StatusConflict
	case domain.ErrorCategoryStock:
		return http.StatusConflict
	case domain.ErrorCategoryPersistence:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, logger *log.Entry, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.WithError(err).Warn("failed to encode response")
	}
}

// respondCheckoutError отдаёт клиенту категорию и message типизированной
// ошибки. Сырые ошибки хранилища наружу не уходят: для нетипизированных
// ошибок клиент видит только "internal error", причина остаётся в логах.
func respondCheckoutError(w http.ResponseWriter, logger *log.Entry, err error) {
	var ce *domain.CheckoutError
	if !errors.As(err, &ce) {
		logger.WithError(err).Error("unhandled error")
		respondJSON(w, logger, http.StatusInternalServerError, errorResponseDTO{
			ErrorCategory: string(domain.ErrorCategoryInternal),
			Message:       "internal error",
		})
		return
	}

	body := errorResponseDTO{
		ErrorCategory: string(ce.Category),
		Message:       ce.Message,
		Details:       detailsToDTO(ce.Details),
	}
	respondJSON(w, logger, httpStatusFor(ce.Category), body)
}

// detailsToDTO приводит доменные детали ошибки к транспортному виду.
func detailsToDTO(details any) any {
	switch v := details.(type) {
	case nil:
		return nil
	case []domain.LineIssue:
		return toLineIssues(v)
	default:
		return v
	}
}
