package memory

import (
	"net/http"

	"radruga/pkg/models"
)

func notFound(sentinel error) error {
	return models.NewHTTPError(models.ErrCodeNotFound, sentinel.Error(), http.StatusNotFound, sentinel)
}

func conflict(sentinel error) error {
	return models.NewHTTPError(models.ErrCodeConflict, "resource already exists", http.StatusConflict, sentinel)
}

func invalidRelation() error {
	return models.NewHTTPError(models.ErrCodeBadRequest, "invalid relationship", http.StatusBadRequest, models.ErrInvalidInput)
}
