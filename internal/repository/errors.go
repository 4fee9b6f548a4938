package repository

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"radruga/pkg/models"
)

// mapDBError maps database errors to API-aware errors. notFound is the
// sentinel reported for pgx.ErrNoRows.
func mapDBError(err error, operation string, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if notFound == nil {
			notFound = models.ErrNotFound
		}
		return models.NewHTTPError(models.ErrCodeNotFound, notFound.Error(), http.StatusNotFound, notFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return models.NewHTTPError(models.ErrCodeConflict, "resource already exists", http.StatusConflict, models.ErrAlreadyExists)
		case "23503": // foreign_key_violation
			return models.NewHTTPError(models.ErrCodeBadRequest, "invalid relationship", http.StatusBadRequest, models.ErrInvalidInput)
		case "22P02": // invalid_text_representation
			return models.NewHTTPError(models.ErrCodeBadRequest, "invalid input format", http.StatusBadRequest, models.ErrInvalidInput)
		}
	}

	return models.NewHTTPError(models.ErrCodeInternal, "database error during "+operation, http.StatusInternalServerError, err)
}

// jsonList encodes a list column, writing [] instead of null for nil slices
func jsonList[T any](list []T) []byte {
	if list == nil {
		list = []T{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return []byte("[]")
	}
	return data
}
