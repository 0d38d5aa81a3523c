package http

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"geev-escrow/internal/account"
	apperrors "geev-escrow/internal/common/errors"
)

// parseID читает числовой параметр пути
func parseID(c *gin.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError(name, "must be a positive integer")
	}
	return id, nil
}

func parseIndex(c *gin.Context) (uint32, error) {
	index, err := strconv.ParseUint(c.Param("index"), 10, 32)
	if err != nil {
		return 0, apperrors.NewValidationError("index", "must be a non-negative integer")
	}
	return uint32(index), nil
}

func parseAddress(c *gin.Context) (account.Address, error) {
	return account.ParseAddress(c.Param("address"))
}

func validationError(err error) error {
	return apperrors.Wrap(err, apperrors.ErrCodeValidation, "Invalid request body")
}
