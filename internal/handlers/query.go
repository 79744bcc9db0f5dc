package handlers

import (
	"fmt"
	"time"

	"github.com/SscSPs/mbg_dapur_ledger/internal/apperrors"
	"github.com/SscSPs/mbg_dapur_ledger/internal/core/domain"
	"github.com/SscSPs/mbg_dapur_ledger/internal/dto"
	"github.com/gin-gonic/gin"
)

// queryDate parses an optional YYYY-MM-DD query parameter, returning def when absent.
func queryDate(c *gin.Context, key string, def time.Time) (time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	t, err := dto.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %v", apperrors.ErrValidation, key, err)
	}
	return t, nil
}

// today is the current calendar day in loc.
func today(loc *time.Location) time.Time {
	return domain.LocalDate(time.Now(), loc)
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
