package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransaction_Validate(t *testing.T) {
	valid := func() Transaction {
		return Transaction{
			ID:       uuid.New(),
			PeriodID: uuid.New(),
			Date:     time.Now(),
			Label:    "Wheat harvest",
			Amount:   decimal.NewFromInt(12500),
			Type:     CategoryTypeRevenue,
		}
	}

	t.Run("valid revenue passes", func(t *testing.T) {
		tx := valid()
		assert.NoError(t, tx.Validate())
	})

	t.Run("valid expense passes", func(t *testing.T) {
		tx := valid()
		tx.Type = CategoryTypeExpense
		assert.NoError(t, tx.Validate())
	})

	t.Run("empty label fails", func(t *testing.T) {
		tx := valid()
		tx.Label = ""
		assert.Error(t, tx.Validate())
	})

	t.Run("zero amount fails", func(t *testing.T) {
		tx := valid()
		tx.Amount = decimal.Zero
		assert.ErrorIs(t, tx.Validate(), ErrNonPositiveAmount)
	})

	t.Run("negative amount fails", func(t *testing.T) {
		tx := valid()
		tx.Amount = decimal.NewFromInt(-100)
		assert.ErrorIs(t, tx.Validate(), ErrNonPositiveAmount)
	})

	t.Run("unknown type fails", func(t *testing.T) {
		tx := valid()
		tx.Type = CategoryType("transfer")
		assert.Error(t, tx.Validate())
	})
}

func TestMonthName(t *testing.T) {
	assert.Equal(t, "August", MonthName(8, 0))
	assert.Equal(t, "December", MonthName(8, 4))
	assert.Equal(t, "January", MonthName(8, 5))
	assert.Equal(t, "July", MonthName(8, 11))
	assert.Equal(t, "January", MonthName(1, 0))
	// Index wraps past one year.
	assert.Equal(t, "August", MonthName(8, 12))
}
