// internal/domain/catalog/entity_test.go
package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func dateFrom(today time.Time, days int) *time.Time {
	d := DateOnly(today).AddDate(0, 0, days)
	return &d
}

func TestProductIsExpired(t *testing.T) {
	today := time.Date(2026, 8, 29, 18, 45, 0, 0, time.Local)

	t.Run("no expiry date never expires", func(t *testing.T) {
		p := &Product{}
		assert.False(t, p.IsExpired(today))
	})

	t.Run("yesterday is expired", func(t *testing.T) {
		p := &Product{ExpiryDate: dateFrom(today, -1)}
		assert.True(t, p.IsExpired(today))
	})

	t.Run("today is not expired", func(t *testing.T) {
		p := &Product{ExpiryDate: dateFrom(today, 0)}
		assert.False(t, p.IsExpired(today))
	})

	t.Run("comparison ignores the time of day", func(t *testing.T) {
		// Expiry stored at midnight, checked late in the evening.
		lateEvening := time.Date(2026, 8, 29, 23, 59, 0, 0, time.Local)
		p := &Product{ExpiryDate: dateFrom(lateEvening, 0)}
		assert.False(t, p.IsExpired(lateEvening))
	})
}

func TestProductDaysUntilExpiry(t *testing.T) {
	today := time.Date(2026, 8, 29, 9, 0, 0, 0, time.Local)

	t.Run("counts whole calendar days", func(t *testing.T) {
		p := &Product{ExpiryDate: dateFrom(today, 5)}
		days, ok := p.DaysUntilExpiry(today)
		assert.True(t, ok)
		assert.Equal(t, 5, days)
	})

	t.Run("expired products count negative", func(t *testing.T) {
		p := &Product{ExpiryDate: dateFrom(today, -2)}
		days, ok := p.DaysUntilExpiry(today)
		assert.True(t, ok)
		assert.Equal(t, -2, days)
	})

	t.Run("no expiry date reports not applicable", func(t *testing.T) {
		p := &Product{}
		_, ok := p.DaysUntilExpiry(today)
		assert.False(t, ok)
	})

	t.Run("a shortened spring-forward day still counts as one day", func(t *testing.T) {
		loc, err := time.LoadLocation("America/New_York")
		if err != nil {
			t.Skip("tzdata unavailable")
		}

		// Clocks jump forward on 2026-03-08, making that calendar day
		// 23 hours long.
		dstToday := time.Date(2026, 3, 8, 10, 0, 0, 0, loc)
		expiry := time.Date(2026, 3, 9, 0, 0, 0, 0, loc)
		p := &Product{ExpiryDate: &expiry}

		days, ok := p.DaysUntilExpiry(dstToday)
		assert.True(t, ok)
		assert.Equal(t, 1, days)
	})

	t.Run("multi-day spans crossing a transition stay whole", func(t *testing.T) {
		loc, err := time.LoadLocation("America/New_York")
		if err != nil {
			t.Skip("tzdata unavailable")
		}

		dstToday := time.Date(2026, 3, 7, 10, 0, 0, 0, loc)
		expiry := time.Date(2026, 3, 10, 0, 0, 0, 0, loc)
		p := &Product{ExpiryDate: &expiry}

		days, ok := p.DaysUntilExpiry(dstToday)
		assert.True(t, ok)
		assert.Equal(t, 3, days)
	})
}

func TestProductStockFlags(t *testing.T) {
	assert.True(t, (&Product{Quantity: 0}).IsOutOfStock())
	assert.True(t, (&Product{Quantity: -1}).IsOutOfStock())
	assert.False(t, (&Product{Quantity: 1}).IsOutOfStock())

	assert.True(t, (&Product{Quantity: 5, MinStockLevel: 5}).IsLowStock())
	assert.False(t, (&Product{Quantity: 6, MinStockLevel: 5}).IsLowStock())
}

func TestParseExpiryDate(t *testing.T) {
	t.Run("accepts ISO dates", func(t *testing.T) {
		parsed, err := parseExpiryDate("2026-12-31")
		assert.NoError(t, err)
		if assert.NotNil(t, parsed) {
			assert.Equal(t, 2026, parsed.Year())
			assert.Equal(t, time.December, parsed.Month())
			assert.Equal(t, 31, parsed.Day())
		}
	})

	t.Run("accepts day-first dates", func(t *testing.T) {
		parsed, err := parseExpiryDate("31/12/2026")
		assert.NoError(t, err)
		if assert.NotNil(t, parsed) {
			assert.Equal(t, 31, parsed.Day())
			assert.Equal(t, time.December, parsed.Month())
		}
	})

	t.Run("both formats normalize to the same date", func(t *testing.T) {
		iso, err := parseExpiryDate("2026-12-31")
		assert.NoError(t, err)
		dayFirst, err := parseExpiryDate("31/12/2026")
		assert.NoError(t, err)
		assert.True(t, iso.Equal(*dayFirst))
	})

	t.Run("empty input means no expiry", func(t *testing.T) {
		parsed, err := parseExpiryDate("")
		assert.NoError(t, err)
		assert.Nil(t, parsed)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := parseExpiryDate("soon")
		assert.Error(t, err)
	})
}
