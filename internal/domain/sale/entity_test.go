// internal/domain/sale/entity_test.go
package sale

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCode(t *testing.T) {
	s := &Sale{ID: 42}
	expected := fmt.Sprintf("SALE-%s-00042", time.Now().Format("20060102"))
	assert.Equal(t, expected, s.GenerateCode())
}

func TestCanBeVoided(t *testing.T) {
	assert.True(t, (&Sale{Status: SaleStatusCompleted}).CanBeVoided())
	assert.False(t, (&Sale{Status: SaleStatusVoided}).CanBeVoided())
}
