package bank

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDetectPeriod(t *testing.T) {
	p := DetectPeriod("cube_202601.csv")
	assert.Equal(t, 2026, p.Year)
	assert.Equal(t, 1, p.Month)

	assert.True(t, DetectPeriod("statement.csv").IsZero())
	assert.True(t, DetectPeriod("bill_209913.csv").IsZero(), "month 13 is not a period")
}

func TestCompleteYear_Plain(t *testing.T) {
	p := Period{Year: 2026, Month: 1}
	got := p.CompleteYear(time.January, 5)
	assert.Equal(t, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), got)
}

func TestCompleteYear_DecemberOnJanuaryStatement(t *testing.T) {
	p := Period{Year: 2026, Month: 1}
	got := p.CompleteYear(time.December, 28)
	assert.Equal(t, 2025, got.Year())
}

func TestCompleteYear_JanuaryOnDecemberStatement(t *testing.T) {
	p := Period{Year: 2025, Month: 12}
	got := p.CompleteYear(time.January, 2)
	assert.Equal(t, 2026, got.Year())
}
