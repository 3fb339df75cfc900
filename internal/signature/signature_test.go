package signature

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSumIsOrderIndependentAndContentSensitive(t *testing.T) {
	ts := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	a := New().Time("updatedAt", ts).Int("items", 12).Counts("checked", map[string]int{"2026-10-15": 3}).Sum()
	b := New().Counts("checked", map[string]int{"2026-10-15": 3}).Int("items", 12).Time("updatedAt", ts).Sum()
	assert.Equal(t, a, b)
	assert.NotEmpty(t, a)

	edited := New().Time("updatedAt", ts).Int("items", 12).Counts("checked", map[string]int{"2026-10-15": 4}).Sum()
	assert.NotEqual(t, a, edited)
}

func TestSumAvoidsDelimiterCollisions(t *testing.T) {
	a := New().String("x", "1|2").String("y", "3").Sum()
	b := New().String("x", "1").String("y", "2|3").Sum()
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, Combine("ab", "c"), Combine("a", "bc"))
	assert.Equal(t, Combine("ab", "c"), Combine("ab", "c"))
}

func TestZeroTime(t *testing.T) {
	assert.Equal(t, New().Int("updatedAt", 0).Sum(), New().Time("updatedAt", time.Time{}).Sum())
}

func TestUnencodableFieldsNeverMatch(t *testing.T) {
	a := New().Int("items", 1).Value("hook", func() {}).Sum()
	b := New().Int("items", 2).Value("hook", make(chan int)).Sum()
	again := New().Int("items", 1).Value("hook", func() {}).Sum()

	assert.True(t, strings.HasPrefix(a, UnsignedPrefix))
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, again)
	assert.NotEqual(t, Combine("x", a), Combine("x", again))
}
