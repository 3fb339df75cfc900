package daykey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	managua, err := time.LoadLocation("America/Managua")
	if err != nil {
		managua = time.FixedZone("CST", -6*3600)
	}

	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "2026-10-15", want: "2026-10-15", ok: true},
		{in: " 2026-10-15 ", want: "2026-10-15", ok: true},
		{in: "2026-10-15T23:10:00", want: "2026-10-15", ok: true},
		{in: "2026-10-16T03:00:00Z", want: "2026-10-15", ok: true},
		{in: "2026/10/5", want: "2026-10-05", ok: true},
		{in: "5/10/2026", want: "2026-10-05", ok: true},
		{in: "2026-02-30", ok: false},
		{in: "hoy", ok: false},
		{in: "", ok: false},
	}
	for _, tc := range cases {
		got, ok := Normalize(tc.in, managua)
		assert.Equalf(t, tc.ok, ok, "input %q", tc.in)
		if tc.ok {
			assert.Equalf(t, tc.want, got, "input %q", tc.in)
		}
	}
}

func TestValidAndBefore(t *testing.T) {
	assert.True(t, Valid("2026-01-31"))
	assert.False(t, Valid("2026-1-31"))
	assert.False(t, Valid("2026-13-01"))
	assert.True(t, Before("2026-09-30", "2026-10-01"))
}

func TestFromTimeUsesLocation(t *testing.T) {
	zone := time.FixedZone("minus6", -6*3600)
	ts := time.Date(2026, 10, 16, 2, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-10-15", FromTime(ts, zone))
	assert.Equal(t, "2026-10-16", FromTime(ts, nil))

	start, ok := Start("2026-10-15", zone)
	assert.True(t, ok)
	assert.Equal(t, 0, start.Hour())
}

func TestMatches(t *testing.T) {
	managua := time.FixedZone("CST", -6*3600)

	cases := []struct {
		raw  string
		want bool
	}{
		{raw: "2026-10-15", want: true},
		{raw: " 2026-10-15 ", want: true},
		{raw: "2026-10-15T13:45:00", want: true},
		{raw: "2026-10-15 13:45", want: true},
		{raw: "15/10/2026", want: true},
		{raw: "2026-10-16T03:00:00Z", want: true},
		{raw: "2026-10-16T09:00:00", want: false},
		{raw: "2026-10-150", want: false},
		{raw: "2026-10-14", want: false},
		{raw: "", want: false},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, Matches(tc.raw, "2026-10-15", managua), "raw %q", tc.raw)
	}
}

func TestSpellings(t *testing.T) {
	assert.Equal(t, []string{
		"2026-10-05",
		"2026-10-5",
		"2026/10/05",
		"2026/10/5",
		"05/10/2026",
		"5/10/2026",
		"2026-10-04T",
		"2026-10-06T",
	}, Spellings("2026-10-05"))
	assert.Equal(t, []string{"hoy"}, Spellings("hoy"))
}
