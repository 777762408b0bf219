package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/tabel-bot/pkg/clock"
)

func TestFake_Advance(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := clock.NewFake(start)
	assert.Equal(t, start, c.Now())

	c.Advance(30 * time.Minute)
	assert.Equal(t, start.Add(30*time.Minute), c.Now())
}

func TestReal_Location(t *testing.T) {
	loc := time.FixedZone("MSK", 3*3600)
	now := clock.Real(loc).Now()
	assert.Equal(t, loc, now.Location())
	assert.Equal(t, time.UTC, clock.Real(nil).Now().Location())
}
