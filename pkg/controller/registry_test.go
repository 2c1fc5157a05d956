package controller

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRegistryReusesPagesPerSession(t *testing.T) {
	r := NewRegistry(10, time.Second)

	a := r.For("a")
	assert.Same(t, a, r.For("a"))
	assert.NotSame(t, a, r.For("b"))
	assert.Equal(t, 2, r.Len())

	r.Drop("a")
	assert.Equal(t, 1, r.Len())
	assert.NotSame(t, a, r.For("a"))
}

func TestRegistryEvictsIdleSessions(t *testing.T) {
	clk := &clock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	r := NewRegistry(10, time.Second)
	r.SetClock(clk.Now)

	r.For("old")
	clk.Advance(20 * time.Minute)
	r.For("recent")
	assert.Equal(t, 0, r.Sweep())

	clk.Advance(15 * time.Minute)
	assert.Equal(t, 1, r.Sweep())
	assert.Equal(t, 1, r.Len())

	clk.Advance(DefaultIdleTimeout + time.Second)
	r.For("new")
	assert.Equal(t, 1, r.Len())
}

func TestRegistryControllersUseLimit(t *testing.T) {
	r := NewRegistry(25, time.Second)
	p := r.For("a")
	assert.Equal(t, 25, p.Content.Snapshot().Limit)
	assert.Equal(t, 25, p.Notes.Snapshot().Limit)
	assert.Equal(t, PhaseLoading, p.Notes.Snapshot().Phase)
}
