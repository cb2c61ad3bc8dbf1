package viewer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadController_InitialState(t *testing.T) {
	c := NewLoadController()
	assert.Equal(t, StateIdle, c.State())
	assert.Empty(t, c.Source())
}

func TestLoadController_Transitions(t *testing.T) {
	tests := []struct {
		name string
		run  func(c *LoadController)
		want LoadState
	}{
		{
			name: "set source from idle starts loading",
			run: func(c *LoadController) {
				c.SetSource("http://shelf/files/a.pdf")
			},
			want: StateLoading,
		},
		{
			name: "load finished while loading",
			run: func(c *LoadController) {
				c.SetSource("http://shelf/files/a.pdf")
				c.LoadFinished("http://shelf/files/a.pdf")
			},
			want: StateLoaded,
		},
		{
			name: "load failed while loading",
			run: func(c *LoadController) {
				c.SetSource("http://shelf/files/a.pdf")
				c.LoadFailed("http://shelf/files/a.pdf")
			},
			want: StateErrored,
		},
		{
			name: "finished signal ignored when idle",
			run: func(c *LoadController) {
				c.LoadFinished("http://shelf/files/a.pdf")
			},
			want: StateIdle,
		},
		{
			name: "failed signal ignored when already loaded",
			run: func(c *LoadController) {
				c.SetSource("http://shelf/files/a.pdf")
				c.LoadFinished("http://shelf/files/a.pdf")
				c.LoadFailed("http://shelf/files/a.pdf")
			},
			want: StateLoaded,
		},
		{
			name: "re-selection from loaded starts loading again",
			run: func(c *LoadController) {
				c.SetSource("http://shelf/files/a.pdf")
				c.LoadFinished("http://shelf/files/a.pdf")
				c.SetSource("http://shelf/files/b.pdf")
			},
			want: StateLoading,
		},
		{
			name: "recovery from errored through new source",
			run: func(c *LoadController) {
				c.SetSource("http://shelf/files/a.pdf")
				c.LoadFailed("http://shelf/files/a.pdf")
				c.SetSource("http://shelf/files/b.pdf")
				c.LoadFinished("http://shelf/files/b.pdf")
			},
			want: StateLoaded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewLoadController()
			tt.run(c)
			assert.Equal(t, tt.want, c.State())
		})
	}
}

func TestLoadController_StaleSignalsIgnored(t *testing.T) {
	c := NewLoadController()
	c.SetSource("http://shelf/files/old.pdf")
	c.SetSource("http://shelf/files/new.pdf")

	// The signal for the superseded source must not touch the new one.
	c.LoadFailed("http://shelf/files/old.pdf")
	assert.Equal(t, StateLoading, c.State())

	c.LoadFinished("http://shelf/files/new.pdf")
	assert.Equal(t, StateLoaded, c.State())
}

func TestLoadController_Reset(t *testing.T) {
	c := NewLoadController()
	c.SetSource("http://shelf/files/a.pdf")
	c.LoadFinished("http://shelf/files/a.pdf")

	c.Reset()
	assert.Equal(t, StateIdle, c.State())
	assert.Empty(t, c.Source())
}

func TestLoadController_EmptySourceIgnored(t *testing.T) {
	c := NewLoadController()
	c.SetSource("")
	assert.Equal(t, StateIdle, c.State())
}
