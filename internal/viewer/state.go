package viewer

// LoadState represents the lifecycle of one rendering surface
type LoadState int

const (
	StateIdle LoadState = iota
	StateLoading
	StateLoaded
	StateErrored
)

// String returns a human-readable representation of the load state
func (s LoadState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateLoading:
		return "Loading"
	case StateLoaded:
		return "Loaded"
	case StateErrored:
		return "Errored"
	default:
		return "Unknown"
	}
}

// LoadController drives the loading/error overlay of one rendering surface.
// Assigning a source from any state enters Loading; load and failure
// signals only apply while Loading, and only for the source they were
// issued against, so a late signal for a superseded source never flips the
// state of the newer one.
type LoadController struct {
	state  LoadState
	source string
}

// NewLoadController creates a controller in the Idle state
func NewLoadController() *LoadController {
	return &LoadController{state: StateIdle}
}

// State returns the current surface state
func (c *LoadController) State() LoadState { return c.state }

// Source returns the URL the surface is bound to, empty when Idle
func (c *LoadController) Source() string { return c.source }

// SetSource binds the surface to a new URL and enters Loading. Valid from
// every state: Idle on first selection, Loaded on re-selection, Errored on
// the recovery path. Re-assigning the current source while Loading is a
// no-op.
func (c *LoadController) SetSource(url string) {
	if url == "" {
		return
	}
	if c.state == StateLoading && c.source == url {
		return
	}
	c.source = url
	c.state = StateLoading
}

// LoadFinished records a successful load signal for the given source.
// Ignored unless the surface is Loading that exact source.
func (c *LoadController) LoadFinished(url string) {
	if c.state == StateLoading && c.source == url {
		c.state = StateLoaded
	}
}

// LoadFailed records a load-failure signal for the given source. Ignored
// unless the surface is Loading that exact source. There is no automatic
// retry from Errored; the user picks a different asset or re-uploads.
func (c *LoadController) LoadFailed(url string) {
	if c.state == StateLoading && c.source == url {
		c.state = StateErrored
	}
}

// Reset returns the surface to Idle with no source (shelf became empty)
func (c *LoadController) Reset() {
	c.state = StateIdle
	c.source = ""
}
