package explorer

import (
	"fmt"
	"sync"
	"time"
)

// Grid scrolling constants.
const (
	ScrollStep    = 250
	EdgeTolerance = 5
	SettleDelay   = 300 * time.Millisecond
)

// ScrollDirection selects which way the grid scrolls.
type ScrollDirection string

// Set of scroll directions.
const (
	ScrollLeft  ScrollDirection = "left"
	ScrollRight ScrollDirection = "right"
)

// ParseScrollDirection converts a string into a ScrollDirection.
func ParseScrollDirection(s string) (ScrollDirection, error) {
	switch d := ScrollDirection(s); d {
	case ScrollLeft, ScrollRight:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScroll, s)
}

// Viewport is the horizontal geometry of the card container.
type Viewport struct {
	Offset      float64 `json:"offset"`
	ClientWidth float64 `json:"client_width"`
	ScrollWidth float64 `json:"scroll_width"`
}

// ScrollBy returns the viewport shifted by delta, clamped to the
// scrollable range.
func (v Viewport) ScrollBy(delta float64) Viewport {
	limit := v.ScrollWidth - v.ClientWidth
	if limit < 0 {
		limit = 0
	}

	v.Offset += delta
	switch {
	case v.Offset < 0:
		v.Offset = 0
	case v.Offset > limit:
		v.Offset = limit
	}

	return v
}

// Controls holds the visibility of the two scroll controls.
type Controls struct {
	Left  bool `json:"left"`
	Right bool `json:"right"`
}

// ControlsFor computes which scroll controls are visible. A control is
// hidden when the container is within EdgeTolerance of its edge.
func ControlsFor(v Viewport) Controls {
	return Controls{
		Left:  v.Offset > EdgeTolerance,
		Right: v.Offset+v.ClientWidth < v.ScrollWidth-EdgeTolerance,
	}
}

// =============================================================================

// Timer is the behavior of a pending delayed call.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run after d.
type AfterFunc func(d time.Duration, f func()) Timer

func afterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// GridConfig represents the configuration required to construct a grid.
type GridConfig struct {
	Cache *Cache
	Modal *Modal

	// OnControls is called whenever the control visibility is recomputed.
	OnControls func(Controls)

	// AfterFunc replaces time.AfterFunc for the settle delay.
	AfterFunc AfterFunc
}

// GridView is the view model of the grid.
type GridView struct {
	Cards    []Card   `json:"cards"`
	Viewport Viewport `json:"viewport"`
	Controls Controls `json:"controls"`
	Behavior string   `json:"behavior"`
}

// Grid is the horizontally scrollable strip of block cards.
type Grid struct {
	cache      *Cache
	modal      *Modal
	onControls func(Controls)
	afterFunc  AfterFunc

	mu       sync.Mutex
	viewport Viewport
	controls Controls
	settle   Timer
	gen      uint64
}

// NewGrid constructs a grid over the cache that opens blocks in the modal.
func NewGrid(cfg GridConfig) *Grid {
	af := cfg.AfterFunc
	if af == nil {
		af = afterFunc
	}

	on := cfg.OnControls
	if on == nil {
		on = func(Controls) {}
	}

	return &Grid{
		cache:      cfg.Cache,
		modal:      cfg.Modal,
		onControls: on,
		afterFunc:  af,
	}
}

// Cards returns one card per block of the cache in index order.
func (g *Grid) Cards() []Card {
	return RenderCards(g.cache.Blocks())
}

// Select opens the modal on the card at the specified index.
func (g *Grid) Select(index int) error {
	return g.modal.Open(index)
}

// Load sets the geometry of a freshly rendered container and computes the
// control visibility right away.
func (g *Grid) Load(v Viewport) Controls {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.stopSettle()
	g.viewport = v
	return g.recompute()
}

// Measure records geometry reported after the container scrolled on its own
// and recomputes the control visibility.
func (g *Grid) Measure(v Viewport) Controls {
	return g.Load(v)
}

// Scroll shifts the container by one step. The control visibility is
// recomputed once the scroll settles. A newer scroll restarts the delay.
func (g *Grid) Scroll(dir ScrollDirection) Viewport {
	g.mu.Lock()
	defer g.mu.Unlock()

	delta := float64(ScrollStep)
	if dir == ScrollLeft {
		delta = -delta
	}
	g.viewport = g.viewport.ScrollBy(delta)

	g.stopSettle()
	gen := g.gen
	g.settle = g.afterFunc(SettleDelay, func() {
		g.mu.Lock()
		defer g.mu.Unlock()

		// A timer that already fired can't be stopped, so a superseded
		// callback may still run.
		if gen != g.gen {
			return
		}

		g.settle = nil
		g.recompute()
	})

	return g.viewport
}

// Controls returns the last computed control visibility.
func (g *Grid) Controls() Controls {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.controls
}

// View returns the view model of the grid.
func (g *Grid) View() GridView {
	cards := g.Cards()

	g.mu.Lock()
	defer g.mu.Unlock()

	return GridView{
		Cards:    cards,
		Viewport: g.viewport,
		Controls: g.controls,
		Behavior: "smooth",
	}
}

// recompute must be called while holding the lock.
func (g *Grid) recompute() Controls {
	g.controls = ControlsFor(g.viewport)
	g.onControls(g.controls)
	return g.controls
}

// stopSettle cancels the pending settle and invalidates any callback of it
// that is already running. The caller must hold g.mu.
func (g *Grid) stopSettle() {
	g.gen++
	if g.settle != nil {
		g.settle.Stop()
		g.settle = nil
	}
}
