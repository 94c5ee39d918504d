package explorer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ardanlabs/simwallet/foundation/events"
)

// Set of error variables for the explorer.
var (
	ErrOutOfRange       = errors.New("block index out of range")
	ErrNotOpen          = errors.New("block modal is not open")
	ErrUnknownDirection = errors.New("unknown navigation direction")
	ErrUnknownScroll    = errors.New("unknown scroll direction")
	ErrUnknownTarget    = errors.New("unknown click target")
)

// BoundaryMessage is raised when navigation runs past either end of the chain.
const BoundaryMessage = "No more blocks"

// Direction selects the adjacent block to navigate to.
type Direction string

// Set of navigation directions.
const (
	Prev Direction = "prev"
	Next Direction = "next"
)

// ParseDirection converts a string into a Direction.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case Prev, Next:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// Target identifies what a click landed on while the modal is shown.
type Target string

// Set of click targets.
const (
	TargetOverlay Target = "overlay"
	TargetContent Target = "content"
)

// ParseTarget converts a string into a Target.
func ParseTarget(s string) (Target, error) {
	switch t := Target(s); t {
	case TargetOverlay, TargetContent:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTarget, s)
}

// =============================================================================

// Animation is the entrance animation applied to the modal content.
type Animation string

// Set of animations.
const (
	AnimationNone       Animation = "none"
	AnimationSlideLeft  Animation = "slide-left"
	AnimationSlideRight Animation = "slide-right"
)

// animationDuration is how long an entrance animation runs.
const animationDuration = 300 * time.Millisecond

// Entrance describes where an animation starts from. The content always
// comes to rest at offset zero with full opacity.
type Entrance struct {
	FromOffsetX int     `json:"from_offset_x"`
	FromOpacity float64 `json:"from_opacity"`
	DurationMS  int64   `json:"duration_ms"`
}

// Entrance returns the starting point of the animation.
func (a Animation) Entrance() Entrance {
	switch a {
	case AnimationSlideLeft:
		return Entrance{FromOffsetX: 50, DurationMS: animationDuration.Milliseconds()}
	case AnimationSlideRight:
		return Entrance{FromOffsetX: -50, DurationMS: animationDuration.Milliseconds()}
	}
	return Entrance{FromOpacity: 1}
}

// =============================================================================

// ModalView is the view model of the block modal. A display must restart the
// animation whenever AnimationKey changes, even if Animation did not.
type ModalView struct {
	Open         bool        `json:"open"`
	Index        int         `json:"index"`
	Detail       BlockDetail `json:"detail"`
	Animation    Animation   `json:"animation"`
	AnimationKey uint64      `json:"animation_key"`
	Entrance     Entrance    `json:"entrance"`
	CanPrev      bool        `json:"can_prev"`
	CanNext      bool        `json:"can_next"`
}

// Modal is the block detail modal. It is either closed or open on a block
// of the cache.
type Modal struct {
	cache    *Cache
	notifier events.Notifier

	mu        sync.Mutex
	open      bool
	index     int
	detail    BlockDetail
	animation Animation
	animKey   uint64
}

// NewModal constructs a closed modal over the cache.
func NewModal(cache *Cache, notifier events.Notifier) *Modal {
	return &Modal{
		cache:     cache,
		notifier:  notifier,
		animation: AnimationNone,
	}
}

// Open shows the block at the specified index. The cache must have been
// refreshed before a block can be opened.
func (m *Modal) Open(index int) error {
	blk, ok := m.cache.Block(index)
	if !ok {
		return fmt.Errorf("open block %d of %d: %w", index, m.cache.Len(), ErrOutOfRange)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.open = true
	m.index = index
	m.detail = RenderBlockDetail(blk)
	m.animation = AnimationNone

	return nil
}

// Navigate moves to the adjacent block in the specified direction. At either
// end of the chain the move is rejected with a notification and false is
// returned.
func (m *Modal) Navigate(dir Direction) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reconcile()
	if !m.open {
		return false, ErrNotOpen
	}

	target := m.index
	animation := AnimationNone

	switch dir {
	case Prev:
		target--
		animation = AnimationSlideLeft
	case Next:
		target++
		animation = AnimationSlideRight
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownDirection, dir)
	}

	blk, ok := m.cache.Block(target)
	if !ok {
		m.notifier.Notify(events.Failure(BoundaryMessage))
		return false, nil
	}

	m.index = target
	m.detail = RenderBlockDetail(blk)
	m.animation = animation
	m.animKey++

	return true, nil
}

// Click handles a click while the modal is shown. A click outside the
// content closes the modal. It reports whether the modal was closed.
func (m *Modal) Click(target Target) bool {
	if target != TargetOverlay {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.reconcile()
	if !m.open {
		return false
	}

	m.open = false
	return true
}

// Close hides the modal. The last index is kept until the next Open.
func (m *Modal) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.open = false
}

// Index returns the index of the displayed block and whether the modal
// is open.
func (m *Modal) Index() (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reconcile()
	return m.index, m.open
}

// View returns the view model of the modal.
func (m *Modal) View() ModalView {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reconcile()
	n := m.cache.Len()

	return ModalView{
		Open:         m.open,
		Index:        m.index,
		Detail:       m.detail,
		Animation:    m.animation,
		AnimationKey: m.animKey,
		Entrance:     m.animation.Entrance(),
		CanPrev:      m.open && m.index > 0,
		CanNext:      m.open && m.index < n-1,
	}
}

// reconcile closes the modal when a refresh shortened the chain below the
// displayed block. The caller must hold m.mu.
func (m *Modal) reconcile() {
	if m.open && m.index >= m.cache.Len() {
		m.open = false
	}
}
