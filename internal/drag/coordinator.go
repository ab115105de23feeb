// Package drag turns drag-start, drag-over and drag-end signals into board
// transitions.
//
// Moves are applied live while hovering: each drag-over that points at a
// different tier reassigns the dragged image immediately, so the board
// already shows where the card will land. Drag-end only handles the final
// reorder inside a tier.
package drag

import (
	"TierlistBackend/internal/board"
	"TierlistBackend/internal/model"
)

type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Coordinator is not safe for concurrent use; callers serialize signals.
type Coordinator struct {
	state   State
	dragged string
	origin  model.TierID
}

func NewCoordinator() *Coordinator {
	return &Coordinator{}
}

func (c *Coordinator) State() State {
	return c.state
}

// Dragged returns the id of the image being dragged, for the floating preview.
func (c *Coordinator) Dragged() (string, bool) {
	return c.dragged, c.state == Dragging
}

// Start begins a drag. Ids that are not on the board are ignored.
func (c *Coordinator) Start(b board.Board, imageID string) bool {
	img, ok := b.Image(imageID)
	if !ok {
		return false
	}
	c.state = Dragging
	c.dragged = imageID
	c.origin = img.Tier
	return true
}

// Over applies the live reassignment for the hovered target and reports
// whether the board changed. Hovering the dragged image itself, anything in
// the image's current tier, or an unknown target leaves the board as is.
func (c *Coordinator) Over(b board.Board, target model.DragTarget) (board.Board, bool) {
	if c.state != Dragging {
		return b, false
	}
	active, ok := b.Image(c.dragged)
	if !ok {
		return b, false
	}

	switch target.Kind() {
	case model.TargetImage:
		overID, _ := target.ImageID()
		if overID == active.ID {
			return b, false
		}
		over, ok := b.Image(overID)
		if !ok || over.Tier == active.Tier {
			return b, false
		}
		index, _ := b.IndexInTier(overID)
		nb, err := b.ReassignTier(active.ID, over.Tier, index)
		if err != nil {
			return b, false
		}
		return nb, true

	case model.TargetTier:
		tier, _ := target.TierID()
		if tier == active.Tier || !b.HasTier(tier) {
			return b, false
		}
		nb, err := b.ReassignTier(active.ID, tier, len(b.ImagesIn(tier)))
		if err != nil {
			return b, false
		}
		return nb, true
	}
	return b, false
}

// End finishes the drag. A nil target abandons it and keeps whatever the
// last drag-over produced. Dropping on another image of the tier the drag
// started in moves the dragged image to that image's position; drops that
// crossed tiers were already placed by Over.
func (c *Coordinator) End(b board.Board, target *model.DragTarget) (board.Board, bool) {
	draggedID, origin := c.dragged, c.origin
	wasDragging := c.state == Dragging
	c.state = Idle
	c.dragged = ""
	c.origin = model.Unranked

	if !wasDragging || target == nil {
		return b, false
	}
	overID, ok := target.ImageID()
	if !ok || overID == draggedID {
		return b, false
	}
	active, ok := b.Image(draggedID)
	if !ok {
		return b, false
	}
	over, ok := b.Image(overID)
	if !ok || over.Tier != active.Tier || active.Tier != origin {
		return b, false
	}

	from, _ := b.IndexInTier(draggedID)
	to, _ := b.IndexInTier(overID)
	nb, err := b.MoveWithinTier(active.Tier, from, to)
	if err != nil {
		return b, false
	}
	return nb, from != to
}
