// Package board holds the tierlist state as immutable snapshots.
//
// A Board keeps a single ordered slice of images, each tagged with its tier.
// The images of a tier, in order, are the images carrying that tier id in
// slice order, so an image can never sit in two tiers at once. Every
// operation returns a fresh Board and leaves its receiver untouched.
package board

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"TierlistBackend/internal/model"
)

var (
	ErrUnknownTier     = errors.New("unknown tier")
	ErrUnknownImage    = errors.New("unknown image")
	ErrDuplicateImage  = errors.New("duplicate image id")
	ErrDuplicateTier   = errors.New("duplicate tier id")
	ErrReservedTier    = errors.New("tier id is reserved for the unranked pool")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrEmptyTierName   = errors.New("tier name cannot be empty")
	ErrInvalidColor    = errors.New("invalid tier color")
)

var colorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ResetMode selects what Reset does with the images on the board.
type ResetMode int

const (
	// ResetUnrank sends every image back to the unranked pool.
	ResetUnrank ResetMode = iota
	// ResetClear removes every image.
	ResetClear
)

func ParseResetMode(s string) (ResetMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unrank":
		return ResetUnrank, nil
	case "clear":
		return ResetClear, nil
	default:
		return 0, fmt.Errorf("unknown reset mode %q", s)
	}
}

type Board struct {
	initial []model.Tier
	tiers   []model.Tier
	images  []model.Image
}

// New builds a board from the configured tier set and a saved image list.
// Images pointing at tiers that no longer exist fall back to the pool, and
// repeated image ids keep only their first occurrence.
func New(tiers []model.Tier, images []model.Image) (Board, error) {
	seen := make(map[model.TierID]struct{}, len(tiers))
	for _, t := range tiers {
		if t.ID == model.Unranked {
			return Board{}, ErrReservedTier
		}
		if _, dup := seen[t.ID]; dup {
			return Board{}, fmt.Errorf("%w: %s", ErrDuplicateTier, t.ID)
		}
		seen[t.ID] = struct{}{}
	}

	b := Board{
		initial: append([]model.Tier(nil), tiers...),
		tiers:   append([]model.Tier(nil), tiers...),
		images:  make([]model.Image, 0, len(images)),
	}
	ids := make(map[string]struct{}, len(images))
	for _, img := range images {
		if _, dup := ids[img.ID]; dup {
			continue
		}
		ids[img.ID] = struct{}{}
		if !b.hasTier(img.Tier) {
			img.Tier = model.Unranked
		}
		b.images = append(b.images, img)
	}
	return b, nil
}

func (b Board) clone() Board {
	return Board{
		initial: b.initial,
		tiers:   append([]model.Tier(nil), b.tiers...),
		images:  append([]model.Image(nil), b.images...),
	}
}

func (b Board) hasTier(id model.TierID) bool {
	if id == model.Unranked {
		return true
	}
	return b.tierIndex(id) >= 0
}

func (b Board) tierIndex(id model.TierID) int {
	for i, t := range b.tiers {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (b Board) imageIndex(id string) int {
	for i, img := range b.images {
		if img.ID == id {
			return i
		}
	}
	return -1
}

// positions returns the flat-slice indices of the images in tier, in order.
func (b Board) positions(tier model.TierID) []int {
	var pos []int
	for i, img := range b.images {
		if img.Tier == tier {
			pos = append(pos, i)
		}
	}
	return pos
}

// ListTiers returns the user tiers in display order. The pool is not included.
func (b Board) ListTiers() []model.Tier {
	return append([]model.Tier(nil), b.tiers...)
}

func (b Board) Tier(id model.TierID) (model.Tier, bool) {
	i := b.tierIndex(id)
	if i < 0 {
		return model.Tier{}, false
	}
	return b.tiers[i], true
}

func (b Board) HasTier(id model.TierID) bool {
	return b.hasTier(id)
}

// Images returns every image in flat order.
func (b Board) Images() []model.Image {
	return append([]model.Image(nil), b.images...)
}

// ImagesIn returns the ordered images of a tier, or of the pool for model.Unranked.
func (b Board) ImagesIn(tier model.TierID) []model.Image {
	var out []model.Image
	for _, img := range b.images {
		if img.Tier == tier {
			out = append(out, img)
		}
	}
	return out
}

func (b Board) Image(id string) (model.Image, bool) {
	i := b.imageIndex(id)
	if i < 0 {
		return model.Image{}, false
	}
	return b.images[i], true
}

// IndexInTier reports the position of an image inside its own tier.
func (b Board) IndexInTier(id string) (int, bool) {
	i := b.imageIndex(id)
	if i < 0 {
		return 0, false
	}
	tier := b.images[i].Tier
	n := 0
	for _, img := range b.images[:i] {
		if img.Tier == tier {
			n++
		}
	}
	return n, true
}

// Len is the total number of images on the board.
func (b Board) Len() int {
	return len(b.images)
}
