package board

import (
	"fmt"
	"strings"

	"TierlistBackend/internal/model"
)

// AddImages appends images to the end of the unranked pool, whatever tier
// they carried. A batch containing an id already on the board, or the same
// id twice, is rejected as a whole.
func (b Board) AddImages(imgs []model.Image) (Board, error) {
	ids := make(map[string]struct{}, len(b.images)+len(imgs))
	for _, img := range b.images {
		ids[img.ID] = struct{}{}
	}
	for _, img := range imgs {
		if _, dup := ids[img.ID]; dup {
			return b, fmt.Errorf("%w: %s", ErrDuplicateImage, img.ID)
		}
		ids[img.ID] = struct{}{}
	}

	nb := b.clone()
	for _, img := range imgs {
		img.Tier = model.Unranked
		nb.images = append(nb.images, img)
	}
	return nb, nil
}

// MoveWithinTier moves the image at position from to position to inside
// one tier, shifting the images in between by one. Other tiers keep their
// contents and order.
func (b Board) MoveWithinTier(tier model.TierID, from, to int) (Board, error) {
	if !b.hasTier(tier) {
		return b, fmt.Errorf("%w: %s", ErrUnknownTier, tier)
	}
	pos := b.positions(tier)
	if from < 0 || from >= len(pos) || to < 0 || to >= len(pos) {
		return b, fmt.Errorf("%w: move %d -> %d in tier of %d", ErrIndexOutOfRange, from, to, len(pos))
	}
	if from == to {
		return b, nil
	}

	members := make([]model.Image, len(pos))
	for k, p := range pos {
		members[k] = b.images[p]
	}
	members = arrayMove(members, from, to)

	nb := b.clone()
	for k, p := range pos {
		nb.images[p] = members[k]
	}
	return nb, nil
}

// ReassignTier takes an image out of its tier and inserts it at index in the
// target tier. An index at or past the end appends. When the target is the
// image's own tier this is a MoveWithinTier.
func (b Board) ReassignTier(imageID string, target model.TierID, index int) (Board, error) {
	at := b.imageIndex(imageID)
	if at < 0 {
		return b, fmt.Errorf("%w: %s", ErrUnknownImage, imageID)
	}
	if !b.hasTier(target) {
		return b, fmt.Errorf("%w: %s", ErrUnknownTier, target)
	}
	if index < 0 {
		return b, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}

	img := b.images[at]
	if img.Tier == target {
		from, _ := b.IndexInTier(imageID)
		if last := len(b.positions(target)) - 1; index > last {
			index = last
		}
		return b.MoveWithinTier(target, from, index)
	}

	nb := Board{
		initial: b.initial,
		tiers:   append([]model.Tier(nil), b.tiers...),
		images:  make([]model.Image, 0, len(b.images)),
	}
	nb.images = append(nb.images, b.images[:at]...)
	nb.images = append(nb.images, b.images[at+1:]...)

	img.Tier = target
	pos := nb.positions(target)
	var flat int
	switch {
	case index < len(pos):
		flat = pos[index]
	case len(pos) > 0:
		flat = pos[len(pos)-1] + 1
	default:
		flat = len(nb.images)
	}
	nb.images = insertAt(nb.images, flat, img)
	return nb, nil
}

// Reset restores the configured tier names and colors and either returns
// every image to the pool or drops them all.
func (b Board) Reset(mode ResetMode) Board {
	nb := Board{
		initial: b.initial,
		tiers:   append([]model.Tier(nil), b.initial...),
	}
	if mode == ResetClear {
		return nb
	}
	nb.images = make([]model.Image, len(b.images))
	for i, img := range b.images {
		img.Tier = model.Unranked
		nb.images[i] = img
	}
	return nb
}

// RenameTier changes a tier's display name. Surrounding whitespace is
// trimmed; a blank name is rejected. Duplicate names are allowed.
func (b Board) RenameTier(id model.TierID, name string) (Board, error) {
	i, err := b.userTier(id)
	if err != nil {
		return b, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return b, ErrEmptyTierName
	}
	nb := b.clone()
	nb.tiers[i].Name = name
	return nb, nil
}

// RecolorTier accepts #RGB or #RRGGBB.
func (b Board) RecolorTier(id model.TierID, color string) (Board, error) {
	i, err := b.userTier(id)
	if err != nil {
		return b, err
	}
	color = strings.TrimSpace(color)
	if !colorPattern.MatchString(color) {
		return b, fmt.Errorf("%w: %q", ErrInvalidColor, color)
	}
	nb := b.clone()
	nb.tiers[i].Color = color
	return nb, nil
}

// WithTierLabels copies names and colors from saved tiers onto the matching
// configured tiers. Saved tiers that are no longer configured are ignored.
func (b Board) WithTierLabels(saved []model.Tier) Board {
	nb := b.clone()
	for _, s := range saved {
		i := nb.tierIndex(s.ID)
		if i < 0 {
			continue
		}
		if name := strings.TrimSpace(s.Name); name != "" {
			nb.tiers[i].Name = name
		}
		if colorPattern.MatchString(s.Color) {
			nb.tiers[i].Color = s.Color
		}
	}
	return nb
}

func (b Board) userTier(id model.TierID) (int, error) {
	if id == model.Unranked {
		return -1, ErrReservedTier
	}
	i := b.tierIndex(id)
	if i < 0 {
		return -1, fmt.Errorf("%w: %s", ErrUnknownTier, id)
	}
	return i, nil
}

// arrayMove returns a copy of s with the element at from moved to to.
func arrayMove[T any](s []T, from, to int) []T {
	out := make([]T, 0, len(s))
	out = append(out, s[:from]...)
	out = append(out, s[from+1:]...)
	return insertAt(out, to, s[from])
}

func insertAt[T any](s []T, i int, v T) []T {
	var zero T
	s = append(s, zero)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}
