package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// TierID identifies a tier. The zero value is the unranked pool.
type TierID string

// Unranked is the reserved id of the pool holding images not yet ranked.
// User tiers always carry a non-empty id, so they cannot collide with it.
const Unranked TierID = ""

func (t TierID) IsUnranked() bool {
	return t == Unranked
}

// MarshalJSON encodes the unranked pool as null.
func (t TierID) MarshalJSON() ([]byte, error) {
	if t == Unranked {
		return []byte("null"), nil
	}
	return json.Marshal(string(t))
}

func (t *TierID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = Unranked
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("tier id: %w", err)
	}
	*t = TierID(s)
	return nil
}

type Tier struct {
	ID    TierID `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color" yaml:"color"`
}

type Image struct {
	ID   string `json:"id"`
	Src  string `json:"src"`
	Tier TierID `json:"tier"`
}

var ErrInvalidDragTarget = errors.New("invalid drag target")

// DragTargetKind tells what a drag is hovering: another image or a tier container.
type DragTargetKind int

const (
	TargetImage DragTargetKind = iota + 1
	TargetTier
)

func (k DragTargetKind) String() string {
	switch k {
	case TargetImage:
		return "image"
	case TargetTier:
		return "tier"
	default:
		return "unknown"
	}
}

// DragTarget is either an image (insert next to it) or a tier container
// (append to it). Build one with ImageTarget, TierTarget or ParseDragTarget.
type DragTarget struct {
	kind    DragTargetKind
	imageID string
	tierID  TierID
}

func ImageTarget(id string) DragTarget {
	return DragTarget{kind: TargetImage, imageID: id}
}

func TierTarget(id TierID) DragTarget {
	return DragTarget{kind: TargetTier, tierID: id}
}

// ParseDragTarget converts the wire form {"kind": ..., "id": ...} into a DragTarget.
func ParseDragTarget(kind, id string) (DragTarget, error) {
	switch kind {
	case "image":
		if id == "" {
			return DragTarget{}, fmt.Errorf("%w: image target without id", ErrInvalidDragTarget)
		}
		return ImageTarget(id), nil
	case "tier":
		return TierTarget(TierID(id)), nil
	default:
		return DragTarget{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidDragTarget, kind)
	}
}

func (d DragTarget) Kind() DragTargetKind {
	return d.kind
}

// ImageID returns the hovered image id for image targets.
func (d DragTarget) ImageID() (string, bool) {
	return d.imageID, d.kind == TargetImage
}

// TierID returns the hovered tier for tier targets.
func (d DragTarget) TierID() (TierID, bool) {
	return d.tierID, d.kind == TargetTier
}

func (d DragTarget) String() string {
	switch d.kind {
	case TargetImage:
		return "image:" + d.imageID
	case TargetTier:
		if d.tierID == Unranked {
			return "tier:<unranked>"
		}
		return "tier:" + string(d.tierID)
	default:
		return "invalid"
	}
}
