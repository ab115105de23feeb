package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierIDJSON(t *testing.T) {
	data, err := json.Marshal([]Image{{ID: "a", Src: "s", Tier: Unranked}, {ID: "b", Src: "s", Tier: "S"}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"a","src":"s","tier":null},{"id":"b","src":"s","tier":"S"}]`, string(data))

	var imgs []Image
	require.NoError(t, json.Unmarshal([]byte(`[{"id":"a","tier":null},{"id":"b","tier":"A"},{"id":"c"}]`), &imgs))
	assert.True(t, imgs[0].Tier.IsUnranked())
	assert.Equal(t, TierID("A"), imgs[1].Tier)
	assert.True(t, imgs[2].Tier.IsUnranked())

	require.Error(t, json.Unmarshal([]byte(`[{"id":"a","tier":7}]`), &imgs))
}

func TestParseDragTarget(t *testing.T) {
	tests := []struct {
		kind, id string
		want     DragTarget
		wantErr  bool
	}{
		{kind: "image", id: "img1", want: ImageTarget("img1")},
		{kind: "tier", id: "S", want: TierTarget("S")},
		{kind: "tier", id: "", want: TierTarget(Unranked)},
		{kind: "image", id: "", wantErr: true},
		{kind: "row", id: "S", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.kind+"/"+tt.id, func(t *testing.T) {
			got, err := ParseDragTarget(tt.kind, tt.id)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidDragTarget)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDragTargetAccessors(t *testing.T) {
	img := ImageTarget("x")
	id, ok := img.ImageID()
	assert.True(t, ok)
	assert.Equal(t, "x", id)
	_, ok = img.TierID()
	assert.False(t, ok)
	assert.Equal(t, "image:x", img.String())

	tier := TierTarget(Unranked)
	tid, ok := tier.TierID()
	assert.True(t, ok)
	assert.True(t, tid.IsUnranked())
	assert.Equal(t, TargetTier, tier.Kind())
	assert.Equal(t, "tier:<unranked>", tier.String())
	assert.Equal(t, "invalid", DragTarget{}.String())
}
