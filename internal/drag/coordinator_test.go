package drag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TierlistBackend/internal/board"
	"TierlistBackend/internal/model"
)

func ids(imgs []model.Image) []string {
	out := make([]string, 0, len(imgs))
	for _, im := range imgs {
		out = append(out, im.ID)
	}
	return out
}

func setup(t *testing.T, imageIDs ...string) board.Board {
	t.Helper()
	b, err := board.New([]model.Tier{
		{ID: "S", Name: "S", Color: "#FF7F7F"},
		{ID: "A", Name: "A", Color: "#FFBF7F"},
		{ID: "B", Name: "B", Color: "#FFDF7F"},
	}, nil)
	require.NoError(t, err)
	var imgs []model.Image
	for _, id := range imageIDs {
		imgs = append(imgs, model.Image{ID: id, Src: "data:image/png;base64,AA=="})
	}
	b, err = b.AddImages(imgs)
	require.NoError(t, err)
	return b
}

func TestDragScenario(t *testing.T) {
	b := setup(t, "img1", "img2")
	c := NewCoordinator()

	require.True(t, c.Start(b, "img1"))
	b, changed := c.Over(b, model.TierTarget("A"))
	require.True(t, changed)
	b, _ = c.End(b, nil)

	img1, _ := b.Image("img1")
	assert.Equal(t, model.TierID("A"), img1.Tier)
	assert.Equal(t, []string{"img1"}, ids(b.ImagesIn("A")))
	assert.Equal(t, []string{"img2"}, ids(b.ImagesIn(model.Unranked)))

	require.True(t, c.Start(b, "img2"))
	b, changed = c.Over(b, model.ImageTarget("img1"))
	require.True(t, changed)
	target := model.ImageTarget("img1")
	b, _ = c.End(b, &target)

	img2, _ := b.Image("img2")
	assert.Equal(t, model.TierID("A"), img2.Tier)
	assert.Equal(t, []string{"img2", "img1"}, ids(b.ImagesIn("A")))
	assert.Empty(t, b.ImagesIn(model.Unranked))
	assert.Equal(t, Idle, c.State())
}

func TestStartIgnoresUnknownImage(t *testing.T) {
	b := setup(t, "img1")
	c := NewCoordinator()
	assert.False(t, c.Start(b, "ghost"))
	assert.Equal(t, Idle, c.State())

	_, changed := c.Over(b, model.TierTarget("S"))
	assert.False(t, changed)
}

func TestOverNoOps(t *testing.T) {
	b := setup(t, "img1", "img2")
	c := NewCoordinator()
	require.True(t, c.Start(b, "img1"))

	id, ok := c.Dragged()
	require.True(t, ok)
	assert.Equal(t, "img1", id)

	cases := map[string]model.DragTarget{
		"self":         model.ImageTarget("img1"),
		"same tier":    model.ImageTarget("img2"),
		"own pool":     model.TierTarget(model.Unranked),
		"unknown tier": model.TierTarget("Z"),
		"unknown img":  model.ImageTarget("ghost"),
	}
	for name, target := range cases {
		t.Run(name, func(t *testing.T) {
			nb, changed := c.Over(b, target)
			assert.False(t, changed)
			assert.Equal(t, b.Images(), nb.Images())
		})
	}
}

func TestOverAppendsToTier(t *testing.T) {
	b := setup(t, "img1", "img2", "img3")
	c := NewCoordinator()
	for _, id := range []string{"img1", "img2", "img3"} {
		require.True(t, c.Start(b, id))
		b, _ = c.Over(b, model.TierTarget("B"))
		b, _ = c.End(b, nil)
	}
	assert.Equal(t, []string{"img1", "img2", "img3"}, ids(b.ImagesIn("B")))
}

func TestLiveMovesFollowThePointer(t *testing.T) {
	b := setup(t, "img1")
	c := NewCoordinator()
	require.True(t, c.Start(b, "img1"))

	b, _ = c.Over(b, model.TierTarget("S"))
	b, _ = c.Over(b, model.TierTarget("A"))
	b, _ = c.Over(b, model.TierTarget("B"))

	assert.Empty(t, b.ImagesIn("S"))
	assert.Empty(t, b.ImagesIn("A"))
	assert.Equal(t, []string{"img1"}, ids(b.ImagesIn("B")))
}

func TestAbandonedDragKeepsLastOverState(t *testing.T) {
	b := setup(t, "img1")
	c := NewCoordinator()
	require.True(t, c.Start(b, "img1"))
	b, _ = c.Over(b, model.TierTarget("S"))

	nb, changed := c.End(b, nil)
	assert.False(t, changed)
	assert.Equal(t, []string{"img1"}, ids(nb.ImagesIn("S")))
	assert.Equal(t, Idle, c.State())
	_, dragging := c.Dragged()
	assert.False(t, dragging)
}

func TestEndReordersWithinTier(t *testing.T) {
	b := setup(t, "img1", "img2", "img3")
	c := NewCoordinator()

	target := model.ImageTarget("img3")
	require.True(t, c.Start(b, "img1"))
	b, changed := c.End(b, &target)
	require.True(t, changed)
	assert.Equal(t, []string{"img2", "img3", "img1"}, ids(b.ImagesIn(model.Unranked)))

	t.Run("drop on self", func(t *testing.T) {
		self := model.ImageTarget("img2")
		require.True(t, c.Start(b, "img2"))
		nb, changed := c.End(b, &self)
		assert.False(t, changed)
		assert.Equal(t, b.Images(), nb.Images())
	})

	t.Run("drop on tier container", func(t *testing.T) {
		tier := model.TierTarget(model.Unranked)
		require.True(t, c.Start(b, "img2"))
		nb, changed := c.End(b, &tier)
		assert.False(t, changed)
		assert.Equal(t, b.Images(), nb.Images())
	})
}

func TestEndWithoutStart(t *testing.T) {
	b := setup(t, "img1", "img2")
	c := NewCoordinator()
	target := model.ImageTarget("img2")
	nb, changed := c.End(b, &target)
	assert.False(t, changed)
	assert.Equal(t, b.Images(), nb.Images())
}
