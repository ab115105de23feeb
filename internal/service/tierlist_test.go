package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"TierlistBackend/internal/board"
	"TierlistBackend/internal/model"
	"TierlistBackend/internal/repository"
	"TierlistBackend/internal/upload"
)

var testTiers = []model.Tier{
	{ID: "S", Name: "S", Color: "#FF7F7F"},
	{ID: "A", Name: "A", Color: "#FFBF7F"},
	{ID: "B", Name: "B", Color: "#FFDF7F"},
}

var png = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newTestService(t *testing.T, kv repository.KeyValueStore, mode board.ResetMode) (TierlistService, *repository.SnapshotRepository) {
	t.Helper()
	repo := repository.NewSnapshotRepository(kv, zap.NewNop())
	svc, err := NewTierlistService(context.Background(), testTiers, repo, upload.NewDecoder(zap.NewNop()), mode, zap.NewNop())
	require.NoError(t, err)
	return svc, repo
}

func uploadN(t *testing.T, svc TierlistService, n int) []model.Image {
	t.Helper()
	blobs := make([]upload.Blob, n)
	for i := range blobs {
		blobs[i] = upload.Blob{Name: "x.png", Data: png}
	}
	imgs, err := svc.UploadImages(context.Background(), blobs)
	require.NoError(t, err)
	return imgs
}

func TestUploadPersists(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t, repository.NewMemoryStore(), board.ResetUnrank)

	imgs := uploadN(t, svc, 3)
	assert.Len(t, svc.Board().Unranked, 3)
	assert.Equal(t, imgs, repo.LoadImages(ctx))

	_, err := svc.UploadImages(ctx, []upload.Blob{{Name: "a.png", Data: png}, {Name: "b.txt", Data: []byte("text")}})
	require.ErrorIs(t, err, upload.ErrNotImage)
	assert.Len(t, svc.Board().Unranked, 3)
	assert.Len(t, repo.LoadImages(ctx), 3)
}

func TestDragFlowPersists(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryStore()
	svc, _ := newTestService(t, kv, board.ResetUnrank)
	imgs := uploadN(t, svc, 2)

	_, err := svc.DragOver(ctx, model.TierTarget("A"))
	require.ErrorIs(t, err, ErrNotDragging)

	require.True(t, svc.DragStart(imgs[0].ID))
	require.NotNil(t, svc.Board().Dragging)
	changed, err := svc.DragOver(ctx, model.TierTarget("A"))
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = svc.DragEnd(ctx, nil)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Nil(t, svc.Board().Dragging)

	require.True(t, svc.DragStart(imgs[1].ID))
	_, err = svc.DragOver(ctx, model.ImageTarget(imgs[0].ID))
	require.NoError(t, err)
	target := model.ImageTarget(imgs[0].ID)
	_, err = svc.DragEnd(ctx, &target)
	require.NoError(t, err)

	// a fresh service over the same store sees the arrangement
	restored, _ := newTestService(t, kv, board.ResetUnrank)
	view := restored.Board()
	require.Len(t, view.Tiers, 3)
	a := view.Tiers[1]
	assert.Equal(t, model.TierID("A"), a.ID)
	require.Len(t, a.Images, 2)
	assert.Equal(t, imgs[1].ID, a.Images[0].ID)
	assert.Equal(t, imgs[0].ID, a.Images[1].ID)
	assert.Empty(t, view.Unranked)
}

func TestMoveAndReassign(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t, repository.NewMemoryStore(), board.ResetUnrank)
	imgs := uploadN(t, svc, 3)

	for _, im := range imgs {
		require.NoError(t, svc.ReassignTier(ctx, im.ID, "B", 99))
	}
	require.NoError(t, svc.MoveWithinTier(ctx, "B", 2, 0))

	saved := repo.LoadImages(ctx)
	require.Len(t, saved, 3)
	b := svc.Board().Tiers[2]
	assert.Equal(t, []string{imgs[2].ID, imgs[0].ID, imgs[1].ID}, []string{b.Images[0].ID, b.Images[1].ID, b.Images[2].ID})

	require.ErrorIs(t, svc.MoveWithinTier(ctx, "B", 0, 5), board.ErrIndexOutOfRange)
	require.ErrorIs(t, svc.ReassignTier(ctx, "ghost", "S", 0), board.ErrUnknownImage)
}

func TestRenameTierPolicy(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryStore()
	svc, _ := newTestService(t, kv, board.ResetUnrank)

	require.ErrorIs(t, svc.RenameTier(ctx, "S", ""), board.ErrEmptyTierName)
	assert.Equal(t, "S", svc.ListTiers()[0].Name)

	require.NoError(t, svc.RenameTier(ctx, "S", "Great"))
	require.NoError(t, svc.RenameTier(ctx, "A", "Great"))
	require.NoError(t, svc.RecolorTier(ctx, "A", "#123456"))

	restored, _ := newTestService(t, kv, board.ResetUnrank)
	tiers := restored.ListTiers()
	assert.Equal(t, "Great", tiers[0].Name)
	assert.Equal(t, "Great", tiers[1].Name)
	assert.Equal(t, "#123456", tiers[1].Color)
}

func TestUpdateTierAllOrNothing(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t, repository.NewMemoryStore(), board.ResetUnrank)
	name, badColor, badName, color := "Top", "nope", "  ", "#000"

	require.ErrorIs(t, svc.UpdateTier(ctx, "S", &name, &badColor), board.ErrInvalidColor)
	require.ErrorIs(t, svc.UpdateTier(ctx, "S", &badName, &color), board.ErrEmptyTierName)
	assert.Equal(t, testTiers, svc.ListTiers())
	assert.Nil(t, repo.LoadTiers(ctx))

	require.NoError(t, svc.UpdateTier(ctx, "S", &name, &color))
	want := model.Tier{ID: "S", Name: "Top", Color: "#000"}
	assert.Equal(t, want, svc.ListTiers()[0])
	assert.Equal(t, want, repo.LoadTiers(ctx)[0])
}

func TestResetReturnsImagesToPool(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t, repository.NewMemoryStore(), board.ResetUnrank)
	imgs := uploadN(t, svc, 2)
	require.NoError(t, svc.ReassignTier(ctx, imgs[0].ID, "S", 0))
	require.NoError(t, svc.RenameTier(ctx, "S", "Top"))

	require.NoError(t, svc.Reset(ctx))

	view := svc.Board()
	assert.Len(t, view.Unranked, 2)
	for _, tv := range view.Tiers {
		assert.Empty(t, tv.Images)
	}
	assert.Equal(t, "S", view.Tiers[0].Name)
	for _, im := range repo.LoadImages(ctx) {
		assert.Equal(t, model.Unranked, im.Tier)
	}
	assert.Equal(t, testTiers, repo.LoadTiers(ctx))
}

func TestResetClear(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryStore()
	svc, repo := newTestService(t, kv, board.ResetClear)
	uploadN(t, svc, 2)

	require.NoError(t, svc.RenameTier(ctx, "S", "Top"))

	require.NoError(t, svc.Reset(ctx))
	assert.Empty(t, svc.Board().Unranked)
	assert.Equal(t, "S", svc.ListTiers()[0].Name)
	assert.Empty(t, repo.LoadImages(ctx))
	assert.Nil(t, repo.LoadTiers(ctx))

	restored, _ := newTestService(t, kv, board.ResetClear)
	assert.Equal(t, testTiers, restored.ListTiers())
}

func TestDragSignalsAreLogged(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.DebugLevel)
	repo := repository.NewSnapshotRepository(repository.NewMemoryStore(), zap.NewNop())
	svc, err := NewTierlistService(ctx, testTiers, repo, upload.NewDecoder(zap.NewNop()), board.ResetUnrank, zap.New(core))
	require.NoError(t, err)
	imgs := uploadN(t, svc, 1)

	_, err = svc.DragOver(ctx, model.TierTarget("A"))
	require.ErrorIs(t, err, ErrNotDragging)
	ignored := logs.FilterMessage("drag over ignored").All()
	require.Len(t, ignored, 1)
	assert.Equal(t, "idle", ignored[0].ContextMap()["state"])
	assert.Equal(t, "tier:A", ignored[0].ContextMap()["target"])

	require.True(t, svc.DragStart(imgs[0].ID))
	started := logs.FilterMessage("drag start").All()
	require.Len(t, started, 1)
	assert.Equal(t, "dragging", started[0].ContextMap()["state"])
}

func TestMalformedSavedStateStartsEmpty(t *testing.T) {
	kv := repository.NewMemoryStore()
	require.NoError(t, kv.Set(context.Background(), repository.ImagesKey, "[{"))
	svc, _ := newTestService(t, kv, board.ResetUnrank)
	view := svc.Board()
	assert.Empty(t, view.Unranked)
	assert.Len(t, view.Tiers, 3)
}
