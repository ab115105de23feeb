package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"TierlistBackend/internal/model"
)

const (
	ImagesKey = "tierlistImages"
	TiersKey  = "tierlistTiers"
)

// SnapshotRepository saves the whole image list (and tier labels) as JSON
// under fixed keys. Every save replaces the previous snapshot.
type SnapshotRepository struct {
	kv     KeyValueStore
	logger *zap.Logger
}

func NewSnapshotRepository(kv KeyValueStore, logger *zap.Logger) *SnapshotRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotRepository{kv: kv, logger: logger}
}

func (r *SnapshotRepository) SaveImages(ctx context.Context, images []model.Image) error {
	if images == nil {
		images = []model.Image{}
	}
	data, err := json.Marshal(images)
	if err != nil {
		return fmt.Errorf("encode images: %w", err)
	}
	if err := r.kv.Set(ctx, ImagesKey, string(data)); err != nil {
		return fmt.Errorf("save images: %w", err)
	}
	return nil
}

// LoadImages returns the saved images. Missing, unreadable or malformed
// data is logged and yields an empty list.
func (r *SnapshotRepository) LoadImages(ctx context.Context) []model.Image {
	var images []model.Image
	if !r.load(ctx, ImagesKey, &images) {
		return []model.Image{}
	}

	valid := make([]model.Image, 0, len(images))
	for _, img := range images {
		if img.ID == "" {
			r.logger.Warn("dropping saved image without id", zap.String("key", ImagesKey))
			continue
		}
		valid = append(valid, img)
	}
	return valid
}

func (r *SnapshotRepository) SaveTiers(ctx context.Context, tiers []model.Tier) error {
	data, err := json.Marshal(tiers)
	if err != nil {
		return fmt.Errorf("encode tiers: %w", err)
	}
	if err := r.kv.Set(ctx, TiersKey, string(data)); err != nil {
		return fmt.Errorf("save tiers: %w", err)
	}
	return nil
}

// LoadTiers returns saved tier labels, or nil when none were saved.
func (r *SnapshotRepository) LoadTiers(ctx context.Context) []model.Tier {
	var tiers []model.Tier
	if !r.load(ctx, TiersKey, &tiers) {
		return nil
	}
	return tiers
}

// Clear removes both snapshots.
func (r *SnapshotRepository) Clear(ctx context.Context) error {
	if err := r.kv.Delete(ctx, ImagesKey); err != nil {
		return fmt.Errorf("clear images: %w", err)
	}
	if err := r.kv.Delete(ctx, TiersKey); err != nil {
		return fmt.Errorf("clear tiers: %w", err)
	}
	return nil
}

func (r *SnapshotRepository) load(ctx context.Context, key string, dst any) bool {
	raw, ok, err := r.kv.Get(ctx, key)
	if err != nil {
		r.logger.Error("failed to read saved state", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		r.logger.Error("malformed saved state, starting empty", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}
