package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"TierlistBackend/internal/board"
	"TierlistBackend/internal/drag"
	"TierlistBackend/internal/model"
	"TierlistBackend/internal/repository"
	"TierlistBackend/internal/upload"
)

var ErrNotDragging = errors.New("no drag in progress")

// TierView is a tier together with its ordered images.
type TierView struct {
	model.Tier
	Images []model.Image `json:"images"`
}

// BoardView is what the frontend renders.
type BoardView struct {
	Tiers    []TierView    `json:"tiers"`
	Unranked []model.Image `json:"unranked"`
	Dragging *string       `json:"dragging"`
}

type TierlistService interface {
	Board() BoardView
	ListTiers() []model.Tier
	RenameTier(ctx context.Context, id model.TierID, name string) error
	RecolorTier(ctx context.Context, id model.TierID, color string) error
	UpdateTier(ctx context.Context, id model.TierID, name, color *string) error
	UploadImages(ctx context.Context, blobs []upload.Blob) ([]model.Image, error)
	MoveWithinTier(ctx context.Context, tier model.TierID, from, to int) error
	ReassignTier(ctx context.Context, imageID string, target model.TierID, index int) error
	Reset(ctx context.Context) error
	DragStart(imageID string) bool
	DragOver(ctx context.Context, target model.DragTarget) (bool, error)
	DragEnd(ctx context.Context, target *model.DragTarget) (bool, error)
}

type tierlistServiceImpl struct {
	mu        sync.Mutex
	board     board.Board
	drag      *drag.Coordinator
	repo      *repository.SnapshotRepository
	decoder   *upload.Decoder
	resetMode board.ResetMode
	logger    *zap.Logger
}

// NewTierlistService restores the saved images and tier labels on top of the
// configured tier set.
func NewTierlistService(ctx context.Context, tiers []model.Tier, repo *repository.SnapshotRepository, decoder *upload.Decoder, resetMode board.ResetMode, logger *zap.Logger) (TierlistService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	b, err := board.New(tiers, repo.LoadImages(ctx))
	if err != nil {
		return nil, fmt.Errorf("build board: %w", err)
	}
	if saved := repo.LoadTiers(ctx); saved != nil {
		b = b.WithTierLabels(saved)
	}
	logger.Info("tierlist restored", zap.Int("tiers", len(tiers)), zap.Int("images", b.Len()))

	return &tierlistServiceImpl{
		board:     b,
		drag:      drag.NewCoordinator(),
		repo:      repo,
		decoder:   decoder,
		resetMode: resetMode,
		logger:    logger,
	}, nil
}

func (s *tierlistServiceImpl) Board() BoardView {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := BoardView{Unranked: nonNil(s.board.ImagesIn(model.Unranked))}
	for _, t := range s.board.ListTiers() {
		view.Tiers = append(view.Tiers, TierView{Tier: t, Images: nonNil(s.board.ImagesIn(t.ID))})
	}
	if id, ok := s.drag.Dragged(); ok {
		view.Dragging = &id
	}
	return view
}

func (s *tierlistServiceImpl) ListTiers() []model.Tier {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.ListTiers()
}

func (s *tierlistServiceImpl) RenameTier(ctx context.Context, id model.TierID, name string) error {
	return s.UpdateTier(ctx, id, &name, nil)
}

func (s *tierlistServiceImpl) RecolorTier(ctx context.Context, id model.TierID, color string) error {
	return s.UpdateTier(ctx, id, nil, &color)
}

// UpdateTier applies a rename and/or recolour as one command: if either
// field is rejected, neither is applied.
func (s *tierlistServiceImpl) UpdateTier(ctx context.Context, id model.TierID, name, color *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	nb := s.board
	if name != nil {
		var err error
		if nb, err = nb.RenameTier(id, *name); err != nil {
			return err
		}
	}
	if color != nil {
		var err error
		if nb, err = nb.RecolorTier(id, *color); err != nil {
			return err
		}
	}
	s.board = nb
	return s.repo.SaveTiers(ctx, nb.ListTiers())
}

// UploadImages decodes the batch outside the lock and then appends it to the
// pool. A failed batch leaves the board unchanged.
func (s *tierlistServiceImpl) UploadImages(ctx context.Context, blobs []upload.Blob) ([]model.Image, error) {
	images, err := s.decoder.Ingest(ctx, blobs)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	nb, err := s.board.AddImages(images)
	if err != nil {
		s.logger.Error("upload batch rejected", zap.Error(err))
		return nil, err
	}
	if err := s.commit(ctx, nb); err != nil {
		return nil, err
	}
	s.logger.Info("images uploaded", zap.Int("count", len(images)))
	return images, nil
}

func (s *tierlistServiceImpl) MoveWithinTier(ctx context.Context, tier model.TierID, from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	nb, err := s.board.MoveWithinTier(tier, from, to)
	if err != nil {
		return err
	}
	return s.commit(ctx, nb)
}

func (s *tierlistServiceImpl) ReassignTier(ctx context.Context, imageID string, target model.TierID, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	nb, err := s.board.ReassignTier(imageID, target, index)
	if err != nil {
		return err
	}
	return s.commit(ctx, nb)
}

func (s *tierlistServiceImpl) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	nb := s.board.Reset(s.resetMode)
	s.drag.End(nb, nil)
	if s.resetMode == board.ResetClear {
		// an empty board with default labels is what loading nothing yields
		s.board = nb
		if err := s.repo.Clear(ctx); err != nil {
			s.logger.Error("failed to clear saved state", zap.Error(err))
			return err
		}
	} else {
		if err := s.commit(ctx, nb); err != nil {
			return err
		}
		if err := s.repo.SaveTiers(ctx, nb.ListTiers()); err != nil {
			return err
		}
	}
	s.logger.Info("tierlist reset", zap.Int("images", nb.Len()))
	return nil
}

func (s *tierlistServiceImpl) DragStart(imageID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok := s.drag.Start(s.board, imageID)
	s.logger.Debug("drag start",
		zap.String("image", imageID),
		zap.Bool("accepted", ok),
		zap.Stringer("state", s.drag.State()),
	)
	return ok
}

func (s *tierlistServiceImpl) DragOver(ctx context.Context, target model.DragTarget) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state := s.drag.State(); state != drag.Dragging {
		s.logger.Debug("drag over ignored", zap.Stringer("target", target), zap.Stringer("state", state))
		return false, ErrNotDragging
	}
	nb, changed := s.drag.Over(s.board, target)
	s.logger.Debug("drag over", zap.Stringer("target", target), zap.Bool("changed", changed))
	if !changed {
		return false, nil
	}
	return true, s.commit(ctx, nb)
}

func (s *tierlistServiceImpl) DragEnd(ctx context.Context, target *model.DragTarget) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nb, changed := s.drag.End(s.board, target)
	if !changed {
		return false, nil
	}
	return true, s.commit(ctx, nb)
}

// commit installs nb and writes the image snapshot. The in-memory board is
// kept even when the write fails.
func (s *tierlistServiceImpl) commit(ctx context.Context, nb board.Board) error {
	s.board = nb
	if err := s.repo.SaveImages(ctx, nb.Images()); err != nil {
		s.logger.Error("failed to persist images", zap.Error(err))
		return err
	}
	return nil
}

func nonNil(imgs []model.Image) []model.Image {
	if imgs == nil {
		return []model.Image{}
	}
	return imgs
}
