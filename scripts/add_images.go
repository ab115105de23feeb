package scripts

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"TierlistBackend/internal/service"
	"TierlistBackend/internal/upload"
)

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".svg":  true,
}

func boardIsEmpty(v service.BoardView) bool {
	if len(v.Unranked) > 0 {
		return false
	}
	for _, t := range v.Tiers {
		if len(t.Images) > 0 {
			return false
		}
	}
	return true
}

// ImportImagesFromFolder seeds the unranked pool with the image files found
// directly in baseFolder, in name order. Nothing is imported when the board
// already holds images, so restarts do not duplicate the seed set. The
// whole folder is uploaded as one batch and fails as one.
func ImportImagesFromFolder(ctx context.Context, s service.TierlistService, baseFolder string, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !boardIsEmpty(s.Board()) {
		logger.Info("board already has images, skipping folder import", zap.String("dir", baseFolder))
		return 0, nil
	}

	entries, err := os.ReadDir(baseFolder)
	if err != nil {
		return 0, fmt.Errorf("read import folder: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var blobs []upload.Blob
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !imageExts[ext] {
			logger.Debug("skipping non-image file", zap.String("file", entry.Name()))
			continue
		}

		data, err := os.ReadFile(filepath.Join(baseFolder, entry.Name()))
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		blobs = append(blobs, upload.Blob{
			Name:        entry.Name(),
			ContentType: mime.TypeByExtension(ext),
			Data:        data,
		})
	}

	if len(blobs) == 0 {
		logger.Info("no images to import", zap.String("dir", baseFolder))
		return 0, nil
	}

	images, err := s.UploadImages(ctx, blobs)
	if err != nil {
		return 0, fmt.Errorf("import %s: %w", baseFolder, err)
	}
	logger.Info("imported images", zap.String("dir", baseFolder), zap.Int("count", len(images)))
	return len(images), nil
}
