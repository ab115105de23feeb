package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"TierlistBackend/internal/board"
	"TierlistBackend/internal/model"
	"TierlistBackend/internal/service"
	"TierlistBackend/internal/upload"
)

// maxFormMemory is how much of a multipart upload is held in memory before
// spilling to temp files.
const maxFormMemory = 32 << 20

type RenameTierRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

type MoveRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type ReassignRequest struct {
	Tier  model.TierID `json:"tier"`
	Index int          `json:"index"`
}

type DragStartRequest struct {
	ImageID string `json:"image_id"`
}

// DragTargetRequest is the wire form of a drag target. Tier targets with a
// null or empty id address the unranked pool.
type DragTargetRequest struct {
	Kind string  `json:"kind"`
	ID   *string `json:"id"`
}

type DragEndRequest struct {
	Target *DragTargetRequest `json:"target"`
}

type DragResponse struct {
	Changed bool              `json:"changed"`
	Board   service.BoardView `json:"board"`
}

type UploadResponse struct {
	Images []model.Image `json:"images"`
}

func GetBoard(s service.TierlistService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, logger, http.StatusOK, s.Board())
	}
}

func ListTiers(s service.TierlistService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, logger, http.StatusOK, s.ListTiers())
	}
}

func UpdateTier(s service.TierlistService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := model.TierID(mux.Vars(r)["id"])

		var req RenameTierRequest
		if !decodeJSON(w, r, logger, &req) {
			return
		}
		if req.Name == nil && req.Color == nil {
			http.Error(w, "name or color is required", http.StatusBadRequest)
			return
		}
		if err := s.UpdateTier(r.Context(), id, req.Name, req.Color); err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, s.ListTiers())
	}
}

func MoveWithinTier(s service.TierlistService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// no id var on the pool route
		tier := model.TierID(mux.Vars(r)["id"])

		var req MoveRequest
		if !decodeJSON(w, r, logger, &req) {
			return
		}
		if err := s.MoveWithinTier(r.Context(), tier, req.From, req.To); err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, s.Board())
	}
}

func ReassignTier(s service.TierlistService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		imageID := mux.Vars(r)["id"]

		var req ReassignRequest
		if !decodeJSON(w, r, logger, &req) {
			return
		}
		if err := s.ReassignTier(r.Context(), imageID, req.Tier, req.Index); err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, s.Board())
	}
}

// UploadImages accepts a multipart form with one or more "files" parts.
// Bodies larger than maxRequestBytes are refused before being spooled.
func UploadImages(s service.TierlistService, maxRequestBytes int64, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				logger.Warn("upload request too large", zap.Int64("limit", tooLarge.Limit))
				http.Error(w, "Upload too large", http.StatusRequestEntityTooLarge)
				return
			}
			logger.Warn("invalid upload form", zap.Error(err))
			http.Error(w, "Invalid multipart form", http.StatusBadRequest)
			return
		}
		defer func() {
			_ = r.MultipartForm.RemoveAll()
		}()

		files := r.MultipartForm.File["files"]
		if len(files) == 0 {
			http.Error(w, "No files in upload", http.StatusBadRequest)
			return
		}

		blobs := make([]upload.Blob, 0, len(files))
		for _, fh := range files {
			f, err := fh.Open()
			if err != nil {
				logger.Error("failed to open uploaded file", zap.String("file", fh.Filename), zap.Error(err))
				http.Error(w, "Failed to read upload", http.StatusBadRequest)
				return
			}
			data, err := io.ReadAll(f)
			_ = f.Close()
			if err != nil {
				logger.Error("failed to read uploaded file", zap.String("file", fh.Filename), zap.Error(err))
				http.Error(w, "Failed to read upload", http.StatusBadRequest)
				return
			}
			blobs = append(blobs, upload.Blob{
				Name:        fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Data:        data,
			})
		}

		images, err := s.UploadImages(r.Context(), blobs)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusCreated, UploadResponse{Images: images})
	}
}

func Reset(s service.TierlistService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Reset(r.Context()); err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, s.Board())
	}
}

func DragStart(s service.TierlistService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DragStartRequest
		if !decodeJSON(w, r, logger, &req) {
			return
		}
		started := s.DragStart(req.ImageID)
		writeJSON(w, logger, http.StatusOK, DragResponse{Changed: started, Board: s.Board()})
	}
}

func DragOver(s service.TierlistService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DragTargetRequest
		if !decodeJSON(w, r, logger, &req) {
			return
		}
		target, err := req.toTarget()
		if err != nil {
			writeError(w, logger, err)
			return
		}
		changed, err := s.DragOver(r.Context(), target)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, DragResponse{Changed: changed, Board: s.Board()})
	}
}

func DragEnd(s service.TierlistService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DragEndRequest
		if !decodeJSON(w, r, logger, &req) {
			return
		}
		var target *model.DragTarget
		if req.Target != nil {
			t, err := req.Target.toTarget()
			if err != nil {
				writeError(w, logger, err)
				return
			}
			target = &t
		}
		changed, err := s.DragEnd(r.Context(), target)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, DragResponse{Changed: changed, Board: s.Board()})
	}
}

func (d DragTargetRequest) toTarget() (model.DragTarget, error) {
	var id string
	if d.ID != nil {
		id = *d.ID
	}
	return model.ParseDragTarget(d.Kind, id)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, logger *zap.Logger, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		logger.Warn("invalid request body", zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, board.ErrUnknownTier), errors.Is(err, board.ErrUnknownImage):
		status = http.StatusNotFound
	case errors.Is(err, board.ErrIndexOutOfRange),
		errors.Is(err, board.ErrEmptyTierName),
		errors.Is(err, board.ErrInvalidColor),
		errors.Is(err, board.ErrReservedTier),
		errors.Is(err, board.ErrDuplicateImage),
		errors.Is(err, model.ErrInvalidDragTarget),
		errors.Is(err, upload.ErrEmptyBlob),
		errors.Is(err, upload.ErrNotImage):
		status = http.StatusBadRequest
	case errors.Is(err, upload.ErrTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, service.ErrNotDragging):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
		http.Error(w, "Internal Server Error", status)
		return
	}
	logger.Debug("request rejected", zap.Int("status", status), zap.Error(err))
	http.Error(w, err.Error(), status)
}
