package service

import (
	"alcyxob/getsfit/internal/catalog"
	"alcyxob/getsfit/internal/domain"
	"alcyxob/getsfit/internal/repository"
	"alcyxob/getsfit/internal/storage"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNoVideo          = errors.New("exercise has no video")
	ErrUploadURLError   = errors.New("failed to generate upload URL")
	ErrUploadNotFound   = errors.New("no uploaded video under that key")
	ErrInvalidObjectKey = errors.New("object key does not belong to this exercise")
)

// UploadURLResponse is returned when an admin starts a video upload.
type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"` // reported back on confirm
}

// ExerciseService manages the exercise catalog.
type ExerciseService interface {
	List(ctx context.Context) ([]domain.Exercise, error)
	Get(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	// Seed loads the built-in catalog into an empty collection.
	Seed(ctx context.Context) (catalog.SeedResult, error)
	LinkSubstitutes(ctx context.Context, a, b primitive.ObjectID) error
	RequestVideoUpload(ctx context.Context, exerciseID primitive.ObjectID, contentType string) (*UploadURLResponse, error)
	// ConfirmVideoUpload attaches an uploaded video to the exercise.
	ConfirmVideoUpload(ctx context.Context, exerciseID primitive.ObjectID, objectKey string) (*domain.Exercise, error)
	// VideoURL returns a short-lived streaming URL for the exercise's demo video.
	VideoURL(ctx context.Context, exerciseID primitive.ObjectID) (string, error)
}

type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
	fileStorage  storage.FileStorage
}

// NewExerciseService accepts a nil storage; video operations then fail with ErrStorageNotConfigured.
func NewExerciseService(exerciseRepo repository.ExerciseRepository, fileStorage storage.FileStorage) ExerciseService {
	return &exerciseService{exerciseRepo: exerciseRepo, fileStorage: fileStorage}
}

func (s *exerciseService) List(ctx context.Context) ([]domain.Exercise, error) {
	return s.exerciseRepo.ListAll(ctx)
}

func (s *exerciseService) Get(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	e, err := s.exerciseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return e, nil
}

func (s *exerciseService) Seed(ctx context.Context) (catalog.SeedResult, error) {
	res, err := catalog.Seed(ctx, s.exerciseRepo)
	if err != nil {
		return res, err
	}
	log.WithFields(log.Fields{"seeded": res.Seeded, "count": res.Count}).Info("exercise catalog seed")
	return res, nil
}

func (s *exerciseService) LinkSubstitutes(ctx context.Context, a, b primitive.ObjectID) error {
	if a == b {
		return fmt.Errorf("%w: an exercise cannot substitute itself", ErrValidationFailed)
	}
	for _, id := range []primitive.ObjectID{a, b} {
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
	}
	return catalog.LinkSubstitutes(ctx, s.exerciseRepo, a, b)
}

func videoKeyPrefix(exerciseID primitive.ObjectID) string {
	return path.Join("exercises", exerciseID.Hex()) + "/"
}

func (s *exerciseService) RequestVideoUpload(ctx context.Context, exerciseID primitive.ObjectID, contentType string) (*UploadURLResponse, error) {
	if s.fileStorage == nil {
		return nil, ErrStorageNotConfigured
	}
	// 1. Only video content is accepted
	kind, ext, ok := strings.Cut(contentType, "/")
	if !ok || kind != "video" || ext == "" {
		return nil, fmt.Errorf("%w: content type must be video/*", ErrValidationFailed)
	}

	// 2. The exercise must exist
	if _, err := s.Get(ctx, exerciseID); err != nil {
		return nil, err
	}

	// 3. Unique key under the exercise prefix
	objectKey := videoKeyPrefix(exerciseID) + uuid.NewString() + "." + ext

	// 4. Presign
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrUploadURLError
	}
	return &UploadURLResponse{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

func (s *exerciseService) ConfirmVideoUpload(ctx context.Context, exerciseID primitive.ObjectID, objectKey string) (*domain.Exercise, error) {
	if s.fileStorage == nil {
		return nil, ErrStorageNotConfigured
	}
	if !strings.HasPrefix(objectKey, videoKeyPrefix(exerciseID)) {
		return nil, ErrInvalidObjectKey
	}
	existing, err := s.Get(ctx, exerciseID)
	if err != nil {
		return nil, err
	}

	if err := s.fileStorage.ObjectExists(ctx, objectKey); err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrUploadNotFound
		}
		return nil, fmt.Errorf("check uploaded video: %w", err)
	}
	if err := s.exerciseRepo.SetVideoObjectKey(ctx, exerciseID, objectKey); err != nil {
		return nil, fmt.Errorf("store video key: %w", err)
	}

	// The replaced video is no longer referenced.
	if existing.VideoObjectKey != "" && existing.VideoObjectKey != objectKey {
		if err := s.fileStorage.DeleteObject(ctx, existing.VideoObjectKey); err != nil {
			log.WithError(err).WithField("key", existing.VideoObjectKey).Warn("failed to delete replaced video")
		}
	}
	return s.Get(ctx, exerciseID)
}

func (s *exerciseService) VideoURL(ctx context.Context, exerciseID primitive.ObjectID) (string, error) {
	if s.fileStorage == nil {
		return "", ErrStorageNotConfigured
	}
	e, err := s.Get(ctx, exerciseID)
	if err != nil {
		return "", err
	}
	if e.VideoObjectKey == "" {
		return "", ErrNoVideo
	}
	u, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, e.VideoObjectKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", fmt.Errorf("presign video download: %w", err)
	}
	return u, nil
}
