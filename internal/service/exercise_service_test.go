package service

import (
	"alcyxob/getsfit/internal/storage"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeStorage struct {
	objects map[string]bool
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string]bool{}}
}

func (f *fakeStorage) GeneratePresignedUploadURL(_ context.Context, key, contentType string, _ time.Duration) (string, error) {
	return "https://bucket.test/" + key + "?upload&ct=" + contentType, nil
}

func (f *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://bucket.test/" + key + "?download", nil
}

func (f *fakeStorage) ObjectExists(_ context.Context, key string) error {
	if !f.objects[key] {
		return storage.ErrObjectNotFound
	}
	return nil
}

func (f *fakeStorage) DeleteObject(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.objects, key)
	return nil
}

func TestExercise_VideoUploadFlow(t *testing.T) {
	h := newHarness(t)
	files := newFakeStorage()
	svc := NewExerciseService(h.repos.Exercises, files)
	squat := h.exercise("Smith Machine Squat")

	up, err := svc.RequestVideoUpload(h.ctx, squat.ID, "video/mp4")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(up.ObjectKey, "exercises/"+squat.ID.Hex()+"/"))
	assert.True(t, strings.HasSuffix(up.ObjectKey, ".mp4"))
	assert.Contains(t, up.UploadURL, up.ObjectKey)

	_, err = svc.ConfirmVideoUpload(h.ctx, squat.ID, up.ObjectKey)
	assert.ErrorIs(t, err, ErrUploadNotFound)

	files.objects[up.ObjectKey] = true
	e, err := svc.ConfirmVideoUpload(h.ctx, squat.ID, up.ObjectKey)
	require.NoError(t, err)
	assert.Equal(t, up.ObjectKey, e.VideoObjectKey)

	u, err := svc.VideoURL(h.ctx, squat.ID)
	require.NoError(t, err)
	assert.Contains(t, u, up.ObjectKey)

	// Replacing the video deletes the old object.
	next, err := svc.RequestVideoUpload(h.ctx, squat.ID, "video/webm")
	require.NoError(t, err)
	files.objects[next.ObjectKey] = true
	_, err = svc.ConfirmVideoUpload(h.ctx, squat.ID, next.ObjectKey)
	require.NoError(t, err)
	assert.Equal(t, []string{up.ObjectKey}, files.deleted)
}

func TestExercise_VideoUploadValidation(t *testing.T) {
	h := newHarness(t)
	svc := NewExerciseService(h.repos.Exercises, newFakeStorage())
	squat := h.exercise("Smith Machine Squat")

	_, err := svc.RequestVideoUpload(h.ctx, squat.ID, "image/png")
	assert.ErrorIs(t, err, ErrValidationFailed)
	_, err = svc.RequestVideoUpload(h.ctx, primitive.NewObjectID(), "video/mp4")
	assert.ErrorIs(t, err, ErrExerciseNotFound)
	_, err = svc.ConfirmVideoUpload(h.ctx, squat.ID, "exercises/"+primitive.NewObjectID().Hex()+"/x.mp4")
	assert.ErrorIs(t, err, ErrInvalidObjectKey)
	_, err = svc.VideoURL(h.ctx, squat.ID)
	assert.ErrorIs(t, err, ErrNoVideo)
}

func TestExercise_WithoutStorage(t *testing.T) {
	h := newHarness(t)
	squat := h.exercise("Smith Machine Squat")
	_, err := h.exercises.RequestVideoUpload(h.ctx, squat.ID, "video/mp4")
	assert.ErrorIs(t, err, ErrStorageNotConfigured)
	_, err = h.exercises.VideoURL(h.ctx, squat.ID)
	assert.ErrorIs(t, err, ErrStorageNotConfigured)
}

func TestExercise_SeedIsIdempotent(t *testing.T) {
	h := newHarness(t)
	before, err := h.exercises.List(h.ctx)
	require.NoError(t, err)

	res, err := h.exercises.Seed(h.ctx)
	require.NoError(t, err)
	assert.False(t, res.Seeded)

	after, err := h.exercises.List(h.ctx)
	require.NoError(t, err)
	assert.Len(t, after, len(before))
}

func TestExercise_LinkSubstitutes(t *testing.T) {
	h := newHarness(t)
	a := h.exercise("Smith Machine Squat")
	b := h.exercise("Plank")

	require.NoError(t, h.exercises.LinkSubstitutes(h.ctx, a.ID, b.ID))
	got, err := h.exercises.Get(h.ctx, a.ID)
	require.NoError(t, err)
	assert.Contains(t, got.SubstituteIDs, b.ID)

	assert.ErrorIs(t, h.exercises.LinkSubstitutes(h.ctx, a.ID, a.ID), ErrValidationFailed)
	assert.ErrorIs(t, h.exercises.LinkSubstitutes(h.ctx, a.ID, primitive.NewObjectID()), ErrExerciseNotFound)
}
