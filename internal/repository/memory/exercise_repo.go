package memory

import (
	"alcyxob/getsfit/internal/domain"
	"alcyxob/getsfit/internal/repository"
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type exerciseRepo struct{ s *Store }

func copyExercise(e *domain.Exercise) domain.Exercise {
	cp := *e
	cp.SubstituteIDs = append([]primitive.ObjectID(nil), e.SubstituteIDs...)
	cp.InjuryAreasToSkip = append([]domain.InjuryArea(nil), e.InjuryAreasToSkip...)
	return cp
}

func (r *exerciseRepo) Create(_ context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	exercise.ID = primitive.NewObjectID()
	now := r.s.now()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now
	cp := copyExercise(exercise)
	r.s.exercises[exercise.ID] = &cp
	return exercise.ID, nil
}

func (r *exerciseRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := copyExercise(e)
	return &cp, nil
}

func (r *exerciseRepo) filter(keep func(e *domain.Exercise) bool, less func(a, b domain.Exercise) bool) []domain.Exercise {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Exercise{}
	for _, e := range r.s.exercises {
		if keep(e) {
			out = append(out, copyExercise(e))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func (r *exerciseRepo) ListByWorkoutType(_ context.Context, t domain.WorkoutType) ([]domain.Exercise, error) {
	return r.filter(
		func(e *domain.Exercise) bool { return !e.IsWarmUp && e.WorkoutType == t },
		func(a, b domain.Exercise) bool { return a.OrderInWorkout < b.OrderInWorkout },
	), nil
}

func (r *exerciseRepo) ListWarmUps(_ context.Context) ([]domain.Exercise, error) {
	return r.filter(
		func(e *domain.Exercise) bool { return e.IsWarmUp },
		func(a, b domain.Exercise) bool { return a.WarmUpOrder < b.WarmUpOrder },
	), nil
}

func (r *exerciseRepo) ListAll(_ context.Context) ([]domain.Exercise, error) {
	return r.filter(
		func(*domain.Exercise) bool { return true },
		func(a, b domain.Exercise) bool {
			if a.WorkoutType != b.WorkoutType {
				return a.WorkoutType < b.WorkoutType
			}
			if a.IsWarmUp {
				return a.WarmUpOrder < b.WarmUpOrder
			}
			return a.OrderInWorkout < b.OrderInWorkout
		},
	), nil
}

func (r *exerciseRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.exercises)), nil
}

func (r *exerciseRepo) AddSubstitute(_ context.Context, id, substituteID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.exercises[id]
	if !ok {
		return repository.ErrNotFound
	}
	if !e.HasSubstitute(substituteID) {
		e.SubstituteIDs = append(e.SubstituteIDs, substituteID)
		e.UpdatedAt = r.s.now()
	}
	return nil
}

func (r *exerciseRepo) SetVideoObjectKey(_ context.Context, id primitive.ObjectID, objectKey string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.exercises[id]
	if !ok {
		return repository.ErrNotFound
	}
	e.VideoObjectKey = objectKey
	e.UpdatedAt = r.s.now()
	return nil
}
