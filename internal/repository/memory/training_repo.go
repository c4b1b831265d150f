package memory

import (
	"alcyxob/getsfit/internal/domain"
	"alcyxob/getsfit/internal/repository"
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type preferenceRepo struct{ s *Store }

func (r *preferenceRepo) Get(_ context.Context, userID, exerciseID primitive.ObjectID) (*domain.ExercisePreference, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.preferences[prefKey{userID, exerciseID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *preferenceRepo) ListByUser(_ context.Context, userID primitive.ObjectID) ([]domain.ExercisePreference, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.ExercisePreference{}
	for k, p := range r.s.preferences {
		if k.user == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *preferenceRepo) Upsert(_ context.Context, pref *domain.ExercisePreference) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := prefKey{pref.UserID, pref.ExerciseID}
	now := r.s.now()
	if existing, ok := r.s.preferences[k]; ok {
		pref.ID = existing.ID
		pref.CreatedAt = existing.CreatedAt
	} else {
		pref.ID = primitive.NewObjectID()
		pref.CreatedAt = now
	}
	pref.UpdatedAt = now
	cp := *pref
	r.s.preferences[k] = &cp
	return nil
}

type injuryRepo struct{ s *Store }

func (r *injuryRepo) Create(_ context.Context, injury *domain.Injury) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	injury.ID = primitive.NewObjectID()
	cp := *injury
	r.s.injuries[injury.ID] = &cp
	return injury.ID, nil
}

func (r *injuryRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Injury, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	i, ok := r.s.injuries[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *i
	return &cp, nil
}

func (r *injuryRepo) ListActive(_ context.Context, userID primitive.ObjectID) ([]domain.Injury, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Injury{}
	for _, i := range r.s.injuries {
		if i.UserID == userID && i.Active() {
			out = append(out, *i)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].StartedAt.After(out[b].StartedAt) })
	return out, nil
}

func (r *injuryRepo) Resolve(_ context.Context, id primitive.ObjectID, resolvedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i, ok := r.s.injuries[id]
	if !ok {
		return repository.ErrNotFound
	}
	i.ResolvedAt = &resolvedAt
	return nil
}

type workoutRepo struct{ s *Store }

func (r *workoutRepo) Create(_ context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	workout.ID = primitive.NewObjectID()
	cp := *workout
	r.s.workouts = append(r.s.workouts, &cp)
	return workout.ID, nil
}

func (r *workoutRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, w := range r.s.workouts {
		if w.ID == id {
			cp := *w
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *workoutRepo) CountBetween(_ context.Context, userID primitive.ObjectID, from, to time.Time) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, w := range r.s.workouts {
		if w.UserID == userID && inRange(w.CompletedAt, from, to) {
			n++
		}
	}
	return n, nil
}

func (r *workoutRepo) CountAll(_ context.Context, userID primitive.ObjectID) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, w := range r.s.workouts {
		if w.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *workoutRepo) Latest(_ context.Context, userID primitive.ObjectID) (*domain.Workout, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var latest *domain.Workout
	for _, w := range r.s.workouts {
		if w.UserID == userID && (latest == nil || !w.CompletedAt.Before(latest.CompletedAt)) {
			latest = w
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (r *workoutRepo) ListSince(_ context.Context, userID primitive.ObjectID, since time.Time) ([]domain.Workout, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Workout{}
	for _, w := range r.s.workouts {
		if w.UserID == userID && !w.CompletedAt.Before(since) {
			out = append(out, *w)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CompletedAt.Before(out[j].CompletedAt) })
	return out, nil
}

func (r *workoutRepo) SetFitbitVerified(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, w := range r.s.workouts {
		if w.ID == id {
			w.FitbitVerified = true
			return nil
		}
	}
	return repository.ErrNotFound
}

type exerciseLogRepo struct{ s *Store }

func (r *exerciseLogRepo) CreateMany(_ context.Context, logs []domain.ExerciseLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range logs {
		logs[i].ID = primitive.NewObjectID()
		cp := logs[i]
		r.s.exerciseLogs = append(r.s.exerciseLogs, &cp)
	}
	return nil
}

func (r *exerciseLogRepo) ListBetween(_ context.Context, userID primitive.ObjectID, from, to time.Time) ([]domain.ExerciseLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.ExerciseLog{}
	for _, l := range r.s.exerciseLogs {
		if l.UserID == userID && inRange(l.PerformedAt, from, to) {
			out = append(out, *l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PerformedAt.Before(out[j].PerformedAt) })
	return out, nil
}

func (r *exerciseLogRepo) DistinctExercisesBefore(_ context.Context, userID primitive.ObjectID, t time.Time) ([]primitive.ObjectID, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	seen := map[primitive.ObjectID]struct{}{}
	out := []primitive.ObjectID{}
	for _, l := range r.s.exerciseLogs {
		if l.UserID != userID || !l.PerformedAt.Before(t) {
			continue
		}
		if _, ok := seen[l.ExerciseID]; !ok {
			seen[l.ExerciseID] = struct{}{}
			out = append(out, l.ExerciseID)
		}
	}
	return out, nil
}
