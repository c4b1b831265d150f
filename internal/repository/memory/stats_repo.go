package memory

import (
	"alcyxob/getsfit/internal/domain"
	"alcyxob/getsfit/internal/repository"
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type weeklyStatRepo struct{ s *Store }

// upsert must be called with the lock held.
func (r *weeklyStatRepo) upsert(userID primitive.ObjectID, weekStart time.Time) *domain.WeeklyStat {
	k := statKey{userID, weekStart.Unix()}
	st, ok := r.s.weeklyStats[k]
	if !ok {
		st = &domain.WeeklyStat{
			ID:               primitive.NewObjectID(),
			UserID:           userID,
			WeekStart:        weekStart,
			PunishmentActive: true,
		}
		r.s.weeklyStats[k] = st
	}
	return st
}

func (r *weeklyStatRepo) Get(_ context.Context, userID primitive.ObjectID, weekStart time.Time) (*domain.WeeklyStat, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.weeklyStats[statKey{userID, weekStart.Unix()}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *st
	return &cp, nil
}

func (r *weeklyStatRepo) RecordWorkouts(_ context.Context, userID primitive.ObjectID, weekStart time.Time, workouts int, punishment bool, xp int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st := r.upsert(userID, weekStart)
	st.WorkoutsCompleted = workouts
	st.PunishmentActive = punishment
	st.XPEarned += xp
	return nil
}

func (r *weeklyStatRepo) AddXP(_ context.Context, userID primitive.ObjectID, weekStart time.Time, xp int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.upsert(userID, weekStart).XPEarned += xp
	return nil
}

func (r *weeklyStatRepo) SetQuestsCompleted(_ context.Context, userID primitive.ObjectID, weekStart time.Time, quests int, xp int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st := r.upsert(userID, weekStart)
	st.QuestsCompleted = quests
	st.XPEarned += xp
	return nil
}

func (r *weeklyStatRepo) TotalXP(_ context.Context, userID primitive.ObjectID) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	total := 0
	for k, st := range r.s.weeklyStats {
		if k.user == userID {
			total += st.XPEarned
		}
	}
	return total, nil
}

type notificationRepo struct{ s *Store }

func (r *notificationRepo) Exists(_ context.Context, userID primitive.ObjectID, date string, kind domain.NotificationKind) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.notifications[notifKey{userID, date, kind}]
	return ok, nil
}

func (r *notificationRepo) MarkSent(_ context.Context, userID primitive.ObjectID, date string, kind domain.NotificationKind, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := notifKey{userID, date, kind}
	if _, ok := r.s.notifications[k]; ok {
		return nil
	}
	r.s.notifications[k] = &domain.SentNotification{
		ID:     primitive.NewObjectID(),
		UserID: userID,
		Date:   date,
		Kind:   kind,
		SentAt: at,
	}
	return nil
}

type bodyLogRepo struct{ s *Store }

func (r *bodyLogRepo) CreateWeight(_ context.Context, log *domain.WeightLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	log.ID = primitive.NewObjectID()
	cp := *log
	r.s.weightLogs = append(r.s.weightLogs, &cp)
	return nil
}

func (r *bodyLogRepo) CreateWaist(_ context.Context, log *domain.WaistLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	log.ID = primitive.NewObjectID()
	cp := *log
	r.s.waistLogs = append(r.s.waistLogs, &cp)
	return nil
}

func (r *bodyLogRepo) ListWeights(_ context.Context, userID primitive.ObjectID, since time.Time, limit int64) ([]domain.WeightLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	// Newest first with ties in reverse insertion order, so limit keeps the latest logs.
	out := []domain.WeightLog{}
	for i := len(r.s.weightLogs) - 1; i >= 0; i-- {
		l := r.s.weightLogs[i]
		if l.UserID == userID && !l.LoggedAt.Before(since) {
			out = append(out, *l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LoggedAt.After(out[j].LoggedAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (r *bodyLogRepo) ListWaists(_ context.Context, userID primitive.ObjectID, limit int64) ([]domain.WaistLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.WaistLog{}
	for i := len(r.s.waistLogs) - 1; i >= 0; i-- {
		if l := r.s.waistLogs[i]; l.UserID == userID {
			out = append(out, *l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LoggedAt.After(out[j].LoggedAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *bodyLogRepo) CountWeightsSince(_ context.Context, userID primitive.ObjectID, since time.Time) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, l := range r.s.weightLogs {
		if l.UserID == userID && !l.LoggedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *bodyLogRepo) CountWaistsSince(_ context.Context, userID primitive.ObjectID, since time.Time) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, l := range r.s.waistLogs {
		if l.UserID == userID && !l.LoggedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

type achievementRepo struct{ s *Store }

func (r *achievementRepo) ListByUser(_ context.Context, userID primitive.ObjectID) ([]domain.Achievement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Achievement{}
	for k, a := range r.s.achievements {
		if k.user == userID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UnlockedAt.Before(out[j].UnlockedAt) })
	return out, nil
}

func (r *achievementRepo) Create(_ context.Context, a *domain.Achievement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := achKey{a.UserID, a.Type}
	if _, ok := r.s.achievements[k]; ok {
		return repository.ErrDuplicate
	}
	a.ID = primitive.NewObjectID()
	cp := *a
	r.s.achievements[k] = &cp
	return nil
}

type fitbitDailyRepo struct{ s *Store }

func (r *fitbitDailyRepo) Upsert(_ context.Context, day *domain.FitbitDaily) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := dayKey{day.UserID, day.Date}
	existing, ok := r.s.fitbitDays[k]
	if !ok {
		existing = &domain.FitbitDaily{ID: primitive.NewObjectID(), UserID: day.UserID, Date: day.Date}
		r.s.fitbitDays[k] = existing
	}
	if day.Steps != nil {
		existing.Steps = day.Steps
	}
	if day.ActiveMinutes != nil {
		existing.ActiveMinutes = day.ActiveMinutes
	}
	if day.RestingHR != nil {
		existing.RestingHR = day.RestingHR
	}
	if day.SleepMinutes != nil {
		existing.SleepMinutes = day.SleepMinutes
	}
	if day.SleepEfficiency != nil {
		existing.SleepEfficiency = day.SleepEfficiency
	}
	if day.RecoveryRecommendation != nil {
		existing.RecoveryRecommendation = day.RecoveryRecommendation
	}
	existing.UpdatedAt = r.s.now()
	return nil
}

func (r *fitbitDailyRepo) Get(_ context.Context, userID primitive.ObjectID, date string) (*domain.FitbitDaily, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	d, ok := r.s.fitbitDays[dayKey{userID, date}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *fitbitDailyRepo) ListSince(_ context.Context, userID primitive.ObjectID, sinceDate string) ([]domain.FitbitDaily, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.FitbitDaily{}
	for k, d := range r.s.fitbitDays {
		if k.user == userID && k.date >= sinceDate {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}
