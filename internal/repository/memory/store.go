// Package memory keeps every repository in process memory. It backs the
// "memory" database driver and serves as the store in service tests.
package memory

import (
	"alcyxob/getsfit/internal/domain"
	"alcyxob/getsfit/internal/repository"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store holds all collections behind one lock.
type Store struct {
	mu sync.RWMutex

	users         map[primitive.ObjectID]*domain.User
	exercises     map[primitive.ObjectID]*domain.Exercise
	preferences   map[prefKey]*domain.ExercisePreference
	injuries      map[primitive.ObjectID]*domain.Injury
	workouts      []*domain.Workout
	exerciseLogs  []*domain.ExerciseLog
	weeklyStats   map[statKey]*domain.WeeklyStat
	notifications map[notifKey]*domain.SentNotification
	weightLogs    []*domain.WeightLog
	waistLogs     []*domain.WaistLog
	achievements  map[achKey]*domain.Achievement
	fitbitDays    map[dayKey]*domain.FitbitDaily

	now func() time.Time
}

type prefKey struct{ user, exercise primitive.ObjectID }

type statKey struct {
	user primitive.ObjectID
	week int64
}

type notifKey struct {
	user primitive.ObjectID
	date string
	kind domain.NotificationKind
}

type achKey struct {
	user primitive.ObjectID
	kind domain.AchievementType
}

type dayKey struct {
	user primitive.ObjectID
	date string
}

func NewStore() *Store {
	return &Store{
		users:         make(map[primitive.ObjectID]*domain.User),
		exercises:     make(map[primitive.ObjectID]*domain.Exercise),
		preferences:   make(map[prefKey]*domain.ExercisePreference),
		injuries:      make(map[primitive.ObjectID]*domain.Injury),
		weeklyStats:   make(map[statKey]*domain.WeeklyStat),
		notifications: make(map[notifKey]*domain.SentNotification),
		achievements:  make(map[achKey]*domain.Achievement),
		fitbitDays:    make(map[dayKey]*domain.FitbitDaily),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Repositories exposes the store through the repository interfaces.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Users:         &userRepo{s},
		Exercises:     &exerciseRepo{s},
		Preferences:   &preferenceRepo{s},
		Injuries:      &injuryRepo{s},
		Workouts:      &workoutRepo{s},
		ExerciseLogs:  &exerciseLogRepo{s},
		WeeklyStats:   &weeklyStatRepo{s},
		Notifications: &notificationRepo{s},
		BodyLogs:      &bodyLogRepo{s},
		Achievements:  &achievementRepo{s},
		FitbitDays:    &fitbitDailyRepo{s},
	}
}

// NotificationCount reports how many dedup markers are stored.
func (s *Store) NotificationCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notifications)
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}
