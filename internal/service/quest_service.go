package service

import (
	"alcyxob/getsfit/internal/domain"
	"alcyxob/getsfit/internal/repository"
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type QuestID string

const (
	QuestTryNewExercise QuestID = "try_new_exercise"
	QuestBeatLastWeek   QuestID = "beat_last_week"
	QuestLogWeightTwice QuestID = "log_weight_2x"
	QuestThreeWorkouts  QuestID = "complete_3_workouts"
	QuestNoSkips        QuestID = "no_skips"
	QuestLogWaist       QuestID = "log_waist"
)

const questsPerWeek = 3

type questDef struct {
	ID          QuestID
	Title       string
	Description string
}

var questDefs = []questDef{
	{QuestTryNewExercise, "Try a new exercise", "Complete an exercise you have never logged before"},
	{QuestBeatLastWeek, "Beat last week's weight", "Lift more on any exercise than you did last week"},
	{QuestLogWeightTwice, "Log weight twice", "Weigh in at least twice this week"},
	{QuestThreeWorkouts, "Hit the minimum", "Complete at least 3 workouts this week"},
	{QuestNoSkips, "Full commitment", "Do every warm-up exercise this week"},
	{QuestLogWaist, "Measure up", "Log a waist measurement this week"},
}

// Quest is one of the week's quests with its completion state.
type Quest struct {
	ID          QuestID `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Completed   bool    `json:"completed"`
	XP          int     `json:"xp"`
}

type QuestService interface {
	// Weekly returns the current week's quests.
	Weekly(ctx context.Context, userID primitive.ObjectID) ([]Quest, error)
	// AwardXP credits quests completed since the last award and returns the XP added.
	AwardXP(ctx context.Context, userID primitive.ObjectID) (int, error)
}

type questService struct {
	repos    repository.Repositories
	schedule Schedule
	now      Clock
}

func NewQuestService(repos repository.Repositories, schedule Schedule, now Clock) QuestService {
	return &questService{repos: repos, schedule: schedule, now: now}
}

// WeeklyQuestIDs picks the week's quests. The choice only depends on the week
// start so every user and every call sees the same three.
func WeeklyQuestIDs(weekStart time.Time) []QuestID {
	seed := strconv.FormatInt(weekStart.Unix(), 10)
	type ranked struct {
		id   QuestID
		rank uint32
	}
	all := make([]ranked, len(questDefs))
	for i, q := range questDefs {
		h := fnv.New32a()
		h.Write([]byte(string(q.ID) + seed))
		all[i] = ranked{q.ID, h.Sum32()}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].rank < all[j].rank })

	out := make([]QuestID, questsPerWeek)
	for i := range out {
		out[i] = all[i].id
	}
	return out
}

func findQuest(id QuestID) questDef {
	for _, q := range questDefs {
		if q.ID == id {
			return q
		}
	}
	return questDef{ID: id, Title: string(id)}
}

func (s *questService) Weekly(ctx context.Context, userID primitive.ObjectID) ([]Quest, error) {
	weekStart, weekEnd := s.schedule.WeekBounds(s.now())
	out := make([]Quest, 0, questsPerWeek)
	for _, id := range WeeklyQuestIDs(weekStart) {
		done, err := s.completed(ctx, userID, id, weekStart, weekEnd)
		if err != nil {
			return nil, fmt.Errorf("quest %s: %w", id, err)
		}
		def := findQuest(id)
		out = append(out, Quest{ID: id, Title: def.Title, Description: def.Description, Completed: done, XP: domain.XPQuest})
	}
	return out, nil
}

func (s *questService) completed(ctx context.Context, userID primitive.ObjectID, id QuestID, weekStart, weekEnd time.Time) (bool, error) {
	switch id {
	case QuestTryNewExercise:
		logs, err := s.repos.ExerciseLogs.ListBetween(ctx, userID, weekStart, weekEnd)
		if err != nil || len(logs) == 0 {
			return false, err
		}
		before, err := s.repos.ExerciseLogs.DistinctExercisesBefore(ctx, userID, weekStart)
		if err != nil {
			return false, err
		}
		seen := make(map[primitive.ObjectID]bool, len(before))
		for _, id := range before {
			seen[id] = true
		}
		for _, l := range logs {
			if !seen[l.ExerciseID] {
				return true, nil
			}
		}
		return false, nil

	case QuestBeatLastWeek:
		last, err := s.repos.ExerciseLogs.ListBetween(ctx, userID, weekStart.AddDate(0, 0, -7), weekStart)
		if err != nil || len(last) == 0 {
			return false, err
		}
		best := make(map[primitive.ObjectID]float64)
		for _, l := range last {
			if w, ok := best[l.ExerciseID]; !ok || l.Weight > w {
				best[l.ExerciseID] = l.Weight
			}
		}
		this, err := s.repos.ExerciseLogs.ListBetween(ctx, userID, weekStart, weekEnd)
		if err != nil {
			return false, err
		}
		for _, l := range this {
			if w, ok := best[l.ExerciseID]; ok && l.Weight > w {
				return true, nil
			}
		}
		return false, nil

	case QuestLogWeightTwice:
		n, err := s.repos.BodyLogs.CountWeightsSince(ctx, userID, weekStart)
		return n >= 2, err

	case QuestThreeWorkouts:
		n, err := s.repos.Workouts.CountBetween(ctx, userID, weekStart, weekEnd)
		return n >= 3, err

	case QuestLogWaist:
		n, err := s.repos.BodyLogs.CountWaistsSince(ctx, userID, weekStart)
		return n >= 1, err
	}
	// no_skips is tracked by the client only.
	return false, nil
}

func (s *questService) AwardXP(ctx context.Context, userID primitive.ObjectID) (int, error) {
	quests, err := s.Weekly(ctx, userID)
	if err != nil {
		return 0, err
	}
	done := 0
	for _, q := range quests {
		if q.Completed {
			done++
		}
	}

	weekStart := s.schedule.WeekStart(s.now())
	awarded := 0
	stat, err := s.repos.WeeklyStats.Get(ctx, userID, weekStart)
	switch {
	case err == nil:
		awarded = stat.QuestsCompleted
	case !errors.Is(err, repository.ErrNotFound):
		return 0, err
	}
	if done <= awarded {
		return 0, nil
	}

	xp := (done - awarded) * domain.XPQuest
	if err := s.repos.WeeklyStats.SetQuestsCompleted(ctx, userID, weekStart, done, xp); err != nil {
		return 0, fmt.Errorf("store quest progress: %w", err)
	}
	return xp, nil
}
