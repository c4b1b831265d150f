// Package catalog holds the built-in exercise library and seeds it into a
// repository.ExerciseRepository.
package catalog

import (
	"alcyxob/getsfit/internal/domain"
	"alcyxob/getsfit/internal/repository"
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type areas = []domain.InjuryArea

const (
	smith      = "smith_machine"
	dumbbell   = "dumbbell"
	bodyweight = "bodyweight"
)

var warmUps = []domain.Exercise{
	{Name: "Arm circles", MuscleGroup: "shoulders", Instructions: "Arms out to the sides, small circles building to large ones. 30 seconds."},
	{Name: "Leg swings", MuscleGroup: "hips", Instructions: "Hold a wall and swing one leg forward and back. 30 seconds per leg.", InjuryAreasToSkip: areas{domain.AreaHip, domain.AreaKnee}},
	{Name: "Bodyweight squats", MuscleGroup: "legs", Instructions: "10 reps, chest up, knees pushed out.", RepsMin: 10, RepsMax: 10, InjuryAreasToSkip: areas{domain.AreaKnee, domain.AreaBack}},
	{Name: "Push-up to down dog", MuscleGroup: "full", Instructions: "5 reps. Push up, then drive the hips back into down dog.", RepsMin: 5, RepsMax: 5, InjuryAreasToSkip: areas{domain.AreaShoulder, domain.AreaWrist}},
	{Name: "Jumping jacks", MuscleGroup: "cardio", Instructions: "30 seconds to get the heart rate up.", InjuryAreasToSkip: areas{domain.AreaKnee}},
	{Name: "Light stretch", MuscleGroup: "full", Instructions: "One minute of easy chest, shoulder and leg stretching."},
}

// The main lifts per workout type, in session order.
var workouts = map[domain.WorkoutType][]domain.Exercise{
	domain.WorkoutA: {
		lift("Smith Machine Bench Press", "chest", smith, 0.30, 2.5, 3, 8, 12, 90, "Grip slightly wider than shoulders, lower to the chest and press.", domain.AreaShoulder, domain.AreaWrist),
		lift("Smith Machine Incline Bench Press", "chest", smith, 0.25, 2.5, 3, 8, 12, 90, "Bench at 30-45 degrees; bench press pattern for the upper chest.", domain.AreaShoulder, domain.AreaWrist),
		lift("Dumbbell Shoulder Press", "shoulders", dumbbell, 0.10, 1, 3, 8, 12, 90, "Press the dumbbells overhead from shoulder height.", domain.AreaShoulder),
		lift("Arnold Press", "shoulders", dumbbell, 0.08, 1, 3, 8, 12, 90, "Start palms facing you and rotate out while pressing.", domain.AreaShoulder),
		lift("Dumbbell Tricep Extension", "triceps", dumbbell, 0.06, 1, 3, 8, 12, 60, "Lower the dumbbell behind the head and extend.", domain.AreaElbow, domain.AreaWrist),
		lift("Lateral Raise", "shoulders", dumbbell, 0.04, 1, 3, 10, 12, 60, "Raise to shoulder height and control the way down.", domain.AreaShoulder),
	},
	domain.WorkoutB: {
		lift("Smith Machine Bent-Over Row", "back", smith, 0.25, 2.5, 3, 8, 12, 90, "Hinge at the hips and row the bar to the lower chest.", domain.AreaBack),
		lift("Chest-Supported Dumbbell Row", "back", dumbbell, 0.12, 1, 3, 8, 12, 90, "Chest on an incline bench, row the dumbbells to the hips."),
		lift("Dumbbell Bicep Curl", "biceps", dumbbell, 0.06, 1, 3, 8, 12, 60, "Elbows pinned, curl up and lower slowly.", domain.AreaElbow, domain.AreaWrist),
		lift("Smith Machine Shrug", "traps", smith, 0.25, 2.5, 3, 10, 12, 60, "Bar at arm's length, shrug up and back.", domain.AreaNeck),
		lift("Hammer Curl", "biceps", dumbbell, 0.06, 1, 3, 8, 12, 60, "Palms facing in, curl both arms.", domain.AreaElbow, domain.AreaWrist),
		lift("Band or Cable Face Pull", "rear_delts", dumbbell, 0.04, 1, 3, 12, 15, 60, "Pull to face height; a bent-over reverse fly works without a cable.", domain.AreaShoulder),
	},
	domain.WorkoutC: {
		lift("Smith Machine Squat", "legs", smith, 0.40, 2.5, 3, 8, 12, 90, "Bar on the upper back, squat to parallel with knees over toes.", domain.AreaKnee, domain.AreaBack),
		lift("Smith Machine Leg Press (or Hack Squat)", "legs", smith, 0.50, 2.5, 3, 8, 12, 90, "Feet on the platform, lower under control and press.", domain.AreaKnee, domain.AreaBack),
		lift("Dumbbell Walking Lunge", "legs", dumbbell, 0.07, 1, 3, 8, 10, 90, "Dumbbells at the sides, alternate lunging forward.", domain.AreaKnee, domain.AreaHip),
		lift("Dumbbell Step-Up", "legs", dumbbell, 0.07, 1, 3, 8, 10, 60, "Step onto a box and drive up, alternating legs.", domain.AreaKnee, domain.AreaHip),
		lift("Romanian Deadlift (Dumbbell)", "hamstrings", dumbbell, 0.12, 1, 3, 8, 12, 90, "Soft knees, hinge and slide the dumbbells down the legs.", domain.AreaBack),
		lift("Plank", "core", bodyweight, 0, 0, 2, 1, 1, 60, "Forearms down, hold 30-60 seconds with level hips.", domain.AreaBack),
	},
}

// Symmetric substitute pairs, by exercise name.
var substitutePairs = [][2]string{
	{"Dumbbell Shoulder Press", "Arnold Press"},
	{"Smith Machine Bent-Over Row", "Chest-Supported Dumbbell Row"},
	{"Dumbbell Walking Lunge", "Dumbbell Step-Up"},
}

func lift(name, muscle, equipment string, pct, inc float64, sets, repsMin, repsMax, rest int, instructions string, skip ...domain.InjuryArea) domain.Exercise {
	return domain.Exercise{
		Name:              name,
		MuscleGroup:       muscle,
		Equipment:         equipment,
		Instructions:      instructions,
		BaseWeightPercent: pct,
		WeightIncrement:   inc,
		Sets:              sets,
		RepsMin:           repsMin,
		RepsMax:           repsMax,
		RestSeconds:       rest,
		InjuryAreasToSkip: skip,
	}
}

// Exercises returns a fresh copy of the built-in catalog with positions filled in.
func Exercises() []domain.Exercise {
	var out []domain.Exercise
	for i, w := range warmUps {
		w.Equipment = bodyweight
		w.IsWarmUp = true
		w.WarmUpOrder = i
		w.OrderInWorkout = i
		w.Sets = 1
		if w.RepsMin == 0 {
			w.RepsMin, w.RepsMax = 1, 1
		}
		out = append(out, w)
	}
	for _, t := range []domain.WorkoutType{domain.WorkoutA, domain.WorkoutB, domain.WorkoutC} {
		for i, e := range workouts[t] {
			e.WorkoutType = t
			e.OrderInWorkout = i
			out = append(out, e)
		}
	}
	return out
}

// SeedResult reports what Seed did.
type SeedResult struct {
	Seeded bool  `json:"seeded"`
	Count  int64 `json:"count"`
}

// Seed inserts the built-in catalog when the repository is empty; otherwise
// it only reports the existing count.
func Seed(ctx context.Context, repo repository.ExerciseRepository) (SeedResult, error) {
	existing, err := repo.Count(ctx)
	if err != nil {
		return SeedResult{}, fmt.Errorf("count exercises: %w", err)
	}
	if existing > 0 {
		return SeedResult{Seeded: false, Count: existing}, nil
	}

	ids := map[string]primitive.ObjectID{}
	for _, e := range Exercises() {
		e := e
		id, err := repo.Create(ctx, &e)
		if err != nil {
			return SeedResult{}, fmt.Errorf("create exercise %q: %w", e.Name, err)
		}
		ids[e.Name] = id
	}

	for _, pair := range substitutePairs {
		a, okA := ids[pair[0]]
		b, okB := ids[pair[1]]
		if !okA || !okB {
			return SeedResult{}, fmt.Errorf("substitute pair %v references an unknown exercise", pair)
		}
		if err := LinkSubstitutes(ctx, repo, a, b); err != nil {
			return SeedResult{}, err
		}
	}

	return SeedResult{Seeded: true, Count: int64(len(ids))}, nil
}

// LinkSubstitutes records a and b as substitutes of each other. Both sides
// are always written so the pairing stays symmetric.
func LinkSubstitutes(ctx context.Context, repo repository.ExerciseRepository, a, b primitive.ObjectID) error {
	if a == b {
		return fmt.Errorf("exercise %s cannot substitute itself", a.Hex())
	}
	if err := repo.AddSubstitute(ctx, a, b); err != nil {
		return fmt.Errorf("link %s -> %s: %w", a.Hex(), b.Hex(), err)
	}
	if err := repo.AddSubstitute(ctx, b, a); err != nil {
		return fmt.Errorf("link %s -> %s: %w", b.Hex(), a.Hex(), err)
	}
	return nil
}
