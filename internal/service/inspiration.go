package service

import (
	"hash/fnv"
	"time"
)

var morningMessages = []string{
	"Show up today and the scale takes care of itself.",
	"Thirty minutes. That is all today asks of you.",
	"You have done this before. Do it again.",
	"Consistency beats intensity every single week.",
	"Nobody regrets a finished workout.",
	"The plan is simple. Follow it.",
	"Future you is counting on the reps you do today.",
	"Motivation fades. Routine does not.",
	"One more good day in the bank.",
	"Strong is built on ordinary Tuesdays.",
	"Make today's version of you proud.",
	"The hardest rep is walking into the gym.",
	"Progress loves a boring, repeated effort.",
	"You are closer than you were last week.",
	"Keep the streak alive.",
	"Earn the rest day.",
	"Start small, finish strong.",
	"Your excuses will still be there tomorrow. Leave them.",
	"Do the work. Let the numbers move.",
	"Good habits are just decisions you keep making.",
}

var pumpUpMessages = []string{
	"Go get it. Every set counts.",
	"Warm up, lock in, finish strong.",
	"This is the hour that moves the needle.",
	"Phone down, weights up.",
	"You booked it. Now own it.",
	"Leave nothing on the bench.",
	"Quality reps, steady breathing, full focus.",
	"Half an hour from now you will be glad you went.",
	"Make the last set the best set.",
	"Time to earn today's XP.",
	"One session closer to the goal.",
	"Show the weights who is in charge.",
	"Your streak is waiting. Go feed it.",
	"Tired is fine. Skipping is not.",
	"Let's make this one count.",
}

// pickDaily returns a pool entry that changes every day and differs between pools.
func pickDaily(pool []string, day time.Time, category string) string {
	h := fnv.New32a()
	h.Write([]byte(day.Format("2006-01-02") + ":" + category))
	return pool[int(h.Sum32()%uint32(len(pool)))]
}

// MorningInspiration is the day's morning line; day should be local time.
func MorningInspiration(day time.Time) string {
	return pickDaily(morningMessages, day, "morning")
}

// PumpUpMessage is the day's pre-workout line; day should be local time.
func PumpUpMessage(day time.Time) string {
	return pickDaily(pumpUpMessages, day, "pumpup")
}
