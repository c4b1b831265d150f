package service

import (
	"alcyxob/getsfit/internal/domain"
	"alcyxob/getsfit/internal/metrics"
	"alcyxob/getsfit/internal/repository"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	linkCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	linkCodeLength   = 6
)

const (
	botLinkedMessage = "Telegram linked! You can use /status, /done, /weight, /punishment."
	botStartMessage  = "To link: open the app → Settings → Link Telegram, then send /link YOUR_CODE here."
	botHelpMessage   = "Commands: /status, /done, /weight 81.5, /punishment, /skip"
	botSkipMessage   = "Intentional rest noted. Max 2 skip days per week to still hit your goal."
	botWeightUsage   = "Usage: /weight 81.5 (kg)"
	botUnknownCode   = "That link code is not valid. Generate a new one in Settings."
)

// BotService answers the messaging bot's commands.
type BotService interface {
	// GenerateLinkCode stores and returns a fresh code the user sends as /link CODE.
	GenerateLinkCode(ctx context.Context, userID primitive.ObjectID) (string, error)
	// HandleMessage processes one inbound chat message and sends the reply.
	HandleMessage(ctx context.Context, chatID int64, text string) error
}

type botService struct {
	users     repository.UserRepository
	stats     StatsService
	workouts  WorkoutService
	body      BodyService
	messenger Messenger
	schedule  Schedule
	metrics   *metrics.Manager
	now       Clock
}

func NewBotService(users repository.UserRepository, stats StatsService, workouts WorkoutService, body BodyService, messenger Messenger, schedule Schedule, m *metrics.Manager, now Clock) BotService {
	return &botService{
		users:     users,
		stats:     stats,
		workouts:  workouts,
		body:      body,
		messenger: messenger,
		schedule:  schedule,
		metrics:   m,
		now:       now,
	}
}

func randomLinkCode() (string, error) {
	var b strings.Builder
	limit := big.NewInt(int64(len(linkCodeAlphabet)))
	for i := 0; i < linkCodeLength; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b.WriteByte(linkCodeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

func (s *botService) GenerateLinkCode(ctx context.Context, userID primitive.ObjectID) (string, error) {
	code, err := randomLinkCode()
	if err != nil {
		return "", fmt.Errorf("generate link code: %w", err)
	}
	if err := s.users.SetTelegramLinkCode(ctx, userID, code); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("store link code: %w", err)
	}
	return code, nil
}

// splitCommand turns "/weight 81.5" into ("/weight", "81.5"). Bot mentions
// such as /status@my_bot are stripped.
func splitCommand(text string) (string, string) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(text), " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return strings.ToLower(cmd), strings.TrimSpace(arg)
}

func (s *botService) HandleMessage(ctx context.Context, chatID int64, text string) error {
	cmd, arg := splitCommand(text)
	if cmd == "" {
		return nil
	}
	if s.metrics != nil {
		s.metrics.CounterTelegramCommands.WithLabelValues(commandLabel(cmd)).Inc()
	}

	reply, err := s.reply(ctx, chatID, cmd, arg)
	if err != nil {
		return err
	}
	if reply == "" {
		return nil
	}
	return s.messenger.SendMessage(ctx, chatID, reply)
}

// commandLabel keeps metric cardinality bounded.
func commandLabel(cmd string) string {
	switch cmd {
	case "/link", "/start", "/status", "/punishment", "/weight", "/done", "/skip":
		return strings.TrimPrefix(cmd, "/")
	}
	return "other"
}

func (s *botService) reply(ctx context.Context, chatID int64, cmd, arg string) (string, error) {
	user, err := s.users.GetByTelegramChatID(ctx, chatID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("lookup chat: %w", err)
	}

	if user == nil {
		switch cmd {
		case "/link":
			return s.link(ctx, chatID, arg)
		case "/start":
			return botStartMessage, nil
		}
		// Unlinked chats get no answer to anything else.
		return "", nil
	}

	switch cmd {
	case "/status":
		return s.status(ctx, user)
	case "/punishment":
		return s.punishment(ctx, user)
	case "/weight":
		return s.weight(ctx, user, arg)
	case "/done":
		return s.done(ctx, user)
	case "/skip":
		return botSkipMessage, nil
	}
	return botHelpMessage, nil
}

func (s *botService) link(ctx context.Context, chatID int64, arg string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(arg))
	if code == "" {
		return botStartMessage, nil
	}
	user, err := s.users.LinkTelegramByCode(ctx, code, chatID)
	if errors.Is(err, repository.ErrNotFound) {
		return botUnknownCode, nil
	}
	if err != nil {
		return "", fmt.Errorf("link chat: %w", err)
	}
	log.WithFields(log.Fields{"userId": user.ID.Hex(), "chatId": chatID}).Info("telegram chat linked")
	return botLinkedMessage, nil
}

func (s *botService) status(ctx context.Context, user *domain.User) (string, error) {
	d, err := s.stats.Dashboard(ctx, user.ID)
	if err != nil {
		return "", err
	}
	weekStart := s.schedule.WeekStart(s.now())
	punishment := "✓ No punishment."
	if d.PunishmentActive {
		punishment = "⚠️ Punishment active this weekend."
	}
	return strings.Join([]string{
		fmt.Sprintf("<b>This week</b> (started %s)", weekStart.Format("Mon 2 Jan")),
		fmt.Sprintf("Workouts: %d/%d planned (min %d)", d.WorkoutsThisWeek, d.PlannedWorkoutsPerWeek, d.MinWorkoutsForGoal),
		punishment,
		fmt.Sprintf("Level %d · %d XP · %d week streak", d.Level, d.XP, d.Streak),
		fmt.Sprintf("Weight: %gkg → goal %gkg", d.CurrentWeight, d.TargetWeight),
	}, "\n"), nil
}

func (s *botService) punishment(ctx context.Context, user *domain.User) (string, error) {
	d, err := s.stats.Dashboard(ctx, user.ID)
	if err != nil {
		return "", err
	}
	if d.PunishmentActive {
		return fmt.Sprintf("⚠️ Yes. You did fewer than %d workouts this week, so the punishment is active for the weekend.", d.MinWorkoutsForGoal), nil
	}
	return fmt.Sprintf("✓ No punishment. You hit your %d workouts.", d.MinWorkoutsForGoal), nil
}

func (s *botService) weight(ctx context.Context, user *domain.User, arg string) (string, error) {
	kg, err := strconv.ParseFloat(strings.TrimSuffix(strings.ToLower(arg), "kg"), 64)
	if err != nil || !validWeight(kg) {
		return botWeightUsage, nil
	}
	if _, err := s.body.LogWeight(ctx, user.ID, kg); err != nil {
		return "", err
	}
	return fmt.Sprintf("Weight logged: %gkg", kg), nil
}

func (s *botService) done(ctx context.Context, user *domain.User) (string, error) {
	res, err := s.workouts.QuickComplete(ctx, user.ID, domain.SourceTelegram)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Workout %s logged! %d/%d this week (need %d for goal).",
		res.Workout.Type, res.WorkoutsThisWeek, s.schedule.PlannedWorkoutsPerWeek, s.schedule.MinWorkoutsPerWeek), nil
}
