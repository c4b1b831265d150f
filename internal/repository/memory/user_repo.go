package memory

import (
	"alcyxob/getsfit/internal/domain"
	"alcyxob/getsfit/internal/repository"
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	now := r.s.now()
	user.CreatedAt = now
	user.UpdatedAt = now
	cp := *user
	r.s.users[user.ID] = &cp
	return user.ID, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *userRepo) List(_ context.Context) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *userRepo) update(id primitive.ObjectID, fn func(u *domain.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(u)
	u.UpdatedAt = r.s.now()
	return nil
}

func (r *userRepo) SetCurrentWeight(_ context.Context, id primitive.ObjectID, weightKg float64) error {
	return r.update(id, func(u *domain.User) { u.CurrentWeight = &weightKg })
}

func (r *userRepo) UpdateGoals(_ context.Context, id primitive.ObjectID, startingWeight, targetWeight *float64) error {
	return r.update(id, func(u *domain.User) {
		if startingWeight != nil {
			u.StartingWeight = startingWeight
			now := r.s.now()
			u.GoalStartedAt = &now
		}
		if targetWeight != nil {
			u.TargetWeight = targetWeight
		}
	})
}

func (r *userRepo) SetTelegramLinkCode(_ context.Context, id primitive.ObjectID, code string) error {
	return r.update(id, func(u *domain.User) { u.TelegramLinkCode = code })
}

func (r *userRepo) LinkTelegramByCode(_ context.Context, code string, chatID int64) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if code != "" && u.TelegramLinkCode == code {
			u.TelegramChatID = &chatID
			u.TelegramLinkCode = ""
			u.UpdatedAt = r.s.now()
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) GetByTelegramChatID(_ context.Context, chatID int64) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.TelegramChatID != nil && *u.TelegramChatID == chatID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) SetFitbitTokens(_ context.Context, id primitive.ObjectID, accessToken, refreshToken string, expiresAt time.Time) error {
	return r.update(id, func(u *domain.User) {
		u.FitbitAccessToken = accessToken
		u.FitbitRefreshToken = refreshToken
		u.FitbitTokenExpiresAt = &expiresAt
	})
}
