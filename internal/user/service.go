package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/Tianea2160/discipline/internal/logger"
)

// Profile is what an OAuth provider asserted about the caller at login time.
type Profile struct {
	Email      string
	Name       string
	Picture    string
	Provider   string
	ProviderID string
}

func (p Profile) validate() error {
	if p.Email == "" || p.Provider == "" || p.ProviderID == "" {
		return errors.New("profile requires email, provider, and provider id")
	}
	return nil
}

// Service owns the identity-to-row linkage: it decides which persisted user an
// OAuth profile belongs to, creating or refreshing rows as needed.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// FindOrCreate matches a profile to a user row. Matching is ordered:
// provider+subject first, then email+provider (the subject id is kept as-is
// in that case since the provider may have reissued it), then a fresh row.
func (s *Service) FindOrCreate(ctx context.Context, p Profile) (*User, bool, error) {
	if err := p.validate(); err != nil {
		return nil, false, err
	}

	existing, err := s.store.FindByProviderSubject(ctx, p.Provider, p.ProviderID)
	if err != nil {
		return nil, false, fmt.Errorf("lookup by provider subject: %w", err)
	}
	if existing != nil {
		updated, err := s.refresh(ctx, existing, p, true)
		return updated, false, err
	}

	existing, err = s.store.FindByEmailAndProvider(ctx, p.Email, p.Provider)
	if err != nil {
		return nil, false, fmt.Errorf("lookup by email and provider: %w", err)
	}
	if existing != nil {
		logger.Warn("same email and provider but different subject id", map[string]any{
			"existing": existing.ProviderID,
			"incoming": p.ProviderID,
		})
		updated, err := s.refresh(ctx, existing, p, false)
		return updated, false, err
	}

	created, err := s.store.Create(ctx, User{
		Email:      p.Email,
		Name:       p.Name,
		Picture:    p.Picture,
		Role:       RoleUser,
		Provider:   p.Provider,
		ProviderID: p.ProviderID,
	})
	if err != nil {
		return nil, false, fmt.Errorf("create user: %w", err)
	}

	logger.Info("new user created", map[string]any{
		"user_id":  created.ID,
		"provider": created.Provider,
	})
	return created, true, nil
}

// refresh updates the mutable profile fields when the provider reports new
// values. The subject id is only updated when allowSubject is set.
func (s *Service) refresh(ctx context.Context, existing *User, p Profile, allowSubject bool) (*User, error) {
	next := *existing
	next.Email = p.Email
	next.Name = p.Name
	next.Picture = p.Picture
	if allowSubject {
		next.ProviderID = p.ProviderID
	}

	if next.Email == existing.Email &&
		next.Name == existing.Name &&
		next.Picture == existing.Picture &&
		next.ProviderID == existing.ProviderID {
		return existing, nil
	}

	updated, err := s.store.Update(ctx, next)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return updated, nil
}
