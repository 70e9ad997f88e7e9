package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"improvehub/internal/gateway"
	"improvehub/internal/model"
	"improvehub/pkg/rbac"
	"improvehub/pkg/util"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// ProfileFinder looks a profile up by exact credentials.
type ProfileFinder interface {
	FindProfile(ctx context.Context, username, password string) (*model.UserProfile, error)
}

type Service struct {
	profiles  ProfileFinder
	jwtSecret string
	ttl       time.Duration
}

func NewService(profiles ProfileFinder, jwtSecret string, ttl time.Duration) *Service {
	return &Service{
		profiles:  profiles,
		jwtSecret: jwtSecret,
		ttl:       ttl,
	}
}

// Login checks the credentials against the profiles table and returns a
// session token. The stored password is compared as is.
func (s *Service) Login(ctx context.Context, username, password string) (string, *model.UserProfile, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}

	p, err := s.profiles.FindProfile(ctx, username, password)
	if errors.Is(err, gateway.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("profile lookup: %w", err)
	}

	p.Role = rbac.NormalizeRole(p.Role)
	if p.ID == "" {
		p.ID = p.Username
	}
	if p.Username == "" {
		p.Username = username
	}

	token, err := util.GenerateJWT(p.ID, p.Username, p.Role, s.jwtSecret, s.ttl)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, p, nil
}
