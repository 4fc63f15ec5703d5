package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spigell/card-advisor/internal/logger"
	"github.com/spigell/card-advisor/internal/profile"
	"go.uber.org/zap"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

var (
	ErrNotFound  = errors.New("session not found")
	ErrCompleted = errors.New("session is completed")
)

// Session is one advisory conversation with a user.
type Session struct {
	ID        string               `json:"id"`
	UserID    string               `json:"user_id"`
	Status    Status               `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
	Turns     []profile.Turn       `json:"turns,omitempty"`
	Profile   *profile.UserProfile `json:"profile,omitempty"`
}

func (s *Session) clone() *Session {
	cp := *s
	cp.Turns = append([]profile.Turn(nil), s.Turns...)
	cp.Profile = s.Profile.Clone()
	return &cp
}

// Store keeps sessions with their turns and derived profile.
type Store interface {
	Create(ctx context.Context, userID string) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	AppendTurn(ctx context.Context, id string, turn profile.Turn) error
	Turns(ctx context.Context, id string) ([]profile.Turn, error)
	SaveProfile(ctx context.Context, id string, p *profile.UserProfile) error
	Profile(ctx context.Context, id string) (*profile.UserProfile, error)
	Complete(ctx context.Context, id string) error
}

// backend persists whole session records. load returns ErrNotFound for
// unknown ids.
type backend interface {
	load(ctx context.Context, id string) (*Session, error)
	save(ctx context.Context, s *Session) error
}

type store struct {
	backend backend
	logger  *zap.Logger
	now     func() time.Time

	// serializes read-modify-write cycles within the process
	mu sync.Mutex
}

func newStore(b backend, log *zap.Logger) *store {
	if log == nil {
		log = zap.NewNop()
	}
	return &store{
		backend: b,
		logger:  log,
		now:     time.Now,
	}
}

func (s *store) Create(ctx context.Context, userID string) (*Session, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.New("user id is required")
	}

	now := s.now()
	sess := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.backend.save(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	logger.WithSession(s.logger, sess.ID, "").Debug("session created", zap.String("user_id", userID))
	return sess.clone(), nil
}

func (s *store) Get(ctx context.Context, id string) (*Session, error) {
	sess, err := s.backend.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *store) AppendTurn(ctx context.Context, id string, turn profile.Turn) error {
	if turn.Role != profile.RoleUser && turn.Role != profile.RoleAssistant {
		return fmt.Errorf("unknown turn role %q", turn.Role)
	}

	return s.update(ctx, id, func(sess *Session) error {
		if sess.Status == StatusCompleted {
			return ErrCompleted
		}
		sess.Turns = append(sess.Turns, turn)
		return nil
	})
}

func (s *store) Turns(ctx context.Context, id string) ([]profile.Turn, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return sess.Turns, nil
}

func (s *store) SaveProfile(ctx context.Context, id string, p *profile.UserProfile) error {
	if p == nil {
		return errors.New("profile is required")
	}

	return s.update(ctx, id, func(sess *Session) error {
		sess.Profile = p.Clone()
		return nil
	})
}

// Profile returns nil without an error when no profile was saved yet.
func (s *store) Profile(ctx context.Context, id string) (*profile.UserProfile, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return sess.Profile, nil
}

// Complete is idempotent.
func (s *store) Complete(ctx context.Context, id string) error {
	return s.update(ctx, id, func(sess *Session) error {
		sess.Status = StatusCompleted
		return nil
	})
}

func (s *store) update(ctx context.Context, id string, fn func(*Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.backend.load(ctx, id)
	if err != nil {
		return err
	}

	if err := fn(sess); err != nil {
		return err
	}

	sess.UpdatedAt = s.now()
	if err := s.backend.save(ctx, sess); err != nil {
		return fmt.Errorf("save session %s: %w", id, err)
	}

	return nil
}
