package tasksync

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/TWRT/taskboard/internal/client"
	"github.com/TWRT/taskboard/internal/models"
	"github.com/TWRT/taskboard/internal/taskstore"
)

type AuthRemote interface {
	Me(ctx context.Context) (models.User, error)
	Register(ctx context.Context, in models.RegisterInput) (models.User, error)
	Login(ctx context.Context, in models.LoginInput) (models.User, error)
	Logout(ctx context.Context) error
}

type Remote interface {
	TaskRemote
	AuthRemote
}

// Session ties a Store's lifetime to the signed-in user: tasks are fetched
// once a user is present and discarded on logout.
type Session struct {
	auth   AuthRemote
	syncer *Syncer
	logger *zap.Logger

	mu   sync.RWMutex
	user *models.User
}

func NewSession(remote Remote, logger *zap.Logger) *Session {
	return &Session{
		auth:   remote,
		syncer: NewSyncer(remote, taskstore.NewStore(), logger),
		logger: logger,
	}
}

func (s *Session) Syncer() *Syncer {
	return s.syncer
}

func (s *Session) Store() *taskstore.Store {
	return s.syncer.store
}

// User returns the signed-in user, if any.
func (s *Session) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

func (s *Session) setUser(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
}

// Start checks for an existing session. With a user present it loads their
// tasks; otherwise the store is emptied. Only transport or server problems
// are returned: an absent session is not an error.
func (s *Session) Start(ctx context.Context) error {
	user, err := s.auth.Me(ctx)
	if err != nil {
		s.setUser(nil)
		s.syncer.store.Dispatch(taskstore.ReplaceAll{})
		if client.IsKind(err, client.KindUnauthenticated) {
			return nil
		}
		return failure(err, "Failed to check session")
	}

	s.setUser(&user)
	return s.syncer.FetchAll(ctx)
}

func (s *Session) Login(ctx context.Context, email, password string) (models.User, error) {
	user, err := s.auth.Login(ctx, models.LoginInput{Email: email, Password: password})
	if err != nil {
		return models.User{}, failure(err, "Login failed")
	}
	return s.signedIn(ctx, user)
}

func (s *Session) Register(ctx context.Context, in models.RegisterInput) (models.User, error) {
	user, err := s.auth.Register(ctx, in)
	if err != nil {
		return models.User{}, failure(err, "Registration failed")
	}
	return s.signedIn(ctx, user)
}

func (s *Session) signedIn(ctx context.Context, user models.User) (models.User, error) {
	s.setUser(&user)
	s.logger.Debug("signed in", zap.String("user", user.Id))
	if err := s.syncer.FetchAll(ctx); err != nil {
		return user, err
	}
	return user, nil
}

// Logout ends the server session and tears down local state. If the server
// call fails the session is left intact.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.auth.Logout(ctx); err != nil {
		return failure(err, "Logout failed")
	}

	s.setUser(nil)
	s.syncer.store.Reset()
	s.syncer.store.Dispatch(taskstore.ReplaceAll{})
	return nil
}

var _ Remote = (*client.Client)(nil)
