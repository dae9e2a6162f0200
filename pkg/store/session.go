package store

import (
	"context"
	"errors"
	"fmt"

	"yaps/pkg/domain"
	"yaps/pkg/kv"
)

// State is where a client stands in the sign-in flow.
type State string

const (
	StateAnonymous     State = "anonymous"
	StatePending       State = "pending"
	StateAuthenticated State = "authenticated"
)

// Session is the auth state persisted under the user and tempUser keys.
type Session struct {
	store *Store
}

// NewSession returns the session backed by s.
func NewSession(s *Store) *Session {
	return &Session{store: s}
}

// Session returns the session backed by s.
func (s *Store) Session() *Session {
	return NewSession(s)
}

// Store returns the data layer behind the session.
func (s *Session) Store() *Store {
	return s.store
}

// IsLoggedIn reports whether a readable current user is stored.
func (s *Session) IsLoggedIn(ctx context.Context) bool {
	_, ok := s.CurrentUser(ctx)
	return ok
}

func (s *Session) CurrentUser(ctx context.Context) (domain.User, bool) {
	return record[domain.User](ctx, s.store, KeyCurrentUser)
}

// RequireUser is CurrentUser for operations that cannot run anonymously.
func (s *Session) RequireUser(ctx context.Context) (domain.User, error) {
	u, ok := s.CurrentUser(ctx)
	if !ok {
		return domain.User{}, ErrNotLoggedIn
	}
	return u, nil
}

// Login signs in the user whose email matches exactly. A miss changes nothing.
func (s *Session) Login(ctx context.Context, email string) (domain.User, bool, error) {
	for _, u := range s.store.Users(ctx) {
		if u.Email != email {
			continue
		}
		if err := writeRecord(ctx, s.store, KeyCurrentUser, u); err != nil {
			return domain.User{}, false, fmt.Errorf("login: %w", err)
		}
		s.store.log.Info("user logged in", "user_id", u.ID)
		return u, true, nil
	}
	return domain.User{}, false, nil
}

// StoreTempUser records u as pending registration, replacing any previous one.
func (s *Session) StoreTempUser(ctx context.Context, u domain.User) error {
	if err := writeRecord(ctx, s.store, KeyTempUser, u); err != nil {
		return fmt.Errorf("store temp user: %w", err)
	}
	return nil
}

func (s *Session) TempUser(ctx context.Context) (domain.User, bool) {
	return record[domain.User](ctx, s.store, KeyTempUser)
}

// Begin runs the sign-in step for email: known users are logged in, anyone
// else becomes a pending user awaiting college and course selection.
func (s *Session) Begin(ctx context.Context, email string) (domain.User, State, error) {
	email = domain.NormalizeEmail(email)
	u, ok, err := s.Login(ctx, email)
	if err != nil {
		return domain.User{}, StateAnonymous, err
	}
	if ok {
		return u, StateAuthenticated, nil
	}
	pending := domain.User{ID: s.store.newID("user"), Email: email}
	if err := s.StoreTempUser(ctx, pending); err != nil {
		return domain.User{}, StateAnonymous, err
	}
	s.store.log.Info("registration started", "user_id", pending.ID)
	return pending, StatePending, nil
}

// CompleteRegistration finishes the pending user's sign-up. The user is saved,
// made current, and the pending record cleared in one atomic update.
func (s *Session) CompleteRegistration(ctx context.Context, collegeID string, courseIDs []string) (domain.User, error) {
	var done domain.User
	keys := []string{KeyUsers, KeyCurrentUser, KeyTempUser}
	err := s.store.kv.Update(ctx, keys, func(txn kv.Txn) error {
		raw, ok, err := txn.Get(KeyTempUser)
		if err != nil {
			return fmt.Errorf("read %s: %w", KeyTempUser, err)
		}
		if !ok || raw == "" {
			return ErrNoPendingUser
		}
		var u domain.User
		if err := decodeRecord(raw, &u); err != nil {
			return fmt.Errorf("decode %s: %w", KeyTempUser, err)
		}
		u.CollegeID = collegeID
		u.Courses = append([]string(nil), courseIDs...)

		users, bad, err := txnList[domain.User](txn, KeyUsers)
		if err != nil {
			return err
		}
		if err := txnSetList(txn, KeyUsers, upsert(users, u, userID), bad); err != nil {
			return err
		}
		if err := txnSet(txn, KeyCurrentUser, u); err != nil {
			return err
		}
		txn.Remove(KeyTempUser)
		done = u
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNoPendingUser) {
			return domain.User{}, err
		}
		return domain.User{}, fmt.Errorf("complete registration: %w", err)
	}
	s.store.log.Info("registration completed", "user_id", done.ID, "college_id", done.CollegeID, "courses", len(done.Courses))
	return done, nil
}

// Logout forgets the current user. Pending registrations are kept.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.store.kv.Remove(ctx, KeyCurrentUser); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// State derives the sign-in state from the stored keys.
func (s *Session) State(ctx context.Context) State {
	if s.IsLoggedIn(ctx) {
		return StateAuthenticated
	}
	if _, ok := s.TempUser(ctx); ok {
		return StatePending
	}
	return StateAnonymous
}

type sessionKey struct{}

// WithSession attaches s to ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session attached by WithSession.
func SessionFrom(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil
}
