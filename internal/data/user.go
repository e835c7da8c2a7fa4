package data

import (
	"log/slog"
	"time"
)

const userSchemaVersion = 1

// UserState is the persisted record of one user.
type UserState struct {
	SchemaVersion int    `json:"schema_version"`
	Admin         bool   `json:"admin"`
	Referral      string `json:"ref,omitempty"`
	CreatedAt     int64  `json:"created"`
	UpdatedAt     int64  `json:"updated"`
}

// UserStore owns the user state records.
type UserStore struct {
	store *jsonStore[UserState]
}

// NewUserStore creates a user state store rooted at dir.
func NewUserStore(dir string, logger *slog.Logger) (*UserStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "user_store")

	store, err := newJSONStore(dir, func() *UserState {
		now := time.Now().Unix()
		return &UserState{
			SchemaVersion: userSchemaVersion,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
	}, log)
	if err != nil {
		return nil, err
	}
	return &UserStore{store: store}, nil
}

// Get returns a snapshot of the user state, creating the record with
// schema defaults on first access.
func (s *UserStore) Get(userID int64) (UserState, error) {
	rec, err := s.store.with(userID, nil)
	if err != nil {
		return UserState{}, err
	}
	return *rec, nil
}

// SetAdmin grants or revokes the admin flag.
func (s *UserStore) SetAdmin(userID int64, admin bool) error {
	return s.update(userID, func(st *UserState) { st.Admin = admin })
}

// SetReferral records where the user came from, from the /start payload.
func (s *UserStore) SetReferral(userID int64, ref string) error {
	return s.update(userID, func(st *UserState) { st.Referral = ref })
}

func (s *UserStore) update(userID int64, fn func(st *UserState)) error {
	_, err := s.store.with(userID, func(rec *UserState) bool {
		fn(rec)
		rec.UpdatedAt = time.Now().Unix()
		return true
	})
	return err
}
