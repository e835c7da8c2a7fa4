package data

import (
	"log/slog"
	"time"
)

// MessageHistoryLimit caps the per-chat log of sent message references.
const MessageHistoryLimit = 16

const chatSchemaVersion = 1

// StoredMessage is a reference to a bot message sent to a chat, kept so
// pages can later be refreshed or retargeted in place.
type StoredMessage struct {
	ID        int               `json:"id"`
	Timestamp int64             `json:"timestamp"`
	PageName  string            `json:"page_name"`
	LangCode  string            `json:"lang_code"`
	Data      map[string]string `json:"data,omitempty"`
}

// ChatState is the persisted record of one chat. Zero values of optional
// fields are the schema defaults.
type ChatState struct {
	SchemaVersion int             `json:"schema_version"`
	LangCode      string          `json:"lang_code"`
	GroupID       *int            `json:"group_id"`
	ClassNotif15m bool            `json:"cl_notif_15m"`
	ClassNotif1m  bool            `json:"cl_notif_1m"`
	SeenSettings  bool            `json:"seen_settings"`
	Messages      []StoredMessage `json:"messages"`
	Accessible    bool            `json:"accessible"`
	CreatedAt     int64           `json:"created"`
	UpdatedAt     int64           `json:"updated"`
}

// ChatStore owns the chat state records. One ChatStore instance per
// process; inject it instead of reaching for globals.
type ChatStore struct {
	store *jsonStore[ChatState]
}

// NewChatStore creates a chat state store rooted at dir. defaultLang is
// the language new records start with.
func NewChatStore(dir, defaultLang string, logger *slog.Logger) (*ChatStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "chat_store")

	store, err := newJSONStore(dir, func() *ChatState {
		now := time.Now().Unix()
		return &ChatState{
			SchemaVersion: chatSchemaVersion,
			LangCode:      defaultLang,
			Accessible:    true,
			Messages:      []StoredMessage{},
			CreatedAt:     now,
			UpdatedAt:     now,
		}
	}, log)
	if err != nil {
		return nil, err
	}
	return &ChatStore{store: store}, nil
}

// Get returns a snapshot of the chat state, creating the record with
// schema defaults on first access.
func (s *ChatStore) Get(chatID int64) (ChatState, error) {
	rec, err := s.store.with(chatID, nil)
	if err != nil {
		return ChatState{}, err
	}
	return snapshotChat(rec), nil
}

// Update mutates the chat record through fn, stamps UpdatedAt and writes
// the whole record to disk before returning. Updates to the same chat id
// are serialized.
func (s *ChatStore) Update(chatID int64, fn func(st *ChatState)) (ChatState, error) {
	rec, err := s.store.with(chatID, func(rec *ChatState) bool {
		fn(rec)
		rec.UpdatedAt = time.Now().Unix()
		return true
	})
	if err != nil {
		return ChatState{}, err
	}
	return snapshotChat(rec), nil
}

// SetLangCode changes the chat language.
func (s *ChatStore) SetLangCode(chatID int64, lang string) error {
	_, err := s.Update(chatID, func(st *ChatState) { st.LangCode = lang })
	return err
}

// SetGroupID changes the group the chat follows. nil clears the selection.
func (s *ChatStore) SetGroupID(chatID int64, groupID *int) error {
	_, err := s.Update(chatID, func(st *ChatState) { st.GroupID = groupID })
	return err
}

// SetClassNotif switches a class notification toggle. offset is "15m" or
// "1m"; enabling one disables the other, matching the settings page
// behavior where the toggles are mutually exclusive.
func (s *ChatStore) SetClassNotif(chatID int64, offset string, enabled bool) error {
	_, err := s.Update(chatID, func(st *ChatState) {
		switch offset {
		case "15m":
			st.ClassNotif15m = enabled
			if enabled {
				st.ClassNotif1m = false
			}
		case "1m":
			st.ClassNotif1m = enabled
			if enabled {
				st.ClassNotif15m = false
			}
		}
	})
	return err
}

// SetSeenSettings records that the chat has opened the settings page.
func (s *ChatStore) SetSeenSettings(chatID int64, seen bool) error {
	_, err := s.Update(chatID, func(st *ChatState) { st.SeenSettings = seen })
	return err
}

// SetAccessible marks whether the bot can still message the chat.
// Records are never deleted, only flagged.
func (s *ChatStore) SetAccessible(chatID int64, accessible bool) error {
	_, err := s.Update(chatID, func(st *ChatState) { st.Accessible = accessible })
	return err
}

// AddMessage records a sent message in the bounded history log. An entry
// with the same message id is replaced in place, keeping its position;
// otherwise the entry is appended and, past the cap, the oldest entry at
// index 0 is evicted.
func (s *ChatStore) AddMessage(chatID int64, msg StoredMessage) error {
	_, err := s.Update(chatID, func(st *ChatState) {
		for i := range st.Messages {
			if st.Messages[i].ID == msg.ID {
				st.Messages[i] = msg
				return
			}
		}
		st.Messages = append(st.Messages, msg)
		if len(st.Messages) > MessageHistoryLimit {
			st.Messages = st.Messages[1:]
		}
	})
	return err
}

// Messages returns the history log oldest first, optionally filtered by
// page name. pageName == "" returns everything.
func (s *ChatStore) Messages(chatID int64, pageName string) ([]StoredMessage, error) {
	st, err := s.Get(chatID)
	if err != nil {
		return nil, err
	}

	out := make([]StoredMessage, 0, len(st.Messages))
	for _, m := range st.Messages {
		if pageName != "" && m.PageName != pageName {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// RemoveMessage deletes one entry from the history log by message id.
func (s *ChatStore) RemoveMessage(chatID int64, messageID int) error {
	_, err := s.Update(chatID, func(st *ChatState) {
		for i := range st.Messages {
			if st.Messages[i].ID == messageID {
				st.Messages = append(st.Messages[:i], st.Messages[i+1:]...)
				return
			}
		}
	})
	return err
}

// ChatIDs lists every chat with a persisted record. The notifier walks
// this to find chats with notifications enabled.
func (s *ChatStore) ChatIDs() ([]int64, error) {
	return s.store.ids()
}

func snapshotChat(rec *ChatState) ChatState {
	out := *rec
	out.Messages = make([]StoredMessage, len(rec.Messages))
	copy(out.Messages, rec.Messages)
	if rec.GroupID != nil {
		gid := *rec.GroupID
		out.GroupID = &gid
	}
	return out
}
