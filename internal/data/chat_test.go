package data

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
)

func newTestChatStore(t *testing.T) *ChatStore {
	t.Helper()

	store, err := NewChatStore(t.TempDir(), "en", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewChatStore() error = %v", err)
	}
	return store
}

func TestChatStateDefaultsOnFirstRead(t *testing.T) {
	t.Parallel()

	store := newTestChatStore(t)

	st, err := store.Get(100)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if st.LangCode != "en" {
		t.Errorf("LangCode = %q, want %q", st.LangCode, "en")
	}
	if st.GroupID != nil {
		t.Errorf("GroupID = %v, want nil", st.GroupID)
	}
	if !st.Accessible {
		t.Error("new record must be accessible")
	}
	if st.CreatedAt == 0 || st.UpdatedAt == 0 {
		t.Error("timestamps not stamped on creation")
	}
}

func TestChatStatePersistsAcrossStores(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := NewChatStore(dir, "en", log)
	if err != nil {
		t.Fatalf("NewChatStore() error = %v", err)
	}

	gid := 12345
	if err := store.SetGroupID(7, &gid); err != nil {
		t.Fatalf("SetGroupID() error = %v", err)
	}
	if err := store.SetLangCode(7, "uk"); err != nil {
		t.Fatalf("SetLangCode() error = %v", err)
	}

	// A fresh store instance must see the same record from disk.
	reopened, err := NewChatStore(dir, "en", log)
	if err != nil {
		t.Fatalf("NewChatStore() error = %v", err)
	}
	st, err := reopened.Get(7)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if st.GroupID == nil || *st.GroupID != 12345 {
		t.Errorf("GroupID = %v, want 12345", st.GroupID)
	}
	if st.LangCode != "uk" {
		t.Errorf("LangCode = %q, want %q", st.LangCode, "uk")
	}
}

func TestUpdateStampsUpdatedAt(t *testing.T) {
	t.Parallel()

	store := newTestChatStore(t)

	before, err := store.Get(1)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	after, err := store.Update(1, func(st *ChatState) { st.SeenSettings = true })
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if after.UpdatedAt < before.UpdatedAt {
		t.Errorf("UpdatedAt went backwards: %d -> %d", before.UpdatedAt, after.UpdatedAt)
	}
	if !after.SeenSettings {
		t.Error("SeenSettings not set")
	}
}

func TestConcurrentWritesKeepBothFields(t *testing.T) {
	t.Parallel()

	store := newTestChatStore(t)

	// Writes to the same id are serialized by the per-id mutex, so both
	// must land regardless of ordering.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = store.SetLangCode(42, "uk")
	}()
	go func() {
		defer wg.Done()
		_ = store.SetSeenSettings(42, true)
	}()
	wg.Wait()

	st, err := store.Get(42)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if st.LangCode != "uk" || !st.SeenSettings {
		t.Errorf("lost a concurrent write: lang=%q seen=%v", st.LangCode, st.SeenSettings)
	}
}

func TestMessageHistoryCapAndEviction(t *testing.T) {
	t.Parallel()

	store := newTestChatStore(t)

	for i := 1; i <= MessageHistoryLimit; i++ {
		err := store.AddMessage(9, StoredMessage{ID: i, PageName: fmt.Sprintf("page%d", i)})
		if err != nil {
			t.Fatalf("AddMessage(%d) error = %v", i, err)
		}
	}

	msgs, err := store.Messages(9, "")
	if err != nil {
		t.Fatalf("Messages() error = %v", err)
	}
	if len(msgs) != MessageHistoryLimit {
		t.Fatalf("len = %d, want %d", len(msgs), MessageHistoryLimit)
	}

	// A 17th distinct id evicts the entry at position 0.
	if err := store.AddMessage(9, StoredMessage{ID: 17, PageName: "newest"}); err != nil {
		t.Fatalf("AddMessage() error = %v", err)
	}
	msgs, _ = store.Messages(9, "")
	if len(msgs) != MessageHistoryLimit {
		t.Fatalf("len after eviction = %d, want %d", len(msgs), MessageHistoryLimit)
	}
	if msgs[0].ID != 2 {
		t.Errorf("oldest id = %d, want 2", msgs[0].ID)
	}
	if msgs[len(msgs)-1].ID != 17 {
		t.Errorf("newest id = %d, want 17", msgs[len(msgs)-1].ID)
	}
}

func TestMessageHistoryUpdateInPlace(t *testing.T) {
	t.Parallel()

	store := newTestChatStore(t)

	for i := 1; i <= 3; i++ {
		if err := store.AddMessage(9, StoredMessage{ID: i, PageName: "menu"}); err != nil {
			t.Fatalf("AddMessage() error = %v", err)
		}
	}

	// Re-adding id 2 replaces it in place without growing the log.
	if err := store.AddMessage(9, StoredMessage{ID: 2, PageName: "settings"}); err != nil {
		t.Fatalf("AddMessage() error = %v", err)
	}

	msgs, _ := store.Messages(9, "")
	if len(msgs) != 3 {
		t.Fatalf("len = %d, want 3", len(msgs))
	}
	if msgs[1].ID != 2 || msgs[1].PageName != "settings" {
		t.Errorf("entry not updated in place: %+v", msgs[1])
	}
}

func TestMessagesFilterByPageName(t *testing.T) {
	t.Parallel()

	store := newTestChatStore(t)

	_ = store.AddMessage(3, StoredMessage{ID: 1, PageName: "menu"})
	_ = store.AddMessage(3, StoredMessage{ID: 2, PageName: "schedule"})
	_ = store.AddMessage(3, StoredMessage{ID: 3, PageName: "menu"})

	msgs, err := store.Messages(3, "menu")
	if err != nil {
		t.Fatalf("Messages() error = %v", err)
	}
	if len(msgs) != 2 || msgs[0].ID != 1 || msgs[1].ID != 3 {
		t.Errorf("filtered messages = %+v", msgs)
	}
}

func TestRemoveMessage(t *testing.T) {
	t.Parallel()

	store := newTestChatStore(t)

	_ = store.AddMessage(4, StoredMessage{ID: 1})
	_ = store.AddMessage(4, StoredMessage{ID: 2})

	if err := store.RemoveMessage(4, 1); err != nil {
		t.Fatalf("RemoveMessage() error = %v", err)
	}
	msgs, _ := store.Messages(4, "")
	if len(msgs) != 1 || msgs[0].ID != 2 {
		t.Errorf("messages after removal = %+v", msgs)
	}
}
