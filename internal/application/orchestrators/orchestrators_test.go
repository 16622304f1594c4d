package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"lessons/internal/adapters/email"
	"lessons/internal/adapters/storage/kv"
	"lessons/internal/application/viewstate"
	"lessons/internal/domain/contact"
	"lessons/internal/domain/counter"
	"lessons/internal/domain/theme"
)

// mockContactStore implements contactStore.Store for testing.
type mockContactStore struct {
	saved   map[string]contact.Submission
	saveErr error
}

func newMockContactStore() *mockContactStore {
	return &mockContactStore{saved: make(map[string]contact.Submission)}
}

func (m *mockContactStore) Save(_ context.Context, s contact.Submission) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved[s.ID] = s
	return nil
}

func (m *mockContactStore) GetByID(_ context.Context, id string) (contact.Submission, error) {
	s, ok := m.saved[id]
	if !ok {
		return contact.Submission{}, errors.New("not found")
	}
	return s, nil
}

func (m *mockContactStore) ListRecent(_ context.Context, _ int) ([]contact.Submission, error) {
	out := make([]contact.Submission, 0, len(m.saved))
	for _, s := range m.saved {
		out = append(out, s)
	}
	return out, nil
}

// mockSender implements email.Sender for testing.
type mockSender struct {
	sent []email.SendRequest
	err  error
}

func (m *mockSender) Send(_ context.Context, req email.SendRequest) (email.SendResult, error) {
	if m.err != nil {
		return email.SendResult{}, m.err
	}
	m.sent = append(m.sent, req)
	return email.SendResult{MessageID: "msg-1"}, nil
}

var contactTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func contactDeps(store *mockContactStore, sender email.Sender, inbox string) SubmitContactDeps {
	return SubmitContactDeps{
		ContactStore: store,
		Sender:       sender,
		Inbox:        inbox,
		GenerateID:   func() string { return "sub-001" },
		Now:          func() time.Time { return contactTime },
	}
}

// --- counter actions ---

// TestParseCounterAction tests route action validation.
func TestParseCounterAction(t *testing.T) {
	tests := []struct {
		in      string
		want    CounterAction
		wantErr bool
	}{
		{"increment", ActionIncrement, false},
		{"reset", ActionReset, false},
		{"decrement", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseCounterAction(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCounterAction(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if tt.wantErr && !errors.Is(err, ErrUnknownAction) {
			t.Errorf("ParseCounterAction(%q) err = %v, want ErrUnknownAction", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseCounterAction(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestExecuteCounterAction_ResetAtZeroUnchanged tests that a forged reset at zero is a no-op.
func TestExecuteCounterAction_ResetAtZeroUnchanged(t *testing.T) {
	deps := CounterActionDeps{Tree: viewstate.NewTree(kv.NewMemoryStore(), nil)}
	ctx := context.Background()

	res, err := ExecuteCounterAction(ctx, CounterActionInput{Action: ActionReset}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Changed || res.State.Value != 0 {
		t.Errorf("reset at zero = %+v, want unchanged at 0", res)
	}

	res, _ = ExecuteCounterAction(ctx, CounterActionInput{Action: ActionIncrement}, deps)
	if !res.State.CanReset {
		t.Error("expected reset to be available after one increment")
	}
}

// TestExecutePersistentCounterAction_Syncs tests the 7 -> 8 round trip through the store.
func TestExecutePersistentCounterAction_Syncs(t *testing.T) {
	store := kv.NewMemoryStore()
	ctx := context.Background()
	if err := store.Set(ctx, counter.PersistKey, "7"); err != nil {
		t.Fatal(err)
	}
	deps := CounterActionDeps{Tree: viewstate.NewTree(store, nil)}

	res, err := ExecutePersistentCounterAction(ctx, CounterActionInput{Action: ActionIncrement}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State.Value != 8 {
		t.Errorf("Value = %d, want 8", res.State.Value)
	}
	if got, _, _ := store.Get(ctx, counter.PersistKey); got != "8" {
		t.Errorf("stored = %q, want 8", got)
	}
}

// TestExecuteCounterAction_TornDownTree tests triggers after the visitor expired.
func TestExecuteCounterAction_TornDownTree(t *testing.T) {
	tree := viewstate.NewTree(kv.NewMemoryStore(), nil)
	tree.Teardown()
	_, err := ExecuteCounterAction(context.Background(), CounterActionInput{Action: ActionIncrement}, CounterActionDeps{Tree: tree})
	if !errors.Is(err, viewstate.ErrTornDown) {
		t.Errorf("err = %v, want ErrTornDown", err)
	}
}

// TestExecuteEffectDemoAction tests show, click and hide through the orchestrator.
func TestExecuteEffectDemoAction(t *testing.T) {
	deps := CounterActionDeps{Tree: viewstate.NewTree(kv.NewMemoryStore(), nil)}
	ctx := context.Background()

	s, err := ExecuteEffectDemoAction(ctx, EffectDemoInput{Action: DemoToggle}, deps)
	if err != nil || !s.Visible {
		t.Fatalf("toggle = (%+v, %v), want visible", s, err)
	}
	s, _ = ExecuteEffectDemoAction(ctx, EffectDemoInput{Action: DemoClick}, deps)
	if s.Clicks != 1 {
		t.Errorf("Clicks = %d, want 1", s.Clicks)
	}
	s, _ = ExecuteEffectDemoAction(ctx, EffectDemoInput{Action: DemoToggle}, deps)
	if s.Visible {
		t.Error("expected hidden after second toggle")
	}
	if _, err := ParseDemoAction("explode"); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("ParseDemoAction err = %v, want ErrUnknownAction", err)
	}
}

// --- theme ---

// TestExecuteToggleTheme tests toggling once flips and twice restores.
func TestExecuteToggleTheme(t *testing.T) {
	ctx := viewstate.WithThemeProvider(context.Background(), viewstate.NewThemeProvider())

	got, err := ExecuteToggleTheme(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != theme.Dark {
		t.Errorf("first toggle = %q, want dark", got)
	}
	if got, _ = ExecuteToggleTheme(ctx); got != theme.Light {
		t.Errorf("second toggle = %q, want light", got)
	}
}

// TestExecuteToggleTheme_NoProvider tests the misuse fault surfaces as an error.
func TestExecuteToggleTheme_NoProvider(t *testing.T) {
	_, err := ExecuteToggleTheme(context.Background())
	if !errors.Is(err, viewstate.ErrNoThemeProvider) {
		t.Errorf("err = %v, want ErrNoThemeProvider", err)
	}
}

// --- contact ---

// TestExecuteSubmitContact_PersistsAndNotifies tests the happy path.
func TestExecuteSubmitContact_PersistsAndNotifies(t *testing.T) {
	store := newMockContactStore()
	sender := &mockSender{}

	res, err := ExecuteSubmitContact(context.Background(), SubmitContactInput{
		Name:    "  Ada ",
		Email:   "ada@example.com",
		Message: "<b>hi</b>",
	}, contactDeps(store, sender, "inbox@example.com"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.SubmissionID != "sub-001" || !res.Notified {
		t.Errorf("result = %+v, want sub-001 notified", res)
	}
	saved, ok := store.saved["sub-001"]
	if !ok {
		t.Fatal("expected submission to be persisted")
	}
	if saved.Name != "Ada" {
		t.Errorf("Name = %q, want trimmed Ada", saved.Name)
	}
	if !saved.SubmittedAt.Equal(contactTime) {
		t.Errorf("SubmittedAt = %v, want %v", saved.SubmittedAt, contactTime)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(sender.sent))
	}
	req := sender.sent[0]
	if req.ReplyTo != "ada@example.com" || req.To[0] != "inbox@example.com" {
		t.Errorf("unexpected request routing: %+v", req)
	}
	if strings.Contains(req.HTML, "<b>hi</b>") {
		t.Error("message body was not escaped")
	}
}

// TestExecuteSubmitContact_NotificationFailure tests that a failed send still persists.
func TestExecuteSubmitContact_NotificationFailure(t *testing.T) {
	store := newMockContactStore()
	sender := &mockSender{err: errors.New("provider down")}

	res, err := ExecuteSubmitContact(context.Background(), SubmitContactInput{Name: "Bo"}, contactDeps(store, sender, "inbox@example.com"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Notified {
		t.Error("expected Notified=false")
	}
	if _, ok := store.saved["sub-001"]; !ok {
		t.Error("expected submission to be persisted despite the failed notification")
	}
}

// TestExecuteSubmitContact_BlankAccepted tests that empty fields are not rejected.
func TestExecuteSubmitContact_BlankAccepted(t *testing.T) {
	store := newMockContactStore()
	sender := &mockSender{}

	_, err := ExecuteSubmitContact(context.Background(), SubmitContactInput{}, contactDeps(store, sender, "inbox@example.com"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 1 || sender.sent[0].Subject != "Empty contact form submission" {
		t.Errorf("unexpected notifications: %+v", sender.sent)
	}
}

// TestExecuteSubmitContact_NoInbox tests that notifications are skipped without an inbox.
func TestExecuteSubmitContact_NoInbox(t *testing.T) {
	sender := &mockSender{}
	res, err := ExecuteSubmitContact(context.Background(), SubmitContactInput{Name: "Cy"}, contactDeps(newMockContactStore(), sender, ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Notified || len(sender.sent) != 0 {
		t.Errorf("expected no notification, got %+v / %d sent", res, len(sender.sent))
	}
}

// TestExecuteSubmitContact_SaveFailure tests that a store failure is returned.
func TestExecuteSubmitContact_SaveFailure(t *testing.T) {
	store := newMockContactStore()
	store.saveErr = errors.New("disk full")
	sender := &mockSender{}

	_, err := ExecuteSubmitContact(context.Background(), SubmitContactInput{Name: "Di"}, contactDeps(store, sender, "inbox@example.com"))
	if err == nil {
		t.Fatal("expected error")
	}
	if len(sender.sent) != 0 {
		t.Error("expected no notification for an unsaved submission")
	}
}
