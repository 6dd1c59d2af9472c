package push

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shaiso/Pulse/internal/domain"
)

// --- Fakes ---

type fakeTokenStore struct {
	tokens    []domain.DeviceToken
	listErr   error
	deleted   []uuid.UUID
	deleteErr error
}

func (f *fakeTokenStore) ListForUser(_ context.Context, _ string) ([]domain.DeviceToken, error) {
	return f.tokens, f.listErr
}

func (f *fakeTokenStore) Delete(_ context.Context, id uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeProvider struct {
	results    []SendResult
	err        error
	calls      int
	lastTokens []string
}

func (f *fakeProvider) SendToTokens(_ context.Context, _ *Notification, tokens []string) ([]SendResult, error) {
	f.calls++
	f.lastTokens = tokens
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func deviceToken(token string) domain.DeviceToken {
	return domain.DeviceToken{
		ID:         uuid.New(),
		UserID:     "user-1",
		Token:      token,
		DeviceType: domain.DeviceTypeIOS,
	}
}

// --- Tests ---

// Из трёх токенов средний объявлен мёртвым: удаляется ровно он,
// остальные не тронуты, вызов завершается без паники и ошибок.
func TestDispatcher_NotifyUser_EvictsOnlyStaleToken(t *testing.T) {
	store := &fakeTokenStore{
		tokens: []domain.DeviceToken{deviceToken("T1"), deviceToken("T2"), deviceToken("T3")},
	}
	provider := &fakeProvider{
		results: []SendResult{
			{OK: true},
			{Code: ErrorCodeUnregistered, Err: errors.New("unregistered")},
			{OK: true},
		},
	}

	d := NewDispatcher(DispatcherConfig{Tokens: store, Provider: provider})
	d.NotifyUser(context.Background(), "user-1", "title", "body", nil)

	if len(store.deleted) != 1 {
		t.Fatalf("expected exactly 1 eviction, got %d", len(store.deleted))
	}
	if store.deleted[0] != store.tokens[1].ID {
		t.Errorf("wrong token evicted: %s", store.deleted[0])
	}
}

// Транзиентные сбои токены не трогают.
func TestDispatcher_NotifyUser_TransientFailuresKeepTokens(t *testing.T) {
	store := &fakeTokenStore{
		tokens: []domain.DeviceToken{deviceToken("T1"), deviceToken("T2")},
	}
	provider := &fakeProvider{
		results: []SendResult{
			{Code: ErrorCodeTransient, Err: errors.New("quota exceeded")},
			{OK: true},
		},
	}

	d := NewDispatcher(DispatcherConfig{Tokens: store, Provider: provider})
	d.NotifyUser(context.Background(), "user-1", "title", "body", nil)

	if len(store.deleted) != 0 {
		t.Errorf("transient failure must not evict, deleted: %v", store.deleted)
	}
}

// Все permanent-invalid коды приводят к выселению.
func TestDispatcher_NotifyUser_AllPermanentCodesEvict(t *testing.T) {
	for _, code := range []ErrorCode{ErrorCodeUnregistered, ErrorCodeInvalidToken, ErrorCodeNotFound} {
		store := &fakeTokenStore{tokens: []domain.DeviceToken{deviceToken("T1")}}
		provider := &fakeProvider{results: []SendResult{{Code: code}}}

		d := NewDispatcher(DispatcherConfig{Tokens: store, Provider: provider})
		d.NotifyUser(context.Background(), "user-1", "t", "b", nil)

		if len(store.deleted) != 1 {
			t.Errorf("code %s should evict the token", code)
		}
	}
}

// Нет устройств — no-op, провайдер не вызывается.
func TestDispatcher_NotifyUser_NoTokensNoop(t *testing.T) {
	provider := &fakeProvider{}
	d := NewDispatcher(DispatcherConfig{Tokens: &fakeTokenStore{}, Provider: provider})

	d.NotifyUser(context.Background(), "user-1", "title", "body", nil)

	if provider.calls != 0 {
		t.Error("provider should not be called when the user has no tokens")
	}
}

// Сбой провайдера глотается: NotifyUser никогда не "роняет" вызывающего.
func TestDispatcher_NotifyUser_SwallowsProviderError(t *testing.T) {
	store := &fakeTokenStore{tokens: []domain.DeviceToken{deviceToken("T1")}}
	provider := &fakeProvider{err: errors.New("fcm down")}

	d := NewDispatcher(DispatcherConfig{Tokens: store, Provider: provider})
	// Достаточно того, что вызов возвращается без паники
	d.NotifyUser(context.Background(), "user-1", "title", "body", nil)

	if len(store.deleted) != 0 {
		t.Error("batch-level failure must not evict anything")
	}
}

// Сбой выселения логируется и глотается, остальные исходы обрабатываются.
func TestDispatcher_NotifyUser_SwallowsEvictionError(t *testing.T) {
	store := &fakeTokenStore{
		tokens:    []domain.DeviceToken{deviceToken("T1")},
		deleteErr: errors.New("db down"),
	}
	provider := &fakeProvider{results: []SendResult{{Code: ErrorCodeUnregistered}}}

	d := NewDispatcher(DispatcherConfig{Tokens: store, Provider: provider})
	d.NotifyUser(context.Background(), "user-1", "title", "body", nil)
}

func TestDispatcher_NotifyUser_SendsAllTokenValues(t *testing.T) {
	store := &fakeTokenStore{
		tokens: []domain.DeviceToken{deviceToken("T1"), deviceToken("T2")},
	}
	provider := &fakeProvider{results: []SendResult{{OK: true}, {OK: true}}}

	d := NewDispatcher(DispatcherConfig{Tokens: store, Provider: provider})
	d.NotifyUser(context.Background(), "user-1", "title", "body", map[string]string{"k": "v"})

	if len(provider.lastTokens) != 2 || provider.lastTokens[0] != "T1" || provider.lastTokens[1] != "T2" {
		t.Errorf("all token values should go out in one batch, got %v", provider.lastTokens)
	}
}
