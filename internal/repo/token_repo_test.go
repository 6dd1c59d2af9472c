package repo

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shaiso/Pulse/internal/domain"
)

// Матрица разрешения конфликтов регистрации токена (§ upsert):
// T — строка с тем же токеном, D — строка с тем же (user, device).
func TestPlanUpsert_SameRow_Noop(t *testing.T) {
	row := &domain.DeviceToken{ID: uuid.New(), UserID: "A", Token: "T1", DeviceType: domain.DeviceTypeIOS}

	if got := planUpsert(row, row); got != upsertNoop {
		t.Errorf("re-registration of the same token must be a no-op, got %v", got)
	}
}

func TestPlanUpsert_TokenExists_MovesToNewOwner(t *testing.T) {
	byToken := &domain.DeviceToken{ID: uuid.New(), UserID: "A", Token: "T1", DeviceType: domain.DeviceTypeIOS}

	// D отсутствует — токен просто перенацеливается
	if got := planUpsert(byToken, nil); got != upsertMoveToken {
		t.Errorf("existing token with no device row should move, got %v", got)
	}

	// D существует и отличается — слот вытесняется, токен переезжает
	byDevice := &domain.DeviceToken{ID: uuid.New(), UserID: "B", Token: "T2", DeviceType: domain.DeviceTypeIOS}
	if got := planUpsert(byToken, byDevice); got != upsertMoveToken {
		t.Errorf("distinct token row takes precedence over device row, got %v", got)
	}
}

func TestPlanUpsert_DeviceReRegisters_RewritesInPlace(t *testing.T) {
	byDevice := &domain.DeviceToken{ID: uuid.New(), UserID: "A", Token: "T1", DeviceType: domain.DeviceTypeIOS}

	if got := planUpsert(nil, byDevice); got != upsertRewriteDevice {
		t.Errorf("same device with new token value should rewrite in place, got %v", got)
	}
}

func TestPlanUpsert_NeitherExists_Inserts(t *testing.T) {
	if got := planUpsert(nil, nil); got != upsertInsert {
		t.Errorf("fresh registration should insert, got %v", got)
	}
}
