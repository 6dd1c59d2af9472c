package repo

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shaiso/Pulse/internal/domain"
)

func TestNewArtifactIDs_SkipsAttached(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	fresh := newArtifactIDs([]uuid.UUID{a, b, c}, []uuid.UUID{b})

	if len(fresh) != 2 {
		t.Fatalf("expected 2 fresh ids, got %d", len(fresh))
	}
	if fresh[0] != a || fresh[1] != c {
		t.Errorf("expected [%s %s], got %v", a, c, fresh)
	}
}

// Пересекающиеся списки и дубликаты: артефакт прикрепляется не более раза.
func TestNewArtifactIDs_DeduplicatesRequested(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	fresh := newArtifactIDs([]uuid.UUID{a, a, b, a}, nil)

	if len(fresh) != 2 {
		t.Errorf("duplicates should collapse, got %v", fresh)
	}
}

func TestNewArtifactIDs_AllAttached(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	fresh := newArtifactIDs([]uuid.UUID{a, b}, []uuid.UUID{a, b})

	if len(fresh) != 0 {
		t.Errorf("nothing new to attach, got %v", fresh)
	}
}

func TestMissingArtifactIDs_ListsAllUnresolved(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	resolved := []domain.Artifact{{ID: b}}

	missing := missingArtifactIDs([]uuid.UUID{a, b, c}, resolved)

	if len(missing) != 2 {
		t.Fatalf("expected 2 missing ids, got %v", missing)
	}
	if missing[0] != a || missing[1] != c {
		t.Errorf("expected [%s %s], got %v", a, c, missing)
	}
}

func TestCheckArtifactOwnership(t *testing.T) {
	owned := []domain.Artifact{
		{ID: uuid.New(), UserID: "owner"},
		{ID: uuid.New(), UserID: "owner"},
	}
	if err := checkArtifactOwnership(owned, "owner"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	foreign := append(owned, domain.Artifact{ID: uuid.New(), UserID: "someone-else"})
	err := checkArtifactOwnership(foreign, "owner")
	if !errors.Is(err, ErrOwnershipViolation) {
		t.Errorf("expected ErrOwnershipViolation, got %v", err)
	}
}
