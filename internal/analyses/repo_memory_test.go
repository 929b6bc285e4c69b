package analyses

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryRepoScopesByUser(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	if err := repo.Create(ctx, Analysis{ID: "a1", UserID: "alice", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := repo.GetByID(ctx, "alice", "a1"); err != nil {
		t.Fatalf("GetByID owner: %v", err)
	}
	if _, err := repo.GetByID(ctx, "bob", "a1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another user, got %v", err)
	}
}

func TestMemoryRepoListNewestFirst(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		if err := repo.Create(ctx, Analysis{ID: id, UserID: "u", CreatedAt: base.Add(time.Duration(i) * time.Hour)}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	cases := []struct {
		limit, offset int
		want          []string
	}{
		{0, 0, []string{"new", "mid", "old"}},
		{2, 0, []string{"new", "mid"}},
		{2, 2, []string{"old"}},
		{5, 9, []string{}},
	}
	for _, tc := range cases {
		got, err := repo.ListByUser(ctx, "u", tc.limit, tc.offset)
		if err != nil {
			t.Fatalf("ListByUser: %v", err)
		}
		if len(got) != len(tc.want) {
			t.Fatalf("limit=%d offset=%d: expected %v, got %d items", tc.limit, tc.offset, tc.want, len(got))
		}
		for i := range got {
			if got[i].ID != tc.want[i] {
				t.Fatalf("limit=%d offset=%d: expected %v at %d, got %s", tc.limit, tc.offset, tc.want[i], i, got[i].ID)
			}
		}
	}
}
