package trends

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"resume-insights/internal/contract"
)

func TestMemoryStoreWindow(t *testing.T) {
	s := NewMemoryStore(3)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if err := s.Append(ctx, "u", contract.TrendPoint{Timestamp: base.Add(time.Duration(i) * time.Minute), ATSScore: float64(i)}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	cases := []struct {
		limit int
		want  []float64
	}{
		{0, []float64{2, 3, 4}},
		{2, []float64{3, 4}},
		{10, []float64{2, 3, 4}},
	}
	for _, tc := range cases {
		got, err := s.Recent(ctx, "u", tc.limit)
		if err != nil {
			t.Fatalf("Recent: %v", err)
		}
		if len(got) != len(tc.want) {
			t.Fatalf("limit %d: expected %v, got %+v", tc.limit, tc.want, got)
		}
		for i := range got {
			if got[i].ATSScore != tc.want[i] {
				t.Fatalf("limit %d: expected %v, got %+v", tc.limit, tc.want, got)
			}
		}
	}

	other, _ := s.Recent(ctx, "other", 0)
	if other == nil || len(other) != 0 {
		t.Fatalf("expected empty non-nil window for unknown user, got %v", other)
	}
}

func TestPGStoreAppend(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	at := time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO trend_points").
		WithArgs("user-1", at, 81.0, 70.0, 5.0).
		WillReturnResult(sqlmock.NewResult(1, 1))

	s := &PGStore{DB: db}
	if err := s.Append(context.Background(), "user-1", contract.TrendPoint{Timestamp: at, ATSScore: 81, Readability: 70, KeywordDensity: 5}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreRecentReturnsOldestFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	newer := time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)
	rows := sqlmock.NewRows([]string{"recorded_at", "ats_score", "readability", "keyword_density"}).
		AddRow(newer, 90.0, 75.0, 4.0).
		AddRow(older, 60.0, 65.0, 6.0)
	mock.ExpectQuery("FROM trend_points").
		WithArgs("user-1", DefaultWindow).
		WillReturnRows(rows)

	s := &PGStore{DB: db}
	got, err := s.Recent(context.Background(), "user-1", 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 || !got[0].Timestamp.Equal(older) || got[1].ATSScore != 90 {
		t.Fatalf("expected chronological order, got %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
