package trends

import (
	"context"
	"database/sql"
	"slices"

	"resume-insights/internal/contract"
)

// PGStore implements Store using Postgres.
type PGStore struct {
	DB *sql.DB
}

func (s *PGStore) Append(ctx context.Context, userID string, point contract.TrendPoint) error {
	const query = `
INSERT INTO trend_points (user_id, recorded_at, ats_score, readability, keyword_density)
VALUES ($1, $2, $3, $4, $5)`
	_, err := s.DB.ExecContext(ctx, query, userID, point.Timestamp, point.ATSScore, point.Readability, point.KeywordDensity)
	return err
}

func (s *PGStore) Recent(ctx context.Context, userID string, limit int) ([]contract.TrendPoint, error) {
	const query = `
SELECT recorded_at, ats_score, readability, keyword_density
FROM trend_points
WHERE user_id = $1
ORDER BY recorded_at DESC
LIMIT $2`
	rows, err := s.DB.QueryContext(ctx, query, userID, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []contract.TrendPoint{}
	for rows.Next() {
		var p contract.TrendPoint
		if err := rows.Scan(&p.Timestamp, &p.ATSScore, &p.Readability, &p.KeywordDensity); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.Reverse(out)
	return out, nil
}

var _ Store = (*PGStore)(nil)
