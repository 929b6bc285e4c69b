package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"resume-insights/internal/contract"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectAnalysis = `
SELECT id, user_id, job_role, file_name, format, page_count, provider, attempts, status,
       result, repairs, error_code, error_message, created_at, completed_at
FROM analyses`

// Create inserts a new analysis.
func (r *PGRepo) Create(ctx context.Context, analysis Analysis) error {
	const query = `
INSERT INTO analyses (
	id, user_id, job_role, file_name, format, page_count, provider, attempts, status,
	result, repairs, error_code, error_message, created_at, completed_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	resultPayload, err := marshalJSONB(analysis.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	repairsPayload, err := json.Marshal(nonNilRepairs(analysis.Repairs))
	if err != nil {
		return fmt.Errorf("marshal repairs: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, query,
		analysis.ID,
		analysis.UserID,
		analysis.JobRole,
		nullString(analysis.FileName),
		nullString(analysis.Format),
		analysis.PageCount,
		nullString(analysis.Provider),
		analysis.Attempts,
		analysis.Status,
		resultPayload,
		repairsPayload,
		analysis.ErrorCode,
		analysis.ErrorMessage,
		analysis.CreatedAt,
		analysis.CompletedAt,
	)
	return err
}

// GetByID returns the user's analysis with the given ID.
func (r *PGRepo) GetByID(ctx context.Context, userID, analysisID string) (Analysis, error) {
	query := selectAnalysis + `
WHERE id = $1 AND user_id = $2
LIMIT 1`
	a, err := scanAnalysis(r.DB.QueryRowContext(ctx, query, analysisID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, err
	}
	return a, nil
}

// ListByUser returns analyses for a user, newest first, with limit/offset.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	limit, offset = normalizePage(limit, offset)
	query := selectAnalysis + `
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Analysis{}
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (Analysis, error) {
	var a Analysis
	var fileName sql.NullString
	var format sql.NullString
	var provider sql.NullString
	var result []byte
	var repairs []byte
	var errorCode sql.NullString
	var errorMessage sql.NullString
	var completedAt sql.NullTime
	if err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.JobRole,
		&fileName,
		&format,
		&a.PageCount,
		&provider,
		&a.Attempts,
		&a.Status,
		&result,
		&repairs,
		&errorCode,
		&errorMessage,
		&a.CreatedAt,
		&completedAt,
	); err != nil {
		return Analysis{}, err
	}
	a.FileName = fileName.String
	a.Format = format.String
	a.Provider = provider.String
	if len(result) > 0 && string(result) != "null" {
		var decoded contract.AnalysisResult
		if err := json.Unmarshal(result, &decoded); err == nil {
			a.Result = &decoded
		}
	}
	if len(repairs) > 0 {
		// unreadable repair logs are dropped; the result is what callers need
		_ = json.Unmarshal(repairs, &a.Repairs)
	}
	if errorCode.Valid {
		a.ErrorCode = &errorCode.String
	}
	if errorMessage.Valid {
		a.ErrorMessage = &errorMessage.String
	}
	if completedAt.Valid {
		a.CompletedAt = &completedAt.Time
	}
	return a, nil
}

func marshalJSONB(value *contract.AnalysisResult) (any, error) {
	if value == nil {
		return nil, nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func nonNilRepairs(repairs []Repair) []Repair {
	if repairs == nil {
		return []Repair{}
	}
	return repairs
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
