package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shreya0626/secret-santa/internal/domain"
)

var _ domain.AssignmentRepository = (*DB)(nil)

// GetAssignments loads the assignment document of a cycle.
func (d *DB) GetAssignments(ctx context.Context, cycle string) (*domain.CycleAssignments, error) {
	var (
		raw     []byte
		version int64
	)
	err := d.sql.QueryRowContext(ctx,
		"SELECT pairs, version FROM assignments WHERE cycle = $1;", cycle,
	).Scan(&raw, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.CycleAssignments{Cycle: cycle, Pairs: domain.AssignmentMap{}}, nil
	}
	if err != nil {
		return nil, err
	}
	pairs := domain.AssignmentMap{}
	if err := json.Unmarshal(raw, &pairs); err != nil {
		return nil, fmt.Errorf("decode assignments %s: %w", cycle, err)
	}
	return &domain.CycleAssignments{Cycle: cycle, Pairs: pairs, Version: version}, nil
}

// SaveAssignments writes the document if the stored version still equals
// expectedVersion. The first write of a cycle races on the primary key, later
// writes on the version column.
func (d *DB) SaveAssignments(ctx context.Context, cycle string, expectedVersion int64, pairs domain.AssignmentMap) (int64, error) {
	if err := pairs.Validate(); err != nil {
		return 0, err
	}
	raw, err := json.Marshal(pairs)
	if err != nil {
		return 0, err
	}
	now := time.Now().UTC()

	var res sql.Result
	if expectedVersion == 0 {
		res, err = d.sql.ExecContext(ctx,
			"INSERT INTO assignments(cycle, pairs, version, updated_at) VALUES($1, $2, 1, $3) ON CONFLICT(cycle) DO NOTHING;",
			cycle, raw, now,
		)
	} else {
		res, err = d.sql.ExecContext(ctx,
			"UPDATE assignments SET pairs = $1, version = version + 1, updated_at = $2 WHERE cycle = $3 AND version = $4;",
			raw, now, cycle, expectedVersion,
		)
	}
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, domain.ErrConcurrentWriteConflict
	}
	return expectedVersion + 1, nil
}
