package store

import (
	"database/sql"
	"fmt"

	"github.com/dkovalev/coachbot/internal/models"
)

// scanRecords drains a result set of record rows.
func scanRecords(rows *sql.Rows) ([]models.Record, error) {
	var records []models.Record
	for rows.Next() {
		var r models.Record
		if err := rows.Scan(&r.ChatID, &r.Name, &r.Phone, &r.Address, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan record row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate record rows: %w", err)
	}
	return records, nil
}
