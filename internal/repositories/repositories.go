package repositories

import (
	"database/sql"
	"fmt"
)

// NextSequence increments and returns the counter in <table>_sequence.
//
// The counter moves inside tx, so a rolled back insert does not use up a number.
func NextSequence(tx *sql.Tx, table string) (int, error) {
	var sequence int
	query := fmt.Sprintf("UPDATE %s_sequence SET value = value + 1 WHERE id = 1 RETURNING value", table)
	if err := tx.QueryRow(query).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to increment %s sequence: %w", table, err)
	}
	return sequence, nil
}
