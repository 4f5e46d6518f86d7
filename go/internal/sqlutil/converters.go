package sqlutil

import "database/sql"

// ToSqlInt32 converts a Go int pointer to sql.NullInt32
func ToSqlInt32(val *int) sql.NullInt32 {
	if val == nil {
		return sql.NullInt32{Valid: false}
	}
	return sql.NullInt32{Int32: int32(*val), Valid: true}
}

// FromSqlInt32 converts sql.NullInt32 to Go int pointer
func FromSqlInt32(val sql.NullInt32) *int {
	if !val.Valid {
		return nil
	}
	i := int(val.Int32)
	return &i
}

// FromSqlInt32Default converts sql.NullInt32 to Go int with default
func FromSqlInt32Default(val sql.NullInt32, defaultVal int) int {
	if !val.Valid {
		return defaultVal
	}
	return int(val.Int32)
}
