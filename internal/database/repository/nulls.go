package repository

import (
	"database/sql"
	"strings"
	"time"
)

// nonEmpty maps nil and blank strings to NULL so readers never see "" references.
func nonEmpty(s *string) any {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return *s
}

func nullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func nowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
