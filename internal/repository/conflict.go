package repository

import "strings"

// isDuplicateKeyErr recognizes MySQL's duplicate-entry error without
// importing the driver directly, since the gorm.Dialector we pass at
// NewGormDB time is the only place that needs to know it's MySQL.
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "1062")
}
