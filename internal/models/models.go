// Package models defines the GORM models persisted by the API.
package models

// All returns every model in dependency order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Transaction{},
		&MonthlySummary{},
		&AuditLog{},
	}
}
