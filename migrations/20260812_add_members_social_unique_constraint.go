package migrations

import (
	"gorm.io/gorm"
)

// AddMembersSocialUniqueConstraint додає унікальний індекс на (social_type, social_id)
func AddMembersSocialUniqueConstraint(tx *gorm.DB) error {
	// Локальні акаунти мають порожній social_id, тому індекс частковий
	return tx.Exec(`
		CREATE UNIQUE INDEX CONCURRENTLY IF NOT EXISTS idx_members_social_type_id
		ON members (social_type, social_id)
		WHERE social_id <> ''
	`).Error
}

// DropMembersSocialUniqueConstraint видаляє унікальний індекс
func DropMembersSocialUniqueConstraint(tx *gorm.DB) error {
	return tx.Exec(`DROP INDEX IF EXISTS idx_members_social_type_id`).Error
}
