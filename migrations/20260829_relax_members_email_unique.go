package migrations

import (
	"gorm.io/gorm"
)

// RelaxMembersEmailUnique замінює повний унікальний індекс на email
// частковим. Деякі провайдери (kakao) не віддають email, і кожен такий
// учасник зберігається з порожнім значенням
func RelaxMembersEmailUnique(tx *gorm.DB) error {
	if err := tx.Exec(`DROP INDEX IF EXISTS idx_members_email`).Error; err != nil {
		return err
	}
	return tx.Exec(`
		CREATE UNIQUE INDEX CONCURRENTLY IF NOT EXISTS idx_members_email
		ON members (email)
		WHERE email <> ''
	`).Error
}

// RestoreMembersEmailUnique повертає повний унікальний індекс на email
func RestoreMembersEmailUnique(tx *gorm.DB) error {
	if err := tx.Exec(`DROP INDEX IF EXISTS idx_members_email`).Error; err != nil {
		return err
	}
	return tx.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_members_email ON members (email)`).Error
}
