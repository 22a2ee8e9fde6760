package scope

import "gorm.io/gorm"

// OrderByStack returns cards bottom first, oldest first among equals.
func OrderByStack(db *gorm.DB) *gorm.DB {
	return db.Order("z_index ASC").Order("created_at ASC")
}
