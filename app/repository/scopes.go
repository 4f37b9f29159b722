package repository

import "gorm.io/gorm"

// OwnedBy restricts a query to rows whose user_id matches the given user.
// Every read or mutation of user-owned rows goes through it.
func OwnedBy(userID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}
