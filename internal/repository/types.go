package repository

import "gorm.io/gorm"

type QueryOption func(*gorm.DB) *gorm.DB

func WithPreload(association string, conds ...interface{}) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		return db.Preload(association, conds...)
	}
}

// WithProgressUpdateChildren 预加载图片(按上传顺序)与链接(按创建顺序)
func WithProgressUpdateChildren(prefix string) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Preload(prefix+"Images", func(tx *gorm.DB) *gorm.DB {
				return tx.Order("sort_order ASC, id ASC")
			}).
			Preload(prefix+"Links", func(tx *gorm.DB) *gorm.DB {
				return tx.Order("created_at ASC, id ASC")
			})
	}
}

func applyOptions(db *gorm.DB, opts []QueryOption) *gorm.DB {
	for _, opt := range opts {
		db = opt(db)
	}
	return db
}
