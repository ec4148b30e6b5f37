package database

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/flaboy/aira-checkout/pkg/migration"
)

var db *gorm.DB

// Init 初始化数据库连接并执行模型迁移
func Init(dsn string) error {
	conn, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return err
	}
	db = conn
	return migration.AutoMigrate(db)
}

// Database 获取全局数据库实例
func Database() *gorm.DB {
	return db
}

// SetDatabase 设置数据库实例，用于测试注入
func SetDatabase(conn *gorm.DB) {
	db = conn
}
