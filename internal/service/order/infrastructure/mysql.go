// internal/service/order/infrastructure/mysql.go
package infrastructure

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// NewMysqlDB 建立数据库连接。
// TranslateError 必须开启：快照存储依赖 gorm.ErrDuplicatedKey
// 识别乐观并发冲突。
func NewMysqlDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mysql: %w", err)
	}

	if err := db.AutoMigrate(
		&OrdersModel{},
		&OrdersCanceledModel{},
		&OrdersRefundModel{},
		&StateSnapshotModel{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return db, nil
}
