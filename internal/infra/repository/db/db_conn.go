package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func GetDbConn(dbname, host, port, user, pas string) (*gorm.DB, error) {
	// 資料來源名稱 (DSN)
	dsn := fmt.Sprintf("user=%s password=%s host=%s port=%s dbname=%s sslmode=disable", user, pas, host, port, dbname)

	// TranslateError: 唯一鍵衝突需要轉成 gorm.ErrDuplicatedKey 供冪等判斷
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}
