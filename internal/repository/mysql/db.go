package mysql

import (
	"fmt"
	"time"

	"Community_Graph/internal/model"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Config 返回仓储层统一使用的 gorm 配置。
// TranslateError 打开后唯一索引冲突会变成 gorm.ErrDuplicatedKey。
func Config() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}
}

// InitDB 连接 MySQL 并设置全局 DB
func InitDB(dsn string) error {
	db, err := gorm.Open(mysql.Open(dsn), Config())
	if err != nil {
		return fmt.Errorf("unable to open mysql: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	DB = db
	log.Info().Msg("mysql connected")
	return nil
}

// Migrate 自动建表
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Community{},
		&model.Member{},
		&model.CommunityFavorite{},
		&model.Follow{},
		&model.SocialOutbox{},
		&model.PostCategory{},
		&model.PostCategoryFavorite{},
		&model.Post{},
		&model.PostLike{},
		&model.PostScrap{},
		&model.PostComment{},
		&model.PostCommentLike{},
		&model.PostReply{},
		&model.PostReplyLike{},
	)
}
