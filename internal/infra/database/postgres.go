package database

import (
	"context"
	"fmt"
	"time"

	"vidshare/internal/config"
	"vidshare/internal/model"
	"vidshare/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// GormConfig 统一的 gorm 配置：驱动错误翻译成 gorm.ErrDuplicatedKey 等，SQL 日志走 zap
func GormConfig(slowThreshold time.Duration) *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         NewGormLogger(slowThreshold),
	}
}

// Init 初始化PostgreSQL数据库连接，ping 受 ctx 约束
func Init(ctx context.Context, cfg *config.DatabaseConfig) error {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), GormConfig(cfg.SlowThreshold()))
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	// 获取底层sql.DB来配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}
	DB = db

	logger.Info("Database connected",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("dbname", cfg.DBName),
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Duration("slow_threshold", cfg.SlowThreshold()),
	)

	return nil
}

// Migrate 建立 users、videos、comments 三张表及其索引
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.User{}, &model.Video{}, &model.Comment{}); err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}
	logger.Info("Database auto migration completed")
	return nil
}

// Close 关闭数据库连接
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	logger.Info("Database connection closed")
	return sqlDB.Close()
}

// Get 获取数据库实例
func Get() *gorm.DB {
	return DB
}
