package logger

import (
	"go.uber.org/zap"
)

var l = zap.NewNop()

// Init 初始化全局 logger；debug 模式用开发配置
func Init(mode string) error {
	var (
		lg  *zap.Logger
		err error
	)
	if mode == "release" {
		lg, err = zap.NewProduction()
	} else {
		lg, err = zap.NewDevelopment()
	}
	if err != nil {
		return err
	}
	l = lg
	return nil
}

// L 返回全局 logger
func L() *zap.Logger { return l }

func Debug(msg string, fields ...zap.Field) { l.Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { l.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { l.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { l.Error(msg, fields...) }

// Sync 刷新缓冲日志，进程退出前调用
func Sync() { _ = l.Sync() }
