package uploader

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Uploader 图片上传（外部图床的薄封装）：base64 进，可访问 URL 出
type Uploader interface {
	Upload(ctx context.Context, base64Data string) (string, error)
}

// Local 本地磁盘实现，开发环境用
type Local struct {
	Dir     string
	BaseURL string
}

func NewLocal(dir, baseURL string) *Local {
	return &Local{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (l *Local) Upload(_ context.Context, base64Data string) (string, error) {
	// 容忍 data URI 前缀
	if i := strings.Index(base64Data, ","); i >= 0 && strings.HasPrefix(base64Data, "data:") {
		base64Data = base64Data[i+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(base64Data)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return "", err
	}
	name := uuid.New().String() + ".img"
	if err := os.WriteFile(filepath.Join(l.Dir, name), raw, 0o644); err != nil {
		return "", err
	}
	return l.BaseURL + "/" + name, nil
}
