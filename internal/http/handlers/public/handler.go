package public

import "github.com/coursehub-next/internal/provider"

// Handler 学员侧 API 处理器入口
type Handler struct {
	*provider.Container
}

// New 创建处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
