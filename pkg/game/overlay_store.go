package game

import (
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/decker502/avatarstage/pkg/components"
	"github.com/quasilyte/gdata/v2"
)

// 存储路径常量
// 四个几何字段分别保存为独立属性，值为带 "px" 后缀的字符串（如 "256px"）
const (
	overlayObject = "image_frame"
	propWidth     = "width"
	propHeight    = "height"
	propRight     = "right"
	propTop       = "top"
)

// OverlayStore 图片框几何持久化
// 负责在会话之间恢复图片框的位置和尺寸
type OverlayStore struct {
	gdataManager *gdata.Manager // gdata 跨平台存储管理器，可为 nil（降级模式）
	defaults     components.OverlayGeometry
	memory       *components.OverlayGeometry // 降级模式下仅保存在内存中
}

// NewOverlayStore 创建图片框几何存储
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，仅内存）
//   - defaults: 没有已保存值（或值无法解析）时使用的默认几何
func NewOverlayStore(gdataManager *gdata.Manager, defaults components.OverlayGeometry) *OverlayStore {
	return &OverlayStore{gdataManager: gdataManager, defaults: defaults}
}

// Load 读取已保存的几何
//
// 每个字段独立读取：缺失或无法解析的字段使用默认值，不影响其他字段。
// 返回的几何尚未按视口约束，调用者需要自行 Normalize。
func (s *OverlayStore) Load() components.OverlayGeometry {
	if s.gdataManager == nil {
		if s.memory != nil {
			return *s.memory
		}
		return s.defaults
	}

	g := s.defaults
	g.Width = s.loadProp(propWidth, s.defaults.Width)
	g.Height = s.loadProp(propHeight, s.defaults.Height)
	g.Right = s.loadProp(propRight, s.defaults.Right)
	g.Top = s.loadProp(propTop, s.defaults.Top)
	return g
}

func (s *OverlayStore) loadProp(prop string, def float64) float64 {
	if !s.gdataManager.ObjectPropExists(overlayObject, prop) {
		return def
	}
	data, err := s.gdataManager.LoadObjectProp(overlayObject, prop)
	if err != nil {
		log.Printf("[OverlayStore] Warning: Failed to load %s: %v (using default)", prop, err)
		return def
	}
	v, err := ParsePixels(string(data))
	if err != nil {
		log.Printf("[OverlayStore] Warning: Invalid %s value %q: %v (using default)", prop, data, err)
		return def
	}
	return v
}

// Save 保存几何
//
// 如果 gdataManager 为 nil，仅保存在内存中（降级模式，不报错）
func (s *OverlayStore) Save(g components.OverlayGeometry) error {
	if s.gdataManager == nil {
		saved := g
		s.memory = &saved
		return nil
	}

	props := []struct {
		name  string
		value float64
	}{
		{propWidth, g.Width},
		{propHeight, g.Height},
		{propRight, g.Right},
		{propTop, g.Top},
	}
	for _, p := range props {
		if err := s.gdataManager.SaveObjectProp(overlayObject, p.name, []byte(FormatPixels(p.value))); err != nil {
			return fmt.Errorf("failed to save image frame %s: %w", p.name, err)
		}
	}
	return nil
}

// FormatPixels 将像素值格式化为 "<n>px"，整数不带小数部分
func FormatPixels(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// ParsePixels 解析 "<n>px" 格式的像素值（后缀可省略）
func ParsePixels(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "px")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid pixel value: %w", err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid pixel value %q", s)
	}
	return v, nil
}
