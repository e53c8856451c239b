package config

import (
	"fmt"
	"time"

	"github.com/decker502/avatarstage/pkg/embedded"
	"gopkg.in/yaml.v3"
)

// InteractionConfig 角色交互参数
// 配置文件位置: data/interaction.yaml
type InteractionConfig struct {
	Gaze       GazeConfig       `yaml:"gaze"`
	Animation  AnimationConfig  `yaml:"animation"`
	Character  CharacterConfig  `yaml:"character"`
	ImageFrame ImageFrameConfig `yaml:"image_frame"`
	Debug      DebugConfig      `yaml:"debug"`
}

// GazeConfig 视线跟随
type GazeConfig struct {
	// HorizontalScale 水平方向放大倍数
	HorizontalScale float64 `yaml:"horizontal_scale"`
}

// AnimationConfig 分层动画
type AnimationConfig struct {
	DefaultAnimation string   `yaml:"default_animation"` // 加载后轨道 0 的循环动画
	InitialViseme    string   `yaml:"initial_viseme"`    // 初始口型（闭嘴）
	VisemeMix        float64  `yaml:"viseme_mix"`        // 口型交叉淡入时长（秒）
	IdleRotation     []string `yaml:"idle_rotation"`     // 点击轮播顺序

	// StateAnimations 会话状态 -> 轨道 0 循环动画（可选，默认为空）
	StateAnimations map[string]string `yaml:"state_animations,omitempty"`
}

// CharacterConfig 角色拖动
type CharacterConfig struct {
	DragThreshold float64 `yaml:"drag_threshold"` // 判定为拖动的位移（像素）
}

// ImageFrameConfig 图片框
type ImageFrameConfig struct {
	MinSize         float64 `yaml:"min_size"`
	OffscreenRatio  float64 `yaml:"offscreen_ratio"`
	HandleThickness float64 `yaml:"handle_thickness"`
	DefaultWidth    float64 `yaml:"default_width"`
	DefaultHeight   float64 `yaml:"default_height"`
	DefaultRight    float64 `yaml:"default_right"`
	DefaultTop      float64 `yaml:"default_top"`
}

// DebugConfig 调试模式
type DebugConfig struct {
	// CycleInterval 调试模式下每个动画的播放时长
	CycleInterval time.Duration `yaml:"cycle_interval"`
}

// DefaultInteractionConfig 返回内置默认值
func DefaultInteractionConfig() *InteractionConfig {
	return &InteractionConfig{
		Gaze: GazeConfig{HorizontalScale: 4},
		Animation: AnimationConfig{
			DefaultAnimation: "body_idle",
			InitialViseme:    "mouth_M",
			VisemeMix:        0.06,
			IdleRotation:     []string{"body_laugh", "body_waving", "body_smile", "body_idle"},
		},
		Character: CharacterConfig{DragThreshold: 5},
		ImageFrame: ImageFrameConfig{
			MinSize:         100,
			OffscreenRatio:  0.2,
			HandleThickness: 8,
			DefaultWidth:    256,
			DefaultHeight:   256,
			DefaultRight:    16,
			DefaultTop:      16,
		},
		Debug: DebugConfig{CycleInterval: 3 * time.Second},
	}
}

// ParseInteractionConfig 解析交互配置，缺省字段使用默认值
func ParseInteractionConfig(data []byte) (*InteractionConfig, error) {
	cfg := DefaultInteractionConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse interaction config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid interaction config: %w", err)
	}
	return cfg, nil
}

// LoadInteractionConfig 从嵌入资源加载交互配置
func LoadInteractionConfig(path string) (*InteractionConfig, error) {
	data, err := embedded.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read interaction config: %w", err)
	}
	return ParseInteractionConfig(data)
}

// Validate 验证配置有效性
func (c *InteractionConfig) Validate() error {
	if c.Gaze.HorizontalScale <= 0 {
		return fmt.Errorf("gaze.horizontal_scale must be positive, got %v", c.Gaze.HorizontalScale)
	}
	if c.Animation.VisemeMix < 0 {
		return fmt.Errorf("animation.viseme_mix must not be negative, got %v", c.Animation.VisemeMix)
	}
	if len(c.Animation.IdleRotation) == 0 {
		return fmt.Errorf("animation.idle_rotation must not be empty")
	}
	f := c.ImageFrame
	if f.MinSize <= 0 {
		return fmt.Errorf("image_frame.min_size must be positive, got %v", f.MinSize)
	}
	if f.OffscreenRatio < 0 || f.OffscreenRatio >= 1 {
		return fmt.Errorf("image_frame.offscreen_ratio must be in [0,1), got %v", f.OffscreenRatio)
	}
	if f.DefaultWidth < f.MinSize || f.DefaultHeight < f.MinSize {
		return fmt.Errorf("image_frame default size %vx%v is below min_size %v", f.DefaultWidth, f.DefaultHeight, f.MinSize)
	}
	if c.Debug.CycleInterval <= 0 {
		return fmt.Errorf("debug.cycle_interval must be positive, got %v", c.Debug.CycleInterval)
	}
	return nil
}
