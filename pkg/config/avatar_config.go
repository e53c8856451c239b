package config

import (
	"errors"
	"fmt"

	"github.com/decker502/avatarstage/pkg/embedded"
	"gopkg.in/yaml.v3"
)

// ErrAvatarNotFound 表示头像注册表中没有该资源键
var ErrAvatarNotFound = errors.New("avatar not found")

// AvatarConfig 单个头像的资源描述
// 配置文件位置: data/avatars.yaml
type AvatarConfig struct {
	Key  string `yaml:"key"`  // 资源键，如 "robot"
	Name string `yaml:"name"` // 显示名称

	Atlas    string `yaml:"atlas"`    // 图集文件路径（assets/ 开头）
	Skeleton string `yaml:"skeleton"` // 骨架 JSON 路径（assets/ 开头）

	// PremultipliedAlpha 图集页是否为预乘 Alpha（图集文件未声明 pma 时使用）
	PremultipliedAlpha bool `yaml:"premultiplied_alpha"`

	// AimBone 视线控制骨骼名，默认 "crosshair"
	AimBone string `yaml:"aim_bone"`

	// Scale 渲染缩放比例，默认 1.0
	Scale float64 `yaml:"scale"`

	// DefaultAnimation 加载后在轨道 0 循环播放的动画，空时使用交互配置中的默认值
	DefaultAnimation string `yaml:"default_animation,omitempty"`
}

// AvatarRegistry 头像注册表
type AvatarRegistry struct {
	Default string         `yaml:"default"`
	Avatars []AvatarConfig `yaml:"avatars"`

	byKey map[string]*AvatarConfig
}

// ParseAvatarRegistry 解析头像注册表 YAML
func ParseAvatarRegistry(data []byte) (*AvatarRegistry, error) {
	var reg AvatarRegistry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse avatar registry: %w", err)
	}

	reg.byKey = make(map[string]*AvatarConfig, len(reg.Avatars))
	for i := range reg.Avatars {
		a := &reg.Avatars[i]
		if a.Key == "" {
			return nil, fmt.Errorf("avatar %d: missing key", i)
		}
		if a.Atlas == "" || a.Skeleton == "" {
			return nil, fmt.Errorf("avatar %q: atlas and skeleton are required", a.Key)
		}
		if _, dup := reg.byKey[a.Key]; dup {
			return nil, fmt.Errorf("avatar %q: duplicate key", a.Key)
		}
		if a.AimBone == "" {
			a.AimBone = "crosshair"
		}
		if a.Scale <= 0 {
			a.Scale = 1.0
		}
		reg.byKey[a.Key] = a
	}

	if reg.Default == "" && len(reg.Avatars) > 0 {
		reg.Default = reg.Avatars[0].Key
	}
	if reg.Default != "" && reg.byKey[reg.Default] == nil {
		return nil, fmt.Errorf("default avatar %q: %w", reg.Default, ErrAvatarNotFound)
	}
	return &reg, nil
}

// LoadAvatarRegistry 从嵌入资源加载头像注册表
//
// 参数:
//   - path: 配置文件路径（如 "data/avatars.yaml"）
func LoadAvatarRegistry(path string) (*AvatarRegistry, error) {
	data, err := embedded.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read avatar registry: %w", err)
	}
	return ParseAvatarRegistry(data)
}

// Lookup 按资源键查找头像
// 键为空时返回默认头像；未注册时返回 ErrAvatarNotFound
func (r *AvatarRegistry) Lookup(key string) (*AvatarConfig, error) {
	if key == "" {
		key = r.Default
	}
	if a, ok := r.byKey[key]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrAvatarNotFound, key)
}

// Keys 返回所有已注册的资源键（配置文件顺序）
func (r *AvatarRegistry) Keys() []string {
	keys := make([]string, 0, len(r.Avatars))
	for _, a := range r.Avatars {
		keys = append(keys, a.Key)
	}
	return keys
}
