package components

import (
	"github.com/decker502/avatarstage/internal/spine"
	"github.com/hajimehoshi/ebiten/v2"
)

// SkeletonGeometry 骨架包围盒（骨架本地坐标，Y 轴向上）
// 资源加载后计算一次，资源切换时由 AvatarLoader 重新计算
type SkeletonGeometry struct {
	OffsetX float64
	OffsetY float64
	Width   float64
	Height  float64
}

// BoneHandle 骨骼弱引用句柄
//
// 句柄只记录骨骼在骨架中的索引和签发时骨架的代数（Generation）。
// 骨架被替换或释放后代数递增，旧句柄随之失效，使用前必须校验而不是直接解引用。
type BoneHandle struct {
	Generation uint64
	Index      int
}

// InvalidBoneHandle 表示未解析或解析失败的骨骼
var InvalidBoneHandle = BoneHandle{Generation: 0, Index: -1}

// SkeletonComponent 骨骼动画运行时组件（纯数据）
//
// 拥有已加载的骨架实例与动画状态。所有动画轨道的变更都必须经过
// AnimationLayerSystem，UI 代码不应直接修改 State。
type SkeletonComponent struct {
	// AssetKey 资源键（如 "robot"）
	AssetKey string

	// Generation 资源代数，每次加载/释放递增，0 表示从未加载
	Generation uint64

	// Skeleton 骨架实例，加载失败时为 nil
	Skeleton *spine.Skeleton

	// State 动画状态（轨道 0 为身体动画，轨道 1 专用于口型）
	State *spine.AnimationState

	// Available 当前骨架包含的动画名集合（AvailableAnimationSet）
	Available map[string]bool

	// AnimationNames 动画名列表（骨架数据顺序），用于调试轮播
	AnimationNames []string

	// Geometry 缓存的包围盒，nil 表示尚未计算
	Geometry *SkeletonGeometry

	// Pages 图集页图片，Key 为页文件名；缺失的页以纯色块渲染
	Pages map[string]*ebiten.Image

	// PremultipliedAlpha 图集页是否为预乘 Alpha
	PremultipliedAlpha bool

	// Paused 全局播放控制，true 时动画时间不推进
	Paused bool

	// LoadError 最近一次加载失败的原因，渲染时显示占位提示
	LoadError error
}

// AimBoneComponent 视线控制骨骼
type AimBoneComponent struct {
	// BoneName 骨骼名（默认 "crosshair"）
	BoneName string

	// Handle 解析后的句柄
	Handle BoneHandle
}
