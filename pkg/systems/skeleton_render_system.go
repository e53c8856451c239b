package systems

import (
	"image"
	"image/color"

	"github.com/decker502/avatarstage/internal/spine"
	"github.com/decker502/avatarstage/pkg/components"
	"github.com/decker502/avatarstage/pkg/ecs"
	"github.com/decker502/avatarstage/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// dimFactor 体验开始前角色的亮度
const dimFactor = 0.55

// SkeletonProjection 骨架世界坐标（Y 轴向上）到屏幕坐标（Y 轴向下）的映射
//
// 缓存的包围盒等比缩放并居中放入渲染区域，
// 所以动画中的骨骼运动不会改变缩放（画面不会抖动）。
type SkeletonProjection struct {
	Scale   float64
	OriginX float64 // 包围盒左边在屏幕上的 X
	OriginY float64 // 包围盒上边在屏幕上的 Y
	Top     float64 // 包围盒上边的世界 Y（OffsetY + Height）
	Left    float64 // 包围盒左边的世界 X
}

// NewSkeletonProjection 计算包围盒到渲染区域的映射
// 任一尺寸为 0 时返回 ok=false
func NewSkeletonProjection(geom components.SkeletonGeometry, surface *components.SurfaceComponent) (SkeletonProjection, bool) {
	scale, ox, oy := utils.FitRect(geom.Width, geom.Height, surface.Width, surface.Height)
	if scale == 0 {
		return SkeletonProjection{}, false
	}
	return SkeletonProjection{
		Scale:   scale,
		OriginX: surface.X + ox,
		OriginY: surface.Y + oy,
		Top:     geom.OffsetY + geom.Height,
		Left:    geom.OffsetX,
	}, true
}

// Project 把世界坐标转换为屏幕坐标
func (p SkeletonProjection) Project(wx, wy float64) (float64, float64) {
	return p.OriginX + (wx-p.Left)*p.Scale, p.OriginY + (p.Top-wy)*p.Scale
}

// SkeletonRenderSystem 渲染骨骼角色
//
// 按骨架的绘制顺序，把每个可见插槽的区域附件作为一个四边形提交给 DrawTriangles。
// 连续使用同一图集页的插槽合并为一批。图集页缺失时使用白色纹理按附件颜色绘制纯色块。
type SkeletonRenderSystem struct {
	entityManager *ecs.EntityManager
	placeholder   *text.GoTextFace // 加载失败提示字体，可为 nil

	white    *ebiten.Image
	vertices []ebiten.Vertex // 顶点数组（复用，避免每帧分配）
	indices  []uint16
}

// NewSkeletonRenderSystem 创建骨骼渲染系统
func NewSkeletonRenderSystem(em *ecs.EntityManager, placeholder *text.GoTextFace) *SkeletonRenderSystem {
	return &SkeletonRenderSystem{
		entityManager: em,
		placeholder:   placeholder,
		vertices:      make([]ebiten.Vertex, 0, 64),
		indices:       make([]uint16, 0, 96),
	}
}

// Draw 绘制所有角色
func (s *SkeletonRenderSystem) Draw(screen *ebiten.Image) {
	entities := ecs.GetEntitiesWith2[*components.SkeletonComponent, *components.SurfaceComponent](s.entityManager)
	for _, id := range entities {
		skel, _ := ecs.GetComponent[*components.SkeletonComponent](s.entityManager, id)
		surface, _ := ecs.GetComponent[*components.SurfaceComponent](s.entityManager, id)
		if !surface.Mounted {
			continue
		}
		if skel.Skeleton == nil {
			s.drawPlaceholder(screen, skel, surface)
			continue
		}
		if skel.Geometry == nil {
			continue
		}
		proj, ok := NewSkeletonProjection(*skel.Geometry, surface)
		if !ok {
			continue
		}
		s.drawSkeleton(screen, skel, proj, surface.Dimmed)
	}
}

func (s *SkeletonRenderSystem) drawSkeleton(screen *ebiten.Image, skel *components.SkeletonComponent, proj SkeletonProjection, dimmed bool) {
	s.vertices = s.vertices[:0]
	s.indices = s.indices[:0]
	var batchImage *ebiten.Image

	flush := func() {
		if len(s.vertices) == 0 {
			return
		}
		op := &ebiten.DrawTrianglesOptions{AntiAlias: true}
		screen.DrawTriangles(s.vertices, s.indices, batchImage, op)
		s.vertices = s.vertices[:0]
		s.indices = s.indices[:0]
	}

	for _, slot := range skel.Skeleton.DrawOrder {
		att := slot.Attachment
		if att == nil || !slot.Bone.Active {
			continue
		}
		img, src := s.source(skel, att)
		if img != batchImage {
			flush()
			batchImage = img
		}

		world := att.ComputeWorldVertices(slot.Bone)
		r, g, b, a := SlotColor(slot, att, dimmed)
		base := uint16(len(s.vertices))
		for i := 0; i < 4; i++ {
			x, y := proj.Project(world[i*2], world[i*2+1])
			s.vertices = append(s.vertices, ebiten.Vertex{
				DstX: float32(x), DstY: float32(y),
				SrcX: src[i*2], SrcY: src[i*2+1],
				ColorR: r, ColorG: g, ColorB: b, ColorA: a,
			})
		}
		// 顶点顺序：左下、右下、右上、左上
		s.indices = append(s.indices, base, base+1, base+2, base+2, base+3, base)
	}
	flush()
}

// source 返回附件使用的纹理与纹理坐标
func (s *SkeletonRenderSystem) source(skel *components.SkeletonComponent, att *spine.RegionAttachment) (*ebiten.Image, [8]float32) {
	if att.Region != nil {
		if page, ok := skel.Pages[att.Region.Page.Name]; ok && page != nil {
			return page, att.Region.SourceCorners()
		}
	}
	if s.white == nil {
		base := ebiten.NewImage(3, 3)
		base.Fill(color.White)
		s.white = base.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
	return s.white, [8]float32{1, 2, 2, 2, 2, 1, 1, 1}
}

// SlotColor 计算插槽与附件颜色相乘后的顶点颜色（直通 Alpha）
func SlotColor(slot *spine.Slot, att *spine.RegionAttachment, dimmed bool) (r, g, b, a float32) {
	r = slot.Color.R * att.Color.R
	g = slot.Color.G * att.Color.G
	b = slot.Color.B * att.Color.B
	a = slot.Color.A * att.Color.A
	if dimmed {
		r *= dimFactor
		g *= dimFactor
		b *= dimFactor
	}
	return r, g, b, a
}

func (s *SkeletonRenderSystem) drawPlaceholder(screen *ebiten.Image, skel *components.SkeletonComponent, surface *components.SurfaceComponent) {
	msg := "Avatar unavailable"
	if skel.AssetKey != "" {
		msg = "Avatar unavailable: " + skel.AssetKey
	}
	if s.placeholder == nil {
		ebitenutil.DebugPrintAt(screen, msg, int(surface.X)+8, int(surface.Y+surface.Height/2))
		return
	}
	w, h := text.Measure(msg, s.placeholder, 0)
	op := &text.DrawOptions{}
	op.GeoM.Translate(surface.X+(surface.Width-w)/2, surface.Y+(surface.Height-h)/2)
	op.ColorScale.ScaleWithColor(color.RGBA{200, 200, 200, 255})
	text.Draw(screen, msg, s.placeholder, op)
}
