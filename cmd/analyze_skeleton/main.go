// analyze_skeleton 检查角色资源：解析注册表中的图集和骨架，
// 输出骨骼、插槽、动画、包围盒以及交互配置引用的动画是否存在。
//
// 用法:
//
//	go run ./cmd/analyze_skeleton                 # 检查所有角色
//	go run ./cmd/analyze_skeleton robot           # 只检查 robot
//	go run ./cmd/analyze_skeleton -root . -v robot
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path"
	"strings"

	"github.com/decker502/avatarstage/internal/spine"
	"github.com/decker502/avatarstage/pkg/config"
	"github.com/decker502/avatarstage/pkg/conversation"
	"github.com/decker502/avatarstage/pkg/embedded"
	"github.com/decker502/avatarstage/pkg/game"
)

func main() {
	root := flag.String("root", ".", "项目根目录（包含 assets/ 和 data/）")
	verbose := flag.Bool("v", false, "列出所有骨骼和插槽")
	flag.Parse()

	if err := embedded.InitFromDir(*root); err != nil {
		log.Fatalf("资源目录无效: %v", err)
	}

	registry, err := config.LoadAvatarRegistry("data/avatars.yaml")
	if err != nil {
		log.Fatalf("加载角色注册表失败: %v", err)
	}
	interaction, err := config.LoadInteractionConfig("data/interaction.yaml")
	if err != nil {
		log.Fatalf("加载交互配置失败: %v", err)
	}

	keys := flag.Args()
	if len(keys) == 0 {
		keys = registry.Keys()
	}

	rm := game.NewResourceManager(registry)
	failed := 0
	for _, key := range keys {
		if !analyze(rm, interaction, key, *verbose) {
			failed++
		}
		fmt.Println()
	}
	failed += checkScripts()

	if failed > 0 {
		fmt.Printf("❌ %d 项检查失败\n", failed)
		os.Exit(1)
	}
	fmt.Println("✅ 所有检查通过")
}

func analyze(rm *game.ResourceManager, interaction *config.InteractionConfig, key string, verbose bool) bool {
	fmt.Printf("=== %s ===\n", key)
	data, err := rm.LoadAvatarData(key)
	if err != nil {
		fmt.Printf("  ❌ 加载失败: %v\n", err)
		return false
	}
	ok := true
	sd := data.Skeleton

	fmt.Printf("  图集: %s (%d 页, %d 区域)\n", data.Config.Atlas, len(data.Atlas.Pages), len(data.Atlas.Regions))
	for _, page := range data.Atlas.Pages {
		pagePath := path.Join(path.Dir(data.Config.Atlas), page.Name)
		status := "✓"
		if !embedded.Exists(pagePath) {
			status = "缺失（以纯色块渲染）"
		}
		fmt.Printf("    页 %s %dx%d pma=%v %s\n", page.Name, page.Width, page.Height, page.PremultipliedAlpha, status)
	}
	fmt.Printf("  骨架: %s (%d 骨骼, %d 插槽, %d 约束)\n", data.Config.Skeleton, len(sd.Bones), len(sd.Slots), len(sd.TransformConstraints))
	if verbose {
		for _, b := range sd.Bones {
			parent := "-"
			if b.Parent != nil {
				parent = b.Parent.Name
			}
			fmt.Printf("    骨骼 %-16s 父 %-12s (%.1f, %.1f) rot=%.1f\n", b.Name, parent, b.X, b.Y, b.Rotation)
		}
		for _, s := range sd.Slots {
			fmt.Printf("    插槽 %-16s 骨骼 %-12s 附件 %s\n", s.Name, s.Bone.Name, s.AttachmentName)
		}
	}

	names := sd.AnimationNames()
	fmt.Printf("  动画 (%d): %s\n", len(names), strings.Join(names, ", "))

	// 视线骨骼
	if sd.FindBone(data.Config.AimBone) == nil {
		fmt.Printf("  ⚠ 视线骨骼 %q 不存在，角色不会跟随指针\n", data.Config.AimBone)
	}

	// 包围盒（与加载时相同：隐藏视线骨骼后计算）
	skeleton := spine.NewSkeleton(sd)
	skeleton.ScaleX, skeleton.ScaleY = data.Config.Scale, data.Config.Scale
	if b := skeleton.FindBone(data.Config.AimBone); b != nil {
		b.Active = false
	}
	skeleton.UpdateWorldTransform()
	if x, y, w, h, visible := skeleton.GetBounds(); visible {
		fmt.Printf("  包围盒: offset=(%.1f, %.1f) size=%.1fx%.1f\n", x, y, w, h)
	} else {
		fmt.Printf("  ❌ 包围盒为空：没有可见附件\n")
		ok = false
	}

	// 交互配置引用的动画
	defaultAnim := data.Config.DefaultAnimation
	if defaultAnim == "" {
		defaultAnim = interaction.Animation.DefaultAnimation
	}
	if sd.FindAnimation(defaultAnim) == nil {
		fmt.Printf("  ❌ 默认动画 %q 不存在\n", defaultAnim)
		ok = false
	}
	if sd.FindAnimation(interaction.Animation.InitialViseme) == nil {
		fmt.Printf("  ⚠ 初始口型 %q 不存在\n", interaction.Animation.InitialViseme)
	}
	var missing []string
	for _, n := range interaction.Animation.IdleRotation {
		if sd.FindAnimation(n) == nil {
			missing = append(missing, n)
		}
	}
	if len(missing) == len(interaction.Animation.IdleRotation) {
		fmt.Printf("  ❌ 点击轮播中的动画全部缺失\n")
		ok = false
	} else if len(missing) > 0 {
		fmt.Printf("  点击轮播跳过: %s\n", strings.Join(missing, ", "))
	}
	return ok
}

// checkScripts 解析 data/scripts 下的所有会话脚本
func checkScripts() int {
	entries, err := embedded.ReadDir("data/scripts")
	if err != nil {
		fmt.Printf("⚠ 无法读取会话脚本目录: %v\n", err)
		return 0
	}
	failed := 0
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
			continue
		}
		p := path.Join("data/scripts", e.Name())
		raw, err := embedded.ReadFile(p)
		if err == nil {
			var script *conversation.Script
			script, err = conversation.ParseScript(raw)
			if err == nil {
				fmt.Printf("脚本 %s: %d 个事件, loop=%v\n", p, len(script.Events), script.Loop)
				continue
			}
		}
		fmt.Printf("❌ 脚本 %s: %v\n", p, err)
		failed++
	}
	return failed
}
