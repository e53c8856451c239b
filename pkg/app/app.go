// Package app 提供应用的核心包装器
//
// 该包将初始化逻辑从 main 包提取出来，使其可以被桌面端和移动端共用。
// 桌面端通过 main.go 调用 NewApp()，移动端通过 mobile/mobile.go 调用。
package app

import (
	"fmt"
	"io"
	"log"
	"path"
	"strings"

	"github.com/decker502/avatarstage/pkg/components"
	"github.com/decker502/avatarstage/pkg/config"
	"github.com/decker502/avatarstage/pkg/conversation"
	"github.com/decker502/avatarstage/pkg/embedded"
	"github.com/decker502/avatarstage/pkg/game"
	"github.com/decker502/avatarstage/pkg/scenes"
	"github.com/decker502/avatarstage/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/quasilyte/gdata/v2"
)

// 配置文件路径
const (
	avatarRegistryPath    = "data/avatars.yaml"
	interactionConfigPath = "data/interaction.yaml"
	scriptDir             = "data/scripts"
	storageAppName        = "avatarstage"
)

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// Avatar 初始角色资源键，为空则使用注册表中的默认角色
	Avatar string
	// Mode 图片展示模式："frame"（默认）或 "fullscreen"
	Mode string
	// Debug 调试模式：轮播所有动画
	Debug bool
	// Script 演示会话脚本，可以是 data/scripts 下的名称（如 "demo"）或完整路径
	Script string
}

// App 是应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	sceneManager             *game.SceneManager
	scene                    *scenes.AvatarScene
	verbose                  bool
	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建并初始化应用
//
// 调用此函数前，必须先调用 embedded.Init() 初始化嵌入资源。
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	mode, err := ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}

	registry, err := config.LoadAvatarRegistry(avatarRegistryPath)
	if err != nil {
		return nil, fmt.Errorf("角色注册表加载失败: %w", err)
	}
	log.Printf("[Config] 加载角色注册表: %d 个角色, 默认 %s", len(registry.Avatars), registry.Default)

	interaction, err := config.LoadInteractionConfig(interactionConfigPath)
	if err != nil {
		return nil, fmt.Errorf("交互配置加载失败: %w", err)
	}

	var script *conversation.Script
	if cfg.Script != "" {
		script, err = loadScript(cfg.Script)
		if err != nil {
			return nil, err
		}
	}

	store := game.NewOverlayStore(openStorage(), components.OverlayGeometry{
		Width:  interaction.ImageFrame.DefaultWidth,
		Height: interaction.ImageFrame.DefaultHeight,
		Right:  interaction.ImageFrame.DefaultRight,
		Top:    interaction.ImageFrame.DefaultTop,
	})

	resourceManager := game.NewResourceManager(registry)
	sceneManager := game.NewSceneManager()
	scene := scenes.NewAvatarScene(resourceManager, sceneManager, scenes.AvatarSceneOptions{
		AvatarKey:   cfg.Avatar,
		Mode:        mode,
		Debug:       cfg.Debug,
		Interaction: interaction,
		Script:      script,
		Store:       store,
		Width:       config.WindowWidth,
		Height:      config.WindowHeight,
	})
	sceneManager.SwitchTo(scene)

	return &App{
		sceneManager: sceneManager,
		scene:        scene,
		verbose:      cfg.Verbose,
	}, nil
}

// ParseMode 解析图片展示模式，空字符串表示默认的浮动图片框
func ParseMode(mode string) (components.DisplayMode, error) {
	switch components.DisplayMode(strings.ToLower(mode)) {
	case "", components.DisplayModeFrame:
		return components.DisplayModeFrame, nil
	case components.DisplayModeFullscreen:
		return components.DisplayModeFullscreen, nil
	}
	return "", fmt.Errorf("unknown display mode %q (want %q or %q)", mode, components.DisplayModeFrame, components.DisplayModeFullscreen)
}

// ScriptPath 把脚本名称解析为嵌入资源路径
func ScriptPath(name string) string {
	if strings.Contains(name, "/") {
		return name
	}
	if path.Ext(name) == "" {
		name += ".yaml"
	}
	return path.Join(scriptDir, name)
}

func loadScript(name string) (*conversation.Script, error) {
	p := ScriptPath(name)
	data, err := embedded.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("会话脚本加载失败 %s: %w", p, err)
	}
	script, err := conversation.ParseScript(data)
	if err != nil {
		return nil, fmt.Errorf("会话脚本解析失败 %s: %w", p, err)
	}
	return script, nil
}

// openStorage 打开 gdata 存储，失败时返回 nil（图片框几何仅保存在内存中）
func openStorage() *gdata.Manager {
	if err := utils.EnsureStorageDir(storageAppName); err != nil {
		log.Printf("[App] Warning: storage directory unavailable: %v", err)
	} else if dir := utils.StorageLocation(storageAppName); dir != "" {
		log.Printf("[App] Storage directory: %s", dir)
	}
	manager, err := gdata.Open(gdata.Config{AppName: storageAppName})
	if err != nil {
		log.Printf("[App] Warning: gdata unavailable, image frame geometry will not persist: %v", err)
		return nil
	}
	return manager
}

// Update 更新应用逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	// 窗口关闭时保存图片框几何并释放资源
	if ebiten.IsWindowBeingClosed() {
		a.sceneManager.SaveOnExit()
		return ebiten.Termination
	}

	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(config.WindowWidth, config.WindowHeight)
			log.Printf("[App] Delayed SetWindowSize(%d, %d)", config.WindowWidth, config.WindowHeight)
			a.pendingWindowSizeReset = false
		}
	}

	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		if ebiten.IsFullscreen() {
			ebiten.SetFullscreen(false)
			if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
				ebiten.RestoreWindow()
			}
			a.pendingWindowSizeReset = true
			a.windowSizeResetCountdown = 3
			log.Printf("[App] Exit fullscreen, will reset window size in 3 frames")
		} else {
			ebiten.SetFullscreen(true)
		}
	}

	deltaTime := 1.0 / 60.0
	a.sceneManager.Update(deltaTime)
	return nil
}

// Draw 绘制画面
// 每帧调用一次
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(screen)
}

// Layout 返回逻辑屏幕尺寸
// 逻辑尺寸跟随窗口尺寸（图片框几何以视口像素为单位），并通知场景重新布局
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := LogicalSize(outsideWidth, outsideHeight)
	a.sceneManager.Resize(w, h)
	return w, h
}

// LogicalSize 把窗口尺寸限制在最小尺寸之上
func LogicalSize(outsideWidth, outsideHeight int) (int, int) {
	return max(outsideWidth, config.MinWindowWidth), max(outsideHeight, config.MinWindowHeight)
}

// Inbox 返回会话事件入口，外部会话引擎可以在任意 goroutine 推送事件
func (a *App) Inbox() conversation.Port {
	return a.scene.Inbox()
}

// GetSceneManager 返回场景管理器
func (a *App) GetSceneManager() *game.SceneManager {
	return a.sceneManager
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
