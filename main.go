package main

import (
	"flag"
	"log"

	"github.com/decker502/avatarstage/pkg/app"
	"github.com/decker502/avatarstage/pkg/config"
	"github.com/decker502/avatarstage/pkg/embedded"
	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	avatar := flag.String("avatar", "", "角色资源键（robot、pink_robot、hawaii_robot），默认使用注册表中的默认角色")
	mode := flag.String("mode", "frame", "图片展示模式：frame 或 fullscreen")
	debug := flag.Bool("debug", false, "调试模式：每 3 秒轮播一个动画")
	verbose := flag.Bool("verbose", false, "输出详细日志")
	script := flag.String("script", "", "回放演示会话脚本（如 demo）")
	flag.Parse()

	// 初始化嵌入资源（assetsFS 和 dataFS 在 embed.go 中声明）
	embedded.Init(assetsFS, dataFS)

	gameApp, err := app.NewApp(app.Config{
		Verbose: *verbose,
		Avatar:  *avatar,
		Mode:    *mode,
		Debug:   *debug,
		Script:  *script,
	})
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}

	ebiten.SetWindowSize(config.WindowWidth, config.WindowHeight)
	ebiten.SetWindowSizeLimits(config.MinWindowWidth, config.MinWindowHeight, -1, -1)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetWindowTitle("Avatar Stage")

	if err := ebiten.RunGame(gameApp); err != nil {
		log.Fatal(err)
	}
}
