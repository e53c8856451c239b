package scenes

import (
	"github.com/decker502/avatarstage/pkg/game"
)

// AvatarScene 需要满足的场景接口，SceneManager 依赖这些接口保存和布局
var (
	_ game.Scene     = (*AvatarScene)(nil)
	_ game.Saveable  = (*AvatarScene)(nil)
	_ game.Resizable = (*AvatarScene)(nil)
)
