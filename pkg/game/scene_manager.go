package game

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

// SceneManager manages the application's high-level state by controlling which scene is active.
// It ensures only one scene's Update and Draw methods are called at any given time.
type SceneManager struct {
	currentScene Scene
	width        int
	height       int
}

// NewSceneManager creates and returns a new SceneManager instance.
// The manager starts with no active scene; use SwitchTo to set the initial scene.
func NewSceneManager() *SceneManager {
	return &SceneManager{}
}

// SwitchTo changes the active scene to the provided scene.
// The previous scene gets a chance to save its state; the new scene is told
// the current screen size when it is Resizable.
func (sm *SceneManager) SwitchTo(scene Scene) {
	if sm.currentScene != nil && sm.currentScene != scene {
		sm.saveScene(sm.currentScene)
	}
	sm.currentScene = scene
	if r, ok := scene.(Resizable); ok && sm.width > 0 && sm.height > 0 {
		r.Resize(sm.width, sm.height)
	}
}

// GetCurrentScene 返回当前活动的场景
//
// 返回：
//   - Scene: 当前场景，如果没有活动场景则返回 nil
func (sm *SceneManager) GetCurrentScene() Scene {
	return sm.currentScene
}

// Resize 记录逻辑屏幕尺寸并通知当前场景（尺寸不变时不通知）
func (sm *SceneManager) Resize(width, height int) {
	if width == sm.width && height == sm.height {
		return
	}
	sm.width, sm.height = width, height
	if r, ok := sm.currentScene.(Resizable); ok {
		r.Resize(width, height)
	}
}

// SaveOnExit 让当前场景保存状态
// 返回 false 表示保存失败
func (sm *SceneManager) SaveOnExit() bool {
	if sm.currentScene == nil {
		return true
	}
	return sm.saveScene(sm.currentScene)
}

func (sm *SceneManager) saveScene(scene Scene) bool {
	saveable, ok := scene.(Saveable)
	if !ok {
		return true
	}
	if !saveable.SaveOnExit() {
		log.Printf("[SceneManager] Warning: scene failed to save state")
		return false
	}
	return true
}

// Update updates the currently active scene.
// If no scene is active, this method does nothing.
// deltaTime is the time elapsed since the last update in seconds.
func (sm *SceneManager) Update(deltaTime float64) {
	if sm.currentScene != nil {
		sm.currentScene.Update(deltaTime)
	}
}

// Draw renders the currently active scene to the provided screen.
// If no scene is active, this method does nothing.
func (sm *SceneManager) Draw(screen *ebiten.Image) {
	if sm.currentScene != nil {
		sm.currentScene.Draw(screen)
	}
}
