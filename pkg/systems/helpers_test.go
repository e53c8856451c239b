package systems

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/decker502/avatarstage/pkg/components"
	"github.com/decker502/avatarstage/pkg/config"
	"github.com/decker502/avatarstage/pkg/ecs"
	"github.com/decker502/avatarstage/pkg/game"
	"github.com/decker502/avatarstage/pkg/utils"
)

// repoRoot 测试从包目录运行，资源路径相对于仓库根目录
const repoRoot = "../.."

func readRepoFile(path string) ([]byte, error) {
	return os.ReadFile(filepath.Join(repoRoot, path))
}

func newTestResourceManager(t *testing.T) *game.ResourceManager {
	t.Helper()
	data, err := readRepoFile("data/avatars.yaml")
	if err != nil {
		t.Fatalf("failed to read avatar registry: %v", err)
	}
	registry, err := config.ParseAvatarRegistry(data)
	if err != nil {
		t.Fatalf("failed to parse avatar registry: %v", err)
	}
	return game.NewResourceManagerWithReader(registry, readRepoFile)
}

// dataOnlySource 只解析骨架数据、不创建 GPU 图片的角色资源来源
type dataOnlySource struct {
	rm    *game.ResourceManager
	loads []string
}

func (s *dataOnlySource) LoadAvatar(key string) (*game.AvatarAssets, error) {
	s.loads = append(s.loads, key)
	data, err := s.rm.LoadAvatarData(key)
	if err != nil {
		return nil, err
	}
	return &game.AvatarAssets{AvatarData: *data, PremultipliedAlpha: data.Config.PremultipliedAlpha}, nil
}

// testCharacter 测试用角色实体及其系统
type testCharacter struct {
	em         *ecs.EntityManager
	id         ecs.EntityID
	dispatcher *PointerDispatcher
	layers     *AnimationLayerSystem
	loader     *AvatarLoaderSystem
	source     *dataOnlySource
}

func newTestCharacter(t *testing.T, key string, debug bool) *testCharacter {
	t.Helper()
	em := ecs.NewEntityManager()
	id := em.CreateEntity()
	ecs.AddComponent(em, id, &components.SkeletonComponent{})
	ecs.AddComponent(em, id, &components.AimBoneComponent{BoneName: "crosshair", Handle: components.InvalidBoneHandle})
	ecs.AddComponent(em, id, &components.GazeComponent{HorizontalScale: 4})
	ecs.AddComponent(em, id, &components.SurfaceComponent{X: 0, Y: 0, Width: 200, Height: 320, Mounted: true})
	ecs.AddComponent(em, id, &components.AnimationLayerComponent{Debug: debug, VisemeMix: 0.06})
	ecs.AddComponent(em, id, &components.IdleCycleComponent{
		Rotation:      []string{"body_laugh", "body_waving", "body_smile", "body_idle"},
		DragThreshold: 5,
	})
	ecs.AddComponent(em, id, &components.ConversationComponent{})
	ecs.AddComponent(em, id, &components.DebugCycleComponent{Interval: 3})

	source := &dataOnlySource{rm: newTestResourceManager(t)}
	loader := NewAvatarLoaderSystem(em, source, AvatarLoaderOptions{DefaultAnimation: "body_idle", InitialViseme: "mouth_M"})
	if key != "" {
		if err := loader.Load(id, key); err != nil {
			t.Fatalf("failed to load %s: %v", key, err)
		}
	}

	return &testCharacter{
		em:         em,
		id:         id,
		dispatcher: NewPointerDispatcher(),
		layers:     NewAnimationLayerSystem(em),
		loader:     loader,
		source:     source,
	}
}

func (c *testCharacter) skeleton() *components.SkeletonComponent {
	skel, _ := ecs.GetComponent[*components.SkeletonComponent](c.em, c.id)
	return skel
}

func (c *testCharacter) layer() *components.AnimationLayerComponent {
	l, _ := ecs.GetComponent[*components.AnimationLayerComponent](c.em, c.id)
	return l
}

func (c *testCharacter) gaze() *components.GazeComponent {
	g, _ := ecs.GetComponent[*components.GazeComponent](c.em, c.id)
	return g
}

func (c *testCharacter) surface() *components.SurfaceComponent {
	s, _ := ecs.GetComponent[*components.SurfaceComponent](c.em, c.id)
	return s
}

func (c *testCharacter) trackName(track int) string {
	st, ok := c.layers.Track(c.id, track)
	if !ok {
		return ""
	}
	return st.Animation
}

// press/move/release 模拟一帧指针采样
func (c *testCharacter) press(x, y float64) {
	c.dispatcher.Feed(utils.PointerSample{X: x, Y: y, Pressed: true, Present: true})
}

func (c *testCharacter) move(x, y float64, pressed bool) {
	c.dispatcher.Feed(utils.PointerSample{X: x, Y: y, Pressed: pressed, Present: true})
}

func (c *testCharacter) release(x, y float64) {
	c.dispatcher.Feed(utils.PointerSample{X: x, Y: y, Pressed: false, Present: true})
}

const epsilon = 1e-9

func approxEqual(a, b float64) bool {
	d := a - b
	return d < epsilon && d > -epsilon
}
