package ecs

import (
	"reflect"
	"testing"
)

// 测试组件：视线目标和图片框
type testGazeComponent struct {
	X, Y float64
}

type testFrameComponent struct {
	Width, Height float64
}

var (
	gazeType  = reflect.TypeOf(&testGazeComponent{})
	frameType = reflect.TypeOf(&testFrameComponent{})
)

func TestCreateEntity(t *testing.T) {
	em := NewEntityManager()

	// ID 从 1 开始递增，0 保留
	for want := EntityID(1); want <= 3; want++ {
		if id := em.CreateEntity(); id != want {
			t.Errorf("CreateEntity() = %d, want %d", id, want)
		}
	}
}

func TestComponentStorage(t *testing.T) {
	em := NewEntityManager()
	character := em.CreateEntity()
	frame := em.CreateEntity()

	em.AddComponent(character, &testGazeComponent{X: 0.5, Y: -0.25})
	em.AddComponent(frame, &testFrameComponent{Width: 256, Height: 128})

	tests := []struct {
		name  string
		id    EntityID
		typ   reflect.Type
		found bool
	}{
		{"character has gaze", character, gazeType, true},
		{"character has no frame", character, frameType, false},
		{"frame has frame", frame, frameType, true},
		{"unknown entity", 99, gazeType, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := em.HasComponent(tt.id, tt.typ); got != tt.found {
				t.Errorf("HasComponent() = %v, want %v", got, tt.found)
			}
			if _, got := em.GetComponent(tt.id, tt.typ); got != tt.found {
				t.Errorf("GetComponent() found = %v, want %v", got, tt.found)
			}
		})
	}

	comp, _ := em.GetComponent(character, gazeType)
	if g := comp.(*testGazeComponent); g.X != 0.5 || g.Y != -0.25 {
		t.Errorf("gaze = %+v, want (0.5, -0.25)", *g)
	}

	// 同类型组件覆盖
	em.AddComponent(character, &testGazeComponent{X: 1})
	comp, _ = em.GetComponent(character, gazeType)
	if g := comp.(*testGazeComponent); g.X != 1 {
		t.Errorf("AddComponent should replace, got %+v", *g)
	}

	// 不存在的实体上添加组件被忽略
	em.AddComponent(42, &testGazeComponent{})
	if em.Exists(42) {
		t.Error("AddComponent must not create entities")
	}
}

func TestDestroyEntity_Deferred(t *testing.T) {
	em := NewEntityManager()
	ids := []EntityID{em.CreateEntity(), em.CreateEntity(), em.CreateEntity()}
	for _, id := range ids {
		em.AddComponent(id, &testGazeComponent{})
	}

	em.DestroyEntity(ids[0])
	em.DestroyEntity(ids[2])

	// 清理前实体仍可访问
	if !em.HasComponent(ids[0], gazeType) {
		t.Error("entity should survive until RemoveMarkedEntities")
	}

	em.RemoveMarkedEntities()
	remaining := em.GetEntitiesWith(gazeType)
	if len(remaining) != 1 || remaining[0] != ids[1] {
		t.Errorf("remaining = %v, want [%d]", remaining, ids[1])
	}
}

func TestGetEntitiesWith(t *testing.T) {
	em := NewEntityManager()

	both := em.CreateEntity()
	em.AddComponent(both, &testGazeComponent{})
	em.AddComponent(both, &testFrameComponent{})

	gazeOnly := em.CreateEntity()
	em.AddComponent(gazeOnly, &testGazeComponent{})

	frameOnly := em.CreateEntity()
	em.AddComponent(frameOnly, &testFrameComponent{})

	tests := []struct {
		name  string
		types []reflect.Type
		want  []EntityID
	}{
		{"gaze and frame", []reflect.Type{gazeType, frameType}, []EntityID{both}},
		{"gaze", []reflect.Type{gazeType}, []EntityID{both, gazeOnly}},
		{"frame", []reflect.Type{frameType}, []EntityID{both, frameOnly}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := em.GetEntitiesWith(tt.types...)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("GetEntitiesWith() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenericAddAndGetComponent(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()

	AddComponent(em, id, &testGazeComponent{X: 0.3, Y: -0.4})

	// 泛型 API 与反射 API 共享同一份存储
	if !em.HasComponent(id, reflect.TypeOf(&testGazeComponent{})) {
		t.Fatal("component added via generic API should be visible via reflect API")
	}

	pos, ok := GetComponent[*testGazeComponent](em, id)
	if !ok {
		t.Fatal("GetComponent should find the component")
	}
	if pos.X != 0.3 || pos.Y != -0.4 {
		t.Errorf("expected (0.3, -0.4), got (%f, %f)", pos.X, pos.Y)
	}

	if _, ok := GetComponent[*testFrameComponent](em, id); ok {
		t.Error("GetComponent should not find a component that was never added")
	}

	RemoveComponent[*testGazeComponent](em, id)
	if HasComponent[*testGazeComponent](em, id) {
		t.Error("component should be gone after RemoveComponent")
	}
}

func TestGenericQueriesAreOrdered(t *testing.T) {
	em := NewEntityManager()
	for i := 0; i < 20; i++ {
		id := em.CreateEntity()
		AddComponent(em, id, &testGazeComponent{})
		if i%2 == 0 {
			AddComponent(em, id, &testFrameComponent{})
		}
	}

	all := GetEntitiesWith1[*testGazeComponent](em)
	if len(all) != 20 {
		t.Fatalf("expected 20 entities, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1] >= all[i] {
			t.Fatalf("query result not sorted: %v", all)
		}
	}

	both := GetEntitiesWith2[*testGazeComponent, *testFrameComponent](em)
	if len(both) != 10 {
		t.Errorf("expected 10 entities with both components, got %d", len(both))
	}
}

func TestExists(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()
	if !em.Exists(id) {
		t.Fatal("new entity should exist")
	}
	em.DestroyEntity(id)
	em.RemoveMarkedEntities()
	if em.Exists(id) {
		t.Error("entity should not exist after cleanup")
	}
	if em.Exists(0) {
		t.Error("ID 0 is reserved and never exists")
	}
}
