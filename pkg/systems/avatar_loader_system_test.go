package systems

import (
	"errors"
	"testing"

	"github.com/decker502/avatarstage/pkg/game"
)

func TestAvatarLoader_LoadPopulatesComponent(t *testing.T) {
	c := newTestCharacter(t, "hawaii_robot", false)
	skel := c.skeleton()

	if skel.Skeleton == nil || skel.State == nil {
		t.Fatal("skeleton not mounted")
	}
	if skel.LoadError != nil {
		t.Errorf("LoadError = %v", skel.LoadError)
	}
	if skel.AssetKey != "hawaii_robot" {
		t.Errorf("AssetKey = %q", skel.AssetKey)
	}
	if !skel.Available["body_hula"] || !skel.Available["mouth_M"] {
		t.Errorf("available set incomplete: %v", skel.Available)
	}
	if len(skel.AnimationNames) != len(skel.Available) {
		t.Error("AnimationNames and Available disagree")
	}
	if !skel.PremultipliedAlpha {
		t.Error("robot atlases are premultiplied")
	}
	if layer := c.layer(); layer.ActiveViseme != "mouth_M" {
		t.Errorf("ActiveViseme = %q, want mouth_M", layer.ActiveViseme)
	}
}

func TestAvatarLoader_UnknownKey(t *testing.T) {
	c := newTestCharacter(t, "robot", false)
	oldGeneration := c.skeleton().Generation

	err := c.loader.Load(c.id, "dragon")
	if !errors.Is(err, game.ErrAssetNotFound) {
		t.Fatalf("err = %v, want ErrAssetNotFound", err)
	}
	skel := c.skeleton()
	if skel.LoadError == nil || skel.Skeleton != nil {
		t.Error("failed load should clear the skeleton and record the error")
	}
	if skel.Generation == oldGeneration {
		t.Error("previous avatar should have been released")
	}
	if c.layers.SetAnimation(c.id, 0, "body_idle", true) {
		t.Error("no animation can play without a skeleton")
	}
}

func TestAvatarLoader_SwapAndRecover(t *testing.T) {
	c := newTestCharacter(t, "robot", false)
	if err := c.loader.Load(c.id, "dragon"); err == nil {
		t.Fatal("expected an error")
	}
	if err := c.loader.Load(c.id, "pink_robot"); err != nil {
		t.Fatal(err)
	}
	skel := c.skeleton()
	if skel.LoadError != nil || skel.Skeleton == nil {
		t.Error("successful load should clear the previous error")
	}
	if skel.Available["body_laugh"] {
		t.Error("available set should come from the new skeleton")
	}
	want := []string{"robot", "dragon", "pink_robot"}
	for i, key := range want {
		if c.source.loads[i] != key {
			t.Errorf("load %d = %q, want %q", i, c.source.loads[i], key)
		}
	}
}

func TestAvatarLoader_ReleaseAll(t *testing.T) {
	c := newTestCharacter(t, "robot", false)
	gen := c.skeleton().Generation
	c.loader.ReleaseAll()
	if c.skeleton().Skeleton != nil || c.skeleton().Generation != gen+1 {
		t.Error("ReleaseAll should unmount and bump the generation")
	}
	c.loader.ReleaseAll()
	if c.skeleton().Generation != gen+1 {
		t.Error("nothing left to release")
	}
}
