package app

import (
	"testing"

	"github.com/decker502/avatarstage/pkg/components"
	"github.com/decker502/avatarstage/pkg/config"
	"github.com/decker502/avatarstage/pkg/embedded"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    components.DisplayMode
		wantErr bool
	}{
		{"", components.DisplayModeFrame, false},
		{"frame", components.DisplayModeFrame, false},
		{"Fullscreen", components.DisplayModeFullscreen, false},
		{"window", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestScriptPath(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"demo", "data/scripts/demo.yaml"},
		{"demo.yaml", "data/scripts/demo.yaml"},
		{"data/other/talk.yaml", "data/other/talk.yaml"},
	}
	for _, tt := range tests {
		if got := ScriptPath(tt.name); got != tt.want {
			t.Errorf("ScriptPath(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestLogicalSize(t *testing.T) {
	tests := []struct {
		name         string
		inW, inH     int
		wantW, wantH int
	}{
		{"window size passes through", 1000, 800, 1000, 800},
		{"clamped to minimum", 100, 50, config.MinWindowWidth, config.MinWindowHeight},
		{"one axis clamped", 1920, 200, 1920, config.MinWindowHeight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := LogicalSize(tt.inW, tt.inH)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("LogicalSize(%d, %d) = %d, %d, want %d, %d", tt.inW, tt.inH, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestLoadScript(t *testing.T) {
	if err := embedded.InitFromDir("../.."); err != nil {
		t.Fatalf("InitFromDir() error: %v", err)
	}

	script, err := loadScript("demo")
	if err != nil {
		t.Fatalf("loadScript(demo) error: %v", err)
	}
	if len(script.Events) == 0 {
		t.Error("demo script has no events")
	}

	if _, err := loadScript("missing"); err == nil {
		t.Error("loadScript(missing) should fail")
	}
}
