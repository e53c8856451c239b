package conversation

import (
	"encoding/base64"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Script 预先录制的会话事件序列
// 在没有外部会话引擎时用于演示，按时间把事件推送到 Port
type Script struct {
	Name string `yaml:"name"`

	// Loop 播放结束后是否从头开始
	Loop bool `yaml:"loop"`

	// Duration 循环周期（秒），0 表示使用最后一个事件的时间
	Duration float64 `yaml:"duration"`

	Events []ScriptEvent `yaml:"events"`
}

// ScriptEvent 脚本中的单个事件
//
// Type 取值：
//   - state:     State
//   - animation: Name, Layer, Loop
//   - viseme:    Name
//   - image:     Image（资源路径），Format 省略时取扩展名
type ScriptEvent struct {
	At     float64 `yaml:"at"`
	Type   string  `yaml:"type"`
	State  string  `yaml:"state,omitempty"`
	Name   string  `yaml:"name,omitempty"`
	Layer  int     `yaml:"layer,omitempty"`
	Loop   bool    `yaml:"loop,omitempty"`
	Image  string  `yaml:"image,omitempty"`
	Format string  `yaml:"format,omitempty"`
}

// ParseScript 解析 YAML 会话脚本，事件按时间排序（同一时间保持原顺序）
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse conversation script: %w", err)
	}
	for i, ev := range s.Events {
		switch ev.Type {
		case "state", "animation", "viseme", "image":
		default:
			return nil, fmt.Errorf("script %q event %d: unknown type %q", s.Name, i, ev.Type)
		}
		if ev.At < 0 {
			return nil, fmt.Errorf("script %q event %d: negative time %v", s.Name, i, ev.At)
		}
	}
	sort.SliceStable(s.Events, func(i, j int) bool { return s.Events[i].At < s.Events[j].At })
	return &s, nil
}

// period 返回一次循环的时长
func (s *Script) period() float64 {
	if s.Duration > 0 {
		return s.Duration
	}
	if len(s.Events) == 0 {
		return 0
	}
	return s.Events[len(s.Events)-1].At
}

// FileReader 读取资源文件（通常为 embedded.ReadFile）
type FileReader func(path string) ([]byte, error)

// ScriptPlayer 按时间回放脚本事件
type ScriptPlayer struct {
	script *Script
	port   Port
	read   FileReader

	time float64
	next int
	done bool
}

// NewScriptPlayer 创建脚本播放器
// read 用于加载 image 事件引用的图片，可以为 nil（此时 image 事件被跳过）
func NewScriptPlayer(script *Script, port Port, read FileReader) *ScriptPlayer {
	return &ScriptPlayer{script: script, port: port, read: read}
}

// Done 脚本是否已播放完毕（循环脚本永远不会结束）
func (p *ScriptPlayer) Done() bool {
	return p.done
}

// Update 推进播放时间，推送所有到期的事件
func (p *ScriptPlayer) Update(dt float64) {
	if p.done || p.script == nil {
		return
	}
	p.time += dt

	for {
		for p.next < len(p.script.Events) && p.script.Events[p.next].At <= p.time {
			p.emit(p.script.Events[p.next])
			p.next++
		}
		if p.next < len(p.script.Events) {
			return
		}
		period := p.script.period()
		if !p.script.Loop || period <= 0 {
			p.done = true
			return
		}
		if p.time < period {
			return
		}
		p.time -= period
		p.next = 0
	}
}

func (p *ScriptPlayer) emit(ev ScriptEvent) {
	switch ev.Type {
	case "state":
		p.port.Push(StateChanged{State: ev.State})
	case "animation":
		p.port.Push(AnimationChanged{Name: ev.Name, Layer: ev.Layer, Loop: ev.Loop})
	case "viseme":
		p.port.Push(Viseme{Name: ev.Name})
	case "image":
		if p.read == nil {
			return
		}
		data, err := p.read(ev.Image)
		if err != nil {
			log.Printf("[ScriptPlayer] 警告：无法读取图片 %s: %v", ev.Image, err)
			return
		}
		format := ev.Format
		if format == "" {
			format = strings.TrimPrefix(strings.ToLower(filepath.Ext(ev.Image)), ".")
		}
		p.port.Push(ImageChanged{Format: format, Data: base64.StdEncoding.EncodeToString(data)})
	}
}
