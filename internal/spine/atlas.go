// Package spine provides a small skeletal animation runtime that reads the
// Spine text atlas format and a subset of the Spine JSON skeleton format.
//
// The runtime covers what the avatar needs: a bone hierarchy with world
// transforms, region attachments, translate-only transform constraints,
// bone and attachment timelines, and a multi-track AnimationState with
// queued entries and crossfade mixing.
package spine

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Atlas is a parsed texture atlas: a list of pages and the regions packed
// into them.
type Atlas struct {
	// Pages is the list of texture pages in file order
	Pages []*AtlasPage

	// Regions is the list of regions in file order
	Regions []*AtlasRegion
}

// AtlasPage is a single texture page referenced by an atlas.
type AtlasPage struct {
	// Name is the image file name of the page, e.g., "Robot.png"
	Name string

	// Width and Height are the page size in pixels (from the "size" field)
	Width  int
	Height int

	// PremultipliedAlpha is set when the page declares "pma: true"
	PremultipliedAlpha bool
}

// AtlasRegion is a rectangle of a page that region attachments draw from.
type AtlasRegion struct {
	// Name is the region name, matched against attachment paths
	Name string

	// Page is the page this region is packed into
	Page *AtlasPage

	// X, Y, Width, Height is the packed rectangle in page pixels
	X, Y, Width, Height int

	// Rotate is true when the region is stored rotated 90 degrees
	Rotate bool

	// OffsetX and OffsetY are the whitespace stripped from the bottom-left
	OffsetX, OffsetY int

	// OriginalWidth and OriginalHeight are the size before whitespace stripping
	OriginalWidth, OriginalHeight int

	// Index is the frame index for sequences, -1 when not part of a sequence
	Index int
}

// FindRegion returns the first region with the given name, or nil.
func (a *Atlas) FindRegion(name string) *AtlasRegion {
	for _, r := range a.Regions {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// ParseAtlas parses atlas text in either the Spine 3.x layout (xy/size/orig
// fields) or the 4.x layout (bounds/offsets fields).
//
// Layout rules:
//   - a blank line ends the current page; the next name line starts a new page
//   - an unindented "key: value" line is a page field
//   - an unindented line without ':' is a region name
//   - an indented "key: value" line is a field of the current region
func ParseAtlas(data []byte) (*Atlas, error) {
	atlas := &Atlas{}
	scanner := bufio.NewScanner(bytes.NewReader(data))

	var page *AtlasPage
	var region *AtlasRegion
	expectPage := true
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		raw := strings.TrimRight(scanner.Text(), " \t\r")
		if strings.TrimSpace(raw) == "" {
			expectPage = true
			region = nil
			continue
		}

		indented := raw[0] == ' ' || raw[0] == '\t'
		line := strings.TrimSpace(raw)
		key, value, hasField := strings.Cut(line, ":")

		switch {
		case !hasField && !indented && expectPage:
			page = &AtlasPage{Name: line}
			atlas.Pages = append(atlas.Pages, page)
			expectPage = false
			region = nil

		case !hasField && !indented:
			if page == nil {
				return nil, fmt.Errorf("atlas line %d: region %q declared before any page", lineNum, line)
			}
			region = &AtlasRegion{Name: line, Page: page, Index: -1}
			atlas.Regions = append(atlas.Regions, region)

		case hasField && (!indented || region == nil):
			if page == nil {
				return nil, fmt.Errorf("atlas line %d: page field %q before any page", lineNum, key)
			}
			if err := parsePageField(page, strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
				return nil, fmt.Errorf("atlas line %d: %w", lineNum, err)
			}

		case hasField:
			if err := parseRegionField(region, strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
				return nil, fmt.Errorf("atlas line %d: %w", lineNum, err)
			}

		default:
			return nil, fmt.Errorf("atlas line %d: unexpected content %q", lineNum, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read atlas: %w", err)
	}

	for _, r := range atlas.Regions {
		if r.OriginalWidth == 0 && r.OriginalHeight == 0 {
			r.OriginalWidth, r.OriginalHeight = r.Width, r.Height
		}
	}
	return atlas, nil
}

func parsePageField(page *AtlasPage, key, value string) error {
	switch key {
	case "size":
		w, h, err := parseIntPair(value)
		if err != nil {
			return fmt.Errorf("page %q size: %w", page.Name, err)
		}
		page.Width, page.Height = w, h
	case "pma":
		page.PremultipliedAlpha = value == "true"
	}
	// format, filter and repeat only matter to GPU upload and are ignored.
	return nil
}

func parseRegionField(r *AtlasRegion, key, value string) error {
	var err error
	switch key {
	case "xy":
		r.X, r.Y, err = parseIntPair(value)
	case "size":
		r.Width, r.Height, err = parseIntPair(value)
	case "bounds":
		var v []int
		v, err = parseInts(value, 4)
		if err == nil {
			r.X, r.Y, r.Width, r.Height = v[0], v[1], v[2], v[3]
		}
	case "orig":
		r.OriginalWidth, r.OriginalHeight, err = parseIntPair(value)
	case "offset":
		r.OffsetX, r.OffsetY, err = parseIntPair(value)
	case "offsets":
		var v []int
		v, err = parseInts(value, 4)
		if err == nil {
			r.OffsetX, r.OffsetY, r.OriginalWidth, r.OriginalHeight = v[0], v[1], v[2], v[3]
		}
	case "rotate":
		// 4.x stores degrees, 3.x stores a boolean
		r.Rotate = value == "true" || value == "90"
	case "index":
		r.Index, err = strconv.Atoi(value)
	}
	if err != nil {
		return fmt.Errorf("region %q field %q: %w", r.Name, key, err)
	}
	return nil
}

func parseIntPair(value string) (int, int, error) {
	v, err := parseInts(value, 2)
	if err != nil {
		return 0, 0, err
	}
	return v[0], v[1], nil
}

func parseInts(value string, n int) ([]int, error) {
	parts := strings.Split(value, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d comma separated values, got %q", n, value)
	}
	out := make([]int, n)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// SourceCorners returns the page pixel coordinates matching the quad corners
// of RegionAttachment.ComputeWorldVertices (bottom-left, bottom-right,
// top-right, top-left). Page pixels have y pointing down. A rotated region is
// stored turned 90 degrees clockwise, so its packed rectangle is Height wide.
func (r *AtlasRegion) SourceCorners() [8]float32 {
	x, y := float32(r.X), float32(r.Y)
	if r.Rotate {
		x2, y2 := x+float32(r.Height), y+float32(r.Width)
		return [8]float32{x2, y2, x2, y, x, y, x, y2}
	}
	x2, y2 := x+float32(r.Width), y+float32(r.Height)
	return [8]float32{x, y2, x2, y2, x2, y, x, y}
}
