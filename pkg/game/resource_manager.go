package game

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"log"
	"path"
	"strings"

	"github.com/decker502/avatarstage/internal/spine"
	"github.com/decker502/avatarstage/pkg/config"
	"github.com/decker502/avatarstage/pkg/embedded"
	"github.com/decker502/avatarstage/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// ErrAssetNotFound is returned when an avatar key cannot be resolved to a
// skeleton asset pair, either because the key is not registered or because
// one of its files is missing.
var ErrAssetNotFound = errors.New("asset not found")

// supportedImageFormats lists the formats accepted from the conversation engine.
var supportedImageFormats = map[string]bool{"png": true, "jpeg": true, "jpg": true, "webp": true}

// ReadFunc reads a resource file by path. The default is embedded.ReadFile.
type ReadFunc func(path string) ([]byte, error)

// AvatarData is the parsed, GPU-independent part of an avatar asset.
type AvatarData struct {
	Config   *config.AvatarConfig
	Atlas    *spine.Atlas
	Skeleton *spine.SkeletonData
}

// AvatarAssets is a fully loaded avatar: parsed data plus decoded page images.
// The page images are owned by whoever holds the AvatarAssets and must be
// released with Release when the avatar is swapped or unmounted.
type AvatarAssets struct {
	AvatarData

	// Pages maps atlas page names to images; a page that failed to load is absent
	Pages map[string]*ebiten.Image

	// PremultipliedAlpha is true when any page declares pma or the registry says so
	PremultipliedAlpha bool
}

// Release deallocates all page images.
//
// Returns:
//   - An error joining every page that could not be released. The caller
//     should log it; the assets are unusable afterwards either way.
func (a *AvatarAssets) Release() (err error) {
	for name, img := range a.Pages {
		if img == nil {
			continue
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					err = errors.Join(err, fmt.Errorf("failed to release page %s: %v", name, r))
				}
			}()
			img.Deallocate()
		}()
	}
	a.Pages = nil
	return err
}

// ResourceManager is responsible for loading avatar assets, images received
// from the conversation engine, and fonts.
//
// Thread Safety Note:
// This implementation is NOT thread-safe. All methods must be called from the
// game loop goroutine.
//
// Usage:
//
//	registry, _ := config.LoadAvatarRegistry("data/avatars.yaml")
//	rm := NewResourceManager(registry)
//	assets, err := rm.LoadAvatar("robot")
//	if errors.Is(err, ErrAssetNotFound) {
//	    // show a placeholder instead of the character
//	}
type ResourceManager struct {
	registry      *config.AvatarRegistry
	read          ReadFunc
	imageCache    map[string]*ebiten.Image    // Cache for static images: path -> Image
	fontFaceCache map[float64]*text.GoTextFace // Cache for UI font faces: size -> face
	fontSource    *text.GoTextFaceSource
}

// NewResourceManager creates a ResourceManager reading from the embedded
// filesystem.
//
// Parameters:
//   - registry: The avatar registry used to resolve avatar keys.
func NewResourceManager(registry *config.AvatarRegistry) *ResourceManager {
	return NewResourceManagerWithReader(registry, embedded.ReadFile)
}

// NewResourceManagerWithReader creates a ResourceManager with a custom file
// reader, used by tests and tools that read from disk.
func NewResourceManagerWithReader(registry *config.AvatarRegistry, read ReadFunc) *ResourceManager {
	return &ResourceManager{
		registry:      registry,
		read:          read,
		imageCache:    make(map[string]*ebiten.Image),
		fontFaceCache: make(map[float64]*text.GoTextFace),
	}
}

// Registry returns the avatar registry.
func (rm *ResourceManager) Registry() *config.AvatarRegistry {
	return rm.registry
}

// LoadAvatarData resolves an avatar key and parses its atlas and skeleton.
// No GPU resources are created.
//
// Returns:
//   - An error wrapping ErrAssetNotFound if the key is unknown or a file is missing.
//   - An error describing the parse failure if a file is malformed.
func (rm *ResourceManager) LoadAvatarData(key string) (*AvatarData, error) {
	if rm.registry == nil {
		return nil, fmt.Errorf("%w: no avatar registry loaded", ErrAssetNotFound)
	}
	cfg, err := rm.registry.Lookup(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssetNotFound, err)
	}

	atlasData, err := rm.read(cfg.Atlas)
	if err != nil {
		return nil, fmt.Errorf("%w: atlas %s: %w", ErrAssetNotFound, cfg.Atlas, err)
	}
	atlas, err := spine.ParseAtlas(atlasData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse atlas %s: %w", cfg.Atlas, err)
	}

	skelData, err := rm.read(cfg.Skeleton)
	if err != nil {
		return nil, fmt.Errorf("%w: skeleton %s: %w", ErrAssetNotFound, cfg.Skeleton, err)
	}
	skeleton, err := spine.ParseSkeletonJSON(cfg.Key, skelData, atlas)
	if err != nil {
		return nil, fmt.Errorf("failed to parse skeleton %s: %w", cfg.Skeleton, err)
	}

	return &AvatarData{Config: cfg, Atlas: atlas, Skeleton: skeleton}, nil
}

// LoadAvatar loads the avatar data and decodes its atlas pages. A page image
// that cannot be loaded is logged and skipped; its regions are drawn as flat
// colored quads.
func (rm *ResourceManager) LoadAvatar(key string) (*AvatarAssets, error) {
	data, err := rm.LoadAvatarData(key)
	if err != nil {
		return nil, err
	}

	assets := &AvatarAssets{
		AvatarData:         *data,
		Pages:              make(map[string]*ebiten.Image, len(data.Atlas.Pages)),
		PremultipliedAlpha: data.Config.PremultipliedAlpha,
	}
	dir := path.Dir(data.Config.Atlas)
	for _, page := range data.Atlas.Pages {
		assets.PremultipliedAlpha = assets.PremultipliedAlpha || page.PremultipliedAlpha
		img, err := rm.decodeFile(path.Join(dir, page.Name))
		if err != nil {
			log.Printf("[ResourceManager] Warning: atlas page %s unavailable: %v", page.Name, err)
			continue
		}
		if page.PremultipliedAlpha {
			img = utils.AsPremultiplied(img)
		}
		assets.Pages[page.Name] = ebiten.NewImageFromImage(img)
	}
	log.Printf("[ResourceManager] Loaded avatar %s: %d bones, %d slots, %d animations, %d/%d pages",
		key, len(data.Skeleton.Bones), len(data.Skeleton.Slots), len(data.Skeleton.Animations),
		len(assets.Pages), len(data.Atlas.Pages))
	return assets, nil
}

// LoadImage loads a static image and caches it for future use.
func (rm *ResourceManager) LoadImage(path string) (*ebiten.Image, error) {
	if cachedImage, exists := rm.imageCache[path]; exists {
		return cachedImage, nil
	}
	img, err := rm.decodeFile(path)
	if err != nil {
		return nil, err
	}
	ebitenImg := ebiten.NewImageFromImage(img)
	rm.imageCache[path] = ebitenImg
	return ebitenImg, nil
}

func (rm *ResourceManager) decodeFile(path string) (image.Image, error) {
	data, err := rm.read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file %s: %w", path, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}

// DecodeBase64Image decodes an image pushed by the conversation engine.
//
// Parameters:
//   - format: The declared format ("png", "jpeg", "jpg" or "webp"), case-insensitive.
//   - data: The base64 encoded image bytes.
//
// Returns:
//   - The decoded image (not yet uploaded to the GPU).
//   - An error if the format is unsupported or the payload is corrupt.
func DecodeBase64Image(format, data string) (image.Image, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "image/"))
	if !supportedImageFormats[format] {
		return nil, fmt.Errorf("unsupported image format %q", format)
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 image: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s image: %w", format, err)
	}
	return img, nil
}

// LoadFont returns the built-in UI face at the given size.
func (rm *ResourceManager) LoadFont(size float64) (*text.GoTextFace, error) {
	if face, ok := rm.fontFaceCache[size]; ok {
		return face, nil
	}
	if rm.fontSource == nil {
		source, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
		if err != nil {
			return nil, fmt.Errorf("failed to create font source: %w", err)
		}
		rm.fontSource = source
	}
	face := &text.GoTextFace{
		Source:    rm.fontSource,
		Size:      size,
		Direction: text.DirectionLeftToRight,
	}
	rm.fontFaceCache[size] = face
	return face, nil
}
