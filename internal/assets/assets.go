// Package assets loads body textures.
package assets

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/vovakirdan/orrery/internal/logging"
	"github.com/vovakirdan/orrery/internal/scene"
)

// ErrUnsupported is returned for references with an unknown image extension.
var ErrUnsupported = errors.New("assets: unsupported image format")

// Loader resolves a texture reference.
type Loader interface {
	Load(ctx context.Context, ref string) (*scene.Texture, error)
}

// DirLoader decodes PNG and JPEG files from a file system.
type DirLoader struct {
	FS fs.FS
	// MaxSize downsamples images whose larger side exceeds it. Zero keeps
	// the original size.
	MaxSize int
}

// NewDirLoader creates a loader over fsys with a 256px size cap.
func NewDirLoader(fsys fs.FS) *DirLoader {
	return &DirLoader{FS: fsys, MaxSize: 256}
}

func supported(ref string) bool {
	switch strings.ToLower(path.Ext(ref)) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}

// Load decodes ref into a texture.
func (l *DirLoader) Load(ctx context.Context, ref string) (*scene.Texture, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !supported(ref) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, ref)
	}
	f, err := l.FS.Open(path.Clean(ref))
	if err != nil {
		return nil, fmt.Errorf("assets: open %s: %w", ref, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("assets: decode %s: %w", ref, err)
	}
	return toTexture(ref, img, l.MaxSize), nil
}

// toTexture samples img into a texture no larger than maxSize on either side.
func toTexture(name string, img image.Image, maxSize int) *scene.Texture {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	tw, th := w, h
	if maxSize > 0 && max(w, h) > maxSize {
		if w >= h {
			tw, th = maxSize, max(1, h*maxSize/w)
		} else {
			tw, th = max(1, w*maxSize/h), maxSize
		}
	}
	pixels := make([]colorful.Color, tw*th)
	for y := 0; y < th; y++ {
		sy := b.Min.Y + y*h/th
		for x := 0; x < tw; x++ {
			sx := b.Min.X + x*w/tw
			c, _ := colorful.MakeColor(img.At(sx, sy))
			pixels[y*tw+x] = c
		}
	}
	return scene.NewTexture(name, tw, th, pixels)
}

// Failure records a reference that could not be loaded.
type Failure struct {
	Ref string
	Err error
}

func (f Failure) Error() string { return f.Ref + ": " + f.Err.Error() }

func (f Failure) Unwrap() error { return f.Err }

// Preload loads refs concurrently and waits for all of them. Failures are
// logged and returned; they never abort the other loads.
func Preload(ctx context.Context, loader Loader, refs []string, logger *log.Logger) (map[string]*scene.Texture, []Failure) {
	logger = logging.OrDiscard(logger)
	textures := make(map[string]*scene.Texture)
	if loader == nil {
		return textures, nil
	}

	seen := make(map[string]bool, len(refs))
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		failures []Failure
	)
	for _, ref := range refs {
		if ref == "" || seen[ref] {
			continue
		}
		seen[ref] = true
		wg.Add(1)
		go func(ref string) {
			defer wg.Done()
			tex, err := loader.Load(ctx, ref)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Warn("texture load failed", "ref", ref, "err", err)
				failures = append(failures, Failure{Ref: ref, Err: err})
				return
			}
			textures[ref] = tex
		}(ref)
	}
	wg.Wait()

	sort.Slice(failures, func(i, j int) bool { return failures[i].Ref < failures[j].Ref })
	logger.Debug("textures preloaded", "loaded", len(textures), "failed", len(failures))
	return textures, failures
}
