package assets

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/Faultbox/envscene/internal/engine/model"
	"github.com/Faultbox/envscene/internal/engine/texture"
)

func pngOf(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestManagerLayerPriority(t *testing.T) {
	m := NewManager()
	m.AddFS(fstest.MapFS{
		"a.txt": {Data: []byte("base")},
		"b.txt": {Data: []byte("base-b")},
	})
	m.AddFS(fstest.MapFS{
		"a.txt": {Data: []byte("override")},
	})

	tests := []struct {
		name string
		want string
	}{
		{"a.txt", "override"},
		{"b.txt", "base-b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := m.Load(tt.name)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("got %q, want %q", data, tt.want)
			}
		})
	}

	if _, err := m.Load("missing.txt"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing file error = %v, want ErrNotExist", err)
	}
	if _, err := m.Load("../escape"); err == nil {
		t.Error("invalid path should fail")
	}
}

func TestManagerCache(t *testing.T) {
	m := NewManager()
	m.AddFS(fstest.MapFS{"x": {Data: []byte("1")}})

	for i := 0; i < 3; i++ {
		if _, err := m.Load("x"); err != nil {
			t.Fatalf("Load: %v", err)
		}
	}
	hits, misses := m.cache.Stats()
	if hits != 2 || misses != 1 {
		t.Errorf("stats = %d hits, %d misses; want 2, 1", hits, misses)
	}

	m.Close()
	if _, err := m.Load("x"); err == nil {
		t.Error("closed manager should have no layers")
	}
}

func TestManagerAddDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "hello.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewManager()
	if err := m.AddDir(dir); err != nil {
		t.Fatalf("AddDir: %v", err)
	}
	data, err := fs.ReadFile(m, "hello.txt")
	if err != nil || string(data) != "hi" {
		t.Errorf("ReadFile = %q, %v", data, err)
	}
	f, err := m.Open("hello.txt")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	f.Close()

	if err := m.AddDir(filepath.Join(dir, "hello.txt")); err == nil {
		t.Error("AddDir on a file should fail")
	}
	if err := m.AddDir(filepath.Join(dir, "nope")); err == nil {
		t.Error("AddDir on a missing dir should fail")
	}
}

func newTestLoader(t *testing.T, fsys fs.FS) *Loader {
	t.Helper()
	m := NewManager()
	m.AddFS(fsys)
	l := NewLoader(m, 2)
	t.Cleanup(l.Close)
	return l
}

func flush(t *testing.T, l *Loader) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

func TestLoadTexture(t *testing.T) {
	l := newTestLoader(t, fstest.MapFS{
		"dirt/color.png": {Data: pngOf(t, 4, 2, color.RGBA{255, 0, 0, 255})},
	})

	tex := l.LoadTexture("dirt/color.png")
	tex.ColorSpace = texture.ColorSpaceSRGB
	tex.SetRepeat(1.5, 1.5)
	if tex.Ready() {
		t.Fatal("texture should be empty before dispatch")
	}

	flush(t, l)

	if !tex.Ready() {
		t.Fatal("texture not loaded after flush")
	}
	if b := tex.Image.Bounds(); b.Dx() != 4 || b.Dy() != 2 {
		t.Errorf("size = %v", b)
	}
	if tex.WrapS != texture.WrapRepeat || tex.Repeat[0] != 1.5 {
		t.Error("settings made before the load completed were lost")
	}
	if l.Pending() != 0 {
		t.Errorf("pending = %d", l.Pending())
	}
}

func TestLoadCubeTexture(t *testing.T) {
	fsys := fstest.MapFS{}
	faces := [6]string{"px.png", "nx.png", "py.png", "ny.png", "pz.png", "nz.png"}
	for i, f := range faces {
		fsys[f] = &fstest.MapFile{Data: pngOf(t, 2, 2, color.RGBA{uint8(i * 40), 0, 0, 255})}
	}
	l := newTestLoader(t, fsys)

	cube := l.LoadCubeTexture("env", faces)
	flush(t, l)

	if !cube.Ready() || cube.Size() != 2 {
		t.Fatalf("cube ready=%v size=%d", cube.Ready(), cube.Size())
	}
	if got := cube.Faces[texture.FaceNZ].RGBAAt(0, 0).R; got != 200 {
		t.Errorf("-Z face red = %d, want 200 (face order preserved)", got)
	}
}

func TestLoadFailures(t *testing.T) {
	fsys := fstest.MapFS{
		"bad.png":  {Data: []byte("not an image")},
		"px.png":   {Data: pngOf(t, 2, 2, color.RGBA{A: 255})},
		"wide.png": {Data: pngOf(t, 4, 2, color.RGBA{A: 255})},
	}
	l := newTestLoader(t, fsys)

	var failed []string
	l.OnError(func(name string, err error) {
		if err == nil {
			t.Errorf("%s: nil error", name)
		}
		failed = append(failed, name)
	})

	tex := l.LoadTexture("bad.png")
	missing := l.LoadTexture("missing.png")
	cube := l.LoadCubeTexture("env", [6]string{"px.png", "px.png", "px.png", "px.png", "px.png", "missing.png"})
	uneven := l.LoadCubeTexture("uneven", [6]string{"px.png", "px.png", "px.png", "px.png", "px.png", "wide.png"})
	called := false
	l.LoadGLTF("missing.gltf", func(*model.Model) { called = true })

	flush(t, l)

	if len(failed) != 5 {
		t.Errorf("failures = %v, want 5", failed)
	}
	if tex.Ready() || missing.Ready() || cube.Ready() || uneven.Ready() {
		t.Error("failed loads must leave handles empty")
	}
	if called {
		t.Error("onLoad called for a failed model")
	}
}

func TestDispatchIsNonBlocking(t *testing.T) {
	l := newTestLoader(t, fstest.MapFS{})
	if n := l.Dispatch(); n != 0 {
		t.Errorf("Dispatch on idle loader ran %d completions", n)
	}
}

func TestDecodeHonorsCancel(t *testing.T) {
	l := newTestLoader(t, fstest.MapFS{
		"px.png": {Data: pngOf(t, 2, 2, color.RGBA{A: 255})},
	})
	ctx, cancel := context.WithCancel(context.Background())
	if _, err := l.decode(ctx, "px.png"); err != nil {
		t.Fatalf("decode: %v", err)
	}
	cancel()
	if _, err := l.decode(ctx, "px.png"); !errors.Is(err, context.Canceled) {
		t.Errorf("decode after cancel = %v, want context.Canceled", err)
	}
}

func TestLoadAfterClose(t *testing.T) {
	l := newTestLoader(t, fstest.MapFS{
		"px.png": {Data: pngOf(t, 2, 2, color.RGBA{A: 255})},
	})
	l.Close()

	tex := l.LoadTexture("px.png")
	l.LoadGLTF("fox.gltf", func(*model.Model) {})
	if l.Pending() != 0 {
		t.Errorf("pending = %d after Close, want 0", l.Pending())
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := l.Flush(ctx); err != nil {
		t.Errorf("Flush after Close: %v", err)
	}
	if tex.Ready() {
		t.Error("texture loaded after Close")
	}
}

func TestQueuedUntilDispatch(t *testing.T) {
	l := newTestLoader(t, fstest.MapFS{
		"px.png": {Data: pngOf(t, 2, 2, color.RGBA{A: 255})},
	})
	tex := l.LoadTexture("px.png")

	deadline := time.Now().Add(5 * time.Second)
	for l.Queued() < 1 {
		if time.Now().After(deadline) {
			t.Fatal("load never finished")
		}
		time.Sleep(time.Millisecond)
	}
	if tex.Ready() {
		t.Error("texture applied before Dispatch")
	}
	if n := l.Dispatch(); n != 1 {
		t.Errorf("Dispatch ran %d, want 1", n)
	}
	if !tex.Ready() || l.Queued() != 0 || l.Pending() != 0 {
		t.Errorf("ready=%v queued=%d pending=%d", tex.Ready(), l.Queued(), l.Pending())
	}
}
