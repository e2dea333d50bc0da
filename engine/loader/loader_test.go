package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"runtime"
	"testing"

	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/hackpadfs/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cubeOBJ = `# two faces of a cube
mtllib cube.mtl
o Cube
v -1 -1 1
v 1 -1 1
v 1 1 1
v -1 1 1
v 1 -1 -1
v 1 1 -1
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
vn 1 0 0
usemtl Wood
f 1/1/1 2/2/1 3/3/1 4/4/1
f 2/1/2 5/2/2 6/3/2 3/4/2
`

const cubeMTL = `newmtl Wood
Kd 0.8 0.6 0.4
map_Kd wood.png
`

func testPNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func memSource(t *testing.T, files map[string][]byte) AssetSource {
	t.Helper()
	fsys, err := mem.NewFS()
	require.NoError(t, err)
	require.NoError(t, hackpadfs.MkdirAll(fsys, "res", 0o755))
	for name, data := range files {
		p := path.Join("res", name)
		require.NoError(t, hackpadfs.MkdirAll(fsys, path.Dir(p), 0o755))
		require.NoError(t, hackpadfs.WriteFullFile(fsys, p, data, 0o644))
	}
	return NewFSSource(fsys, "res")
}

func newTestLoader(t *testing.T, src AssetSource, options ...LoaderBuilderOption) Loader {
	t.Helper()
	l := NewLoader(src, options...)
	t.Cleanup(l.Release)
	return l
}

// fakeRenderer records GPU uploads without a device.
type fakeRenderer struct {
	renderer.Renderer

	meshes          int
	meshProviders   []bind_group_provider.BindGroupProvider
	failMeshAt      int
	failBindGroupAt int
	indexFormat     wgpu.IndexFormat
	textureBindings []int
	textures        []common.TextureStagingData
	samplerBindings []int
	bindGroups      []wgpu.BindGroupLayoutDescriptor
}

func (f *fakeRenderer) InitMeshBuffers(p bind_group_provider.BindGroupProvider, _, _ []byte, indexCount int, indexFormat wgpu.IndexFormat) error {
	f.meshes++
	if f.meshes == f.failMeshAt {
		return errors.New("out of buffer memory")
	}
	f.indexFormat = indexFormat
	p.SetMesh(nil, nil, indexCount, indexFormat)
	f.meshProviders = append(f.meshProviders, p)
	return nil
}

func (f *fakeRenderer) InitTextureView(_ bind_group_provider.BindGroupProvider, binding int, data common.TextureStagingData) error {
	f.textureBindings = append(f.textureBindings, binding)
	f.textures = append(f.textures, data)
	return nil
}

func (f *fakeRenderer) InitSampler(_ bind_group_provider.BindGroupProvider, binding int, _ common.SamplerStagingData) error {
	f.samplerBindings = append(f.samplerBindings, binding)
	return nil
}

func (f *fakeRenderer) InitBindGroup(_ bind_group_provider.BindGroupProvider, desc wgpu.BindGroupLayoutDescriptor) error {
	f.bindGroups = append(f.bindGroups, desc)
	if len(f.bindGroups) == f.failBindGroupAt {
		return errors.New("bind group rejected")
	}
	return nil
}

func TestLoadTextAndBinary(t *testing.T) {
	src := memSource(t, map[string][]byte{"shader.wgsl": []byte("fn main() {}"), "blob.bin": {0, 1, 2}})
	l := newTestLoader(t, src)

	text, err := l.LoadText(context.Background(), "shader.wgsl")
	require.NoError(t, err)
	assert.Equal(t, "fn main() {}", text)

	bin, err := l.LoadBinary(context.Background(), "blob.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2}, bin)
}

func TestLoadTextInvalidUTF8(t *testing.T) {
	l := newTestLoader(t, memSource(t, map[string][]byte{"bad.txt": {0xff, 0xfe}}))

	_, err := l.LoadText(context.Background(), "bad.txt")
	assert.ErrorIs(t, err, ErrDecode)
}

func TestMissingAssetIsIOError(t *testing.T) {
	l := newTestLoader(t, memSource(t, nil))

	_, err := l.LoadBinary(context.Background(), "missing.bin")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, os.ErrNotExist)
	var ae *AssetError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "load_binary", ae.Op)
}

func TestLoadTextureDecodesAndCaches(t *testing.T) {
	l := newTestLoader(t, memSource(t, map[string][]byte{"tree.png": testPNG(t, 2, 3, color.RGBA{10, 20, 30, 255})}))

	tex, err := l.LoadTexture(context.Background(), "tree.png")
	require.NoError(t, err)
	assert.Equal(t, uint32(2), tex.Width)
	assert.Equal(t, uint32(3), tex.Height)
	assert.Len(t, tex.Pixels, 2*3*4)
	assert.Equal(t, []byte{10, 20, 30, 255}, tex.Pixels[:4])

	again, err := l.LoadTexture(context.Background(), "tree.png")
	require.NoError(t, err)
	assert.Same(t, tex, again)
}

func TestLoadTextureRejectsNonImage(t *testing.T) {
	l := newTestLoader(t, memSource(t, map[string][]byte{"notes.png": []byte("definitely not a png")}))

	_, err := l.LoadTexture(context.Background(), "notes.png")
	assert.ErrorIs(t, err, ErrDecode)
	assert.NotErrorIs(t, err, ErrIO)
}

func TestLoadModelCPUOnly(t *testing.T) {
	l := newTestLoader(t, memSource(t, map[string][]byte{
		"cube.obj": []byte(cubeOBJ),
		"cube.mtl": []byte(cubeMTL),
		"wood.png": testPNG(t, 4, 4, color.RGBA{200, 100, 50, 255}),
	}))

	m, err := l.LoadModel(context.Background(), "cube.obj", nil)
	require.NoError(t, err)

	assert.Equal(t, "cube", m.Name())
	require.Len(t, m.Meshes(), 1)
	mesh := m.Meshes()[0]
	assert.Equal(t, "Cube", mesh.Name)
	assert.Equal(t, 12, mesh.IndexCount)
	assert.Len(t, mesh.IndexData, 12*4)
	// two quads with distinct corner normals share no vertices
	assert.Len(t, mesh.VertexData, 8*32)

	require.Len(t, m.Materials(), 1)
	mat := m.MaterialFor(mesh)
	require.NotNil(t, mat)
	assert.Equal(t, "Wood", mat.Name())
	assert.Equal(t, "wood.png", mat.DiffuseTexturePath())
	require.NotNil(t, mat.DiffuseTexture())
	assert.Equal(t, uint32(4), mat.DiffuseTexture().Width)
	assert.InDelta(t, float32(1.7320508), m.BoundingRadius(), 1e-5)

	assert.Same(t, m, l.Get("cube.obj"))
	assert.Len(t, l.Models(), 1)
}

func TestLoadModelUploadsWithRenderer(t *testing.T) {
	src, err := os.ReadFile("../../res/shader.wgsl")
	require.NoError(t, err)
	fragShader, err := shader.NewShader("shader_fs", shader.ShaderTypeFragment, string(src))
	require.NoError(t, err)

	fr := &fakeRenderer{}
	l := newTestLoader(t, memSource(t, map[string][]byte{
		"cube.obj": []byte(cubeOBJ),
		"cube.mtl": []byte(cubeMTL),
		"wood.png": testPNG(t, 1, 1, color.RGBA{1, 2, 3, 255}),
	}), WithRenderer(fr), WithWorkers(2))

	m, err := l.LoadModel(context.Background(), "cube.obj", fragShader)
	require.NoError(t, err)

	assert.Equal(t, 1, fr.meshes)
	assert.Equal(t, wgpu.IndexFormatUint32, fr.indexFormat)
	assert.Equal(t, []int{0}, fr.textureBindings)
	assert.Equal(t, []byte{1, 2, 3, 255}, fr.textures[0].Pixels)
	assert.Equal(t, []int{1}, fr.samplerBindings)
	require.Len(t, fr.bindGroups, 1)
	assert.Len(t, fr.bindGroups[0].Entries, 2)
	assert.NotNil(t, m.Materials()[0].BindGroupProvider())
}

const twoMaterialOBJ = `mtllib two.mtl
v 0 0 0
v 1 0 0
v 0 1 0
usemtl Red
f 1 2 3
usemtl Blue
f 3 2 1
`

const twoMaterialMTL = `newmtl Red
Kd 1 0 0
newmtl Blue
Kd 0 0 1
`

func TestLoadModelReleasesUploadsOnFailure(t *testing.T) {
	src, err := os.ReadFile("../../res/shader.wgsl")
	require.NoError(t, err)
	fragShader, err := shader.NewShader("shader_fs", shader.ShaderTypeFragment, string(src))
	require.NoError(t, err)
	files := map[string][]byte{
		"two.obj": []byte(twoMaterialOBJ),
		"two.mtl": []byte(twoMaterialMTL),
	}

	t.Run("mesh", func(t *testing.T) {
		fr := &fakeRenderer{failMeshAt: 2}
		l := newTestLoader(t, memSource(t, files), WithRenderer(fr))

		_, err := l.LoadModel(context.Background(), "two.obj", fragShader)

		require.Error(t, err)
		require.Len(t, fr.meshProviders, 1)
		assert.Zero(t, fr.meshProviders[0].IndexCount())
		assert.Empty(t, fr.bindGroups)
		assert.Nil(t, l.Get("two.obj"))
	})

	t.Run("material", func(t *testing.T) {
		fr := &fakeRenderer{failBindGroupAt: 2}
		l := newTestLoader(t, memSource(t, files), WithRenderer(fr))

		_, err := l.LoadModel(context.Background(), "two.obj", fragShader)

		require.Error(t, err)
		require.Len(t, fr.meshProviders, 2)
		for _, p := range fr.meshProviders {
			assert.Zero(t, p.IndexCount())
		}
		assert.Len(t, fr.bindGroups, 2)
		assert.Nil(t, l.Get("two.obj"))
	})
}

func TestLoadModelReusesDecodeWorkers(t *testing.T) {
	files := map[string][]byte{
		"cube.mtl": []byte(cubeMTL),
		"wood.png": testPNG(t, 1, 1, color.RGBA{1, 2, 3, 255}),
	}
	const loads = 20
	for i := range loads {
		files[fmt.Sprintf("cube%d.obj", i)] = []byte(cubeOBJ)
	}
	l := newTestLoader(t, memSource(t, files), WithWorkers(4))
	baseline := runtime.NumGoroutine()

	for i := range loads {
		_, err := l.LoadModel(context.Background(), fmt.Sprintf("cube%d.obj", i), nil)
		require.NoError(t, err)
	}

	assert.LessOrEqual(t, runtime.NumGoroutine(), baseline+2)
}

func TestReleasedLoaderRejectsTexturedModels(t *testing.T) {
	l := NewLoader(memSource(t, map[string][]byte{
		"cube.obj": []byte(cubeOBJ),
		"cube.mtl": []byte(cubeMTL),
		"wood.png": testPNG(t, 1, 1, color.RGBA{1, 2, 3, 255}),
	}))
	l.Release()
	assert.NotPanics(t, l.Release)

	_, err := l.LoadModel(context.Background(), "cube.obj", nil)
	assert.Error(t, err)
}

func TestLoadModelWithoutMaterialsGetsDefault(t *testing.T) {
	obj := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"
	l := newTestLoader(t, memSource(t, map[string][]byte{"tri.obj": []byte(obj)}))

	m, err := l.LoadModel(context.Background(), "tri.obj", nil)
	require.NoError(t, err)

	require.Len(t, m.Materials(), 1)
	assert.Equal(t, 0, m.Meshes()[0].MaterialIndex)
	assert.Equal(t, "default", m.Materials()[0].Name())
}

func TestLoadModelErrorKinds(t *testing.T) {
	tests := []struct {
		name  string
		files map[string][]byte
		asset string
		kind  error
	}{
		{"missing model", nil, "cube.obj", ErrIO},
		{"unsupported format", map[string][]byte{"cube.fbx": {1}}, "cube.fbx", ErrParse},
		{"bad face", map[string][]byte{"bad.obj": []byte("v 0 0 0\nf 1 2 3\n")}, "bad.obj", ErrParse},
		{"missing library", map[string][]byte{"cube.obj": []byte(cubeOBJ)}, "cube.obj", ErrIO},
		{"bad texture", map[string][]byte{
			"cube.obj": []byte(cubeOBJ),
			"cube.mtl": []byte(cubeMTL),
			"wood.png": []byte("nope"),
		}, "cube.obj", ErrDecode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLoader(t, memSource(t, tt.files))
			_, err := l.LoadModel(context.Background(), tt.asset, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestOBJParsing(t *testing.T) {
	b := newOBJLoaderBackend()
	noRead := func(context.Context, string) ([]byte, error) { return nil, errors.New("unexpected read") }

	t.Run("negative indices and missing attributes", func(t *testing.T) {
		obj := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -3 -2 -1\n"
		im, err := b.Import(context.Background(), "tri.obj", []byte(obj), noRead)
		require.NoError(t, err)
		require.Len(t, im.Meshes, 1)
		mesh := im.Meshes[0]
		assert.Equal(t, []uint32{0, 1, 2}, mesh.Indices)
		assert.Equal(t, -1, mesh.MaterialIndex)
		assert.Equal(t, [3]float32{0, 0, 1}, mesh.Vertices[0].Normal)
	})

	t.Run("quad is fan triangulated with shared corners", func(t *testing.T) {
		obj := "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nf 1 2 3 4\n"
		im, err := b.Import(context.Background(), "quad.obj", []byte(obj), noRead)
		require.NoError(t, err)
		assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, im.Meshes[0].Indices)
		assert.Len(t, im.Meshes[0].Vertices, 4)
	})

	t.Run("groups split meshes", func(t *testing.T) {
		obj := "v 0 0 0\nv 1 0 0\nv 0 1 0\ng a\nf 1 2 3\ng b\nf 3 2 1\n"
		im, err := b.Import(context.Background(), "two.obj", []byte(obj), noRead)
		require.NoError(t, err)
		require.Len(t, im.Meshes, 2)
		assert.Equal(t, "a", im.Meshes[0].Name)
		assert.Equal(t, "b", im.Meshes[1].Name)
	})

	t.Run("errors", func(t *testing.T) {
		for _, obj := range []string{
			"v 0 0\n",
			"v 0 0 0\nf 1 1\n",
			"v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n",
			"v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1/x 2 3\n",
			"usemtl nothing\n",
			"# only a comment\n",
		} {
			_, err := b.Import(context.Background(), "bad.obj", []byte(obj), noRead)
			assert.Error(t, err, obj)
		}
	})
}

func TestParseMTL(t *testing.T) {
	mats, err := parseMTL([]byte("newmtl A\nKd 0.5 0.25 1\nd 0.5\nmap_Kd -s 1 1 1 tex\\a.png\nnewmtl B\nTr 0.25\n"), "models")
	require.NoError(t, err)
	require.Len(t, mats, 2)
	assert.Equal(t, [4]float32{0.5, 0.25, 1, 0.5}, mats[0].DiffuseColor)
	assert.Equal(t, "models/tex/a.png", mats[0].DiffuseTexturePath)
	assert.Equal(t, [4]float32{1, 1, 1, 0.75}, mats[1].DiffuseColor)
	assert.Empty(t, mats[1].DiffuseTexturePath)

	_, err = parseMTL([]byte("Kd 1 1 1\n"), ".")
	assert.Error(t, err)
}

func TestHTTPSourceLocation(t *testing.T) {
	src, err := NewHTTPSource("http://localhost:8000/", "wgpu_winit/src/webassembly/res")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/wgpu_winit/src/webassembly/res/happy-tree.png", src.Location("happy-tree.png"))

	src, err = NewHTTPSource("http://localhost:8000/wgpu_winit/src/webassembly/res", "wgpu_winit/src/webassembly/res")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/wgpu_winit/src/webassembly/res/shader.wgsl", src.Location("shader.wgsl"))

	_, err = NewHTTPSource("localhost", "res")
	assert.Error(t, err)
}

func TestHTTPSourcePrefixMatchesWholeSegments(t *testing.T) {
	tests := []struct {
		origin, prefix, want string
	}{
		{"http://h/xres", "res", "http://h/xres/res/a.png"},
		{"http://h/res", "res", "http://h/res/a.png"},
		{"http://h/assets/res/", "res", "http://h/assets/res/a.png"},
		{"http://h/src/webassembly/res", "webassembly/res", "http://h/src/webassembly/res/a.png"},
		{"http://h/mywebassembly/res", "webassembly/res", "http://h/mywebassembly/res/webassembly/res/a.png"},
		{"http://h", "", "http://h/a.png"},
	}
	for _, tt := range tests {
		t.Run(tt.origin+"+"+tt.prefix, func(t *testing.T) {
			src, err := NewHTTPSource(tt.origin, tt.prefix)
			require.NoError(t, err)
			assert.Equal(t, tt.want, src.Location("a.png"))
		})
	}
}

func TestHTTPSourceLoads(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/res/shader.wgsl":
			_, _ = w.Write([]byte("// wgsl"))
		case "/res/tree.png":
			_, _ = w.Write(testPNG(t, 1, 1, color.RGBA{9, 8, 7, 255}))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src, err := NewHTTPSource(srv.URL, "res", WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	l := newTestLoader(t, src)

	text, err := l.LoadText(context.Background(), "shader.wgsl")
	require.NoError(t, err)
	assert.Equal(t, "// wgsl", text)

	tex, err := l.LoadTexture(context.Background(), "tree.png")
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 8, 7, 255}, tex.Pixels)

	_, err = l.LoadBinary(context.Background(), "missing.bin")
	assert.ErrorIs(t, err, ErrIO)
}

func TestHTTPSourceHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("x"))
	}))
	defer srv.Close()

	src, err := NewHTTPSource(srv.URL, "", WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = newTestLoader(t, src).LoadBinary(ctx, "a.bin")
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, context.Canceled)
}
