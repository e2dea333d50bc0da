package renderer

import (
	"errors"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/Carmen-Shannon/oxy-tutorial/config"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend records calls and tracks surface and depth sizes like the wgpu backend does.
type fakeBackend struct {
	surfaceW, surfaceH int
	depthW, depthH     int
	configureCalls     int
	presentMode        *wgpu.PresentMode
	registered         []string
	frameOpen          bool
	draws              int
	released           bool
}

var _ RendererBackend = &fakeBackend{}

func (f *fakeBackend) Device() *wgpu.Device   { return nil }
func (f *fakeBackend) Queue() *wgpu.Queue     { return nil }
func (f *fakeBackend) Adapter() *wgpu.Adapter { return nil }
func (f *fakeBackend) Surface() *wgpu.Surface { return nil }

func (f *fakeBackend) ConfigureSurface(width, height int) error {
	f.configureCalls++
	f.surfaceW, f.surfaceH = width, height
	f.depthW, f.depthH = width, height
	return nil
}

func (f *fakeBackend) SetPresentMode(mode PresentMode) { f.presentMode = toWGPUPresentMode(mode) }
func (f *fakeBackend) SurfaceFormat() wgpu.TextureFormat {
	return wgpu.TextureFormatBGRA8UnormSrgb
}
func (f *fakeBackend) SurfaceSize() (int, int)      { return f.surfaceW, f.surfaceH }
func (f *fakeBackend) DepthTextureSize() (int, int) { return f.depthW, f.depthH }

func (f *fakeBackend) RegisterRenderPipeline(p pipeline.Pipeline) error {
	f.registered = append(f.registered, p.PipelineKey())
	return nil
}

func (f *fakeBackend) InitMeshBuffers(bind_group_provider.BindGroupProvider, []byte, []byte, int, wgpu.IndexFormat) error {
	return nil
}
func (f *fakeBackend) InitInstanceBuffer(bind_group_provider.BindGroupProvider, []byte, int) error {
	return nil
}
func (f *fakeBackend) InitBindGroup(bind_group_provider.BindGroupProvider, wgpu.BindGroupLayoutDescriptor) error {
	return nil
}
func (f *fakeBackend) InitTextureView(bind_group_provider.BindGroupProvider, int, common.TextureStagingData) error {
	return nil
}
func (f *fakeBackend) InitSampler(bind_group_provider.BindGroupProvider, int, common.SamplerStagingData) error {
	return nil
}
func (f *fakeBackend) WriteBuffers([]bind_group_provider.BufferWrite) error { return nil }

func (f *fakeBackend) BeginFrame(wgpu.Color) error {
	if f.frameOpen {
		return ErrFrameInProgress
	}
	f.frameOpen = true
	return nil
}

func (f *fakeBackend) DrawCall(pipeline.Pipeline, bind_group_provider.BindGroupProvider, bind_group_provider.BindGroupProvider, []bind_group_provider.BindGroupProvider) error {
	f.draws++
	return nil
}

func (f *fakeBackend) EndFrame() error { return nil }
func (f *fakeBackend) Present()        { f.frameOpen = false }
func (f *fakeBackend) Release()        { f.released = true }

type fakeTarget struct{ w, h int }

func (t fakeTarget) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (t fakeTarget) Width() int                                 { return t.w }
func (t fakeTarget) Height() int                                { return t.h }

func newTestRenderer(t *testing.T, opts ...RendererBuilderOption) (Renderer, *fakeBackend) {
	t.Helper()
	fb := &fakeBackend{}
	r, err := NewRenderer(BackendTypeWGPU, fakeTarget{w: 640, h: 480}, append(opts, withBackend(fb))...)
	require.NoError(t, err)
	return r, fb
}

func TestNewRendererConfiguresAtWindowSize(t *testing.T) {
	r, fb := newTestRenderer(t)

	w, h := r.SurfaceSize()
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)
	assert.Equal(t, 1, fb.configureCalls)
	assert.Nil(t, fb.presentMode)
}

func TestNewRendererPresentModeOption(t *testing.T) {
	_, fb := newTestRenderer(t, WithPresentMode(PresentModeVSync))
	require.NotNil(t, fb.presentMode)
	assert.Equal(t, wgpu.PresentModeFifo, *fb.presentMode)
}

func TestResizeUpdatesSurfaceAndDepth(t *testing.T) {
	r, _ := newTestRenderer(t)

	require.NoError(t, r.Resize(800, 600))

	sw, sh := r.SurfaceSize()
	dw, dh := r.DepthTextureSize()
	assert.Equal(t, [2]int{800, 600}, [2]int{sw, sh})
	assert.Equal(t, [2]int{sw, sh}, [2]int{dw, dh})
}

func TestResizeZeroAreaIsNoop(t *testing.T) {
	r, fb := newTestRenderer(t)

	for _, size := range [][2]int{{0, 0}, {0, 600}, {800, 0}, {-1, 10}} {
		require.NoError(t, r.Resize(size[0], size[1]))
	}

	assert.Equal(t, 1, fb.configureCalls)
	sw, sh := r.SurfaceSize()
	dw, dh := r.DepthTextureSize()
	assert.Equal(t, [2]int{640, 480}, [2]int{sw, sh})
	assert.Equal(t, [2]int{640, 480}, [2]int{dw, dh})
}

func TestReconfigureUsesCurrentSize(t *testing.T) {
	r, fb := newTestRenderer(t)
	require.NoError(t, r.Resize(1024, 768))

	require.NoError(t, r.Reconfigure())

	assert.Equal(t, 3, fb.configureCalls)
	w, h := r.SurfaceSize()
	assert.Equal(t, [2]int{1024, 768}, [2]int{w, h})
}

func TestRegisterPipelinesSkipsExistingKeys(t *testing.T) {
	r, fb := newTestRenderer(t)
	p := pipeline.NewPipeline("scene")

	require.NoError(t, r.RegisterPipelines(p, pipeline.NewPipeline("scene")))
	require.NoError(t, r.RegisterPipelines(p))

	assert.Equal(t, []string{"scene"}, fb.registered)
	assert.Same(t, p, r.Pipeline("scene"))
	assert.Len(t, r.Pipelines(), 1)
}

func TestDrawCallUnknownPipeline(t *testing.T) {
	r, fb := newTestRenderer(t)
	mesh := bind_group_provider.NewBindGroupProvider("mesh")

	err := r.DrawCall("missing", mesh, nil, nil)

	assert.Error(t, err)
	assert.Zero(t, fb.draws)
}

func TestBeginFrameTwiceRejected(t *testing.T) {
	r, _ := newTestRenderer(t)

	require.NoError(t, r.BeginFrame(wgpu.Color{}))
	assert.ErrorIs(t, r.BeginFrame(wgpu.Color{}), ErrFrameInProgress)

	r.Present()
	assert.NoError(t, r.BeginFrame(wgpu.Color{}))
}

func TestReleaseReleasesBackend(t *testing.T) {
	r, fb := newTestRenderer(t)
	r.Release()
	assert.True(t, fb.released)
}

func TestClassifySurfaceError(t *testing.T) {
	tests := []struct {
		msg  string
		want error
	}{
		{"Lost", ErrSurfaceLost},
		{"surface status: lost", ErrSurfaceLost},
		{"Outdated", ErrSurfaceOutdated},
		{"Timeout", ErrSurfaceTimeout},
		{"OutOfMemory", ErrOutOfMemory},
		{"out_of_memory", ErrOutOfMemory},
		{"Device-Lost", ErrDeviceLost},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			err := classifySurfaceError(errors.New(tt.msg))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	other := classifySurfaceError(errors.New("something else"))
	for _, s := range []error{ErrSurfaceLost, ErrSurfaceOutdated, ErrSurfaceTimeout, ErrOutOfMemory, ErrDeviceLost} {
		assert.NotErrorIs(t, other, s)
	}
	assert.NoError(t, classifySurfaceError(nil))
}

func TestClassifySurfaceErrorStatusNames(t *testing.T) {
	tests := map[wgpu.SurfaceGetCurrentTextureStatus]error{
		wgpu.SurfaceGetCurrentTextureStatusTimeout:     ErrSurfaceTimeout,
		wgpu.SurfaceGetCurrentTextureStatusOutdated:    ErrSurfaceOutdated,
		wgpu.SurfaceGetCurrentTextureStatusLost:        ErrSurfaceLost,
		wgpu.SurfaceGetCurrentTextureStatusOutOfMemory: ErrOutOfMemory,
		wgpu.SurfaceGetCurrentTextureStatusDeviceLost:  ErrDeviceLost,
	}
	for status, want := range tests {
		t.Run(status.String(), func(t *testing.T) {
			err := classifySurfaceError(errors.New("wgpu.(*Surface).GetCurrentTexture(): " + status.String()))
			assert.ErrorIs(t, err, want)
		})
	}
}

func newSizedBackend(width, height int) *wgpuRendererBackendImpl {
	return &wgpuRendererBackendImpl{
		mu:            &sync.Mutex{},
		surfaceWidth:  width,
		surfaceHeight: height,
		depthWidth:    width,
		depthHeight:   height,
	}
}

func TestResizeTargetsKeepsSizesOnDepthFailure(t *testing.T) {
	b := newSizedBackend(640, 480)
	configured := false
	b.createDepthTarget = func(int, int) (*wgpu.Texture, *wgpu.TextureView, error) {
		return nil, nil, errors.New("allocation failed")
	}
	b.configureSurface = func(*wgpu.SurfaceConfiguration) { configured = true }

	err := b.resizeTargets(&wgpu.SurfaceConfiguration{Width: 1920, Height: 1080})

	assert.Error(t, err)
	assert.False(t, configured)
	sw, sh := b.SurfaceSize()
	dw, dh := b.DepthTextureSize()
	assert.Equal(t, []int{640, 480}, []int{sw, sh})
	assert.Equal(t, []int{sw, sh}, []int{dw, dh})
}

func TestResizeTargetsCommitsBothSizes(t *testing.T) {
	b := newSizedBackend(640, 480)
	var depthSize []int
	var configuredSize []uint32
	b.createDepthTarget = func(w, h int) (*wgpu.Texture, *wgpu.TextureView, error) {
		depthSize = []int{w, h}
		return nil, nil, nil
	}
	b.configureSurface = func(c *wgpu.SurfaceConfiguration) {
		configuredSize = []uint32{c.Width, c.Height}
	}

	require.NoError(t, b.resizeTargets(&wgpu.SurfaceConfiguration{
		Format: wgpu.TextureFormatBGRA8UnormSrgb,
		Width:  800,
		Height: 600,
	}))

	assert.Equal(t, []int{800, 600}, depthSize)
	assert.Equal(t, []uint32{800, 600}, configuredSize)
	sw, sh := b.SurfaceSize()
	dw, dh := b.DepthTextureSize()
	assert.Equal(t, []int{800, 600}, []int{sw, sh})
	assert.Equal(t, []int{800, 600}, []int{dw, dh})
	assert.Equal(t, wgpu.TextureFormatBGRA8UnormSrgb, b.SurfaceFormat())
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(classifySurfaceError(errors.New("OutOfMemory"))))
	assert.True(t, IsFatal(ErrDeviceLost))
	assert.False(t, IsFatal(ErrSurfaceLost))
	assert.False(t, IsFatal(ErrSurfaceTimeout))
}

func TestSelectSurfaceFormat(t *testing.T) {
	f, err := selectSurfaceFormat([]wgpu.TextureFormat{wgpu.TextureFormatBGRA8Unorm, wgpu.TextureFormatBGRA8UnormSrgb})
	require.NoError(t, err)
	assert.Equal(t, wgpu.TextureFormatBGRA8UnormSrgb, f)

	f, err = selectSurfaceFormat([]wgpu.TextureFormat{wgpu.TextureFormatRGBA16Float, wgpu.TextureFormatBGRA8Unorm})
	require.NoError(t, err)
	assert.Equal(t, wgpu.TextureFormatRGBA16Float, f)

	_, err = selectSurfaceFormat(nil)
	assert.Error(t, err)
}

func TestIsSRGBFormat(t *testing.T) {
	assert.True(t, isSRGBFormat(wgpu.TextureFormatRGBA8UnormSrgb))
	assert.True(t, isSRGBFormat(wgpu.TextureFormatBGRA8UnormSrgb))
	assert.False(t, isSRGBFormat(wgpu.TextureFormatBGRA8Unorm))
}

func TestSelectPresentMode(t *testing.T) {
	supported := []wgpu.PresentMode{wgpu.PresentModeFifo, wgpu.PresentModeMailbox}

	m, err := selectPresentMode(nil, supported)
	require.NoError(t, err)
	assert.Equal(t, wgpu.PresentModeFifo, m)

	m, err = selectPresentMode(toWGPUPresentMode(PresentModeMailbox), supported)
	require.NoError(t, err)
	assert.Equal(t, wgpu.PresentModeMailbox, m)

	m, err = selectPresentMode(toWGPUPresentMode(PresentModeUncapped), supported)
	require.NoError(t, err)
	assert.Equal(t, wgpu.PresentModeFifo, m)

	_, err = selectPresentMode(nil, nil)
	assert.Error(t, err)
}

func TestParsePresentMode(t *testing.T) {
	for name, want := range map[string]PresentMode{
		"":          PresentModeAuto,
		"fifo":      PresentModeVSync,
		"immediate": PresentModeUncapped,
		"Mailbox":   PresentModeMailbox,
	} {
		got, err := ParsePresentMode(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := ParsePresentMode("triple")
	assert.Error(t, err)
	assert.Nil(t, toWGPUPresentMode(PresentModeAuto))
}

func TestParsePresentModeAgreesWithConfig(t *testing.T) {
	for _, name := range config.PresentModes {
		_, err := ParsePresentMode(name)
		assert.NoError(t, err, name)
	}
	for _, name := range []string{"vsync", "uncapped", "triple"} {
		_, err := ParsePresentMode(name)
		assert.Error(t, err, name)

		cfg := config.Default()
		cfg.Renderer.PresentMode = name
		assert.Error(t, cfg.Validate(), name)
	}
}

func TestPadToAlignment(t *testing.T) {
	assert.Len(t, padToAlignment(make([]byte, 10), 4), 12)
	assert.Len(t, padToAlignment(make([]byte, 12), 4), 12)

	padded := padToAlignment([]byte{1, 2, 3, 4, 5, 6}, 4)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 0, 0}, padded)
}

func TestMergeBindGroupLayoutsOrsVisibility(t *testing.T) {
	vs := map[int]wgpu.BindGroupLayoutDescriptor{
		1: {Entries: []wgpu.BindGroupLayoutEntry{{Binding: 0, Visibility: wgpu.ShaderStageVertex}}},
	}
	fs := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{{Binding: 0, Visibility: wgpu.ShaderStageFragment}}},
		1: {Entries: []wgpu.BindGroupLayoutEntry{{Binding: 0, Visibility: wgpu.ShaderStageFragment}}},
	}

	merged := mergeBindGroupLayouts(vs, fs)

	require.Len(t, merged, 2)
	require.Len(t, merged[1].Entries, 1)
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, merged[1].Entries[0].Visibility)
	assert.Equal(t, wgpu.ShaderStageFragment, merged[0].Entries[0].Visibility)
}
