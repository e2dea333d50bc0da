package window

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePlatform replays one batch of events per poll.
type fakePlatform struct {
	w         *engineWindow
	batches   [][]Event
	desc      *wgpu.SurfaceDescriptor
	polls     int
	close     bool
	destroyed int
}

func (f *fakePlatform) pollEvents() {
	if f.polls < len(f.batches) {
		for _, ev := range f.batches[f.polls] {
			f.w.push(ev)
		}
	}
	f.polls++
}

func (f *fakePlatform) shouldClose() bool                          { return f.close }
func (f *fakePlatform) setShouldClose()                            { f.close = true }
func (f *fakePlatform) surfaceDescriptor() *wgpu.SurfaceDescriptor { return f.desc }
func (f *fakePlatform) destroy()                                   { f.destroyed++ }

func newFakeWindow(batches ...[]Event) (*engineWindow, *fakePlatform) {
	w := newEngineWindow(WithTitle("test"), WithWidth(640), WithHeight(480))
	p := &fakePlatform{w: w, batches: batches, desc: &wgpu.SurfaceDescriptor{}}
	w.platform = p
	return w, p
}

func TestRunDispatchesInOrderThenRedraws(t *testing.T) {
	w, _ := newFakeWindow(
		[]Event{CursorMoveEvent{X: 1, Y: 2}, KeyInputEvent{Key: 87, Pressed: true}},
		nil,
		[]Event{CloseRequestedEvent{}},
	)

	var got []Event
	w.Run(func(ev Event) { got = append(got, ev) })

	assert.Equal(t, []Event{
		CursorMoveEvent{X: 1, Y: 2},
		KeyInputEvent{Key: 87, Pressed: true},
		RedrawRequestedEvent{},
		RedrawRequestedEvent{},
		CloseRequestedEvent{},
	}, got)
}

func TestRunTracksResize(t *testing.T) {
	w, _ := newFakeWindow(
		[]Event{ResizeEvent{Width: 0, Height: 0}},
		[]Event{ResizeEvent{Width: 800, Height: 600}},
		[]Event{CloseRequestedEvent{}},
	)

	var sizes [][2]int
	w.Run(func(ev Event) {
		if _, ok := ev.(ResizeEvent); ok {
			sizes = append(sizes, [2]int{w.Width(), w.Height()})
		}
	})

	assert.Equal(t, [][2]int{{0, 0}, {800, 600}}, sizes)
	assert.Equal(t, 800, w.Width())
	assert.Equal(t, 600, w.Height())
}

func TestRequestCloseEndsRun(t *testing.T) {
	w, p := newFakeWindow()

	redraws := 0
	var last Event
	w.Run(func(ev Event) {
		last = ev
		if _, ok := ev.(RedrawRequestedEvent); ok {
			redraws++
			if redraws == 3 {
				w.RequestClose()
			}
		}
	})

	assert.Equal(t, 3, redraws)
	assert.Equal(t, CloseRequestedEvent{}, last)
	assert.Equal(t, 4, p.polls)
}

func TestCloseIsIdempotent(t *testing.T) {
	w, p := newFakeWindow()

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.Equal(t, 1, p.destroyed)
}

func TestUninitializedWindow(t *testing.T) {
	w := newEngineWindow()

	assert.Nil(t, w.SurfaceDescriptor())
	assert.Error(t, w.Close())
	assert.NotPanics(t, func() { w.Run(func(Event) { t.Fatal("unexpected event") }) })
	assert.Equal(t, 1280, w.Width())
}

func TestSurfaceDescriptorFromPlatform(t *testing.T) {
	w, p := newFakeWindow()

	assert.Same(t, p.desc, w.SurfaceDescriptor())
}
