package common

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMul4Identity(t *testing.T) {
	a := make([]float32, 16)
	for i := range a {
		a[i] = float32(i + 1)
	}
	id := make([]float32, 16)
	Identity(id)

	out := make([]float32, 16)
	Mul4(out, a, id)
	assert.Equal(t, a, out)

	Mul4(out, id, a)
	assert.Equal(t, a, out)
}

func TestMul4Aliasing(t *testing.T) {
	a := make([]float32, 16)
	Identity(a)
	a[12] = 2 // translate x by 2
	b := make([]float32, 16)
	Identity(b)
	b[12] = 3

	Mul4(a, a, b)
	assert.Equal(t, float32(5), a[12])
}

func TestPerspectiveDepthRange(t *testing.T) {
	const near, far = 0.1, 100
	m := make([]float32, 16)
	Perspective(m, math32.DegToRad(45), 1.5, near, far)

	// z_clip/w_clip for points on the near and far planes (view space looks down -Z).
	depth := func(z float32) float32 {
		zc := m[10]*z + m[14]
		wc := m[11] * z
		return zc / wc
	}
	assert.InDelta(t, 0, depth(-near), 1e-5)
	assert.InDelta(t, 1, depth(-far), 1e-5)
	assert.InDelta(t, m[5]/1.5, m[0], 1e-6)
}

func TestLookAtMovesEyeToOrigin(t *testing.T) {
	eye := math32.Vec3(0, 1, 2)
	m := make([]float32, 16)
	LookAt(m, eye, math32.Vec3(0, 0, 0), math32.Vec3(0, 1, 0))

	x := m[0]*eye.X + m[4]*eye.Y + m[8]*eye.Z + m[12]
	y := m[1]*eye.X + m[5]*eye.Y + m[9]*eye.Z + m[13]
	z := m[2]*eye.X + m[6]*eye.Y + m[10]*eye.Z + m[14]
	assert.InDelta(t, 0, x, 1e-6)
	assert.InDelta(t, 0, y, 1e-6)
	assert.InDelta(t, 0, z, 1e-6)

	// The target ends up straight ahead on -Z.
	tz := m[14]
	assert.Less(t, tz, float32(0))
}

func TestLookAtDegenerateHasNoNaN(t *testing.T) {
	m := make([]float32, 16)
	LookAt(m, math32.Vec3(1, 1, 1), math32.Vec3(1, 1, 1), math32.Vec3(0, 1, 0))
	for _, v := range m {
		assert.False(t, math32.IsNaN(v))
	}
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 3, Coalesce(0, 3, 4))
	assert.Equal(t, "", Coalesce[string]())
}

func TestDecodeImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 3))
	src.Set(1, 2, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	tex, err := DecodeImage(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, uint32(2), tex.Width)
	assert.Equal(t, uint32(3), tex.Height)
	require.Len(t, tex.Pixels, 2*3*4)
	off := (2*2 + 1) * 4
	assert.Equal(t, []byte{10, 20, 30, 255}, tex.Pixels[off:off+4])
}

func TestDecodeImageRejectsNonImage(t *testing.T) {
	_, err := DecodeImage([]byte("v 0 0 0\nf 1 2 3\n"))
	assert.Error(t, err)

	_, err = DecodeImage(nil)
	assert.Error(t, err)
}
