package renderer

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// Outcomes of acquiring the next surface texture. BeginFrame wraps the driver error with one
// of these so callers can decide with errors.Is.
var (
	// ErrSurfaceLost means the surface must be reconfigured before the next frame.
	ErrSurfaceLost = errors.New("surface lost")

	// ErrSurfaceOutdated means the surface no longer matches the window; the frame is skipped.
	ErrSurfaceOutdated = errors.New("surface outdated")

	// ErrSurfaceTimeout means no texture became available in time; the frame is skipped.
	ErrSurfaceTimeout = errors.New("surface acquire timed out")

	// ErrOutOfMemory is fatal.
	ErrOutOfMemory = errors.New("out of memory")

	// ErrDeviceLost is fatal.
	ErrDeviceLost = errors.New("device lost")

	// ErrFrameInProgress is returned by BeginFrame when the previous frame was not presented.
	ErrFrameInProgress = errors.New("previous frame not yet presented")
)

// IsFatal reports whether a frame error should end the frame loop.
func IsFatal(err error) bool {
	return errors.Is(err, ErrOutOfMemory) || errors.Is(err, ErrDeviceLost)
}

// classifySurfaceError maps a GetCurrentTexture failure onto the package sentinels by matching
// the wgpu.SurfaceGetCurrentTextureStatus names in a normalized form of the message. The binding
// only returns an error when the validation scope reports one and does not expose the acquire
// status itself, so classification is best effort; unmatched failures are returned wrapped but
// unclassified and the frame is skipped.
func classifySurfaceError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(err.Error()))
	switch {
	case strings.Contains(msg, "outofmemory"):
		return fmt.Errorf("%w: %v", ErrOutOfMemory, err)
	case strings.Contains(msg, "outdated"):
		return fmt.Errorf("%w: %v", ErrSurfaceOutdated, err)
	case strings.Contains(msg, "timeout"):
		return fmt.Errorf("%w: %v", ErrSurfaceTimeout, err)
	case strings.Contains(msg, "devicelost"):
		return fmt.Errorf("%w: %v", ErrDeviceLost, err)
	case strings.Contains(msg, "lost"):
		return fmt.Errorf("%w: %v", ErrSurfaceLost, err)
	}
	return fmt.Errorf("failed to acquire surface texture: %w", err)
}

// isSRGBFormat reports whether a color format applies the sRGB transfer function on write.
func isSRGBFormat(format wgpu.TextureFormat) bool {
	switch format {
	case wgpu.TextureFormatRGBA8UnormSrgb, wgpu.TextureFormatBGRA8UnormSrgb:
		return true
	}
	return false
}

// selectSurfaceFormat picks the first sRGB format the surface supports, falling back to the
// first supported format.
//
// Parameters:
//   - formats: the formats reported by the surface capabilities, in preference order
//
// Returns:
//   - wgpu.TextureFormat: the chosen format
//   - error: error if the surface reports no formats
func selectSurfaceFormat(formats []wgpu.TextureFormat) (wgpu.TextureFormat, error) {
	if len(formats) == 0 {
		return wgpu.TextureFormatUndefined, errors.New("surface reports no supported formats")
	}
	for _, f := range formats {
		if isSRGBFormat(f) {
			return f, nil
		}
	}
	return formats[0], nil
}

// selectPresentMode returns the requested mode when the surface supports it, otherwise the
// surface's first supported mode. A nil request always takes the first mode.
func selectPresentMode(requested *wgpu.PresentMode, supported []wgpu.PresentMode) (wgpu.PresentMode, error) {
	if len(supported) == 0 {
		return wgpu.PresentModeFifo, errors.New("surface reports no supported present modes")
	}
	if requested != nil && slices.Contains(supported, *requested) {
		return *requested, nil
	}
	return supported[0], nil
}

// toWGPUPresentMode converts the engine-facing mode. PresentModeAuto yields nil, which defers
// to the surface.
func toWGPUPresentMode(mode PresentMode) *wgpu.PresentMode {
	var m wgpu.PresentMode
	switch mode {
	case PresentModeVSync:
		m = wgpu.PresentModeFifo
	case PresentModeUncapped:
		m = wgpu.PresentModeImmediate
	case PresentModeMailbox:
		m = wgpu.PresentModeMailbox
	default:
		return nil
	}
	return &m
}

// ParsePresentMode maps a configuration name ("fifo", "immediate" or "mailbox", in any case) onto
// a PresentMode. The empty string selects PresentModeAuto.
func ParsePresentMode(name string) (PresentMode, error) {
	switch strings.ToLower(name) {
	case "":
		return PresentModeAuto, nil
	case "fifo":
		return PresentModeVSync, nil
	case "immediate":
		return PresentModeUncapped, nil
	case "mailbox":
		return PresentModeMailbox, nil
	}
	return PresentModeAuto, fmt.Errorf("unknown present mode %q", name)
}

// padToAlignment returns data extended with zero bytes to a multiple of align. Buffer writes
// must be 4-byte aligned, which odd counts of 16-bit indices are not.
func padToAlignment(data []byte, align int) []byte {
	rem := len(data) % align
	if rem == 0 {
		return data
	}
	padded := make([]byte, len(data)+align-rem)
	copy(padded, data)
	return padded
}
