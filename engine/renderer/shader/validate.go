package shader

import (
	"fmt"

	"github.com/gogpu/naga"
)

// Validate compiles the processed WGSL offline so syntax and type errors surface before the
// GPU device sees the module.
//
// Parameters:
//   - s: the shader to check
//
// Returns:
//   - error: the compiler diagnostic, wrapped with the shader key
func Validate(s Shader) error {
	if _, err := naga.Compile(s.Source()); err != nil {
		return fmt.Errorf("shader %s: validate: %w", s.Key(), err)
	}
	return nil
}
