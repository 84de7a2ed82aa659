// Package loader turns a filesystem path into interpreter-ready source
// text. It is the host-side external collaborator spec.md §1 calls out as
// outside the VM's core: argument dispatch, the filesystem, and the byte
// sinks all live here and in main.go, not in the compiler or VM.
package loader

import (
	"fmt"
	"os"
)

// ReadScript reads the Lox source file at path, returning its contents as a
// UTF-8 string ready to hand to the compiler.
func ReadScript(path string) (string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided script path
	if err != nil {
		return "", fmt.Errorf("failed to read script %q: %w", path, err)
	}
	return string(data), nil
}
