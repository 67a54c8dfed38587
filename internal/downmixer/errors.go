package downmixer

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers for the three failure kinds a run can hit. Callers
// classify with errors.Is; the wrapped message carries path and tool
// context.
var (
	ErrPathValidation = errors.New("path validation")
	ErrToolInvocation = errors.New("tool invocation")
	ErrMetadataParse  = errors.New("metadata parse")
)

// Wrap tags err with the provided marker while prefixing operation context.
func Wrap(marker error, operation, detail string, err error) error {
	parts := make([]string, 0, 2)
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if detail = strings.TrimSpace(detail); detail != "" {
		parts = append(parts, detail)
	}
	message := strings.Join(parts, ": ")
	if marker == nil {
		marker = ErrToolInvocation
	}
	if err != nil {
		if message == "" {
			return fmt.Errorf("%w: %w", marker, err)
		}
		return fmt.Errorf("%w: %s: %w", marker, message, err)
	}
	return fmt.Errorf("%w: %s", marker, message)
}
