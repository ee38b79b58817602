package session

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidKey is returned for key identifiers that can't be typed as a single key press.
var ErrInvalidKey = errors.New("invalid key")

// ValidateKey accepts a single printable ASCII character, which covers letters, digits, space
// and punctuation on a US keyboard layout.
func ValidateKey(key string) error {
	if len(key) != 1 || key[0] < 0x20 || key[0] > 0x7e {
		return fmt.Errorf("%w %q: must be a single printable character", ErrInvalidKey, key)
	}
	return nil
}

// PressKey presses and releases a key through the browser's native input channel, then waits
// for the configured press delay.
func (s *Session) PressKey(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := s.page.PressKey(ctx, key); err != nil {
		return fmt.Errorf("failed to press %q: %w", key, err)
	}
	return sleep(ctx, s.pressDelay)
}
