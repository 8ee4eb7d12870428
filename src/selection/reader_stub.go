//go:build !windows

package selection

import "fmt"

// newPlatformReader is a stub for non-Windows platforms; screen word capture
// requires the UI Automation subsystem.
func newPlatformReader() (Reader, error) {
	return nil, fmt.Errorf("selection reading not implemented for this platform")
}
