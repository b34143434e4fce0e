//go:build !linux

package recorder

// raiseReplayPriority is a no-op off Linux.
func raiseReplayPriority() (restore func()) {
	return func() {}
}
