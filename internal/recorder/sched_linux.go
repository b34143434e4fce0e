//go:build linux

package recorder

import (
	"log"

	"golang.org/x/sys/unix"
)

// raiseReplayPriority requests SCHED_FIFO for the calling thread so the
// replay loop is not preempted by ordinary processes. Without CAP_SYS_NICE
// the call fails and the loop runs at normal priority; the returned restore
// function undoes whatever was applied.
func raiseReplayPriority() (restore func()) {
	attr := &unix.SchedAttr{
		Size:     unix.SizeofSchedAttr,
		Policy:   unix.SCHED_FIFO,
		Priority: 50,
	}
	if err := unix.SchedSetAttr(0, attr, 0); err != nil {
		log.Printf("replay: realtime priority unavailable (%v)", err)
		return func() {}
	}
	return func() {
		normal := &unix.SchedAttr{
			Size:   unix.SizeofSchedAttr,
			Policy: unix.SCHED_NORMAL,
		}
		if err := unix.SchedSetAttr(0, normal, 0); err != nil {
			log.Printf("replay: restore scheduling policy: %v", err)
		}
	}
}
