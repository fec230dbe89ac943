package wavefront

import (
	"fmt"
	"strings"
	"time"

	"github.com/df07/go-wavefront-tracer/pkg/kernel"
)

// Stats contains statistics about the rendering process
type Stats struct {
	Passes    int                            // Completed sample passes
	Paths     int64                          // Paths shaded by the background stage
	Decisions [kernel.NumDeviceKernels]int64 // Paths per next kernel
	Duration  time.Duration                  // Wall time spent in batches
}

// Decision returns how many paths were sent to kernel k
func (s Stats) Decision(k kernel.DeviceKernel) int64 {
	if int(k) < 0 || int(k) >= kernel.NumDeviceKernels {
		return 0
	}
	return s.Decisions[k]
}

// add merges batch counts into the totals
func (s *Stats) add(counts [kernel.NumDeviceKernels]int, d time.Duration) {
	s.Passes++
	s.Duration += d
	for k, n := range counts {
		s.Decisions[k] += int64(n)
		s.Paths += int64(n)
	}
}

func (s Stats) String() string {
	var parts []string
	for k, n := range s.Decisions {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", kernel.DeviceKernel(k), n))
		}
	}
	return fmt.Sprintf("%d passes, %d paths in %v [%s]", s.Passes, s.Paths, s.Duration.Round(time.Millisecond), strings.Join(parts, " "))
}
