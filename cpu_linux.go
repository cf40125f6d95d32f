//go:build linux

package threadpool

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// availableCPUs counts the CPUs in the affinity mask of the calling thread,
// which reflects taskset and cgroup cpuset restrictions applied after start.
func availableCPUs() int {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return runtime.NumCPU()
	}
	return set.Count()
}
