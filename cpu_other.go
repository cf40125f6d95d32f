//go:build !linux

package threadpool

import "runtime"

func availableCPUs() int {
	return runtime.NumCPU()
}
