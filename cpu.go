package threadpool

// HardwareConcurrency reports how many CPUs the current process may run on.
// It never returns less than 1.
func HardwareConcurrency() int {
	if n := availableCPUs(); n > 0 {
		return n
	}
	return 1
}
