// Package threadpool implements a fixed-size worker pool with a companion
// print serializer.
//
// Tasks passed to Submit are executed by a fixed number of goroutines pulling
// from one unbounded FIFO queue. Tasks passed to SubmitPrint are executed one
// at a time, in submission order, by a single dedicated goroutine, so output
// from concurrent tasks never interleaves. Shutdown drains the work queue
// first and the print queue second.
package threadpool
