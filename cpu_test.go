package threadpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHardwareConcurrency(t *testing.T) {
	assert.GreaterOrEqual(t, HardwareConcurrency(), 1)
}

func TestDefaultPoolSize(t *testing.T) {
	subject := New()
	defer subject.Shutdown()
	assert.Equal(t, HardwareConcurrency(), subject.WorkerCount())
}
