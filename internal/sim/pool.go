package sim

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// VecPool recycles acceleration buffers between snapshot steps.
type VecPool struct {
	pool sync.Pool
}

func NewVecPool() *VecPool {
	return &VecPool{
		pool: sync.Pool{
			New: func() interface{} {
				buf := make([]mgl32.Vec3, 0, 64)
				return &buf
			},
		},
	}
}

// Get returns a zeroed buffer of length n.
func (p *VecPool) Get(n int) []mgl32.Vec3 {
	buf := *(p.pool.Get().(*[]mgl32.Vec3))
	if cap(buf) < n {
		buf = make([]mgl32.Vec3, n)
	}
	buf = buf[:n]
	for i := range buf {
		buf[i] = mgl32.Vec3{}
	}
	return buf
}

func (p *VecPool) Put(buf []mgl32.Vec3) {
	buf = buf[:0]
	p.pool.Put(&buf)
}
