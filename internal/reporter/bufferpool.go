package reporter

// framePool recycles the byte slices FramedTransport assembles frames in.
// Slices are allocated on demand; at most count of them are kept.
type framePool struct {
	frames chan []byte
	size   int
}

func newFramePool(size, count int) *framePool {
	return &framePool{frames: make(chan []byte, count), size: size}
}

// get returns an empty slice with room for size bytes.
func (p *framePool) get() []byte {
	select {
	case frame := <-p.frames:
		return frame[:0]
	default:
		return make([]byte, 0, p.size)
	}
}

// put keeps frame for reuse unless it outgrew the pool's size or the pool
// is full.
func (p *framePool) put(frame []byte) {
	if cap(frame) != p.size {
		return
	}
	select {
	case p.frames <- frame:
	default:
	}
}
