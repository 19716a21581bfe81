package framebuffer

// HostAllocator provides host memory for frame storage.
type HostAllocator interface {
	Alloc(size int) ([]byte, error)
	Free(buf []byte) error
}

// HeapAllocator hands out ordinary garbage-collected memory.
type HeapAllocator struct{}

func (HeapAllocator) Alloc(size int) ([]byte, error) {
	return make([]byte, size), nil
}

func (HeapAllocator) Free([]byte) error {
	return nil
}
