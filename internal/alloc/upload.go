package alloc

// Uploader copies bytes into a GPU buffer.
type Uploader interface {
	Upload(buf Buffer, start uint64, data []byte) error
}

// Upload is one queued buffer write.
type Upload struct {
	Buffer Buffer
	Start  uint64
	Data   []byte
}

// Pending returns the number of queued uploads.
func (a *Allocator) Pending() int {
	return len(a.uploads)
}

// Flush sends the oldest queued upload to sink. It reports false when the
// queue was empty. An upload the sink rejects stays at the head of the queue.
func (a *Allocator) Flush(sink Uploader) (bool, error) {
	if len(a.uploads) == 0 {
		return false, nil
	}
	u := a.uploads[0]
	if err := sink.Upload(u.Buffer, u.Start, u.Data); err != nil {
		return false, err
	}
	a.uploads[0] = Upload{}
	a.uploads = a.uploads[1:]
	return true, nil
}

// FlushAll drains the queue in order and returns the number of uploads sent.
func (a *Allocator) FlushAll(sink Uploader) (int, error) {
	n := 0
	for {
		ok, err := a.Flush(sink)
		if err != nil {
			return n, err
		}
		if !ok {
			return n, nil
		}
		n++
	}
}
