package device

// Batch is the bounded store-and-forward buffer between the sensor and the
// collector. It holds at most limit samples in collection order; the scheduler
// is its only owner, so no locking is needed.
type Batch struct {
	limit   int
	samples []Sample
}

func NewBatch(limit int) *Batch {
	return &Batch{
		limit:   limit,
		samples: make([]Sample, 0, limit),
	}
}

// Append adds s to the batch. It returns false, leaving the batch untouched,
// when the batch is already at capacity.
func (b *Batch) Append(s Sample) bool {
	if len(b.samples) >= b.limit {
		return false
	}
	b.samples = append(b.samples, s)
	return true
}

func (b *Batch) Len() int { return len(b.samples) }

func (b *Batch) Limit() int { return b.limit }

// Clear discards all buffered samples. The backing storage is reused, not
// wiped.
func (b *Batch) Clear() {
	b.samples = b.samples[:0]
}

// Samples returns the buffered samples in collection order. The returned slice
// is only valid until the next Append or Clear.
func (b *Batch) Samples() []Sample { return b.samples }
