package dedupe

// Option applies a configuration option to the in-memory deduper.
type Option func(*inMemoryDeduper)

// WithCapacity pre-sizes the seen set, usually to the input row count.
func WithCapacity(n int) Option {
	return func(d *inMemoryDeduper) {
		d.capacity = n
	}
}
