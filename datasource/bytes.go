package datasource

// Bytes is a DataSource over an in-memory byte slice. Its length is known.
type Bytes []byte

var (
	_ DataSource = Bytes(nil)
	_ Spanner    = Bytes(nil)
)

// ByteAt implements DataSource.
func (b Bytes) ByteAt(offset int) byte {
	return b[offset]
}

// Len implements DataSource.
func (b Bytes) Len() (int, bool) {
	return len(b), true
}

// Span implements Spanner.
func (b Bytes) Span(offset, n int) []byte {
	if offset >= len(b) {
		return nil
	}
	end := offset + n
	if end > len(b) {
		end = len(b)
	}
	return b[offset:end:end]
}
