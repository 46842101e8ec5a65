package compress

// Compress encodes page payloads before they hit the store and decodes
// them on the way out.
type Compress interface {
	Encode(data []byte) ([]byte, error)
	Decode(data []byte) ([]byte, error)
}

const (
	KindNop    = ""
	KindGZip   = "gzip"
	KindBrotli = "brotli"
	KindLZ4    = "lz4"
)

// ByName returns the codec registered under name, defaulting to Nop.
func ByName(name string) Compress {
	switch name {
	case KindGZip:
		return NewGZip()
	case KindBrotli:
		return NewBrotli()
	case KindLZ4:
		return NewLZ4()
	default:
		return NewNop()
	}
}
