package compress

// Nop stores page payloads as plain JSON text. It is the default codec
// and the one legacy rows without a compression name decode through.
type Nop struct {
}

func NewNop() Nop {
	return Nop{}
}

func (n Nop) Encode(data []byte) ([]byte, error) {
	return data, nil
}

func (n Nop) Decode(data []byte) ([]byte, error) {
	return data, nil
}
