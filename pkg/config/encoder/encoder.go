package encoder

// Encoder handles encoding/decoding of config source data
type Encoder interface {
	Encode(interface{}) ([]byte, error)
	Decode([]byte, interface{}) error
	String() string
}
