package scenario

import "github.com/vmihailenco/msgpack/v5"

// Marshal serializes a scenario bundle to msgpack, the wire format for
// scenario files exchanged between pricing runs (spec.md §6).
func Marshal(b AG43Scenarios) ([]byte, error) {
	return msgpack.Marshal(b)
}

// Unmarshal reads a scenario bundle previously written by Marshal.
func Unmarshal(data []byte) (AG43Scenarios, error) {
	var b AG43Scenarios
	if err := msgpack.Unmarshal(data, &b); err != nil {
		return AG43Scenarios{}, err
	}
	return b, nil
}
