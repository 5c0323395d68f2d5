package conv

import (
	"fmt"
	"math"
)

// OverflowError reports a value that does not fit the target type.
type OverflowError struct {
	Value  string
	Target string
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("integer overflow: %s does not fit in %s", e.Value, e.Target)
}

// IntToUint32 converts v to uint32.
func IntToUint32(v int) (uint32, error) {
	if v < 0 || uint64(v) > math.MaxUint32 {
		return 0, &OverflowError{Value: fmt.Sprint(v), Target: "uint32"}
	}
	return uint32(v), nil
}

// Uint64ToInt converts v to int.
func Uint64ToInt(v uint64) (int, error) {
	if v > uint64(math.MaxInt) {
		return 0, &OverflowError{Value: fmt.Sprint(v), Target: "int"}
	}
	return int(v), nil
}

// MustUint32 is like IntToUint32 but panics on overflow.
func MustUint32(v int) uint32 {
	u, err := IntToUint32(v)
	if err != nil {
		panic(err)
	}
	return u
}
