package transport

import "fmt"

// stringify renders a metadata value as text without risking a panic from
// exotic types.
func stringify(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case error:
		return val.Error()
	default:
		return fmt.Sprintf("%v", val)
	}
}
