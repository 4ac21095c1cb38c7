// internal/nodeid/address.go
package nodeid

import (
	"strconv"
	"strings"
)

// String serializes the address into its canonical path form.
func (a Address) String() string {
	var sb strings.Builder
	for i, segment := range a.Path {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(segment.Kind)
		if segment.Index >= 0 {
			sb.WriteByte('[')
			sb.WriteString(strconv.Itoa(segment.Index))
			sb.WriteByte(']')
		}
	}
	return sb.String()
}
