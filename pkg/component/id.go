package component

import (
	"strconv"
	"sync/atomic"
)

// namespaceCounter is the source of component namespaces.
var namespaceCounter uint64

// nextNamespace returns a new namespace of the form c_uid_<n>. Values are
// never reused.
func nextNamespace() string {
	return "c_uid_" + strconv.FormatUint(atomic.AddUint64(&namespaceCounter, 1), 10)
}
