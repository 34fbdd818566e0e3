package common

import (
	"runtime"
)

// GetStackTrace returns the current goroutine's stack trace for panic logging
func GetStackTrace() string {
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
