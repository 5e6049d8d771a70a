//go:build !linux

package pps

import "fmt"

func requestEdgeLine(chipName string, offset int, onEdge func()) (func() error, error) {
	return nil, fmt.Errorf("gpio edge events not supported on this platform")
}
