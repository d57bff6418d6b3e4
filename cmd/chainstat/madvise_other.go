//go:build !linux

package main

// adviseSequential is a no-op on non-Linux platforms.
func adviseSequential(data []byte) {
	// No-op
}
