//go:build !cgo

package store

const Supported = false
