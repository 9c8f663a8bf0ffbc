//go:build cgo

package store

// Supported reports whether this build can open SQLite databases.
// go-sqlite3 is a cgo package; without cgo its driver only returns errors.
const Supported = true
