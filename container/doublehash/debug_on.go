//go:build debug

package doublehash

const debugChecks = true
