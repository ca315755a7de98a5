//go:build !debug

package doublehash

const debugChecks = false
