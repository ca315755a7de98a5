//go:build !debug

package skiplist

const debugChecks = false
