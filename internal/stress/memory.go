package stress

import "runtime"

// CurrentMemoryKB returns the current process's heap allocation, in
// kilobytes, as reported by the Go runtime. Used by the stress CLI mode to
// print a rough before/after memory delta around a large synthetic ingest.
func CurrentMemoryKB() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.Alloc / 1024
}
