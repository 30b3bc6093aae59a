// Package runtimeinfo reports the resource use of the running gcstw process.
package runtimeinfo

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v3/process"
)

// Memory is a snapshot of the process memory footprint.
type Memory struct {
	// Go runtime view
	HeapAlloc  uint64 `json:"heap_alloc_bytes"`
	HeapSys    uint64 `json:"heap_sys_bytes"`
	Goroutines int    `json:"goroutines"`

	// Operating system view. Zero if the process table could not be read.
	RSS uint64 `json:"rss_bytes"`
	VMS uint64 `json:"vms_bytes"`
}

// ReadMemory samples runtime and OS memory statistics. On error the runtime
// fields are still filled in.
func ReadMemory(ctx context.Context) (Memory, error) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	mem := Memory{
		HeapAlloc:  m.Alloc,
		HeapSys:    m.Sys,
		Goroutines: runtime.NumGoroutine(),
	}

	proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid())) // #nosec G115 -- pids fit in int32
	if err != nil {
		return mem, fmt.Errorf("opening process: %w", err)
	}

	info, err := proc.MemoryInfoWithContext(ctx)
	if err != nil {
		return mem, fmt.Errorf("reading process memory: %w", err)
	}

	mem.RSS = info.RSS
	mem.VMS = info.VMS
	return mem, nil
}

// String renders sizes in IEC units, e.g. "rss=12 MiB vms=1.2 GiB heap=3.4 MiB goroutines=1".
func (m Memory) String() string {
	return fmt.Sprintf("rss=%s vms=%s heap=%s goroutines=%d",
		humanize.IBytes(m.RSS), humanize.IBytes(m.VMS), humanize.IBytes(m.HeapAlloc), m.Goroutines)
}
