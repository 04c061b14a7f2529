// Package observability reports process-level diagnostics for the status
// command.
package observability

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/process"
)

const mb = 1024 * 1024

// ProcessReport is a point-in-time view of the bot process.
type ProcessReport struct {
	Uptime     time.Duration
	AllocMemMb uint64
	NumGC      uint32
	RSSMb      uint64
	CPUPercent float64
}

// Report combines Go runtime memory stats with OS-level process metrics.
// OS metrics are best effort: on platforms where they cannot be read the
// report still carries the runtime numbers.
func Report(started time.Time) ProcessReport {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	rep := ProcessReport{
		Uptime:     time.Since(started).Round(time.Second),
		AllocMemMb: ms.Alloc / mb,
		NumGC:      ms.NumGC,
	}

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return rep
	}
	if mem, err := p.MemoryInfo(); err == nil && mem != nil {
		rep.RSSMb = mem.RSS / mb
	}
	if cpu, err := p.CPUPercent(); err == nil {
		rep.CPUPercent = cpu
	}
	return rep
}

func (r ProcessReport) String() string {
	return fmt.Sprintf("uptime=%s rss=%dMB alloc=%dMB gc=%d cpu=%.1f%%",
		r.Uptime, r.RSSMb, r.AllocMemMb, r.NumGC, r.CPUPercent)
}
