package exporter

import (
	"os"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// systemSampler publishes host resource usage. CPU steal is derived from
// the cumulative cpu times delta between two cycles, so its gauge only
// appears from the second sampled cycle on.
type systemSampler struct {
	hostname  string
	lastTimes *cpu.TimesStat
}

func newSystemSampler() *systemSampler {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return &systemSampler{hostname: hostname}
}

func (self *systemSampler) sample(metrics *Metrics) {
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		metrics.systemUsage.WithLabelValues("CPU", self.hostname).Set(percents[0])
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		metrics.systemUsage.WithLabelValues("Memory", self.hostname).Set(vm.UsedPercent)
	}
	if times, err := cpu.Times(false); err == nil && len(times) > 0 {
		current := times[0]
		if self.lastTimes != nil {
			metrics.systemUsage.WithLabelValues("CPU-Steal", self.hostname).Set(stealPercent(*self.lastTimes, current))
		}
		self.lastTimes = &current
	}
	if usage, err := disk.Usage("/"); err == nil && usage.Total > 0 {
		metrics.systemUsage.WithLabelValues("Disk Used", self.hostname).Set(float64(usage.Used) / float64(usage.Total))
		metrics.systemUsage.WithLabelValues("Disk Free", self.hostname).Set(float64(usage.Free) / float64(usage.Total))
	}
	if pids, err := process.Pids(); err == nil {
		metrics.systemUsage.WithLabelValues("Process-Count", self.hostname).Set(float64(len(pids)))
	}
}

func stealPercent(prev, current cpu.TimesStat) float64 {
	total := cpuTotal(current) - cpuTotal(prev)
	if total <= 0 {
		return 0
	}
	return (current.Steal - prev.Steal) / total * 100
}

func cpuTotal(t cpu.TimesStat) float64 {
	return t.User + t.System + t.Idle + t.Nice + t.Iowait + t.Irq +
		t.Softirq + t.Steal + t.Guest + t.GuestNice
}
