//go:build linux

package metrics

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/pattr-maidachem/uplink-monitor/models"
)

var (
	prevCPUBusy  uint64
	prevCPUTotal uint64
	cpuMu        sync.Mutex
	cpuInited    bool
)

// collectCPUPercent reads /proc/stat and reports busy time as a
// percentage of the delta since the previous call. The first call
// seeds the counters and reports 0.
func collectCPUPercent() float64 {
	cpuMu.Lock()
	defer cpuMu.Unlock()

	f, err := os.Open("/proc/stat")
	if err != nil {
		return 0
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return 0
	}
	// First line: "cpu  user nice system idle iowait irq softirq steal ..."
	fields := strings.Fields(scanner.Text())
	if len(fields) < 5 || fields[0] != "cpu" {
		return 0
	}

	var busy, total uint64
	for i := 1; i < len(fields); i++ {
		v, _ := strconv.ParseUint(fields[i], 10, 64)
		total += v
		if i != 4 && i != 5 { // skip idle and iowait
			busy += v
		}
	}

	if !cpuInited {
		prevCPUBusy, prevCPUTotal = busy, total
		cpuInited = true
		return 0
	}

	dBusy := busy - prevCPUBusy
	dTotal := total - prevCPUTotal
	prevCPUBusy, prevCPUTotal = busy, total

	if dTotal == 0 {
		return 0
	}
	return float64(dBusy) / float64(dTotal) * 100
}

func collectLoadAvg() float64 {
	data, err := os.ReadFile("/proc/loadavg")
	if err != nil {
		return 0
	}
	fields := strings.Fields(string(data))
	if len(fields) < 1 {
		return 0
	}
	load, _ := strconv.ParseFloat(fields[0], 64)
	return load
}

func collectMemInfo() (total, used uint64) {
	var info syscall.Sysinfo_t
	if err := syscall.Sysinfo(&info); err != nil {
		return 0, 0
	}
	unit := uint64(info.Unit)
	total = info.Totalram * unit
	free := info.Freeram * unit
	buffers := info.Bufferram * unit
	used = total - free - buffers
	return
}

// collectSystemMetrics gathers CPU, load and memory counters. The
// caller fills in process uptime.
func collectSystemMetrics() (models.SystemMetrics, error) {
	memTotal, memUsed := collectMemInfo()
	return models.SystemMetrics{
		CPUPercent: collectCPUPercent(),
		LoadAvg:    collectLoadAvg(),
		MemTotal:   memTotal,
		MemUsed:    memUsed,
	}, nil
}

// readNetworkCounters sums /proc/net/dev byte totals over every
// non-loopback interface.
func readNetworkCounters() (netCounters, error) {
	f, err := os.Open("/proc/net/dev")
	if err != nil {
		return netCounters{}, fmt.Errorf("error reading network counters: %w", err)
	}
	defer f.Close()

	var counters netCounters
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		name := strings.TrimSpace(line[:idx])
		if name == "lo" {
			continue
		}

		fields := strings.Fields(line[idx+1:])
		if len(fields) < 9 {
			continue
		}
		rx, _ := strconv.ParseUint(fields[0], 10, 64)
		tx, _ := strconv.ParseUint(fields[8], 10, 64)
		counters.RxBytes += rx
		counters.TxBytes += tx
	}
	if err := scanner.Err(); err != nil {
		return netCounters{}, fmt.Errorf("error scanning network counters: %w", err)
	}
	return counters, nil
}
