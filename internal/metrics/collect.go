package metrics

import (
	"fmt"
	"net"
	"time"
)

// netCounters holds cumulative interface byte totals, summed over
// every non-loopback interface.
type netCounters struct {
	RxBytes uint64
	TxBytes uint64
}

// measureLatency times a TCP dial against the target and reports it in
// milliseconds. The dial timeout is the only bound on the measurement.
func measureLatency(target string, timeout time.Duration) (float64, error) {
	start := time.Now()
	conn, err := net.DialTimeout("tcp", target, timeout)
	if err != nil {
		return 0, fmt.Errorf("error dialing latency target %s: %w", target, err)
	}
	conn.Close()
	return float64(time.Since(start).Microseconds()) / 1000, nil
}
