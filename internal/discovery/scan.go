package discovery

import (
	"context"
	"time"

	"github.com/shetautnetjer/alienfan/internal/backend"
)

// Scan windows cover the classic EC register block and the extended block
// where fan duty registers were observed on Alienware hardware.
var ScanWindows = [][2]backend.PortAddress{
	{0x00, 0xFF},
	{0x02A0, 0x02FF},
}

// ScanResult is one non-zero register found during a scan.
type ScanResult struct {
	Address backend.PortAddress
	Value   int
}

// ScanRegisters sweeps the scan windows with single-byte reads and
// returns every readable, non-zero register. The sweep never writes;
// writability of unmapped addresses is deliberately left unknown.
func ScanRegisters(ctx context.Context, portFile string, opTimeout time.Duration) ([]ScanResult, error) {
	var results []ScanResult

	for _, window := range ScanWindows {
		for address := window[0]; address <= window[1]; address++ {
			port := &backend.RawPort{
				Address:  address,
				PortFile: portFile,
			}

			readCtx, cancel := context.WithTimeout(ctx, opTimeout)
			value, err := port.Read(readCtx)
			cancel()
			if err != nil {
				// an unreadable address ends the window, not the scan
				break
			}
			if value != 0 {
				results = append(results, ScanResult{Address: address, Value: value})
			}
		}
	}

	return results, nil
}
