package backend

import (
	"context"
	"fmt"

	"golang.org/x/sys/unix"
)

// DefaultPortFile is the kernel interface exposing raw I/O port access.
const DefaultPortFile = "/dev/port"

// RestoreSentinel is the value that hands an EC-style duty register back
// to firmware-autonomous control.
const RestoreSentinel = 0x00

// RawPort reads and writes a single byte at a fixed port address through
// /dev/port. This is the fallback for fans the firmware does not expose
// through a hwmon attribute.
type RawPort struct {
	// Address of the duty register
	Address PortAddress
	// PortFile overrides the port device path, used in tests
	PortFile string
	// SideEffectRisk marks addresses whose write effects were not observed
	// to be reversible. Such actuators require an explicit allow-list
	// entry before they are put under automatic control.
	SideEffectRisk bool
}

func (r *RawPort) portFile() string {
	if len(r.PortFile) > 0 {
		return r.PortFile
	}
	return DefaultPortFile
}

func (r *RawPort) Read(ctx context.Context) (int, error) {
	return serializedCall(ctx, r.lockKey(), func() (int, error) {
		fd, err := unix.Open(r.portFile(), unix.O_RDONLY, 0)
		if err != nil {
			return -1, err
		}
		defer func() { _ = unix.Close(fd) }()

		buf := make([]byte, 1)
		n, err := unix.Pread(fd, buf, int64(r.Address))
		if err != nil {
			return -1, err
		}
		if n != 1 {
			return -1, fmt.Errorf("%s: short read: %w", r.Address, ErrUnavailable)
		}
		return int(buf[0]), nil
	})
}

func (r *RawPort) Write(ctx context.Context, duty int) error {
	if duty < MinDutyValue || duty > MaxDutyValue {
		return fmt.Errorf("%s: duty %d: %w", r.Address, duty, ErrOutOfRange)
	}
	_, err := serializedCall(ctx, r.lockKey(), func() (int, error) {
		fd, err := unix.Open(r.portFile(), unix.O_WRONLY, 0)
		if err != nil {
			return -1, err
		}
		defer func() { _ = unix.Close(fd) }()

		n, err := unix.Pwrite(fd, []byte{byte(duty)}, int64(r.Address))
		if err != nil {
			return -1, err
		}
		if n != 1 {
			return -1, fmt.Errorf("%s: short write: %w", r.Address, ErrUnavailable)
		}
		return 0, nil
	})
	return err
}

func (r *RawPort) Restore(ctx context.Context) error {
	return r.Write(ctx, RestoreSentinel)
}

func (r *RawPort) lockKey() string {
	return fmt.Sprintf("%s:%s", r.portFile(), r.Address)
}

func (r *RawPort) String() string {
	return fmt.Sprintf("%s@%s", r.portFile(), r.Address)
}
