package backend

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPortAddressString(t *testing.T) {
	// GIVEN
	classic := PortAddress(0x24)
	extended := PortAddress(0x02A0)

	// WHEN
	classicText := classic.String()
	extendedText := extended.String()

	// THEN
	assert.Equal(t, "0x24", classicText)
	assert.Equal(t, "0x2A0", extendedText)
}

func TestClassify(t *testing.T) {
	// GIVEN
	cases := map[error]error{
		nil:                      nil,
		os.ErrNotExist:           ErrUnavailable,
		os.ErrPermission:         ErrPermissionDenied,
		context.DeadlineExceeded: ErrTimeout,
	}

	for raw, expected := range cases {
		// WHEN
		classified := Classify(raw)

		// THEN
		assert.ErrorIs(t, classified, expected)
	}
}

func TestClassifyPassesSentinelsThrough(t *testing.T) {
	// GIVEN
	wrapped := os.ErrInvalid

	// WHEN
	classified := Classify(ErrOutOfRange)
	unclassified := Classify(wrapped)

	// THEN
	assert.ErrorIs(t, classified, ErrOutOfRange)
	assert.Equal(t, wrapped, unclassified)
}

func TestSerializedCallTimesOut(t *testing.T) {
	// GIVEN
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	release := make(chan struct{})
	defer close(release)

	// WHEN
	_, err := serializedCall(ctx, "test:blocked", func() (int, error) {
		<-release
		return 0, nil
	})

	// THEN
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestSerializedCallQueuesSameAddress(t *testing.T) {
	// GIVEN
	ctx := context.Background()
	var order []int

	// a slow predecessor still owns the lock when the second call starts
	first := make(chan struct{})
	go func() {
		_, _ = serializedCall(ctx, "test:queued", func() (int, error) {
			close(first)
			time.Sleep(50 * time.Millisecond)
			order = append(order, 1)
			return 0, nil
		})
	}()
	<-first

	// WHEN
	_, err := serializedCall(ctx, "test:queued", func() (int, error) {
		order = append(order, 2)
		return 0, nil
	})

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, []int{1, 2}, order)
}
