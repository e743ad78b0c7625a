package location

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePort struct {
	io.Reader
	closed bool
}

func (f *fakePort) Write(p []byte) (int, error) { return len(p), nil }
func (f *fakePort) Close() error                { f.closed = true; return nil }

func newProviderWithStream(stream string) (*DeviceSensorProvider, *fakePort) {
	port := &fakePort{Reader: strings.NewReader(stream)}
	p := NewDeviceSensorProvider("/dev/ttyFAKE", 9600)
	p.openPort = func(string, int) (io.ReadWriteCloser, error) { return port, nil }
	return p, port
}

func TestDeviceSensorProvider_GGAFix(t *testing.T) {
	stream := "garbage\r\n" +
		"$GPGSA,A,3,04,05,,09,12,,,24,,,,,2.5,1.3,2.1*39\r\n" +
		"$GPGGA,172814.0,3723.46587704,N,12202.26957864,W,2,6,1.2,18.893,M,-25.669,M,2.0,0031*4F\r\n"
	p, _ := newProviderWithStream(stream)

	loc, err := p.GetLocation(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 37.391098, loc.Latitude, 1e-5)
	assert.InDelta(t, -122.037826, loc.Longitude, 1e-5)
	assert.InDelta(t, 1.2, loc.Accuracy, 1e-9)
	assert.False(t, loc.Timestamp.IsZero())
}

func TestDeviceSensorProvider_RMCFix(t *testing.T) {
	stream := "$GPRMC,220516,A,5133.82,N,00042.24,W,173.8,231.8,130694,004.2,W*70\r\n"
	p, _ := newProviderWithStream(stream)

	loc, err := p.GetLocation(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 51.5636, loc.Latitude, 1e-4)
	assert.InDelta(t, -0.704, loc.Longitude, 1e-4)
}

func TestDeviceSensorProvider_NoFix(t *testing.T) {
	stream := "$GPRMC,220516,V,5133.82,N,00042.24,W,173.8,231.8,130694,004.2,W*67\r\n"
	p, port := newProviderWithStream(stream)

	_, err := p.GetLocation(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPositionUnavailable)
	assert.True(t, port.closed, "exhausted stream should be released")
}

func TestDeviceSensorProvider_PermissionDenied(t *testing.T) {
	p := NewDeviceSensorProvider("/dev/ttyFAKE", 9600)
	p.openPort = func(string, int) (io.ReadWriteCloser, error) {
		return nil, &os.PathError{Op: "open", Path: "/dev/ttyFAKE", Err: os.ErrPermission}
	}

	_, err := p.GetLocation(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindPermissionDenied, KindOf(err))
}

func TestDeviceSensorProvider_CancelledContext(t *testing.T) {
	p, _ := newProviderWithStream("$GPGGA,,,,,,0,,,,,,,,*66\r\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.GetLocation(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestDeviceSensorProvider_Close(t *testing.T) {
	p, port := newProviderWithStream("$GPRMC,220516,A,5133.82,N,00042.24,W,173.8,231.8,130694,004.2,W*70\r\n")
	_, err := p.GetLocation(context.Background())
	require.NoError(t, err)

	require.NoError(t, p.Close())
	assert.True(t, port.closed)
	assert.NoError(t, p.Close())
}
