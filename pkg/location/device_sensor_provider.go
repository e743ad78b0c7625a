package location

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/adrianmo/go-nmea"
	"github.com/tarm/serial"
)

// serialReadTimeout bounds a single blocking read so cancellation is observed between lines.
const serialReadTimeout = 2 * time.Second

// DeviceSensorProvider is responsible for retrieving location data from a GPS device connected via serial port.
type DeviceSensorProvider struct {
	port     string // Serial port to which the GPS device is connected
	baudRate int    // Baud rate for the serial communication

	openPort func(name string, baud int) (io.ReadWriteCloser, error)

	mu     sync.Mutex
	conn   io.ReadWriteCloser
	reader *bufio.Reader
}

// NewDeviceSensorProvider creates a new instance of DeviceSensorProvider with the specified port and baud rate.
func NewDeviceSensorProvider(port string, baudRate int) *DeviceSensorProvider {
	return &DeviceSensorProvider{
		port:     port,
		baudRate: baudRate,
		openPort: openSerialPort,
	}
}

func openSerialPort(name string, baud int) (io.ReadWriteCloser, error) {
	return serial.OpenPort(&serial.Config{Name: name, Baud: baud, ReadTimeout: serialReadTimeout})
}

// GetLocation reads NMEA sentences from the device until a valid fix is found.
// The port stays open between calls since GPS receivers stream continuously.
func (d *DeviceSensorProvider) GetLocation(ctx context.Context) (Location, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == nil {
		conn, err := d.openPort(d.port, d.baudRate)
		if err != nil {
			return Location{}, NewReadingError(fmt.Errorf("open gps port %s: %w", d.port, err))
		}
		d.conn = conn
		d.reader = bufio.NewReader(conn)
	}

	for {
		if err := ctx.Err(); err != nil {
			return Location{}, NewReadingError(err)
		}

		line, err := d.reader.ReadString('\n')
		if loc, ok := parseFix(strings.TrimSpace(line)); ok {
			return loc, nil
		}
		if err != nil {
			// Drop the connection so the next call starts from a fresh stream.
			d.closeLocked()
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrNoProgress) {
				return Location{}, &ReadingError{Kind: KindPositionUnavailable, Err: errors.New("no valid GPS data found")}
			}
			return Location{}, NewReadingError(err)
		}
	}
}

// Close releases the serial port.
func (d *DeviceSensorProvider) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closeLocked()
}

func (d *DeviceSensorProvider) closeLocked() error {
	if d.conn == nil {
		return nil
	}
	err := d.conn.Close()
	d.conn = nil
	d.reader = nil
	return err
}

// parseFix extracts a position from a GGA or RMC sentence carrying a valid fix.
func parseFix(line string) (Location, bool) {
	if !strings.HasPrefix(line, "$") {
		return Location{}, false
	}
	sentence, err := nmea.Parse(line)
	if err != nil {
		return Location{}, false
	}

	switch s := sentence.(type) {
	case nmea.GGA:
		if s.FixQuality == nmea.Invalid {
			return Location{}, false
		}
		return Location{
			Latitude:  s.Latitude,
			Longitude: s.Longitude,
			Accuracy:  s.HDOP, // Use HDOP as a proxy for accuracy
			Timestamp: time.Now(),
		}, true
	case nmea.RMC:
		if s.Validity != nmea.ValidRMC {
			return Location{}, false
		}
		return Location{
			Latitude:  s.Latitude,
			Longitude: s.Longitude,
			Timestamp: time.Now(),
		}, true
	}
	return Location{}, false
}
