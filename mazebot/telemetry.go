package mazebot

import (
	"fmt"
	"io"
	"time"

	"github.com/adrianmo/go-nmea"
	"github.com/tarm/serial"
)

// What the robot is doing right now, for logs, the UART and the dashboard
type Snapshot struct {
	State      string `json:"state"`
	Walls      string `json:"walls"`
	Motion     string `json:"motion"`
	FrontCm    uint32 `json:"front_cm"`
	LeftCm     uint32 `json:"left_cm"`
	LeftDuty   uint8  `json:"left_duty"`
	RightDuty  uint8  `json:"right_duty"`
	LeftCount  uint32 `json:"left_count"`
	RightCount uint32 `json:"right_count"`
}

// Proprietary NMEA-style sentence so the usual serial tools can verify it
func (snapshot Snapshot) Sentence() string {
	body := fmt.Sprintf(
		"PMAZE,%s,%s,%s,%d,%d,%02X,%02X,%d,%d",
		snapshot.State,
		snapshot.Walls,
		snapshot.Motion,
		snapshot.FrontCm,
		snapshot.LeftCm,
		snapshot.LeftDuty,
		snapshot.RightDuty,
		snapshot.LeftCount,
		snapshot.RightCount,
	)
	return fmt.Sprintf("$%s*%s\r\n", body, nmea.Checksum(body))
}

type TelemetrySink interface {
	Publish(snapshot Snapshot) error
	Close() error
}

// Writes a line to the log each time the state or walls change
type LogSink struct {
	previous Snapshot
}

func (sink *LogSink) Publish(snapshot Snapshot) error {
	if snapshot.State == sink.previous.State && snapshot.Walls == sink.previous.Walls {
		return nil
	}
	Logger.Noticef(
		"%s walls:%s front:%vcm left:%vcm duty:%02X/%02X",
		snapshot.State,
		snapshot.Walls,
		snapshot.FrontCm,
		snapshot.LeftCm,
		snapshot.LeftDuty,
		snapshot.RightDuty,
	)
	sink.previous = snapshot
	return nil
}

func (*LogSink) Close() error {
	return nil
}

// Sends sentences over a UART, e.g. to a radio or a laptop on a cable
type SerialSink struct {
	port io.WriteCloser
}

func NewSerialSink(device string, baud int) (*SerialSink, error) {
	config := serial.Config{Name: device, Baud: baud, ReadTimeout: time.Millisecond * 0}
	port, err := serial.OpenPort(&config)
	if err != nil {
		return nil, fmt.Errorf("opening telemetry port %s: %w", device, err)
	}
	return &SerialSink{port: port}, nil
}

func newWriterSink(writer io.WriteCloser) *SerialSink {
	return &SerialSink{port: writer}
}

func (sink *SerialSink) Publish(snapshot Snapshot) error {
	_, err := io.WriteString(sink.port, snapshot.Sentence())
	return err
}

func (sink *SerialSink) Close() error {
	return sink.port.Close()
}
