package reporter

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/richinsley/pylocate/internal/core"
)

// Serializer converts notifications to bytes for a Transport.
type Serializer interface {
	Marshal(v any) ([]byte, error)
}

// Transport writes whole messages to a consumer. FramedTransport is the
// default.
type Transport interface {
	Send(data []byte) error
	Flush() error
	Close() error
}

// MsgpackSerializer encodes notifications as msgpack, the format of
// FramedTransport consumers.
type MsgpackSerializer struct{}

// Marshal encodes v with the msgpack struct tags of the core types.
func (MsgpackSerializer) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// JSONSerializer emits JSON, for consumers that speak JSONRPC.
type JSONSerializer struct{}

// Marshal encodes v on a single line.
func (JSONSerializer) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// frameBufferSize covers a typical environment record with its header.
const frameBufferSize = 8192

// FramedTransport writes each message as a 4-byte big-endian length
// followed by the payload, in a single Write.
type FramedTransport struct {
	writer io.Writer
	frames *framePool
}

// NewFramedTransport returns a transport writing frames to w.
func NewFramedTransport(w io.Writer) *FramedTransport {
	return &FramedTransport{writer: w, frames: newFramePool(frameBufferSize, 4)}
}

// Send writes data as one frame and flushes the writer when it buffers.
func (ft *FramedTransport) Send(data []byte) error {
	frame := ft.frames.get()
	frame = binary.BigEndian.AppendUint32(frame, uint32(len(data)))
	frame = append(frame, data...)
	_, err := ft.writer.Write(frame)
	ft.frames.put(frame)
	if err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return ft.Flush()
}

// Flush flushes the writer if it has a Flush method.
func (ft *FramedTransport) Flush() error {
	return flush(ft.writer)
}

// Close closes the writer if it is an io.Closer.
func (ft *FramedTransport) Close() error {
	return closeWriter(ft.writer)
}

// LineTransport writes each message on its own line. It suits text
// serializers such as JSONSerializer, whose output never contains a newline.
type LineTransport struct {
	writer io.Writer
}

// NewLineTransport returns a transport writing lines to w.
func NewLineTransport(w io.Writer) *LineTransport {
	return &LineTransport{writer: w}
}

// Send writes data followed by a newline.
func (lt *LineTransport) Send(data []byte) error {
	if _, err := lt.writer.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write line: %w", err)
	}
	return lt.Flush()
}

// Flush flushes the writer if it has a Flush method.
func (lt *LineTransport) Flush() error {
	return flush(lt.writer)
}

// Close closes the writer if it is an io.Closer.
func (lt *LineTransport) Close() error {
	return closeWriter(lt.writer)
}

func flush(w io.Writer) error {
	if f, ok := w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

func closeWriter(w io.Writer) error {
	if c, ok := w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Notification is one message on a stream.
type Notification struct {
	Method string `json:"method" msgpack:"method"`
	Params any    `json:"params" msgpack:"params"`
}

// TelemetryParams wraps an event with its name.
type TelemetryParams struct {
	Event string              `json:"event" msgpack:"event"`
	Data  core.TelemetryEvent `json:"data" msgpack:"data"`
}

// Stream serializes every report onto a Transport as it arrives. Sends are
// serialized; a failed send is logged and the report dropped.
type Stream struct {
	mu         sync.Mutex
	serializer Serializer
	transport  Transport
}

// NewStream returns a reporter encoding with serializer onto transport.
func NewStream(serializer Serializer, transport Transport) *Stream {
	return &Stream{serializer: serializer, transport: transport}
}

func (s *Stream) send(method string, params any) {
	data, err := s.serializer.Marshal(Notification{Method: method, Params: params})
	if err != nil {
		slog.Error("failed to encode notification", "method", method, "error", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.transport.Send(data); err != nil {
		slog.Error("failed to send notification", "method", method, "error", err)
	}
}

// ReportManager sends a "manager" notification.
func (s *Stream) ReportManager(m *core.EnvManager) {
	s.send("manager", m)
}

// ReportEnvironment sends an "environment" notification.
func (s *Stream) ReportEnvironment(env *core.PythonEnvironment) {
	s.send("environment", env)
}

// ReportTelemetry sends a "telemetry" notification naming the event.
func (s *Stream) ReportTelemetry(event core.TelemetryEvent) {
	s.send("telemetry", TelemetryParams{Event: event.EventName(), Data: event})
}
