package indiclient

import (
	"errors"
	"io"
	"net"

	"github.com/rickbassham/logging"
)

var (
	// ErrDeviceNotFound is returned when a call references a device the
	// connection has not seen defined yet.
	ErrDeviceNotFound = errors.New("device not found")

	// ErrPropertyNotFound is returned when a call references a property
	// the named device has not defined.
	ErrPropertyNotFound = errors.New("property not found")

	// ErrNotConnected is returned by the request helpers (GetProperties,
	// EnableBlob, Set*Value) when called before Connect or after
	// Disconnect.
	ErrNotConnected = errors.New("not connected")
)

// Dialer allows Conn to reach an INDI server over something other than a
// real TCP socket, primarily for tests.
type Dialer interface {
	Dial(network, address string) (io.ReadWriteCloser, error)
}

// NetDialer is the Dialer backed by the standard net package.
type NetDialer struct{}

// Dial connects to address on the given network ("tcp" for a real
// indiserver).
func (NetDialer) Dial(network, address string) (io.ReadWriteCloser, error) {
	return net.Dial(network, address)
}

// Conn is a live connection to an indiserver: it decodes the inbound
// Command stream into a Client store and encodes outbound Commands built
// by the request helpers (GetProperties, EnableBlob, Set*Value). Its
// read/write pump design is grounded on the
// teacher's INDIClient.startRead/startWrite, adapted to this library's
// pull-based Decoder/Encoder instead of per-element DecodeElement calls.
type Conn struct {
	log    logging.Logger
	dialer Dialer
	opts   DecoderOptions

	client *Client

	conn io.ReadWriteCloser

	write chan Command

	// Updates receives one ParameterUpdate for every decoded Command: its
	// resulting Parameter (nil for Commands that affect no single
	// parameter, such as delProperty or message, and for Commands that
	// failed to apply) and any error from applying it. It is closed when
	// the read pump exits.
	Updates chan ParameterUpdate
}

// ParameterUpdate pairs a Command's effect with the device it belongs to,
// for callers of Conn.Updates.
type ParameterUpdate struct {
	Device    string
	Parameter Parameter
	Err       error
}

// NewConn creates a Conn that is not yet connected to anything.
func NewConn(log logging.Logger, dialer Dialer, opts DecoderOptions) *Conn {
	return &Conn{
		log:    log,
		dialer: dialer,
		opts:   opts,
		client: NewClient(),
	}
}

// Client returns the connection's device store. Callers must not mutate
// parameters returned from it directly; send commands instead.
func (c *Conn) Client() *Client {
	return c.client
}

// Connect dials address on network, clears any previously known devices,
// and starts the read and write pumps.
func (c *Conn) Connect(network, address string) error {
	conn, err := c.dialer.Dial(network, address)
	if err != nil {
		return err
	}

	c.client.Clear()
	c.conn = conn
	c.write = make(chan Command, 16)
	c.Updates = make(chan ParameterUpdate, 16)

	c.startRead()
	c.startWrite()

	return nil
}

// Disconnect clears all known devices and closes the underlying
// connection and channels.
func (c *Conn) Disconnect() error {
	c.client.Clear()

	if c.conn == nil {
		return nil
	}

	err := c.conn.Close()
	c.conn = nil

	if c.write != nil {
		close(c.write)
		c.write = nil
	}

	return err
}

// IsConnected reports whether Conn currently holds an open connection.
func (c *Conn) IsConnected() bool {
	return c.conn != nil
}

// send enqueues cmd for the write pump. It is a no-op error path when not
// connected, mirroring the teacher's channel-send style rather than
// blocking callers on a nil channel.
func (c *Conn) send(cmd Command) error {
	if c.write == nil {
		return ErrNotConnected
	}
	c.write <- cmd
	return nil
}

// GetProperties requests property definitions for device/name, both of
// which may be left empty to request everything.
func (c *Conn) GetProperties(device, name string) error {
	cmd := &GetPropertiesCommand{Version: ProtocolVersion}
	if device != "" {
		cmd.Device = &device
	}
	if name != "" {
		cmd.Name = &name
	}
	return c.send(cmd)
}

// EnableBlob opts this connection in (or out) of BLOB delivery for
// device, optionally scoped to a single property name.
func (c *Conn) EnableBlob(device, name string, val BlobEnable) error {
	cmd := &EnableBlobCommand{Device: device, Value: val}
	if name != "" {
		cmd.Name = &name
	}
	return c.send(cmd)
}

// SetTextValue requests device change propName's textName member to value.
func (c *Conn) SetTextValue(device, propName, textName, value string) error {
	if _, err := c.findProperty(device, propName); err != nil {
		return err
	}
	return c.send(&NewTextVectorCommand{
		Device: device,
		Name:   propName,
		Texts:  []OneTextMember{{Name: textName, Value: value}},
	})
}

// SetNumberValue requests device change propName's numberName member to value.
func (c *Conn) SetNumberValue(device, propName, numberName string, value float64) error {
	if _, err := c.findProperty(device, propName); err != nil {
		return err
	}
	return c.send(&NewNumberVectorCommand{
		Device:  device,
		Name:    propName,
		Numbers: []OneNumberMember{{Name: numberName, Value: value}},
	})
}

// SetSwitchValue requests device change propName's switchName member to value.
func (c *Conn) SetSwitchValue(device, propName, switchName string, value SwitchState) error {
	if _, err := c.findProperty(device, propName); err != nil {
		return err
	}
	return c.send(&NewSwitchVectorCommand{
		Device:   device,
		Name:     propName,
		Switches: []OneSwitchMember{{Name: switchName, Value: value}},
	})
}

// SetBlobValue requests device change propName's blobName member, sending
// raw (pre-encoding) bytes for the encoder to base64-encode on the wire.
func (c *Conn) SetBlobValue(device, propName, blobName, format string, value []byte) error {
	if _, err := c.findProperty(device, propName); err != nil {
		return err
	}
	return c.send(&NewBlobVectorCommand{
		Device: device,
		Name:   propName,
		Blobs: []OneBlobMember{
			{Name: blobName, Format: format, Size: int64(len(value)), Value: value},
		},
	})
}

func (c *Conn) findProperty(device, propName string) (Parameter, error) {
	dev, ok := c.client.Device(device)
	if !ok {
		return nil, ErrDeviceNotFound
	}
	param, ok := dev.Parameters()[propName]
	if !ok {
		return nil, ErrPropertyNotFound
	}
	return param, nil
}

func (c *Conn) startRead() {
	go func(conn io.Reader, updates chan<- ParameterUpdate) {
		defer close(updates)

		dec := NewDecoderWithOptions(conn, c.opts)
		for {
			cmd, err := dec.Next()
			if err != nil {
				if errors.Is(err, io.EOF) {
					return
				}
				c.log.WithError(err).Warn("error decoding indi command")
				return
			}

			device, _ := cmd.DeviceName()
			param, err := c.client.Update(cmd)
			if err != nil {
				c.log.WithField("device", device).WithError(err).Warn("error applying indi command")
			}
			updates <- ParameterUpdate{Device: device, Parameter: param, Err: err}
		}
	}(c.conn, c.Updates)
}

func (c *Conn) startWrite() {
	go func(conn io.Writer, w <-chan Command, log logging.Logger) {
		enc := NewEncoder(conn)
		for cmd := range w {
			if err := enc.Encode(cmd); err != nil {
				log.WithError(err).Error("error encoding indi command")
				continue
			}
		}
	}(c.conn, c.write, c.log)
}
