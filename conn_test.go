package indiclient

import (
	"io"
	"io/ioutil"
	"testing"
	"time"

	"github.com/rickbassham/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() logging.Logger {
	return logging.NewLogger(ioutil.Discard, logging.JSONFormatter{}, logging.LogLevelInfo)
}

// pipeConn implements io.ReadWriteCloser over a pair of io.Pipes, standing
// in for a real TCP socket the way the teacher's mockDialer stood in for
// net.Dial in indiclient_test.go.
type pipeConn struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func (p *pipeConn) Read(b []byte) (int, error)  { return p.r.Read(b) }
func (p *pipeConn) Write(b []byte) (int, error) { return p.w.Write(b) }
func (p *pipeConn) Close() error {
	p.r.Close()
	return p.w.Close()
}

// testDialer hands out one fixed connection regardless of address, and
// records the address it was asked to dial.
type testDialer struct {
	conn       io.ReadWriteCloser
	dialedNet  string
	dialedAddr string
}

func (d *testDialer) Dial(network, address string) (io.ReadWriteCloser, error) {
	d.dialedNet = network
	d.dialedAddr = address
	return d.conn, nil
}

func newTestConn(t *testing.T) (*Conn, *io.PipeWriter, *io.PipeReader) {
	t.Helper()

	serverRead, clientWrite := io.Pipe()
	clientRead, serverWrite := io.Pipe()

	dialer := &testDialer{conn: &pipeConn{r: clientRead, w: clientWrite}}
	conn := NewConn(testLogger(), dialer, DefaultDecoderOptions())

	require.NoError(t, conn.Connect("tcp", "localhost:7624"))
	t.Cleanup(func() { conn.Disconnect() })

	return conn, serverWrite, serverRead
}

func TestConn_ReadPumpAppliesDefinitions(t *testing.T) {
	conn, serverWrite, _ := newTestConn(t)

	go func() {
		serverWrite.Write([]byte(`<defSwitchVector device="CCD Simulator" name="Exposure" state="Ok" perm="rw" rule="AtMostOne"><defSwitch name="seconds">On</defSwitch></defSwitchVector>`))
	}()

	select {
	case update := <-conn.Updates:
		require.NoError(t, update.Err)
		assert.Equal(t, "CCD Simulator", update.Device)
		sv, ok := update.Parameter.(*SwitchVector)
		require.True(t, ok)
		assert.Equal(t, SwitchStateOn, sv.Values["seconds"].Value)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for update")
	}

	dev, ok := conn.Client().Device("CCD Simulator")
	require.True(t, ok)
	assert.Contains(t, dev.Parameters(), "Exposure")
}

func TestConn_SendEncodesGetProperties(t *testing.T) {
	conn, _, serverRead := newTestConn(t)

	require.NoError(t, conn.GetProperties("CCD Simulator", ""))

	dec := NewDecoder(serverRead)
	cmd, err := dec.Next()
	require.NoError(t, err)

	gp, ok := cmd.(*GetPropertiesCommand)
	require.True(t, ok)
	assert.Equal(t, ProtocolVersion, gp.Version)
	require.NotNil(t, gp.Device)
	assert.Equal(t, "CCD Simulator", *gp.Device)
}

func TestConn_SetValueRejectsUnknownDevice(t *testing.T) {
	conn, _, _ := newTestConn(t)
	err := conn.SetSwitchValue("nope", "Exposure", "seconds", SwitchStateOn)
	assert.ErrorIs(t, err, ErrDeviceNotFound)
}

func TestConn_ServerCloseClosesUpdates(t *testing.T) {
	conn, serverWrite, _ := newTestConn(t)
	serverWrite.Close()

	_, ok := <-conn.Updates
	assert.False(t, ok)
}
