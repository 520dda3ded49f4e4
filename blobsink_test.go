package indiclient

import (
	"io"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobSink_WritesToFs(t *testing.T) {
	fs := afero.NewMemMapFs()
	sink := NewBlobSink(fs, "/blobs")

	format := ".fits"
	path, n, err := sink.Write("CCD Simulator", "CCD1", "CCD1", BlobMember{Format: &format, Value: []byte("hello")})
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	rdr, err := sink.Open(path)
	require.NoError(t, err)
	defer rdr.Close()

	b, err := io.ReadAll(rdr)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))
}

func TestBlobSink_FansOutToSubscribers(t *testing.T) {
	fs := afero.NewMemMapFs()
	sink := NewBlobSink(fs, "/blobs")

	rdr, id := sink.Subscribe("CCD Simulator", "CCD1", "CCD1")
	defer sink.Unsubscribe("CCD Simulator", "CCD1", "CCD1", id)

	done := make(chan string, 1)
	go func() {
		b, _ := io.ReadAll(rdr)
		done <- string(b)
	}()

	format := ".fits"
	_, _, err := sink.Write("CCD Simulator", "CCD1", "CCD1", BlobMember{Format: &format, Value: []byte("payload")})
	require.NoError(t, err)

	sink.Unsubscribe("CCD Simulator", "CCD1", "CCD1", id)

	select {
	case got := <-done:
		assert.Equal(t, "payload", got)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for fanout")
	}
}
