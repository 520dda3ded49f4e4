package indiclient

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// BlobSink persists BLOB values received on a Conn to an afero.Fs and
// fans each one out to any streams registered with Subscribe, grounded on
// the teacher's fs-backed GetBlob/GetBlobStream/CloseBlobStream design in
// indiclient.go.
type BlobSink struct {
	fs   afero.Fs
	dir  string
	mu   sync.Mutex
	subs map[string]map[string]io.WriteCloser
}

// NewBlobSink creates a BlobSink that writes files under dir on fs.
func NewBlobSink(fs afero.Fs, dir string) *BlobSink {
	return &BlobSink{
		fs:   fs,
		dir:  dir,
		subs: map[string]map[string]io.WriteCloser{},
	}
}

// Subscribe returns a reader that receives a copy of every future BLOB
// value written for device/propName/blobName, and the id needed to later
// Unsubscribe it. Remember to Unsubscribe when done, or every future
// write for that value will block on an unread pipe.
func (s *BlobSink) Subscribe(device, propName, blobName string) (rdr io.ReadCloser, id string) {
	r, w := io.Pipe()

	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.key(device, propName, blobName)
	id = uuid.New().String()
	if s.subs[key] == nil {
		s.subs[key] = map[string]io.WriteCloser{}
	}
	s.subs[key][id] = w

	return r, id
}

// Unsubscribe stops delivering BLOB values to the stream returned by a
// prior Subscribe call.
func (s *BlobSink) Unsubscribe(device, propName, blobName, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.key(device, propName, blobName)
	writers, ok := s.subs[key]
	if !ok {
		return
	}
	if w, ok := writers[id]; ok {
		w.Close()
		delete(writers, id)
	}
}

// Write persists one BLOB member's value to disk and fans it out to any
// subscribers, returning the file's path and byte length. blobName is the
// member's key in BlobVector.Values (BlobMember itself carries no name).
func (s *BlobSink) Write(device, propName, blobName string, member BlobMember) (path string, length int64, err error) {
	format := ""
	if member.Format != nil {
		format = *member.Format
	}

	fname := fmt.Sprintf("%s_%s_%s%s", device, propName, blobName, format)
	path = filepath.Join(s.dir, fname)

	if err = s.fs.MkdirAll(s.dir, 0755); err != nil {
		return "", 0, err
	}

	f, err := s.fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	dest := io.Writer(f)

	s.mu.Lock()
	writers := s.subs[s.key(device, propName, blobName)]
	var fanout []io.Writer
	for _, w := range writers {
		fanout = append(fanout, w)
	}
	s.mu.Unlock()

	if len(fanout) > 0 {
		dest = io.MultiWriter(append(fanout, f)...)
	}

	n, err := dest.Write(member.Value)
	if err != nil {
		return "", 0, err
	}

	return path, int64(n), nil
}

// Open opens a previously written BLOB file for reading.
func (s *BlobSink) Open(path string) (io.ReadCloser, error) {
	return s.fs.Open(path)
}

func (s *BlobSink) key(device, propName, blobName string) string {
	return fmt.Sprintf("%s_%s_%s", device, propName, blobName)
}
