package transporters

import (
	"encoding/json"
	"io"
	"os"
	"sync"

	"postmetrics/pkg/log"
)

// JSON writes one JSON object per line. It is the server transporter.
type JSON struct {
	mu     sync.Mutex
	writer io.Writer
}

// NewStdout returns a JSON transporter on os.Stdout.
func NewStdout() *JSON {
	return NewJSON(os.Stdout)
}

// NewJSON returns a JSON transporter on w.
func NewJSON(w io.Writer) *JSON {
	return &JSON{writer: w}
}

func (j *JSON) Name() string { return "stdout" }

func (j *JSON) Write(entry log.Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	_, err = j.writer.Write(append(data, '\n'))
	return err
}

func (j *JSON) Close() error { return nil }
