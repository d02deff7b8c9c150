package transporters

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/fatih/color"

	"postmetrics/pkg/log"
)

// Console prints human-readable, colored lines. The CLI uses it on stderr
// so stdout stays clean for results.
type Console struct {
	mu     sync.Mutex
	writer io.Writer
	colors map[log.Level]*color.Color
	dim    *color.Color
}

// NewConsole returns a console transporter on os.Stderr.
func NewConsole() *Console {
	return NewConsoleWithWriter(os.Stderr)
}

// NewConsoleWithWriter returns a console transporter on w.
func NewConsoleWithWriter(w io.Writer) *Console {
	return &Console{
		writer: w,
		colors: map[log.Level]*color.Color{
			log.Trace: color.New(color.FgHiBlack),
			log.Debug: color.New(color.FgCyan),
			log.Info:  color.New(color.FgGreen),
			log.Warn:  color.New(color.FgYellow),
			log.Error: color.New(color.FgRed),
			log.Fatal: color.New(color.FgHiRed, color.Bold),
		},
		dim: color.New(color.FgHiBlack),
	}
}

func (c *Console) Name() string { return "console" }

func (c *Console) Write(entry log.Entry) error {
	var b strings.Builder
	b.WriteString(entry.Timestamp.Format("15:04:05"))
	b.WriteByte(' ')

	level := fmt.Sprintf("%-5s", entry.Level.String())
	if paint, ok := c.colors[entry.Level]; ok {
		level = paint.Sprint(level)
	}
	b.WriteString(level)
	b.WriteByte(' ')
	b.WriteString(entry.Message)

	keys := make([]string, 0, len(entry.Fields))
	for k := range entry.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(c.dim.Sprintf(" %s=", k))
		fmt.Fprintf(&b, "%v", entry.Fields[k])
	}
	if entry.RequestID != "" {
		b.WriteString(c.dim.Sprintf(" request_id=%s", entry.RequestID))
	}
	b.WriteByte('\n')

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := io.WriteString(c.writer, b.String())
	return err
}

func (c *Console) Close() error { return nil }
