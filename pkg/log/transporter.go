package log

// Transporter is a log destination: stdout, a console, a file, a remote sink.
type Transporter interface {
	Name() string
	Write(entry Entry) error
	Close() error
}
