package log

import (
	"context"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
)

// Logger writes structured entries through an async Buffer.
type Logger struct {
	mu         sync.RWMutex
	level      Level
	buffer     *Buffer
	baseFields map[string]any
}

// New creates a logger emitting entries at level and above.
func New(level Level, transporters ...Transporter) *Logger {
	return &Logger{
		level:      level,
		buffer:     NewBuffer(1000, transporters...),
		baseFields: map[string]any{},
	}
}

// SetLevel changes the minimum level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

// With returns a child logger sharing the buffer with extra base fields.
func (l *Logger) With(keysAndValues ...any) *Logger {
	l.mu.RLock()
	fields := make(map[string]any, len(l.baseFields))
	for k, v := range l.baseFields {
		fields[k] = v
	}
	level := l.level
	l.mu.RUnlock()

	mergeFields(fields, keysAndValues)
	return &Logger{level: level, buffer: l.buffer, baseFields: fields}
}

// Close flushes pending entries.
func (l *Logger) Close() {
	l.buffer.Close()
}

// Log emits an entry. ctx may be nil.
func (l *Logger) Log(ctx context.Context, level Level, msg string, keysAndValues ...any) {
	l.emit(ctx, level, msg, keysAndValues)
}

func (l *Logger) emit(ctx context.Context, level Level, msg string, keysAndValues []any) {
	l.mu.RLock()
	enabled := l.level.Enables(level)
	l.mu.RUnlock()
	if !enabled {
		return
	}

	entry := NewEntry(level, msg)
	entry.Caller = caller(3)

	l.mu.RLock()
	for k, v := range l.baseFields {
		entry.Fields[k] = v
	}
	l.mu.RUnlock()

	if ctx != nil {
		entry.RequestID = RequestIDFromContext(ctx)
		for k, v := range FieldsFromContext(ctx) {
			entry.Fields[k] = v
		}
	}
	mergeFields(entry.Fields, keysAndValues)

	l.buffer.Send(*entry)
}

// caller returns "file.go:line" for the frame skip levels up.
func caller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	return filepath.Base(file) + ":" + strconv.Itoa(line)
}

func (l *Logger) Debug(msg string, kv ...any) { l.emit(nil, Debug, msg, kv) }
func (l *Logger) Info(msg string, kv ...any)  { l.emit(nil, Info, msg, kv) }
func (l *Logger) Warn(msg string, kv ...any)  { l.emit(nil, Warn, msg, kv) }
func (l *Logger) Error(msg string, kv ...any) { l.emit(nil, Error, msg, kv) }

func (l *Logger) DebugCtx(ctx context.Context, msg string, kv ...any) { l.emit(ctx, Debug, msg, kv) }
func (l *Logger) InfoCtx(ctx context.Context, msg string, kv ...any)  { l.emit(ctx, Info, msg, kv) }
func (l *Logger) WarnCtx(ctx context.Context, msg string, kv ...any)  { l.emit(ctx, Warn, msg, kv) }
func (l *Logger) ErrorCtx(ctx context.Context, msg string, kv ...any) { l.emit(ctx, Error, msg, kv) }

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
	discard      = &Logger{level: Fatal + 1, buffer: NewBuffer(1), baseFields: map[string]any{}}
)

// SetDefault installs the process-wide logger used by the Global helpers.
func SetDefault(l *Logger) {
	globalMu.Lock()
	globalLogger = l
	globalMu.Unlock()
}

// Default returns the process-wide logger, or a logger that drops
// everything when none was installed.
func Default() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalLogger == nil {
		return discard
	}
	return globalLogger
}

// The Global helpers call emit directly so the recorded caller is the
// helper's caller.

func GlobalDebug(msg string, kv ...any) { Default().emit(nil, Debug, msg, kv) }
func GlobalInfo(msg string, kv ...any)  { Default().emit(nil, Info, msg, kv) }
func GlobalWarn(msg string, kv ...any)  { Default().emit(nil, Warn, msg, kv) }
func GlobalError(msg string, kv ...any) { Default().emit(nil, Error, msg, kv) }

func GlobalDebugCtx(ctx context.Context, msg string, kv ...any) { Default().emit(ctx, Debug, msg, kv) }
func GlobalInfoCtx(ctx context.Context, msg string, kv ...any)  { Default().emit(ctx, Info, msg, kv) }
func GlobalWarnCtx(ctx context.Context, msg string, kv ...any)  { Default().emit(ctx, Warn, msg, kv) }
func GlobalErrorCtx(ctx context.Context, msg string, kv ...any) { Default().emit(ctx, Error, msg, kv) }
