package sqllog

import (
	"time"
)

// Scope brackets one timed unit of work with a "started" and a "finished"
// log line.
//
// The finished line reports success only when Complete was called before
// Close; any other exit path (error return, panic, cancellation) is reported
// as unsuccessful. Close is meant to be deferred:
//
//	scope := sqllog.NewScope(logger, "ExecuteScalar - {Command}", text)
//	defer scope.Close()
//	v, err := cmd.ExecuteScalarContext(ctx)
//	if err != nil {
//	    return nil, err
//	}
//	scope.Complete()
//
// A Scope is used by a single goroutine.
type Scope struct {
	logger    Logger
	template  string
	args      []any
	start     time.Time
	elapsed   time.Duration
	completed bool
	skipped   bool
	closed    bool
}

// NewScope starts the timer and logs the started line at info level.
func NewScope(logger Logger, template string, args ...any) *Scope {
	s := &Scope{
		logger:   logger,
		template: template,
		args:     args,
		start:    time.Now(),
	}
	logger.Log(InfoLevel, `>> Started: "`+template+`"`, args...)
	return s
}

// Complete marks the protected operation as successful.
func (s *Scope) Complete() {
	s.completed = true
}

// Skip marks the protected operation as declined by the driver, which
// retries it through another path. Close then logs a debug "Skipped" line.
func (s *Scope) Skip() {
	s.skipped = true
}

// Completed reports whether Complete was called.
func (s *Scope) Completed() bool {
	return s.completed
}

// Elapsed returns the time since the scope started, frozen once closed.
func (s *Scope) Elapsed() time.Duration {
	if s.closed {
		return s.elapsed
	}
	return time.Since(s.start)
}

// Close stops the timer and logs the finished line, at debug level when the
// scope completed and at info level otherwise. Only the first call logs.
func (s *Scope) Close() time.Duration {
	if s.closed {
		return s.elapsed
	}
	s.elapsed = time.Since(s.start)
	s.closed = true

	level, outcome := InfoLevel, "Unsuccessfully"
	switch {
	case s.completed:
		level, outcome = DebugLevel, "Successfully"
	case s.skipped:
		level, outcome = DebugLevel, "Skipped"
	}

	if s.logger.Enabled(level) {
		args := make([]any, 0, len(s.args)+1)
		args = append(args, s.args...)
		args = append(args, s.elapsed.Milliseconds())
		s.logger.Log(level, `<< Finished: "`+s.template+`" `+outcome+`, ({duration}ms)`, args...)
	}

	return s.elapsed
}
