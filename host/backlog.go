package host

import "log"

// backlog keeps the most recent trace lines so they can be logged after
// a fault without logging every instruction.
type backlog struct {
	entries []logEntry
	n       int
}

type logEntry struct {
	format string
	args   []any
}

const maxBacklog = 100

func (b *backlog) LazyPrintf(format string, args ...any) {
	if b.n < len(b.entries) {
		b.entries[b.n] = logEntry{format, args}
	} else {
		b.entries = append(b.entries, logEntry{format, args})
	}
	b.n = (b.n + 1) % maxBacklog
}

// Emit logs the kept lines, oldest first.
func (b *backlog) Emit() {
	for i := range b.entries {
		e := b.entries[(b.n+i)%len(b.entries)]
		log.Printf(e.format, e.args...)
	}
}

func (b *backlog) Reset() {
	b.entries = b.entries[:0]
	b.n = 0
}
