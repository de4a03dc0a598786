package display

import "sync"

// Op is one recorded display call.
type Op struct {
	Clear bool
	Row   int
	Text  string
}

// Recorder is a Display that remembers its contents and every call. Text
// written to a row that was not cleared first is appended to the old text,
// so stale remnants show up in assertions.
type Recorder struct {
	mu    sync.Mutex
	lines [Rows]string
	ops   []Op
	// WriteError, if set, is returned by WriteText.
	WriteError error
	Closed     bool
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) ClearLine(row int) error {
	if err := checkRow(row); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines[row] = ""
	r.ops = append(r.ops, Op{Clear: true, Row: row})
	return nil
}

func (r *Recorder) WriteText(row int, text string) error {
	if err := checkRow(row); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.WriteError != nil {
		return r.WriteError
	}
	r.lines[row] += text
	r.ops = append(r.ops, Op{Row: row, Text: text})
	return nil
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	r.Closed = true
	r.mu.Unlock()
	return nil
}

// Line returns the current text of row.
func (r *Recorder) Line(row int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lines[row]
}

// Lines returns a copy of every row.
func (r *Recorder) Lines() [Rows]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lines
}

// Ops returns a copy of the recorded calls.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Op(nil), r.ops...)
}

// Reset forgets recorded calls but keeps the contents.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.ops = nil
	r.mu.Unlock()
}
