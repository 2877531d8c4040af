package textlint

// FixCommand is a textual substitution proposed by a rule.
// Range is a half-open [start, end) interval of UTF-16 code units in the
// linted text.
type FixCommand struct {
	Text       string `json:"text" msgpack:"text"`
	Range      [2]int `json:"range" msgpack:"range"`
	IsAbsolute bool   `json:"isAbsolute" msgpack:"isAbsolute"`
}

// Start returns the inclusive start offset.
func (f FixCommand) Start() int { return f.Range[0] }

// End returns the exclusive end offset.
func (f FixCommand) End() int { return f.Range[1] }

// Message is a single rule violation reported by the engine.
// Line and Column are 1-based, Index is 0-based.
type Message struct {
	Type     string      `json:"type,omitempty" msgpack:"type"`
	RuleID   string      `json:"ruleId" msgpack:"ruleId"`
	Message  string      `json:"message" msgpack:"message"`
	Fix      *FixCommand `json:"fix,omitempty" msgpack:"fix"`
	Line     int         `json:"line" msgpack:"line"`
	Column   int         `json:"column" msgpack:"column"`
	Index    int         `json:"index" msgpack:"index"`
	Severity *int        `json:"severity,omitempty" msgpack:"severity"`
}

// Fixable reports whether the message carries a fix bound to a rule.
func (m Message) Fixable() bool {
	return m.Fix != nil && m.RuleID != ""
}

// Result is the lint outcome for one file.
type Result struct {
	FilePath string    `json:"filePath" msgpack:"filePath"`
	Messages []Message `json:"messages" msgpack:"messages"`
}

// FixResult is the outcome of a fix run for one file.
type FixResult struct {
	FilePath          string    `json:"filePath"`
	Output            string    `json:"output"`
	Messages          []Message `json:"messages"`
	ApplyingMessages  []Message `json:"applyingMessages"`
	RemainingMessages []Message `json:"remainingMessages"`
}

// ScanStatus tells whether a path would be linted.
type ScanStatus string

const (
	ScanOK      ScanStatus = "ok"
	ScanIgnored ScanStatus = "ignored"
	ScanError   ScanStatus = "error"
)

// ScanResult is returned by PathScanner.ScanFilePath.
type ScanResult struct {
	Status ScanStatus `json:"status"`
}
