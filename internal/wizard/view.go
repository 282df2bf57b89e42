package wizard

// Stage is how far through the upload → extract → answer flow a session is.
type Stage string

const (
	StageIdle      Stage = "idle"
	StageExtracted Stage = "extracted"
	StageAnswered  Stage = "answered"
)

// Level classifies a stage result for rendering.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Result is the outcome of one stage as the renderer sees it.
type Result struct {
	Level   Level  `json:"level"`
	Message string `json:"message,omitempty"`
}

// UploadView describes the current image.
type UploadView struct {
	Filename   string `json:"filename"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	HasPreview bool   `json:"has_preview"`
	Result     Result `json:"result"`
}

// ExtractionView describes the OCR output.
type ExtractionView struct {
	Text   string `json:"text"`
	Result Result `json:"result"`
}

// AnswerView describes the answer panel.
type AnswerView struct {
	Question string  `json:"question"`
	Text     string  `json:"answer,omitempty"`
	Score    float64 `json:"score,omitempty"`
	Result   Result  `json:"result"`
}

// View is a read-only snapshot of a session for the rendering layer.
type View struct {
	SessionID  string          `json:"session_id"`
	Stage      Stage           `json:"stage"`
	Backend    string          `json:"backend"`
	Credential *Result         `json:"credential,omitempty"`
	Upload     *UploadView     `json:"upload,omitempty"`
	Extraction *ExtractionView `json:"extraction,omitempty"`
	Question   string          `json:"question,omitempty"`
	Answer     *AnswerView     `json:"answer,omitempty"`
}

// CanAsk reports whether the question form should be offered.
func (v View) CanAsk() bool {
	return v.Stage == StageExtracted || v.Stage == StageAnswered
}
