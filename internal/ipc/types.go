package ipc

// StatusRequest fetches daemon and worker status.
type StatusRequest struct{}

// StatusResponse represents combined daemon and worker status information.
type StatusResponse struct {
	Running       bool     `json:"running"`
	PID           int      `json:"pid"`
	Phase         string   `json:"phase"`
	Lifecycle     string   `json:"lifecycle"`
	SessionID     string   `json:"session_id"`
	StatusText    string   `json:"status_text"`
	Progress      int      `json:"progress"`
	LoadedModel   string   `json:"loaded_model"`
	Log           []string `json:"log"`
	ExitCode      *int     `json:"exit_code"`
	SocketPath    string   `json:"socket_path"`
	LockPath      string   `json:"lock_path"`
	HistoryDBPath string   `json:"history_db_path"`
	HistoryCount  int64    `json:"history_count"`
}

// StartWorkerRequest launches a worker session.
type StartWorkerRequest struct{}

// StartWorkerResponse indicates whether the worker was started.
type StartWorkerResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

// StopWorkerRequest shuts the worker session down.
type StopWorkerRequest struct{}

// StopWorkerResponse indicates stop result.
type StopWorkerResponse struct {
	Stopped bool `json:"stopped"`
}

// LoadModelRequest issues a model load. Empty model selects the configured
// default.
type LoadModelRequest struct {
	Model string `json:"model"`
}

// LoadModelResponse indicates whether the command was accepted.
type LoadModelResponse struct {
	Accepted bool   `json:"accepted"`
	Model    string `json:"model"`
	Message  string `json:"message"`
}

// TranscribeRequest issues a transcription for an audio file.
type TranscribeRequest struct {
	AudioPath string `json:"audio_path"`
}

// TranscribeResponse indicates whether the command was accepted.
type TranscribeResponse struct {
	Accepted bool   `json:"accepted"`
	Message  string `json:"message"`
}

// ResultRequest fetches the most recent completed transcription.
type ResultRequest struct{}

// Segment is one timed span of the transcript.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// ResultResponse carries the latest transcription, when one exists.
type ResultResponse struct {
	Available      bool      `json:"available"`
	Transcript     string    `json:"transcript"`
	Language       string    `json:"language"`
	ModelUsed      string    `json:"model_used"`
	AudioDuration  float64   `json:"audio_duration"`
	ProcessingTime float64   `json:"processing_time"`
	Segments       []Segment `json:"segments"`
}

// ModelsRequest lists the known model catalog.
type ModelsRequest struct{}

// ModelInfo describes one catalog entry.
type ModelInfo struct {
	Name   string `json:"name"`
	Size   string `json:"size"`
	Loaded bool   `json:"loaded"`
}

// ModelsResponse contains the model catalog.
type ModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

// HistoryListRequest lists recent transcriptions.
type HistoryListRequest struct {
	Limit int `json:"limit"`
}

// HistoryEntry is one stored transcription.
type HistoryEntry struct {
	ID             string  `json:"id"`
	SessionID      string  `json:"session_id"`
	Model          string  `json:"model"`
	AudioPath      string  `json:"audio_path"`
	Language       string  `json:"language"`
	AudioDuration  float64 `json:"audio_duration"`
	ProcessingTime float64 `json:"processing_time"`
	Transcript     string  `json:"transcript"`
	Payload        string  `json:"payload,omitempty"`
	CompletedAt    string  `json:"completed_at"`
}

// HistoryListResponse contains recent transcriptions, newest first.
type HistoryListResponse struct {
	Entries []HistoryEntry `json:"entries"`
}

// HistoryShowRequest fetches one transcription by id.
type HistoryShowRequest struct {
	ID string `json:"id"`
}

// HistoryShowResponse contains one transcription with payload.
type HistoryShowResponse struct {
	Entry *HistoryEntry `json:"entry"`
}

// HistoryClearRequest removes all stored transcriptions.
type HistoryClearRequest struct{}

// HistoryClearResponse reports number of removed entries.
type HistoryClearResponse struct {
	Removed int64 `json:"removed"`
}

// LogTailRequest fetches buffered log events after a sequence number.
type LogTailRequest struct {
	Since      uint64 `json:"since"`
	Limit      int    `json:"limit"`
	Follow     bool   `json:"follow"`
	WaitMillis int    `json:"wait_millis"`
}

// LogEvent is one structured log record.
type LogEvent struct {
	Sequence  uint64            `json:"sequence"`
	Timestamp string            `json:"timestamp"`
	Level     string            `json:"level"`
	Message   string            `json:"message"`
	Component string            `json:"component"`
	SessionID string            `json:"session_id,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// LogTailResponse returns log events and the next sequence cursor.
type LogTailResponse struct {
	Events []LogEvent `json:"events"`
	Next   uint64     `json:"next"`
}
