package api

// Profile is a person whose memories are stored on the backend
type Profile struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Relationship      string `json:"relationship,omitempty"`
	Description       string `json:"description,omitempty"`
	ConsentGiven      bool   `json:"consent_given"`
	CreatedAt         string `json:"created_at,omitempty"`
	FileCount         int    `json:"file_count"`
	ConversationCount int    `json:"conversation_count"`
}

// ProfileInput is the body of create and update requests
type ProfileInput struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship,omitempty"`
	Description  string `json:"description,omitempty"`
	ConsentGiven bool   `json:"consent_given"`
}

// DashboardStats summarizes the whole store
type DashboardStats struct {
	ProfilesCount      int     `json:"profiles_count"`
	FilesCount         int     `json:"files_count"`
	ConversationsCount int     `json:"conversations_count"`
	MemoryHours        float64 `json:"memory_hours"`
}

// UploadedFile is a file attached to a profile
type UploadedFile struct {
	ID         int64  `json:"id"`
	ProfileID  int64  `json:"profile_id"`
	Filename   string `json:"filename"`
	FileType   string `json:"file_type"`
	FileSize   int64  `json:"file_size"`
	UploadDate string `json:"upload_date,omitempty"`
	Processed  bool   `json:"processed"`
}

// FailedUpload names a file the backend rejected
type FailedUpload struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// UploadResult is returned by a multi-file upload
type UploadResult struct {
	TaskID        string         `json:"task_id"`
	UploadedFiles []UploadedFile `json:"uploaded_files"`
	FailedUploads []FailedUpload `json:"failed_uploads"`
}

// TaskRef identifies a background job started on the backend
type TaskRef struct {
	TaskID string `json:"task_id"`
}

// Progress is the status record of a background job
type Progress struct {
	TaskID         string   `json:"task_id"`
	ProfileID      int64    `json:"profile_id"`
	TaskType       string   `json:"task_type"`
	Status         string   `json:"status"`
	Progress       float64  `json:"progress"`
	Message        string   `json:"message"`
	CurrentStep    string   `json:"current_step"`
	CompletedItems int      `json:"completed_items"`
	TotalItems     int      `json:"total_items"`
	EstimatedTime  *float64 `json:"estimated_time,omitempty"`
}

// Transcription is the text extracted from an audio file
type Transcription struct {
	ID                  int64   `json:"id"`
	FileID              int64   `json:"file_id"`
	ProfileID           int64   `json:"profile_id"`
	OriginalText        string  `json:"original_text"`
	CleanedText         string  `json:"cleaned_text"`
	Confidence          float64 `json:"confidence"`
	TranscriptionMethod string  `json:"transcription_method"`
	ProcessingTime      float64 `json:"processing_time"`
	CreatedAt           string  `json:"created_at,omitempty"`
}

// ChatReply is the answer to a chat message
type ChatReply struct {
	Response        string  `json:"response"`
	ProcessingTime  float64 `json:"processing_time"`
	EmotionDetected string  `json:"emotion_detected"`
}

// ChatEntry is one exchange in the chat history
type ChatEntry struct {
	ID              int64   `json:"id"`
	ProfileID       int64   `json:"profile_id"`
	UserMessage     string  `json:"user_message"`
	AIResponse      string  `json:"ai_response"`
	EmotionDetected string  `json:"emotion_detected,omitempty"`
	ResponseTime    float64 `json:"response_time"`
	CreatedAt       string  `json:"created_at,omitempty"`
}

// ClearResult reports how many chat messages were removed
type ClearResult struct {
	DeletedCount int `json:"deleted_count"`
}

// SpeechRequest asks the backend to voice a chat response
type SpeechRequest struct {
	ID         int64  `json:"id"`
	ProfileID  int64  `json:"profile_id"`
	AIResponse string `json:"ai_response"`
}

// SpeechResult points to generated audio
type SpeechResult struct {
	AudioID   int64  `json:"audio_id"`
	AudioPath string `json:"audio_path"`
	FileSize  int64  `json:"file_size"`
}

// EmotionAnalysis is part of the visualization payload
type EmotionAnalysis struct {
	Distribution     map[string]float64 `json:"distribution"`
	PrimaryEmotion   string             `json:"primary_emotion"`
	EmotionDiversity int                `json:"emotion_diversity"`
}

// TextStatistics is part of the word analysis
type TextStatistics struct {
	TotalWords          int     `json:"total_words"`
	UniqueWords         int     `json:"unique_words"`
	VocabularyDiversity float64 `json:"vocabulary_diversity"`
	AverageWordLength   float64 `json:"average_word_length"`
}

// WordAnalysis is part of the visualization payload
type WordAnalysis struct {
	WordFrequency  map[string]int `json:"word_frequency"`
	TextStatistics TextStatistics `json:"text_statistics"`
}

// Visualization is the analytics data for a profile. Sections the terminal
// does not draw are kept raw.
type Visualization struct {
	EmotionAnalysis EmotionAnalysis `json:"emotion_analysis"`
	WordAnalysis    WordAnalysis    `json:"word_analysis"`
	SummaryStats    map[string]any  `json:"summary_stats"`
}

// Health is the backend health record
type Health struct {
	Status      string `json:"status"`
	App         string `json:"app"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
}
