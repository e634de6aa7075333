package types

// PredictBase64Request is the JSON body of POST /api/v1/predict/base64.
type PredictBase64Request struct {
	// Base64 image, optionally prefixed with a data URI header.
	// example: data:image/jpeg;base64,/9j/4AAQSkZJRg...
	Image string `json:"image" example:"data:image/jpeg;base64,/9j/4AAQSkZJRg..."`
	// Attach a Grad-CAM heatmap overlay to the response.
	// example: false
	IncludeGradCAM bool `json:"include_gradcam" example:"false"`
	// Attach the breed catalog entry. Defaults to true when omitted.
	// example: true
	IncludeBreedInfo *bool `json:"include_breed_info,omitempty" example:"true"`
}

// TopPrediction is one entry of the Stage-2 ranking.
type TopPrediction struct {
	// example: Gir
	Breed string `json:"breed" example:"Gir"`
	// Percentage in [0,100], rounded to 2 decimals.
	// example: 87.66
	Confidence float64 `json:"confidence" example:"87.66"`
}

// PredictionResponse is returned by the predict endpoints.
type PredictionResponse struct {
	Success bool `json:"success"`
	// example: 3f0b5c8e-3a55-4a4c-9c3e-0c4a3b1f8f10
	PredictionID string `json:"prediction_id" example:"3f0b5c8e-3a55-4a4c-9c3e-0c4a3b1f8f10"`
	// example: cattle
	AnimalType string `json:"animal_type" example:"cattle"`
	// example: 97.12
	AnimalTypeConfidence float64 `json:"animal_type_confidence" example:"97.12"`
	// example: Gir
	Breed string `json:"breed" example:"Gir"`
	// example: 87.66
	BreedConfidence float64         `json:"breed_confidence" example:"87.66"`
	BreedHindi      string          `json:"breed_hindi,omitempty"`
	TopPredictions  []TopPrediction `json:"top_predictions"`
	// PNG data URI, or null when not requested or not available.
	GradCAMImage *string `json:"gradcam_image"`
	BreedInfo    *Breed  `json:"breed_info,omitempty"`
	// example: 41.7
	ProcessingTimeMS float64 `json:"processing_time_ms" example:"41.7"`
	// False while any classifier is serving untrained weights.
	ModelLoaded bool `json:"model_loaded"`
	// blake3 of the uploaded bytes; identical uploads share a hash.
	ImageHash string `json:"image_hash"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// ServiceInfo is returned by GET /.
type ServiceInfo struct {
	// example: breedd
	Service string `json:"service" example:"breedd"`
	// example: v0.3.0
	Version string `json:"version" example:"v0.3.0"`
	// example: running
	Status string `json:"status" example:"running"`
	Docs   string `json:"docs,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	// example: healthy
	Status          string `json:"status" example:"healthy"`
	ModelLoaded     bool   `json:"model_loaded"`
	DemoMode        bool   `json:"demo_mode"`
	BreedDataLoaded bool   `json:"breed_data_loaded"`
}

// ModelStatus describes one classifier handle.
type ModelStatus struct {
	// example: cattle_breed_classifier
	Name string `json:"name" example:"cattle_breed_classifier"`
	// 1 for the type router, 2 for breed classifiers.
	// example: 2
	Stage int `json:"stage" example:"2"`
	// Animal type the Stage-2 handle serves; empty for Stage 1.
	// example: cattle
	AnimalType string `json:"animal_type,omitempty" example:"cattle"`
	// loaded, demo_fallback or failed.
	// example: loaded
	Status string `json:"status" example:"loaded"`
	// example: /models/cattle_breed_classifier.onnx
	Source     string   `json:"source" example:"/models/cattle_breed_classifier.onnx"`
	Vocabulary []string `json:"vocabulary"`
	// Where the vocabulary came from: file, metadata or default.
	// example: file
	VocabularySource string `json:"vocabulary_source" example:"file"`
	Saliency         bool   `json:"saliency"`
	Concurrent       bool   `json:"concurrent"`
	Error            string `json:"error,omitempty"`
	// Current queue length for this handle.
	// example: 0
	QueueLen int `json:"queue_len" example:"0"`
	// Number of evaluations currently running.
	// example: 1
	Inflight int `json:"inflight" example:"1"`
	// example: 32
	MaxQueueDepth int `json:"max_queue_depth" example:"32"`
	// example: 4
	MaxInflight int `json:"max_inflight" example:"4"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// loading, ready or error.
	// example: ready
	State  string        `json:"state" example:"ready"`
	Models []ModelStatus `json:"models"`
	// example: true
	ModelLoaded bool `json:"model_loaded" example:"true"`
	// Optional top-level error message.
	Error string `json:"error,omitempty"`
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// example: 1
	LoadsTotal uint64 `json:"loads_total" example:"1"`
	// example: 120
	PredictionsTotal uint64 `json:"predictions_total" example:"120"`
	// example: 3
	RejectedTotal uint64 `json:"rejected_total" example:"3"`
}
