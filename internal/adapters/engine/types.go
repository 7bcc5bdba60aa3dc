package engine

// Request and response bodies for the recognition engine's HTTP API.
// Field names follow the engine's wire contract.

type detectRequest struct {
	Image   string        `json:"image"`
	Options detectOptions `json:"options"`
}

type detectOptions struct {
	MinFaceSize         int     `json:"min_face_size"`
	MaxFaces            int     `json:"max_faces"`
	ConfidenceThreshold float64 `json:"confidence_threshold"`
}

type detectResponse struct {
	Success       bool    `json:"success"`
	FaceCount     int     `json:"face_count"`
	FacesDetected bool    `json:"faces_detected"`
	Confidence    float64 `json:"confidence"`
	Message       string  `json:"message"`
}

type antiSpoofRequest struct {
	Image   string           `json:"image"`
	Options antiSpoofOptions `json:"options"`
}

type antiSpoofOptions struct {
	SpoofingThreshold float64 `json:"spoofing_threshold"`
	ModelType         string  `json:"model_type"`
}

type antiSpoofResponse struct {
	Success    bool    `json:"success"`
	IsReal     bool    `json:"is_real"`
	Confidence float64 `json:"confidence"`
	Message    string  `json:"message"`
}

type livenessRequest struct {
	Images        []string        `json:"images"`
	ChallengeType string          `json:"challenge_type"`
	Options       livenessOptions `json:"options"`
}

type livenessOptions struct {
	LivenessThreshold float64 `json:"liveness_threshold"`
	MovementThreshold float64 `json:"movement_threshold"`
}

type livenessResponse struct {
	Success        bool    `json:"success"`
	LivenessPassed bool    `json:"liveness_passed"`
	Confidence     float64 `json:"confidence"`
	Message        string  `json:"message"`
}

type embeddingRequest struct {
	Image   string       `json:"image"`
	Options modelOptions `json:"options"`
}

type modelOptions struct {
	ModelName       string `json:"model_name"`
	DetectorBackend string `json:"detector_backend"`
}

type embeddingResponse struct {
	Success      bool      `json:"success"`
	Embedding    []float64 `json:"embedding"`
	Confidence   float64   `json:"confidence"`
	QualityScore float64   `json:"quality_score"`
	Message      string    `json:"message"`
}

type verifyRequest struct {
	Image      string       `json:"image"`
	Embeddings [][]float64  `json:"embeddings"`
	Threshold  float64      `json:"threshold"`
	Options    modelOptions `json:"options"`
}

type verifyResponse struct {
	Success    bool    `json:"success"`
	IsMatch    bool    `json:"is_match"`
	Confidence float64 `json:"confidence"`
	Similarity float64 `json:"similarity"`
	Threshold  float64 `json:"threshold"`
	Message    string  `json:"message"`
}

type healthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
	Version  string            `json:"version"`
}
