package ports

import "context"

// DetectOptions tune face detection for one call.
type DetectOptions struct {
	MinFaceSize         int     `json:"min_face_size"`
	MaxFaces            int     `json:"max_faces"`
	ConfidenceThreshold float64 `json:"confidence_threshold"`
}

// DetectResult is the engine's detection outcome. Success=false with a nil
// error is a business decision (no face), not a transport failure.
type DetectResult struct {
	Success       bool
	FaceCount     int
	FacesDetected bool
	Confidence    float64
	Message       string
}

// AntiSpoofOptions tune presentation-attack detection.
type AntiSpoofOptions struct {
	SpoofingThreshold float64 `json:"spoofing_threshold"`
	ModelType         string  `json:"model_type"`
}

type AntiSpoofResult struct {
	Success    bool
	IsReal     bool
	Confidence float64
	Message    string
}

// LivenessOptions tune challenge-sequence scoring.
type LivenessOptions struct {
	LivenessThreshold float64 `json:"liveness_threshold"`
	MovementThreshold float64 `json:"movement_threshold"`
}

type LivenessResult struct {
	Success        bool
	LivenessPassed bool
	Confidence     float64
	Message        string
}

// EmbeddingOptions select the model used to produce an embedding.
type EmbeddingOptions struct {
	ModelName       string `json:"model_name"`
	DetectorBackend string `json:"detector_backend"`
}

type EmbeddingResult struct {
	Success      bool
	Embedding    []float64
	Confidence   float64
	QualityScore float64
	Message      string
}

// VerifyOptions select the model used for verification; it must match the
// model the stored embeddings were produced with.
type VerifyOptions struct {
	ModelName       string `json:"model_name"`
	DetectorBackend string `json:"detector_backend"`
}

type VerifyResult struct {
	Success    bool
	IsMatch    bool
	Confidence float64
	Similarity float64
	Threshold  float64
	Message    string
}

type EngineHealth struct {
	Status   string
	Services map[string]string
	Version  string
}

// RecognitionEngine is the remote recognition capability consumed by the
// orchestrators. Implementations own transport-level retry; a returned
// error means transport failure after the retry budget, while business
// rejections come back as Success=false results with a nil error.
type RecognitionEngine interface {
	DetectFace(ctx context.Context, image string, opts DetectOptions) (DetectResult, error)
	CheckAntiSpoofing(ctx context.Context, image string, opts AntiSpoofOptions) (AntiSpoofResult, error)
	CheckLiveness(ctx context.Context, images []string, challengeType string, opts LivenessOptions) (LivenessResult, error)
	GenerateEmbedding(ctx context.Context, image string, opts EmbeddingOptions) (EmbeddingResult, error)
	VerifyFace(ctx context.Context, image string, embeddings [][]float64, threshold float64, opts VerifyOptions) (VerifyResult, error)
	Health(ctx context.Context) (EngineHealth, error)
}
