package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/veribank/faceauth/internal/domain"
	"github.com/veribank/faceauth/internal/ports"
)

func TestRegisterFacesPartialSuccess(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	userID := f.addProfile("alice")

	// image 2 fails detection; 1 and 3 pass the full pipeline
	f.engine.detectFail["img-2"] = true

	res, err := f.service.RegisterFaces(ctx, EnrollmentRequest{
		UserID: userID,
		Images: []string{"img-1", "img-2", "img-3"},
	})
	if err != nil {
		t.Fatalf("register faces failed: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected overall success with 2 of 3 images")
	}
	if res.SuccessCount != 2 || res.TotalImages != 3 {
		t.Fatalf("expected 2/3 successes, got %d/%d", res.SuccessCount, res.TotalImages)
	}
	if res.Images[1].Success || res.Images[1].Step != StepDetection {
		t.Fatalf("expected image 2 tagged with detection failure, got %+v", res.Images[1])
	}
	if res.Images[0].ImageNumber != 1 || res.Images[2].ImageNumber != 3 {
		t.Fatalf("expected stable image numbering")
	}

	profile, _ := f.profiles.GetByID(ctx, userID)
	if !profile.FaceRegistered || !profile.RegistrationCompleted {
		t.Fatalf("expected profile marked registered")
	}
	if profile.EmbeddingCount != 2 {
		t.Fatalf("expected embedding count 2, got %d", profile.EmbeddingCount)
	}

	if got := f.outbox.lastEventType(); got != "face.enrollment.completed" {
		t.Fatalf("expected enrollment event, got %q", got)
	}
	if len(f.audit.entries) != 1 || f.audit.entries[0].ActivityType != domain.ActivityRegistration {
		t.Fatalf("expected one registration audit entry")
	}
}

func TestRegisterFacesBelowMinimumFails(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	userID := f.addProfile("bob")

	f.engine.spoofFail["img-1"] = true
	f.engine.detectFail["img-2"] = true

	res, err := f.service.RegisterFaces(ctx, EnrollmentRequest{
		UserID: userID,
		Images: []string{"img-1", "img-2"},
	})
	if err != nil {
		t.Fatalf("register faces failed: %v", err)
	}
	if res.Success || res.SuccessCount != 0 {
		t.Fatalf("expected failed registration, got %+v", res)
	}
	if res.Images[0].Step != StepAntiSpoofing {
		t.Fatalf("expected anti-spoofing tag on image 1, got %q", res.Images[0].Step)
	}

	profile, _ := f.profiles.GetByID(ctx, userID)
	if profile.FaceRegistered {
		t.Fatalf("profile must not be marked registered below the minimum")
	}
	if f.outbox.lastEventType() != "" {
		t.Fatalf("no event expected for failed registration")
	}
}

func TestReRegistrationDeactivatesPriorEmbeddings(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	userID := f.addProfile("carol")

	if _, err := f.service.RegisterFaces(ctx, EnrollmentRequest{
		UserID: userID,
		Images: []string{"img-1", "img-2"},
	}); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if _, err := f.service.RegisterFaces(ctx, EnrollmentRequest{
		UserID: userID,
		Images: []string{"img-3", "img-4"},
	}); err != nil {
		t.Fatalf("second registration failed: %v", err)
	}

	active, _ := f.embeddings.ListActiveByUser(ctx, userID)
	if len(active) != 2 {
		t.Fatalf("expected only the new embeddings active, got %d", len(active))
	}
	for _, rec := range active {
		if rec.ImageNumber != 1 && rec.ImageNumber != 2 {
			t.Fatalf("unexpected image number %d", rec.ImageNumber)
		}
	}
}

func TestFailedReRegistrationClearsRegistration(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	userID := f.addProfile("yuri")

	if _, err := f.service.RegisterFaces(ctx, EnrollmentRequest{
		UserID: userID,
		Images: []string{"img-1", "img-2"},
	}); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}

	f.engine.detectFail["img-3"] = true
	f.engine.detectFail["img-4"] = true
	res, err := f.service.RegisterFaces(ctx, EnrollmentRequest{
		UserID: userID,
		Images: []string{"img-3", "img-4"},
	})
	if err != nil {
		t.Fatalf("re-registration failed: %v", err)
	}
	if res.Success {
		t.Fatalf("expected re-registration below the minimum to fail")
	}

	// a profile must never claim registration with zero active embeddings
	profile, _ := f.profiles.GetByID(ctx, userID)
	if profile.FaceRegistered || profile.RegistrationCompleted {
		t.Fatalf("expected registration flags cleared, got %+v", profile)
	}
	if profile.EmbeddingCount != 0 {
		t.Fatalf("expected embedding count reset, got %d", profile.EmbeddingCount)
	}
	active, _ := f.embeddings.ListActiveByUser(ctx, userID)
	if len(active) != 0 {
		t.Fatalf("expected no active embeddings, got %d", len(active))
	}
}

func TestRegisterFacesStripsDataURLPrefix(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	userID := f.addProfile("dave")

	if _, err := f.service.RegisterFaces(ctx, EnrollmentRequest{
		UserID: userID,
		Images: []string{"data:image/jpeg;base64,img-1", "img-2"},
	}); err != nil {
		t.Fatalf("register faces failed: %v", err)
	}
	for _, img := range f.engine.detectImages {
		if strings.HasPrefix(img, "data:") {
			t.Fatalf("engine received unstripped image payload %q", img)
		}
	}
}

func TestAuthenticateSuccessResetsFailureCounter(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	userID := f.enrolledProfile("erin")

	// a mismatch bumps the counter first
	f.engine.verifySimilarity = 0.4
	res, err := f.service.Authenticate(ctx, LoginRequest{UserID: userID, Image: "probe"})
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if res.Success || res.Step != StepVerification {
		t.Fatalf("expected verification failure, got %+v", res)
	}
	if res.Threshold != 0.6 {
		t.Fatalf("expected threshold 0.6 in failure result, got %v", res.Threshold)
	}
	profile, _ := f.profiles.GetByID(ctx, userID)
	if profile.FailedLoginAttempts != 1 {
		t.Fatalf("expected counter 1 after mismatch, got %d", profile.FailedLoginAttempts)
	}

	f.engine.verifySimilarity = 0.92
	res, err = f.service.Authenticate(ctx, LoginRequest{UserID: userID, Image: "probe"})
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected successful login, got %+v", res)
	}
	profile, _ = f.profiles.GetByID(ctx, userID)
	if profile.FailedLoginAttempts != 0 {
		t.Fatalf("expected counter reset on success, got %d", profile.FailedLoginAttempts)
	}
	if profile.LastLoginAt == nil {
		t.Fatalf("expected last login timestamp set")
	}
	if f.outbox.lastEventType() != "face.login.succeeded" {
		t.Fatalf("expected login event, got %q", f.outbox.lastEventType())
	}
}

func TestAuthenticateEngineMatchAndThresholdMustAgree(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	userID := f.enrolledProfile("frank")

	// engine says match but similarity sits below the threshold
	f.engine.verifyMatch = true
	f.engine.verifySimilarity = 0.55

	res, err := f.service.Authenticate(ctx, LoginRequest{UserID: userID, Image: "probe"})
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if res.Success || res.Step != StepVerification {
		t.Fatalf("expected rejection when threshold disagrees, got %+v", res)
	}
}

func TestAuthenticateNotEnrolledSkipsEngine(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	userID := f.addProfile("grace")

	_, err := f.service.Authenticate(ctx, LoginRequest{UserID: userID, Image: "probe"})
	if !errors.Is(err, domain.ErrNotEnrolled) {
		t.Fatalf("expected ErrNotEnrolled, got %v", err)
	}
	if f.engine.calls != 0 {
		t.Fatalf("no engine call expected for unenrolled user, got %d", f.engine.calls)
	}
}

func TestAuthenticateNotEnrolledCountsAsFailedAttempt(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	userID := f.addProfile("hana")

	for i := 0; i < 2; i++ {
		if _, err := f.service.Authenticate(ctx, LoginRequest{UserID: userID, Image: "probe"}); !errors.Is(err, domain.ErrNotEnrolled) {
			t.Fatalf("expected ErrNotEnrolled, got %v", err)
		}
	}

	profile, _ := f.profiles.GetByID(ctx, userID)
	if profile.FailedLoginAttempts != 2 {
		t.Fatalf("expected counter 2 after two unenrolled attempts, got %d", profile.FailedLoginAttempts)
	}
	if profile.LastFailedLoginAt == nil {
		t.Fatalf("expected last failed login timestamp")
	}
	if len(f.audit.entries) != 2 {
		t.Fatalf("expected one audit entry per attempt, got %d", len(f.audit.entries))
	}
}

func TestAuthenticateSpoofFailureCountsAsFailedAttempt(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	userID := f.enrolledProfile("henry")

	f.engine.spoofFail["probe"] = true
	res, err := f.service.Authenticate(ctx, LoginRequest{UserID: userID, Image: "probe"})
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if res.Success || res.Step != StepAntiSpoofing {
		t.Fatalf("expected anti-spoofing rejection, got %+v", res)
	}

	profile, _ := f.profiles.GetByID(ctx, userID)
	if profile.FailedLoginAttempts != 1 {
		t.Fatalf("expected failure counter bump, got %d", profile.FailedLoginAttempts)
	}
	if profile.LastFailedLoginAt == nil {
		t.Fatalf("expected last failed login timestamp")
	}
	if len(f.audit.entries) != 1 || f.audit.entries[0].Success {
		t.Fatalf("expected one failed login audit entry")
	}
}

func TestAuthenticateRequiresCompletedLivenessSession(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	userID := f.enrolledProfile("iris")

	view, err := f.service.StartLivenessSession(ctx, userID, nil)
	if err != nil {
		t.Fatalf("start liveness failed: %v", err)
	}

	// session still active, not completed
	res, err := f.service.Authenticate(ctx, LoginRequest{
		UserID:   userID,
		Image:    "probe",
		Liveness: LivenessSessionRef(view.Token),
	})
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if res.Success || res.Step != StepLiveness {
		t.Fatalf("expected liveness rejection, got %+v", res)
	}

	// complete the session, then the same login passes
	if _, err := f.service.SubmitLivenessImage(ctx, view.Token, "frame-1"); err != nil {
		t.Fatalf("submit 1 failed: %v", err)
	}
	final, err := f.service.SubmitLivenessImage(ctx, view.Token, "frame-2")
	if err != nil {
		t.Fatalf("submit 2 failed: %v", err)
	}
	if final.Status != string(domain.SessionCompleted) {
		t.Fatalf("expected completed session, got %s", final.Status)
	}

	res, err = f.service.Authenticate(ctx, LoginRequest{
		UserID:   userID,
		Image:    "probe",
		Liveness: LivenessSessionRef(view.Token),
	})
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success with completed session, got %+v", res)
	}
}

func TestAuditInsertFailureDoesNotFailLogin(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	userID := f.enrolledProfile("judy")

	f.audit.failInsert = true
	res, err := f.service.Authenticate(ctx, LoginRequest{UserID: userID, Image: "probe"})
	if err != nil {
		t.Fatalf("authenticate must swallow audit failures: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
}

func TestConcurrentFailedLoginsBothCount(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	userID := f.enrolledProfile("kate")
	f.engine.verifySimilarity = 0.1

	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		go func() {
			defer wg.Done()
			_, _ = f.service.Authenticate(ctx, LoginRequest{UserID: userID, Image: "probe"})
		}()
	}
	wg.Wait()

	profile, _ := f.profiles.GetByID(ctx, userID)
	if profile.FailedLoginAttempts != 2 {
		t.Fatalf("expected both concurrent failures counted, got %d", profile.FailedLoginAttempts)
	}
}

func TestCreateProfileValidatesUsername(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	if _, err := f.service.CreateProfile(ctx, CreateProfileRequest{Username: "  "}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}

	profile, err := f.service.CreateProfile(ctx, CreateProfileRequest{Username: "lena", FullName: "Lena Q"})
	if err != nil {
		t.Fatalf("create profile failed: %v", err)
	}
	if profile.UserID == uuid.Nil {
		t.Fatalf("expected generated user id")
	}

	got, err := f.service.GetProfile(ctx, profile.UserID)
	if err != nil || got.Username != "lena" {
		t.Fatalf("expected stored profile, got %+v err %v", got, err)
	}
}

func newFixture() *fixture {
	profiles := &fakeProfiles{byID: map[uuid.UUID]domain.UserProfile{}}
	embeddings := &fakeEmbeddings{profiles: profiles}
	audit := &fakeAudit{}
	outbox := &fakeOutbox{}
	sessions := &fakeSessionStore{items: map[string]domain.LivenessSession{}}
	engine := newFakeEngine()

	svc := NewService(Dependencies{
		Config: Config{
			MinRequiredImages:        2,
			EnrollDetectionThreshold: 0.8,
			LoginDetectionThreshold:  0.7,
			SpoofingThreshold:        0.5,
			SimilarityThreshold:      0.6,
			LivenessThreshold:        0.7,
			ModelName:                "ArcFace",
			DetectorBackend:          "retinaface",
			EmbeddingVersion:         "v1",
			SessionTTL:               10 * time.Minute,
			SessionMaxAttempts:       3,
			DefaultChallenges:        []domain.Challenge{domain.ChallengeBlink, domain.ChallengeSmile},
		},
		Profiles:   profiles,
		Embeddings: embeddings,
		Audit:      audit,
		Outbox:     outbox,
		Sessions:   sessions,
		Engine:     engine,
	})

	return &fixture{
		service:    svc,
		profiles:   profiles,
		embeddings: embeddings,
		audit:      audit,
		outbox:     outbox,
		sessions:   sessions,
		engine:     engine,
	}
}

type fixture struct {
	service    *Service
	profiles   *fakeProfiles
	embeddings *fakeEmbeddings
	audit      *fakeAudit
	outbox     *fakeOutbox
	sessions   *fakeSessionStore
	engine     *fakeEngine
}

func (f *fixture) addProfile(username string) uuid.UUID {
	profile, err := f.profiles.Create(context.Background(), ports.CreateProfileParams{
		UserID:    uuid.New(),
		Username:  username,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		panic(err)
	}
	return profile.UserID
}

func (f *fixture) enrolledProfile(username string) uuid.UUID {
	userID := f.addProfile(username)
	if _, err := f.service.RegisterFaces(context.Background(), EnrollmentRequest{
		UserID: userID,
		Images: []string{"enroll-1", "enroll-2"},
	}); err != nil {
		panic(err)
	}
	f.audit.reset()
	f.outbox.reset()
	f.engine.calls = 0
	return userID
}

type fakeProfiles struct {
	mu   sync.Mutex
	byID map[uuid.UUID]domain.UserProfile
}

func (f *fakeProfiles) Create(_ context.Context, params ports.CreateProfileParams) (domain.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[params.UserID]; ok {
		return domain.UserProfile{}, domain.ErrConflict
	}
	p := domain.UserProfile{
		UserID:    params.UserID,
		Username:  params.Username,
		FullName:  params.FullName,
		CreatedAt: params.CreatedAt,
		UpdatedAt: params.CreatedAt,
	}
	f.byID[p.UserID] = p
	return p, nil
}

func (f *fakeProfiles) GetByID(_ context.Context, userID uuid.UUID) (domain.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[userID]
	if !ok {
		return domain.UserProfile{}, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakeProfiles) MarkFaceRegistered(_ context.Context, userID uuid.UUID, embeddingCount int, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[userID]
	if !ok {
		return domain.ErrNotFound
	}
	p.FaceRegistered = true
	p.RegistrationCompleted = true
	p.EmbeddingCount = embeddingCount
	p.UpdatedAt = updatedAt
	f.byID[userID] = p
	return nil
}

func (f *fakeProfiles) resetRegistration(userID uuid.UUID, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[userID]
	if !ok {
		return
	}
	p.FaceRegistered = false
	p.RegistrationCompleted = false
	p.EmbeddingCount = 0
	p.UpdatedAt = at
	f.byID[userID] = p
}

func (f *fakeProfiles) RecordLoginSuccess(_ context.Context, userID uuid.UUID, loginAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[userID]
	if !ok {
		return domain.ErrNotFound
	}
	p.FailedLoginAttempts = 0
	p.LastLoginAt = &loginAt
	p.UpdatedAt = loginAt
	f.byID[userID] = p
	return nil
}

func (f *fakeProfiles) RecordLoginFailure(_ context.Context, userID uuid.UUID, failedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[userID]
	if !ok {
		return domain.ErrNotFound
	}
	p.FailedLoginAttempts++
	p.LastFailedLoginAt = &failedAt
	p.UpdatedAt = failedAt
	f.byID[userID] = p
	return nil
}

type fakeEmbeddings struct {
	mu       sync.Mutex
	records  []domain.FaceEmbeddingRecord
	profiles *fakeProfiles
}

func (f *fakeEmbeddings) Insert(_ context.Context, params ports.InsertEmbeddingParams) (domain.FaceEmbeddingRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec := domain.FaceEmbeddingRecord{
		EmbeddingID:        uuid.New(),
		UserID:             params.UserID,
		Embedding:          params.Embedding,
		ImageNumber:        params.ImageNumber,
		ConfidenceScore:    params.ConfidenceScore,
		AntiSpoofingPassed: params.AntiSpoofingPassed,
		ModelConfig:        params.ModelConfig,
		EmbeddingVersion:   params.EmbeddingVersion,
		IsActive:           true,
		CreatedAt:          params.CreatedAt,
	}
	f.records = append(f.records, rec)
	return rec, nil
}

func (f *fakeEmbeddings) ListActiveByUser(_ context.Context, userID uuid.UUID) ([]domain.FaceEmbeddingRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.FaceEmbeddingRecord
	for _, rec := range f.records {
		if rec.UserID == userID && rec.IsActive {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeEmbeddings) ResetEnrollment(_ context.Context, userID uuid.UUID, at time.Time) (int, error) {
	f.mu.Lock()
	count := 0
	for i := range f.records {
		if f.records[i].UserID == userID && f.records[i].IsActive {
			f.records[i].IsActive = false
			count++
		}
	}
	f.mu.Unlock()
	f.profiles.resetRegistration(userID, at)
	return count, nil
}

type fakeAudit struct {
	mu         sync.Mutex
	entries    []domain.AuthenticationAttempt
	failInsert bool
}

func (f *fakeAudit) Insert(_ context.Context, attempt domain.AuthenticationAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInsert {
		return errors.New("audit store down")
	}
	f.entries = append(f.entries, attempt)
	return nil
}

func (f *fakeAudit) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int, since *time.Time, activityType string) ([]domain.AuthenticationAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.AuthenticationAttempt
	for _, e := range f.entries {
		if e.UserID != userID {
			continue
		}
		if activityType != "" && e.ActivityType != activityType {
			continue
		}
		if since != nil && e.CreatedAt.Before(*since) {
			continue
		}
		out = append(out, e)
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeAudit) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = nil
}

type fakeOutbox struct {
	mu     sync.Mutex
	events []ports.OutboxEvent
}

func (f *fakeOutbox) Enqueue(_ context.Context, event ports.OutboxEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}
func (f *fakeOutbox) ClaimUnpublished(context.Context, int, string, time.Time) ([]ports.OutboxRecord, error) {
	return nil, nil
}
func (f *fakeOutbox) MarkPublished(context.Context, uuid.UUID, string, time.Time) error { return nil }
func (f *fakeOutbox) MarkFailed(context.Context, uuid.UUID, string, string, time.Time) error {
	return nil
}
func (f *fakeOutbox) MarkDeadLettered(context.Context, uuid.UUID, string, string, time.Time) error {
	return nil
}

func (f *fakeOutbox) lastEventType() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.events) == 0 {
		return ""
	}
	return f.events[len(f.events)-1].EventType
}

func (f *fakeOutbox) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = nil
}

type fakeSessionStore struct {
	mu    sync.Mutex
	items map[string]domain.LivenessSession
}

func (f *fakeSessionStore) Put(_ context.Context, session domain.LivenessSession, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[session.Token] = session
	return nil
}

func (f *fakeSessionStore) Get(_ context.Context, token string) (*domain.LivenessSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[token]
	if !ok {
		return nil, nil
	}
	cp := item
	return &cp, nil
}

func (f *fakeSessionStore) Delete(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, token)
	return nil
}

type fakeEngine struct {
	mu               sync.Mutex
	calls            int
	detectImages     []string
	detectFail       map[string]bool
	spoofFail        map[string]bool
	livenessFail     bool
	livenessErr      error
	verifyMatch      bool
	verifySimilarity float64
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		detectFail:       map[string]bool{},
		spoofFail:        map[string]bool{},
		verifyMatch:      true,
		verifySimilarity: 0.9,
	}
}

func (f *fakeEngine) DetectFace(_ context.Context, image string, _ ports.DetectOptions) (ports.DetectResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.detectImages = append(f.detectImages, image)
	if f.detectFail[image] {
		return ports.DetectResult{Success: false, Message: "no face detected"}, nil
	}
	return ports.DetectResult{Success: true, FaceCount: 1, FacesDetected: true, Confidence: 0.95}, nil
}

func (f *fakeEngine) CheckAntiSpoofing(_ context.Context, image string, _ ports.AntiSpoofOptions) (ports.AntiSpoofResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.spoofFail[image] {
		return ports.AntiSpoofResult{Success: true, IsReal: false, Confidence: 0.3}, nil
	}
	return ports.AntiSpoofResult{Success: true, IsReal: true, Confidence: 0.9}, nil
}

func (f *fakeEngine) CheckLiveness(_ context.Context, _ []string, _ string, _ ports.LivenessOptions) (ports.LivenessResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.livenessErr != nil {
		return ports.LivenessResult{}, f.livenessErr
	}
	if f.livenessFail {
		return ports.LivenessResult{Success: true, LivenessPassed: false, Confidence: 0.2}, nil
	}
	return ports.LivenessResult{Success: true, LivenessPassed: true, Confidence: 0.85}, nil
}

func (f *fakeEngine) GenerateEmbedding(_ context.Context, _ string, _ ports.EmbeddingOptions) (ports.EmbeddingResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return ports.EmbeddingResult{Success: true, Embedding: []float64{0.1, 0.2, 0.3}, Confidence: 0.93, QualityScore: 0.9}, nil
}

func (f *fakeEngine) VerifyFace(_ context.Context, _ string, _ [][]float64, threshold float64, _ ports.VerifyOptions) (ports.VerifyResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return ports.VerifyResult{
		Success:    true,
		IsMatch:    f.verifyMatch,
		Confidence: f.verifySimilarity,
		Similarity: f.verifySimilarity,
		Threshold:  threshold,
	}, nil
}

func (f *fakeEngine) Health(context.Context) (ports.EngineHealth, error) {
	return ports.EngineHealth{Status: "healthy"}, nil
}
