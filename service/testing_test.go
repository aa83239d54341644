package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/studyloft/studyloft/database"
	"github.com/studyloft/studyloft/events"
	"github.com/studyloft/studyloft/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps every goroutine on the same in-memory database
	// and serializes writes, which sqlite wants anyway.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func seedSession(t *testing.T, db *gorm.DB) *models.StudySession {
	t.Helper()

	session := &models.StudySession{Title: "Operating Systems"}
	require.NoError(t, db.Create(session).Error)
	return session
}

func seedMaterial(t *testing.T, db *gorm.DB, sessionID uuid.UUID, status, rawContent string) *models.Material {
	t.Helper()

	material := &models.Material{
		SessionID:        sessionID,
		Title:            "Scheduling notes",
		OriginalFilename: "scheduling.pdf",
		ContentType:      "application/pdf",
		SizeBytes:        1024,
		Status:           status,
		Bucket:           "test-materials",
		ObjectName:       "obj/scheduling.pdf",
		RawContent:       rawContent,
	}
	require.NoError(t, db.Create(material).Error)
	return material
}

// fakeGenerator returns canned responses in order, or an error for every call.
type fakeGenerator struct {
	mu        sync.Mutex
	responses []string
	err       error
	prompts   []string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt, systemInstruction string, maxTokens int, temperature float32) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", fmt.Errorf("no canned response left")
	}
	response := f.responses[0]
	f.responses = f.responses[1:]
	return response, nil
}

type fakeSynthesizer struct {
	audio []byte
	err   error

	mu     sync.Mutex
	voices []string
}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	f.mu.Lock()
	f.voices = append(f.voices, voice)
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	return f.audio, nil
}

// fakeStore keeps objects in a map keyed bucket/object.
type fakeStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	getCalls int
	getErr   error
	putErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func storeKey(bucket, object string) string {
	return bucket + "/" + object
}

func (f *fakeStore) Put(ctx context.Context, bucket, object string, data []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.objects[storeKey(bucket, object)] = data
	return nil
}

func (f *fakeStore) Get(ctx context.Context, bucket, object string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.objects[storeKey(bucket, object)]
	if !ok {
		return nil, fmt.Errorf("object %s/%s not found", bucket, object)
	}
	return data, nil
}

func (f *fakeStore) PresignedURL(ctx context.Context, bucket, object string, expiry time.Duration) (string, error) {
	return "https://store.test/" + storeKey(bucket, object), nil
}

func (f *fakeStore) Remove(ctx context.Context, bucket, object string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, storeKey(bucket, object))
	return nil
}

func (f *fakeStore) has(bucket, object string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[storeKey(bucket, object)]
	return ok
}

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu        sync.Mutex
	materials []events.Event
	artifacts []events.Event
}

func (p *recordingPublisher) PublishMaterial(ctx context.Context, event events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.materials = append(p.materials, event)
}

func (p *recordingPublisher) PublishArtifact(ctx context.Context, event events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.artifacts = append(p.artifacts, event)
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) artifactStatuses() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	statuses := make([]string, 0, len(p.artifacts))
	for _, e := range p.artifacts {
		statuses = append(statuses, e.Status)
	}
	return statuses
}
