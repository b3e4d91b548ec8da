package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/SundayYogurt/logistics_service/internal/domain"
	"github.com/SundayYogurt/logistics_service/internal/dto"
	"github.com/SundayYogurt/logistics_service/internal/repository"
	"github.com/SundayYogurt/logistics_service/internal/testutil"
	"github.com/SundayYogurt/logistics_service/pkg/clock"
	"github.com/stretchr/testify/require"
)

// a minimal PNG header is enough for content sniffing
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type memBlobs struct {
	mu    sync.Mutex
	files map[string][]byte
	err   error
}

func newMemBlobs() *memBlobs {
	return &memBlobs{files: map[string][]byte{}}
}

func (m *memBlobs) Put(_ context.Context, path, _ string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.files[path]; ok {
		return errors.New("exists")
	}
	m.files[path] = data
	return nil
}

type fakeSMS struct {
	mu    sync.Mutex
	codes map[string]string
	err   error
}

func (f *fakeSMS) SendOTP(_ context.Context, phone, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.codes == nil {
		f.codes = map[string]string{}
	}
	f.codes[phone] = code
	return nil
}

type recordingProducer struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingProducer) PublishMessage(key, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, string(key))
	return nil
}

type env struct {
	store    repository.Store
	clock    *clock.Fake
	deps     Deps
	blobs    *memBlobs
	media    *MediaStore
	producer *recordingProducer
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := testutil.NewStore(t)
	clk := clock.NewFake(testutil.Epoch)
	blobs := newMemBlobs()
	producer := &recordingProducer{}
	return &env{
		store:    store,
		clock:    clk,
		deps:     Deps{Store: store, Clock: clk, Producer: producer},
		blobs:    blobs,
		media:    NewMediaStore(blobs, "https://cdn.test/media/", clk),
		producer: producer,
	}
}

func (e *env) user(t *testing.T, phone string, status domain.VerificationStatus) *domain.User {
	t.Helper()
	return testutil.CreateUser(t, e.store, phone, status)
}

// admin returns the identity of a fresh user holding the seeded admin role.
func (e *env) admin(t *testing.T) Identity {
	t.Helper()
	u := e.user(t, "+989100000001", domain.VerificationUnverified)
	testutil.SetRole(t, e.store, u, domain.RoleAdmin)
	id, err := NewUserService(e.deps, e.media).ResolveIdentity(context.Background(), u.ID)
	require.NoError(t, err)
	return id
}

func (e *env) worker(t *testing.T, phone string) Identity {
	t.Helper()
	u := e.user(t, phone, domain.VerificationVerified)
	return Identity{UserID: u.ID, Role: domain.RoleUser, Verified: true}
}

func image(name string) dto.UploadFile {
	return dto.UploadFile{Filename: name, ContentType: "image/png", Data: pngBytes}
}
