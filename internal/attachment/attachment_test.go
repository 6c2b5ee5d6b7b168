package attachment

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/employee_profile_service/internal/domain"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestInlineStore(t *testing.T) {
	ctx := context.Background()
	s := NewInlineStore()
	assert.True(t, s.RequiredOnCreate())

	t.Run("keeps bytes and type", func(t *testing.T) {
		a, err := s.Store(ctx, domain.Upload{Filename: "a.png", ContentType: "image/png", Data: pngHeader})
		require.NoError(t, err)
		assert.Equal(t, domain.AttachmentInline, a.Kind)
		assert.Equal(t, "image/png", a.ContentType)
		assert.Equal(t, pngHeader, a.Data)
		assert.Empty(t, a.Locator)

		r, err := s.Resolve(ctx, a)
		require.NoError(t, err)
		assert.Equal(t, pngHeader, r.Data)
		assert.Equal(t, "image/png", r.ContentType)
	})

	t.Run("defaults content type", func(t *testing.T) {
		a, err := s.Store(ctx, domain.Upload{Data: []byte("x")})
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultContentType, a.ContentType)
	})

	t.Run("accepts non image types", func(t *testing.T) {
		a, err := s.Store(ctx, domain.Upload{ContentType: "text/plain", Data: []byte("x")})
		require.NoError(t, err)
		assert.Equal(t, "text/plain", a.ContentType)
	})

	t.Run("empty upload", func(t *testing.T) {
		_, err := s.Store(ctx, domain.Upload{ContentType: "image/png"})
		var ve *domain.ValidationError
		assert.True(t, errors.As(err, &ve))
	})
}

func newFileStore(t *testing.T) (*ExternalStore, *FileSink) {
	t.Helper()
	sink, err := NewFileSink(t.TempDir(), "/uploads")
	require.NoError(t, err)
	return NewExternalStore(sink), sink
}

func TestExternalStoreFileSink(t *testing.T) {
	ctx := context.Background()
	store, sink := newFileStore(t)
	assert.False(t, store.RequiredOnCreate())

	a, err := store.Store(ctx, domain.Upload{Filename: "../../me.png", ContentType: "image/png", Data: pngHeader})
	require.NoError(t, err)
	assert.Equal(t, domain.AttachmentExternal, a.Kind)
	assert.Equal(t, "image/png", a.ContentType)
	assert.Nil(t, a.Data)
	assert.True(t, strings.HasPrefix(a.Locator, "/uploads/"), a.Locator)
	assert.True(t, strings.HasSuffix(a.Locator, "-me.png"), a.Locator)

	onDisk, err := os.ReadFile(filepath.Join(sink.Root(), strings.TrimPrefix(a.Locator, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, onDisk)

	r, err := store.Resolve(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, a.Locator, r.Locator)
	assert.Nil(t, r.Data)

	require.NoError(t, store.Release(ctx, a))
	_, err = os.Stat(filepath.Join(sink.Root(), strings.TrimPrefix(a.Locator, "/uploads/")))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, store.Release(ctx, a), "releasing twice is a no-op")
}

func TestExternalStoreRejectsNonImages(t *testing.T) {
	ctx := context.Background()
	store, sink := newFileStore(t)

	for _, ct := range []string{"text/plain", "", "application/pdf", "imagex/png"} {
		_, err := store.Store(ctx, domain.Upload{Filename: "a.txt", ContentType: ct, Data: []byte("hello")})
		var te *domain.AttachmentTypeError
		require.True(t, errors.As(err, &te), "content type %q: %v", ct, err)
	}

	entries, err := os.ReadDir(sink.Root())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileSinkKeepsTempFilesOutsideRoot(t *testing.T) {
	ctx := context.Background()
	sink, err := NewFileSink(filepath.Join(t.TempDir(), "uploads"), "/uploads")
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(sink.tmpDir, sink.Root()+string(filepath.Separator)), sink.tmpDir)

	locator, err := sink.Put(ctx, "a.png", "image/png", pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/a.png", locator)

	entries, err := os.ReadDir(sink.Root())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.png", entries[0].Name())

	leftovers, err := os.ReadDir(sink.tmpDir)
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestExternalStoreConcurrentUploadsDoNotCollide(t *testing.T) {
	ctx := context.Background()
	store, _ := newFileStore(t)

	const n = 32
	var wg sync.WaitGroup
	locators := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, err := store.Store(ctx, domain.Upload{Filename: "same.png", ContentType: "image/png", Data: pngHeader})
			errs[i] = err
			if a != nil {
				locators[i] = a.Locator
			}
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.False(t, seen[locators[i]], "duplicate locator %s", locators[i])
		seen[locators[i]] = true
	}
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "photo__1_.png", sanitizeFilename("photo (1).png"))
	assert.Equal(t, "passwd", sanitizeFilename("../../etc/passwd"))
	assert.Equal(t, "x.png", sanitizeFilename(`C:\Users\x.png`))
	assert.Equal(t, "upload", sanitizeFilename(""))
	assert.Equal(t, "upload", sanitizeFilename(".."))
}

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	putErr  error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[*in.Key] = data
	f.types[*in.Key] = *in.ContentType
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestExternalStoreS3Sink(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	sink, err := NewS3Sink(fake, S3Config{Bucket: "media", KeyPrefix: "/employees/", PublicBaseURL: "https://cdn.example.com/media/"})
	require.NoError(t, err)
	store := NewExternalStore(sink)

	a, err := store.Store(ctx, domain.Upload{Filename: "ada.png", ContentType: "image/png; charset=binary", Data: pngHeader})
	require.NoError(t, err)
	assert.Equal(t, "image/png", a.ContentType)
	require.True(t, strings.HasPrefix(a.Locator, "https://cdn.example.com/media/employees/"), a.Locator)

	key := strings.TrimPrefix(a.Locator, "https://cdn.example.com/media/")
	assert.Equal(t, pngHeader, fake.objects[key])
	assert.Equal(t, "image/png", fake.types[key])

	require.NoError(t, store.Release(ctx, a))
	assert.NotContains(t, fake.objects, key)
}

func TestExternalStoreS3FailureLeavesNoReference(t *testing.T) {
	fake := newFakeS3()
	fake.putErr = errors.New("connection refused")
	sink, err := NewS3Sink(fake, S3Config{Bucket: "media", PublicBaseURL: "http://minio:9000/media"})
	require.NoError(t, err)

	a, err := NewExternalStore(sink).Store(context.Background(), domain.Upload{Filename: "a.png", ContentType: "image/png", Data: pngHeader})
	assert.Nil(t, a)
	var se *domain.StorageError
	assert.True(t, errors.As(err, &se))
	assert.Empty(t, fake.objects)
}
