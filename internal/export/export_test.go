package export

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renatoruis/oh-institutional/pkg/content"
	"github.com/renatoruis/oh-institutional/pkg/router"
	"github.com/renatoruis/oh-institutional/pkg/server"
	"github.com/renatoruis/oh-institutional/pkg/views"
)

func newSite(t *testing.T) *server.Site {
	t.Helper()
	mt := httpmock.NewMockTransport()
	mt.RegisterNoResponder(httpmock.NewStringResponder(http.StatusServiceUnavailable, ``))
	client, err := content.New("https://api.test",
		content.WithHTTPClient(&http.Client{Transport: mt}),
		content.WithCacheTTL(0),
	)
	require.NoError(t, err)
	set, err := views.New(views.Deps{Content: client})
	require.NoError(t, err)
	site, err := server.NewSite(set)
	require.NoError(t, err)
	return site
}

type memoryDest struct {
	mu    sync.Mutex
	files map[string][]byte
	types map[string]string
	fail  map[string]bool
}

func newMemoryDest() *memoryDest {
	return &memoryDest{files: map[string][]byte{}, types: map[string]string{}, fail: map[string]bool{}}
}

func (m *memoryDest) Put(_ context.Context, key string, body []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail[key] {
		return errors.New("disk full")
	}
	m.files[key] = body
	m.types[key] = contentType
	return nil
}

func TestLocations(t *testing.T) {
	got := Locations(router.NewSiteTable())
	assert.Equal(t, []string{
		"/", "/sobre", "/sermoes", "/blog", "/eventos", "/oracoes",
		"/biblia", "/avisos", "/contacto", "/recursos",
	}, got)
}

func TestKey(t *testing.T) {
	tests := map[string]string{
		"/":         "index.html",
		"/sobre":    "sobre/index.html",
		"/a/b/":     "a/b/index.html",
		"/contacto": "contacto/index.html",
	}
	for in, want := range tests {
		assert.Equal(t, want, Key(in), in)
	}
}

func TestRunWritesEveryPage(t *testing.T) {
	dest := newMemoryDest()
	report, err := New(newSite(t), dest, WithLanguage("en"), WithConcurrency(2)).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Failed)

	for _, loc := range Locations(router.NewSiteTable()) {
		body, ok := dest.files[Key(loc)]
		require.True(t, ok, "missing %s", Key(loc))
		assert.Contains(t, string(body), `<main id="app-content">`)
		assert.Contains(t, string(body), `<html lang="en">`)
		assert.Equal(t, "text/html; charset=utf-8", dest.types[Key(loc)])
	}

	notFound := string(dest.files["404.html"])
	assert.Contains(t, notFound, "404")

	assert.Contains(t, string(dest.files["sobre/index.html"]), "About Us | Open Heavens Church")
	assert.Contains(t, string(dest.files["sobre/index.html"]), `class="nav-link nav-link-active"`)

	for _, key := range []string{"client.js", "sw.js", "manifest.webmanifest"} {
		assert.NotEmpty(t, dest.files[key], key)
	}
	// 10 pages, 404.html and 3 assets.
	assert.Len(t, report.Files, 14)
}

func TestRunWithoutAssets(t *testing.T) {
	dest := newMemoryDest()
	_, err := New(newSite(t), dest, WithoutAssets()).Run(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, dest.files, "client.js")
	assert.Contains(t, dest.files, "index.html")
}

func TestRunReportsFailures(t *testing.T) {
	dest := newMemoryDest()
	dest.fail["blog/index.html"] = true

	report, err := New(newSite(t), dest).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blog/index.html")
	assert.Equal(t, []string{"blog/index.html"}, report.Failed)
	assert.Contains(t, dest.files, "sobre/index.html", "other pages are still written")
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(newSite(t), newMemoryDest()).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestDirPut(t *testing.T) {
	root := filepath.Join(t.TempDir(), "dist")
	d, err := NewDir(root)
	require.NoError(t, err)

	require.NoError(t, d.Put(context.Background(), "sobre/index.html", []byte("<p>x</p>"), "text/html"))
	data, err := os.ReadFile(filepath.Join(root, "sobre", "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<p>x</p>", string(data))

	assert.Error(t, d.Put(context.Background(), "../escape.html", nil, ""))
	assert.Error(t, d.Put(context.Background(), "", nil, ""))

	_, err = NewDir("")
	assert.Error(t, err)
}

type fakeS3 struct {
	mu   sync.Mutex
	puts []s3.PutObjectInput
	body map[string]string
	err  error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	data, _ := io.ReadAll(in.Body)
	if f.body == nil {
		f.body = map[string]string{}
	}
	f.body[aws.ToString(in.Key)] = string(data)
	f.puts = append(f.puts, *in)
	return &s3.PutObjectOutput{}, nil
}

func TestBucketPut(t *testing.T) {
	client := &fakeS3{}
	b, err := NewBucket(client, "oh-site", "/www/")
	require.NoError(t, err)

	require.NoError(t, b.Put(context.Background(), "sobre/index.html", []byte("hi"), "text/html; charset=utf-8"))
	require.Len(t, client.puts, 1)
	in := client.puts[0]
	assert.Equal(t, "oh-site", aws.ToString(in.Bucket))
	assert.Equal(t, "www/sobre/index.html", aws.ToString(in.Key))
	assert.Equal(t, "text/html; charset=utf-8", aws.ToString(in.ContentType))
	assert.Equal(t, "hi", client.body["www/sobre/index.html"])

	client.err = errors.New("access denied")
	err = b.Put(context.Background(), "index.html", nil, "text/html")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oh-site/www/index.html")

	_, err = NewBucket(client, "", "")
	assert.Error(t, err)
}

func TestExportToBucket(t *testing.T) {
	client := &fakeS3{}
	b, err := NewBucket(client, "oh-site", "")
	require.NoError(t, err)

	_, err = New(newSite(t), b).Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, client.body, "index.html")
	assert.Contains(t, client.body, "recursos/index.html")
	assert.Contains(t, client.body, "404.html")
}

func TestEnvCredentials(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")
	_, err := envCredentials(context.Background())
	assert.Error(t, err)

	t.Setenv("AWS_ACCESS_KEY_ID", "AKID")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	creds, err := envCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AKID", creds.AccessKeyID)
}
