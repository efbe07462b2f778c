package viewer

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/qmuntal/gltf"
)

// ErrNotGLB is returned for data that does not start with a binary glTF
// header.
var ErrNotGLB = errors.New("not a binary glTF file")

const (
	glbMagic      = 0x46546C67 // "glTF"
	glbHeaderSize = 12
)

// Loader opens a model source. size is -1 when the length is not known in
// advance.
type Loader interface {
	Open(ctx context.Context, src string) (body io.ReadCloser, size int64, err error)
}

// HTTPLoader fetches models over HTTP.
type HTTPLoader struct {
	Client *http.Client
}

func (l HTTPLoader) Open(ctx context.Context, src string) (io.ReadCloser, int64, error) {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch %s: %w", src, err)
	}
	if resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, 0, fmt.Errorf("fetch %s: status %d", src, resp.StatusCode)
	}
	return resp.Body, resp.ContentLength, nil
}

// BytesLoader serves a model held in memory, such as a sandbox upload.
type BytesLoader struct {
	Data []byte
}

func (l BytesLoader) Open(_ context.Context, _ string) (io.ReadCloser, int64, error) {
	return io.NopCloser(bytes.NewReader(l.Data)), int64(len(l.Data)), nil
}

// FSLoader reads models from a filesystem, for locally bundled assets.
type FSLoader struct {
	FS fs.FS
}

func (l FSLoader) Open(_ context.Context, src string) (io.ReadCloser, int64, error) {
	name := strings.TrimPrefix(path.Clean("/"+src), "/")
	f, err := l.FS.Open(name)
	if err != nil {
		return nil, 0, fmt.Errorf("open %s: %w", name, err)
	}
	size := int64(-1)
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}
	return f, size, nil
}

// MuxLoader opens http and https URLs through Remote and every other
// source through Local.
type MuxLoader struct {
	Remote Loader
	Local  Loader
}

func (l MuxLoader) Open(ctx context.Context, src string) (io.ReadCloser, int64, error) {
	next := l.Local
	if IsRemote(src) {
		next = l.Remote
	}
	if next == nil {
		return nil, 0, fmt.Errorf("no loader for %s", src)
	}
	return next.Open(ctx, src)
}

// IsRemote reports whether src is an http or https URL.
func IsRemote(src string) bool {
	u, err := url.Parse(src)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}

// Model is a decoded model together with what the viewers need from it.
type Model struct {
	Doc    *gltf.Document
	Bounds Box
	Size   int64
}

// Load reads src through l, reporting progress when the size is known, and
// decodes it as binary glTF.
func Load(ctx context.Context, l Loader, src string, progress *Progress, onChange func(int)) (*Model, error) {
	body, size, err := l.Open(ctx, src)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	if progress == nil {
		progress = &Progress{}
	}
	r := newProgressReader(&contextReader{ctx: ctx, r: body}, size, progress, onChange)

	var buf bytes.Buffer
	if size > 0 {
		buf.Grow(int(size))
	}
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	if size > 0 {
		progress.Complete()
		if onChange != nil {
			onChange(100)
		}
	}

	doc, err := Decode(buf.Bytes())
	if err != nil {
		return nil, err
	}
	return &Model{
		Doc:    doc,
		Bounds: SceneBounds(doc),
		Size:   int64(buf.Len()),
	}, nil
}

// Decode validates the GLB header and decodes the document.
func Decode(data []byte) (*gltf.Document, error) {
	if err := CheckGLBHeader(data); err != nil {
		return nil, err
	}
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, fmt.Errorf("decode glb: %w", err)
	}
	return doc, nil
}

// CheckGLBHeader verifies magic, version 2 and the declared length.
func CheckGLBHeader(data []byte) error {
	if len(data) < glbHeaderSize {
		return fmt.Errorf("%w: %d bytes", ErrNotGLB, len(data))
	}
	if binary.LittleEndian.Uint32(data[0:4]) != glbMagic {
		return ErrNotGLB
	}
	if v := binary.LittleEndian.Uint32(data[4:8]); v != 2 {
		return fmt.Errorf("%w: unsupported version %d", ErrNotGLB, v)
	}
	if n := binary.LittleEndian.Uint32(data[8:12]); int(n) > len(data) {
		return fmt.Errorf("%w: declared length %d exceeds %d bytes", ErrNotGLB, n, len(data))
	}
	return nil
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(b []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(b)
}
