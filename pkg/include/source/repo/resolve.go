package repo

import (
	"context"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/benjaminschreck/go-include/pkg/include/source"
)

// Resolver serves repository files. Repositories are addressed by name as
// the first path segment; the repository registered under "" serves every
// path that does not start with a known name.
type Resolver struct {
	repos      map[string]*Repository
	nativeExts map[string]string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRepository registers the work tree at dir under name.
func WithRepository(name, dir string) Option {
	return func(r *Resolver) {
		r.repos[name] = NewRepository(dir)
	}
}

// WithExtensionType forces the content type of files ending in ext.
func WithExtensionType(ext, contentType string) Option {
	return func(r *Resolver) {
		r.nativeExts[strings.ToLower(ext)] = contentType
	}
}

// NewResolver creates a resolver. The default repository is dir; pass ""
// to register only named repositories.
func NewResolver(dir string, opts ...Option) *Resolver {
	r := &Resolver{
		repos:      make(map[string]*Repository),
		nativeExts: make(map[string]string),
	}
	if dir != "" {
		r.repos[""] = NewRepository(dir)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) lookup(locator string) (*Repository, string) {
	p := strings.TrimLeft(locator, "/")
	if first, rest, found := strings.Cut(p, "/"); found {
		if repo, ok := r.repos[first]; ok && first != "" {
			return repo, rest
		}
	}
	return r.repos[""], p
}

func (r *Resolver) Resolve(ctx context.Context, req source.Request) (*source.Document, error) {
	repository, filePath := r.lookup(req.Ref.Locator)
	if repository == nil || !repository.Accessible(ctx) {
		return nil, source.NotFound("Repository for %q is not accessible", req.Ref.Locator)
	}

	rev := req.Ref.Version
	if rev == "" {
		rev = "HEAD"
	}
	if strings.HasPrefix(rev, "-") {
		return nil, source.Malformed("Invalid revision %q", rev)
	}
	if strings.HasPrefix(filePath, "-") {
		return nil, source.Malformed("Invalid file name %q", filePath)
	}
	data, err := repository.Show(ctx, rev, filePath)
	if err != nil {
		return nil, source.NotFound("File %q does not exist at revision %s", filePath, rev)
	}

	contentType := req.Ref.ContentType
	if contentType == "" {
		contentType = r.DetectContentType(filePath, data)
	}

	id := "source:" + strings.TrimLeft(req.Ref.Locator, "/")
	if req.Ref.Version != "" {
		id += "@" + req.Ref.Version
	}
	return &source.Document{ID: id, Text: string(data), ContentType: contentType}, nil
}

// DetectContentType guesses the media type of a repository file from its
// name, falling back to sniffing the content.
func (r *Resolver) DetectContentType(filePath string, data []byte) string {
	ext := strings.ToLower(path.Ext(filePath))
	if t, ok := r.nativeExts[ext]; ok {
		return t
	}
	if lexer := lexers.Match(path.Base(filePath)); lexer != nil {
		if types := lexer.Config().MimeTypes; len(types) > 0 {
			return types[0]
		}
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return mediaType(t)
	}
	return mediaType(http.DetectContentType(data))
}

func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return contentType
	}
	return mt
}
