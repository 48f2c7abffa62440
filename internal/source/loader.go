// Package source turns uploaded transcript objects into text, coping with
// legacy single-byte encodings.
package source

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	xunicode "golang.org/x/text/encoding/unicode"

	"scribe/internal/domain"
	"scribe/internal/infra"
)

type candidate struct {
	name string
	enc  encoding.Encoding
}

// Tried in order; the first acceptable decode wins.
var candidates = []candidate{
	{"utf-8", xunicode.UTF8BOM},
	{"iso-8859-1", charmap.ISO8859_1},
	{"windows-1252", charmap.Windows1252},
}

// Loader reads source objects from the uploads store.
type Loader struct {
	blobs  domain.BlobStore
	logger *infra.Logger
}

func NewLoader(blobs domain.BlobStore, logger *infra.Logger) *Loader {
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Loader{blobs: blobs, logger: logger}
}

// Load returns the text stored at key. fileExtension is the job's declared
// extension; when the object cannot be decoded, a sibling "<key>.txt" holding
// extracted text is tried before giving up with domain.ErrUndecodable.
func (l *Loader) Load(ctx context.Context, key, fileExtension string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", domain.ErrNoSourceKey
	}
	content, err := l.blobs.Read(ctx, key)
	if err != nil {
		return "", fmt.Errorf("source: read %s: %w", key, err)
	}

	if text, name, ok := Decode(content); ok {
		l.logger.Debug().Str("key", key).Str("encoding", name).Msg("source: decoded")
		return text, nil
	}
	l.logger.Warn().Str("key", key).Msg("source: no encoding accepted, trying extracted text")

	sibling, ok := siblingKey(key, fileExtension)
	if !ok {
		return "", fmt.Errorf("source: %s: %w", key, domain.ErrUndecodable)
	}
	extracted, err := l.blobs.Read(ctx, sibling)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("source: %s: %w", key, domain.ErrUndecodable)
		}
		return "", fmt.Errorf("source: read %s: %w", sibling, err)
	}
	text, err := xunicode.UTF8BOM.NewDecoder().Bytes(extracted)
	if err != nil || !acceptable(string(text)) {
		return "", fmt.Errorf("source: %s: %w", sibling, domain.ErrUndecodable)
	}
	l.logger.Info().Str("key", sibling).Msg("source: using extracted text")
	return string(text), nil
}

// Decode tries the fixed encoding list and then charset detection. It
// reports the encoding used.
func Decode(content []byte) (string, string, bool) {
	for _, c := range candidates {
		if c.name == "utf-8" && !utf8.Valid(content) {
			continue
		}
		out, err := c.enc.NewDecoder().Bytes(content)
		if err != nil {
			continue
		}
		if text := string(out); acceptable(text) {
			return text, c.name, true
		}
	}
	enc, name, _ := charset.DetermineEncoding(content, "text/plain")
	if enc != nil {
		if out, err := enc.NewDecoder().Bytes(content); err == nil && acceptable(string(out)) {
			return string(out), name, true
		}
	}
	return "", "", false
}

// acceptable rejects text with replacement characters or control characters
// other than common whitespace, which signals a wrong guess or binary data.
func acceptable(text string) bool {
	for _, r := range text {
		switch {
		case r == utf8.RuneError:
			return false
		case r == '\t' || r == '\n' || r == '\r' || r == '\f':
		case unicode.IsControl(r):
			return false
		}
	}
	return true
}

func siblingKey(key, fileExtension string) (string, bool) {
	ext := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(fileExtension), "."))
	if ext == "" {
		ext = strings.ToLower(strings.TrimPrefix(path.Ext(key), "."))
	}
	if ext == "" || ext == "txt" {
		return "", false
	}
	suffix := "." + ext
	if !strings.HasSuffix(strings.ToLower(key), suffix) {
		return "", false
	}
	return key[:len(key)-len(suffix)] + ".txt", true
}
