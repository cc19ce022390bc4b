// Package workspace loads request definitions from YAML workspace files
// and imports them into a store.
package workspace

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/abdul-hamid-achik/respext/packages/model"
	"github.com/abdul-hamid-achik/respext/packages/store"
)

//go:embed schema.json
var schemaJSON []byte

// File is a parsed workspace document.
type File struct {
	Workspace string    `yaml:"workspace,omitempty"`
	Requests  []Request `yaml:"requests"`
}

// Request is a request definition, optionally with recorded responses.
type Request struct {
	ID             string                `yaml:"id,omitempty"`
	Name           string                `yaml:"name,omitempty"`
	Method         string                `yaml:"method,omitempty"`
	URL            string                `yaml:"url"`
	Headers        []model.Header        `yaml:"headers,omitempty"`
	Body           string                `yaml:"body,omitempty"`
	Authentication *model.Authentication `yaml:"authentication,omitempty"`
	Responses      []Response            `yaml:"responses,omitempty"`
}

// Response is a recorded response. Body is written to the body directory
// on import.
type Response struct {
	ID          string         `yaml:"id,omitempty"`
	Status      int            `yaml:"status"`
	StatusText  string         `yaml:"statusText,omitempty"`
	ContentType string         `yaml:"contentType,omitempty"`
	URL         string         `yaml:"url,omitempty"`
	Headers     []model.Header `yaml:"headers,omitempty"`
	Elapsed     int64          `yaml:"elapsed,omitempty"`
	Body        string         `yaml:"body,omitempty"`
	CreatedAt   time.Time      `yaml:"createdAt,omitempty"`
}

// ValidationError lists the schema violations of a document.
type ValidationError struct {
	Path     string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid workspace %s: %s", e.Path, strings.Join(e.Problems, "; "))
}

// Load reads and parses the workspace file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workspace: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			verr.Path = path
		}
		return nil, err
	}
	if f.Workspace == "" {
		f.Workspace = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return f, nil
}

// Parse validates data against the workspace schema and decodes it.
func Parse(data []byte) (*File, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse workspace: %w", err)
	}
	if doc == nil {
		return nil, &ValidationError{Path: "<input>", Problems: []string{"document is empty"}}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("schema validation error: %w", err)
	}
	if !result.Valid() {
		verr := &ValidationError{Path: "<input>"}
		for _, desc := range result.Errors() {
			verr.Problems = append(verr.Problems, desc.String())
		}
		return nil, verr
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode workspace: %w", err)
	}
	return &f, nil
}

// ImportResult counts what an import wrote.
type ImportResult struct {
	Requests  int
	Responses int
}

// Import saves the requests of f, and their recorded responses, into s.
// Response bodies are written below bodyDir. Requests without an id get one
// derived from the workspace and request name, so importing the same file
// again updates instead of duplicating.
func Import(ctx context.Context, f *File, s store.Store, bodyDir string) (ImportResult, error) {
	var result ImportResult

	for i, doc := range f.Requests {
		req := &model.Request{
			ID:             doc.ID,
			WorkspaceID:    f.Workspace,
			Name:           doc.Name,
			Method:         strings.ToUpper(doc.Method),
			URL:            doc.URL,
			Headers:        doc.Headers,
			Body:           doc.Body,
			Authentication: doc.Authentication,
		}
		if req.Method == "" {
			req.Method = "GET"
		}
		if req.ID == "" {
			key := doc.Name
			if key == "" {
				key = strconv.Itoa(i)
			}
			req.ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(f.Workspace+"/"+key)).String()
		}

		existing, err := s.GetRequest(ctx, req.ID)
		if err != nil {
			return result, err
		}
		if existing != nil {
			req.CreatedAt = existing.CreatedAt
			// keep token state obtained since the last import
			if existing.Authentication.IsOAuth2() && req.Authentication.IsOAuth2() {
				mergeTokenState(req.Authentication, existing.Authentication)
			}
		}

		if err := s.SaveRequest(ctx, req); err != nil {
			return result, err
		}
		result.Requests++

		for j, recorded := range doc.Responses {
			if err := importResponse(ctx, s, bodyDir, req, j, recorded); err != nil {
				return result, err
			}
			result.Responses++
		}
	}

	return result, nil
}

func importResponse(ctx context.Context, s store.Store, bodyDir string, req *model.Request, index int, doc Response) error {
	resp := &model.Response{
		ID:          doc.ID,
		RequestID:   req.ID,
		Status:      doc.Status,
		StatusText:  doc.StatusText,
		ContentType: doc.ContentType,
		URL:         doc.URL,
		Headers:     doc.Headers,
		Elapsed:     doc.Elapsed,
		Size:        int64(len(doc.Body)),
		CreatedAt:   doc.CreatedAt,
	}
	if resp.ID == "" {
		resp.ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(req.ID+"/responses/"+strconv.Itoa(index))).String()
	}
	if resp.URL == "" {
		resp.URL = req.URL
	}
	if resp.ContentType == "" {
		resp.ContentType = resp.Header("Content-Type")
	}

	if err := os.MkdirAll(bodyDir, 0o755); err != nil {
		return fmt.Errorf("failed to create body directory: %w", err)
	}
	resp.BodyPath = filepath.Join(bodyDir, resp.ID)
	if err := os.WriteFile(resp.BodyPath, []byte(doc.Body), 0o644); err != nil {
		return fmt.Errorf("failed to write response body: %w", err)
	}

	return s.SaveResponse(ctx, resp)
}

func mergeTokenState(dst, src *model.Authentication) {
	if dst.AccessToken == "" {
		dst.AccessToken = src.AccessToken
		dst.RefreshToken = src.RefreshToken
		dst.IdentityToken = src.IdentityToken
		dst.ExpiresAt = src.ExpiresAt
		dst.Error = src.Error
		dst.ErrorDescription = src.ErrorDescription
		dst.ErrorURI = src.ErrorURI
	}
}
