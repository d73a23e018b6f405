package tailor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

const (
	fieldProfile        = "linkedin_pdf"
	fieldJobDescription = "job_description"

	// maxErrorBody caps how much of a failed response is kept for logs.
	maxErrorBody = 2048
)

// Client talks to the tailoring backend. It sets no timeout of its own; the
// request context is the only way a call is abandoned.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		HTTPClient: &http.Client{},
	}
}

// Tailor uploads the profile PDF with the job description and decodes the
// match result. The multipart body is streamed, so body is read at most once.
func (c *Client) Tailor(ctx context.Context, fileName string, body io.Reader, jobDescription string) (Result, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeTailorForm(mw, fileName, body, jobDescription))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/tailor", pr)
	if err != nil {
		pr.CloseWithError(err)
		return Result{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		pr.CloseWithError(err)
		return Result{}, fmt.Errorf("tailor request: %w", err)
	}
	defer resp.Body.Close()
	// Unblocks the writer if the backend answered before reading the upload.
	pr.CloseWithError(errors.New("tailor response received"))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, statusError("tailor", resp)
	}

	var out Result
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{}, fmt.Errorf("tailor response parse: %w", err)
	}
	if out.MissingSkills == nil {
		out.MissingSkills = []string{}
	}
	return out, nil
}

func writeTailorForm(mw *multipart.Writer, fileName string, body io.Reader, jobDescription string) error {
	part, err := mw.CreateFormFile(fieldProfile, fileName)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, body); err != nil {
		return fmt.Errorf("copy profile: %w", err)
	}
	if err := mw.WriteField(fieldJobDescription, jobDescription); err != nil {
		return err
	}
	return mw.Close()
}

// Download fetches one generated artifact.
func (c *Client) Download(ctx context.Context, kind ArtifactKind) (*Download, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownArtifact, string(kind))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/download/"+string(kind), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", kind, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, statusError("download "+string(kind), resp)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/pdf"
	}
	return &Download{
		Body:          resp.Body,
		ContentType:   contentType,
		ContentLength: resp.ContentLength,
		Filename:      kind.Filename(),
	}, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func statusError(op string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(raw)),
	}
}
