package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/courtlab/gavel/internal/courtroom"
	"github.com/courtlab/gavel/internal/ledger"
	"github.com/courtlab/gavel/internal/model"
)

// HTTPClient implements GavelClient using the gavel HTTP/JSON REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// --- Session lifecycle ---

func (c *HTTPClient) ScheduleSession(ctx context.Context, req *courtroom.ScheduleInput) (*model.Session, error) {
	var session model.Session
	if err := c.doJSON(ctx, http.MethodPost, "/v1/sessions", req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *HTTPClient) GetSession(ctx context.Context, id string) (*model.Session, error) {
	var session model.Session
	if err := c.doJSON(ctx, http.MethodGet, "/v1/sessions/"+url.PathEscape(id), nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *HTTPClient) ListSessions(ctx context.Context, req *ListSessionsRequest) (*ListSessionsResponse, error) {
	q := url.Values{}
	if len(req.Status) > 0 {
		q.Set("status", strings.Join(req.Status, ","))
	}
	if req.TournamentID != "" {
		q.Set("tournament_id", req.TournamentID)
	}
	if req.Limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", req.Limit))
	}
	if req.Offset > 0 {
		q.Set("offset", fmt.Sprintf("%d", req.Offset))
	}

	path := "/v1/sessions"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp ListSessionsResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) GetSnapshot(ctx context.Context, id string) (*courtroom.Snapshot, error) {
	var snapshot courtroom.Snapshot
	if err := c.doJSON(ctx, http.MethodGet, "/v1/sessions/"+url.PathEscape(id)+"/snapshot", nil, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (c *HTTPClient) StartSession(ctx context.Context, id string) (*model.Session, error) {
	return c.lifecycle(ctx, id, "start")
}

func (c *HTTPClient) PauseSession(ctx context.Context, id string) (*model.Session, error) {
	return c.lifecycle(ctx, id, "pause")
}

func (c *HTTPClient) ResumeSession(ctx context.Context, id string) (*model.Session, error) {
	return c.lifecycle(ctx, id, "resume")
}

func (c *HTTPClient) CompleteSession(ctx context.Context, id string) (*model.Session, error) {
	return c.lifecycle(ctx, id, "complete")
}

func (c *HTTPClient) lifecycle(ctx context.Context, id, action string) (*model.Session, error) {
	var session model.Session
	path := "/v1/sessions/" + url.PathEscape(id) + "/" + action
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// --- Turns ---

func (c *HTTPClient) StartTurn(ctx context.Context, sessionID string, req *StartTurnRequest) (*model.Turn, error) {
	var turn model.Turn
	path := "/v1/sessions/" + url.PathEscape(sessionID) + "/turns"
	if err := c.doJSON(ctx, http.MethodPost, path, req, &turn); err != nil {
		return nil, err
	}
	return &turn, nil
}

func (c *HTTPClient) EndTurn(ctx context.Context, turnID, reason string, score *float64) (*model.Turn, error) {
	body := map[string]any{"reason": reason}
	if score != nil {
		body["score"] = *score
	}
	var turn model.Turn
	path := "/v1/turns/" + url.PathEscape(turnID) + "/end"
	if err := c.doJSON(ctx, http.MethodPost, path, body, &turn); err != nil {
		return nil, err
	}
	return &turn, nil
}

func (c *HTTPClient) Tick(ctx context.Context, sessionID string) (*courtroom.TickResult, error) {
	var result courtroom.TickResult
	path := "/v1/sessions/" + url.PathEscape(sessionID) + "/tick"
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// --- Objections ---

func (c *HTTPClient) RaiseObjection(ctx context.Context, turnID string, objType model.ObjectionType, raisedBy string) (*model.Objection, error) {
	body := map[string]string{
		"type":      string(objType),
		"raised_by": raisedBy,
	}
	var objection model.Objection
	path := "/v1/turns/" + url.PathEscape(turnID) + "/objections"
	if err := c.doJSON(ctx, http.MethodPost, path, body, &objection); err != nil {
		return nil, err
	}
	return &objection, nil
}

func (c *HTTPClient) RuleObjection(ctx context.Context, objectionID string, decision model.ObjectionState, ruledBy string) (*model.Objection, error) {
	body := map[string]string{
		"decision": string(decision),
		"ruled_by": ruledBy,
	}
	var objection model.Objection
	path := "/v1/objections/" + url.PathEscape(objectionID) + "/rule"
	if err := c.doJSON(ctx, http.MethodPost, path, body, &objection); err != nil {
		return nil, err
	}
	return &objection, nil
}

// --- Exhibits ---

func (c *HTTPClient) UploadExhibit(ctx context.Context, sessionID string, req *UploadExhibitRequest) (*model.Exhibit, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", req.Filename)
	if err != nil {
		return nil, fmt.Errorf("building upload form: %w", err)
	}
	if _, err := part.Write(req.Data); err != nil {
		return nil, fmt.Errorf("building upload form: %w", err)
	}
	if err := form.WriteField("side", string(req.Side)); err != nil {
		return nil, fmt.Errorf("building upload form: %w", err)
	}
	if req.UploadedBy != "" {
		if err := form.WriteField("uploaded_by", req.UploadedBy); err != nil {
			return nil, fmt.Errorf("building upload form: %w", err)
		}
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("building upload form: %w", err)
	}

	path := "/v1/sessions/" + url.PathEscape(sessionID) + "/exhibits"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", form.FormDataContentType())
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	var exhibit model.Exhibit
	if err := decodeResponse(resp, &exhibit); err != nil {
		return nil, err
	}
	return &exhibit, nil
}

func (c *HTTPClient) ListExhibits(ctx context.Context, sessionID string) ([]*model.Exhibit, error) {
	var resp struct {
		Exhibits []*model.Exhibit `json:"exhibits"`
	}
	path := "/v1/sessions/" + url.PathEscape(sessionID) + "/exhibits"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Exhibits, nil
}

func (c *HTTPClient) MarkExhibit(ctx context.Context, exhibitID string) (*model.Exhibit, error) {
	return c.exhibitAction(ctx, exhibitID, "mark", nil)
}

func (c *HTTPClient) TenderExhibit(ctx context.Context, exhibitID string) (*model.Exhibit, error) {
	return c.exhibitAction(ctx, exhibitID, "tender", nil)
}

func (c *HTTPClient) RuleExhibit(ctx context.Context, exhibitID string, decision model.ExhibitState, ruledBy string) (*model.Exhibit, error) {
	body := map[string]string{
		"decision": string(decision),
		"ruled_by": ruledBy,
	}
	return c.exhibitAction(ctx, exhibitID, "rule", body)
}

func (c *HTTPClient) exhibitAction(ctx context.Context, exhibitID, action string, body any) (*model.Exhibit, error) {
	var exhibit model.Exhibit
	path := "/v1/exhibits/" + url.PathEscape(exhibitID) + "/" + action
	if err := c.doJSON(ctx, http.MethodPost, path, body, &exhibit); err != nil {
		return nil, err
	}
	return &exhibit, nil
}

func (c *HTTPClient) ExhibitContent(ctx context.Context, exhibitID string) ([]byte, string, error) {
	path := "/v1/exhibits/" + url.PathEscape(exhibitID) + "/content"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, "", fmt.Errorf("creating request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, "", apiError(resp.StatusCode, body)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// --- Ledger and integrity ---

func (c *HTTPClient) Events(ctx context.Context, sessionID string, afterSeq uint64) ([]*model.EventLedgerEntry, error) {
	var resp struct {
		Events []*model.EventLedgerEntry `json:"events"`
	}
	path := "/v1/sessions/" + url.PathEscape(sessionID) + "/events"
	if afterSeq > 0 {
		path += "?after=" + strconv.FormatUint(afterSeq, 10)
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

func (c *HTTPClient) Hashes(ctx context.Context, sessionID string) ([]string, error) {
	var resp struct {
		Hashes []string `json:"hashes"`
	}
	path := "/v1/sessions/" + url.PathEscape(sessionID) + "/hashes"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Hashes, nil
}

func (c *HTTPClient) VerifySession(ctx context.Context, sessionID string) (*ledger.Report, error) {
	var report ledger.Report
	path := "/v1/sessions/" + url.PathEscape(sessionID) + "/verify"
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *HTTPClient) VerifyAll(ctx context.Context) ([]*ledger.Report, error) {
	var resp struct {
		Reports []*ledger.Report `json:"reports"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/verify", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Reports, nil
}

// --- Presence ---

func (c *HTTPClient) Viewers(ctx context.Context, sessionID string) (*ViewersResponse, error) {
	var resp ViewersResponse
	path := "/v1/sessions/" + url.PathEscape(sessionID) + "/viewers"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Event stream ---

// StreamEvents opens the server's SSE stream and delivers parsed events
// until the context is cancelled or the connection drops.
func (c *HTTPClient) StreamEvents(ctx context.Context, req *StreamRequest) (<-chan StreamEvent, error) {
	if req == nil {
		req = &StreamRequest{}
	}
	q := url.Values{}
	if len(req.Topics) > 0 {
		q.Set("topics", strings.Join(req.Topics, ","))
	}
	if req.SessionID != "" {
		q.Set("session_id", req.SessionID)
	}
	if req.Viewer != "" {
		q.Set("viewer", req.Viewer)
	}
	path := "/v1/events/stream"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Accept", "text/event-stream")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}
	if req.LastEventID > 0 {
		httpReq.Header.Set("Last-Event-ID", strconv.FormatUint(req.LastEventID, 10))
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("connecting stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, apiError(resp.StatusCode, body)
	}

	events := make(chan StreamEvent, 64)
	go func() {
		defer close(events)
		defer resp.Body.Close()
		readSSE(resp.Body, events)
	}()
	return events, nil
}

// readSSE parses "id:/event:/data:" frames from an SSE body. Comment
// lines (keepalives) are ignored.
func readSSE(r io.Reader, events chan<- StreamEvent) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var current StreamEvent
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if current.Topic != "" || len(current.Data) > 0 {
				events <- current
			}
			current = StreamEvent{}
		case strings.HasPrefix(line, ":"):
			// Keepalive comment.
		case strings.HasPrefix(line, "id:"):
			if id, err := strconv.ParseUint(strings.TrimPrefix(line, "id:"), 10, 64); err == nil {
				current.ID = id
			}
		case strings.HasPrefix(line, "event:"):
			current.Topic = strings.TrimPrefix(line, "event:")
		case strings.HasPrefix(line, "data:"):
			current.Data = []byte(strings.TrimPrefix(line, "data:"))
		}
	}
}

// --- Health ---

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// --- internal helpers ---

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

func apiError(status int, body []byte) error {
	var errResp struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		return &APIError{StatusCode: status, Message: errResp.Error}
	}
	return &APIError{StatusCode: status, Message: string(body)}
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// If result is nil, the response body is discarded.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp, result)
}

// decodeResponse reads an HTTP response, mapping error statuses to
// APIError and otherwise decoding the JSON body into result.
func decodeResponse(resp *http.Response, result any) error {
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return apiError(resp.StatusCode, respBody)
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
