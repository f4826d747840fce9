package successplansdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a minimal Success Plan HTTP API client.
type Client struct {
	BaseURL  string
	BasePath string
	// ShareToken is sent as a bearer token; it only opens the external routes.
	ShareToken string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:  baseURL,
		BasePath: "/v0",
		Timeout:  10 * time.Second,
	}
}

// Person is an embedded owner reference.
type Person struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Initials string `json:"initials"`
}

type KPI struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Value string `json:"value"`
	Trend string `json:"trend,omitempty"`
}

// Objective represents the API objective model.
type Objective struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Owner       Person `json:"owner"`
	DueDate     string `json:"dueDate"`
	Status      string `json:"status"`
	Progress    int    `json:"progress"`
	KPIs        []KPI  `json:"kpis"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
	CompletedAt string `json:"completedAt,omitempty"`
}

type Stakeholder struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Initials string `json:"initials"`
	Role     string `json:"role"`
	RACI     string `json:"raci"`
}

type Risk struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
	Likelihood  string `json:"likelihood"`
	Mitigation  string `json:"mitigation,omitempty"`
	Owner       string `json:"owner"`
	CreatedAt   string `json:"createdAt"`
}

// Plan represents the success plan (partial).
type Plan struct {
	ID                  string        `json:"id"`
	CustomerName        string        `json:"customerName"`
	FiscalYear          string        `json:"fiscalYear"`
	Owner               Person        `json:"owner"`
	Health              string        `json:"health"`
	NextReview          string        `json:"nextReview"`
	LastUpdated         string        `json:"lastUpdated"`
	LastExported        string        `json:"lastExported,omitempty"`
	MissionSummary      string        `json:"missionSummary"`
	Objectives          []Objective   `json:"objectives"`
	CompletedObjectives []Objective   `json:"completedObjectives"`
	Stakeholders        []Stakeholder `json:"stakeholders"`
	NextSteps           []string      `json:"nextSteps"`
	Risks               []Risk        `json:"risks"`
}

// ReportBlock is one report section.
type ReportBlock struct {
	Section string `json:"section"`
	Title   string `json:"title"`
	Items   []struct {
		Text   string    `json:"text"`
		Detail string    `json:"detail,omitempty"`
		Series []float64 `json:"series,omitempty"`
	} `json:"items"`
}

type Report struct {
	Filename string        `json:"filename"`
	Blocks   []ReportBlock `json:"blocks"`
}

type ShareLink struct {
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Code       string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d code=%s body=%s", e.StatusCode, e.Code, e.Body)
}

// Plan fetches the resident plan.
func (c *Client) Plan(ctx context.Context) (Plan, error) {
	var resp Plan
	err := c.do(ctx, http.MethodGet, "plan", nil, &resp)
	return resp, err
}

// PatchPlan merges plan-level fields, e.g. {"customerName": "Globex"}.
func (c *Client) PatchPlan(ctx context.Context, fields map[string]any) (Plan, error) {
	var resp Plan
	err := c.do(ctx, http.MethodPatch, "plan", fields, &resp)
	return resp, err
}

// SetHealth sets on_track, needs_attention or at_risk.
func (c *Client) SetHealth(ctx context.Context, health string) (Plan, error) {
	var resp Plan
	err := c.do(ctx, http.MethodPut, "plan/health", map[string]any{"health": health}, &resp)
	return resp, err
}

// Objectives lists active objectives. Empty filters are ignored.
func (c *Client) Objectives(ctx context.Context, search, owner, status string) ([]Objective, error) {
	q := url.Values{}
	for k, v := range map[string]string{"search": search, "owner": owner, "status": status} {
		if v != "" {
			q.Set(k, v)
		}
	}
	endpoint := "objectives"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	var resp struct {
		Objectives []Objective `json:"objectives"`
	}
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp.Objectives, err
}

// AddObjective creates an objective. The server fills id, status and
// timestamps when empty.
func (c *Client) AddObjective(ctx context.Context, title string, owner *Person, dueDate string, progress int) (Objective, error) {
	body := map[string]any{"title": title, "progress": progress}
	if owner != nil {
		body["owner"] = owner
	}
	if dueDate != "" {
		body["dueDate"] = dueDate
	}
	var resp Objective
	err := c.do(ctx, http.MethodPost, "objectives", body, &resp)
	return resp, err
}

// UpdateObjective patches an active objective.
func (c *Client) UpdateObjective(ctx context.Context, id string, fields map[string]any) (Objective, error) {
	var resp Objective
	err := c.do(ctx, http.MethodPatch, "objectives/"+url.PathEscape(id), fields, &resp)
	return resp, err
}

func (c *Client) AdvanceObjective(ctx context.Context, id string, step int) (Objective, error) {
	var resp Objective
	err := c.do(ctx, http.MethodPost, "objectives/"+url.PathEscape(id)+"/advance", map[string]any{"step": step}, &resp)
	return resp, err
}

// CompleteObjective moves an objective to the completed list.
func (c *Client) CompleteObjective(ctx context.Context, id string) (Objective, error) {
	var resp Objective
	err := c.do(ctx, http.MethodPost, "objectives/"+url.PathEscape(id)+"/complete", nil, &resp)
	return resp, err
}

func (c *Client) DeleteObjective(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "objectives/"+url.PathEscape(id), nil, nil)
}

func (c *Client) AddStakeholder(ctx context.Context, name, role, raci string) (Stakeholder, error) {
	var resp Stakeholder
	err := c.do(ctx, http.MethodPost, "stakeholders", map[string]any{"name": name, "role": role, "raci": raci}, &resp)
	return resp, err
}

func (c *Client) AddRisk(ctx context.Context, title, impact, likelihood, mitigation string) (Risk, error) {
	body := map[string]any{"title": title, "impact": impact, "likelihood": likelihood}
	if mitigation != "" {
		body["mitigation"] = mitigation
	}
	var resp Risk
	err := c.do(ctx, http.MethodPost, "risks", body, &resp)
	return resp, err
}

// Report selects report content for a preset.
func (c *Client) Report(ctx context.Context, preset string) (Report, error) {
	var resp Report
	err := c.do(ctx, http.MethodPost, "report", map[string]any{"preset": preset}, &resp)
	return resp, err
}

// Export downloads the plan document in json or yaml.
func (c *Client) Export(ctx context.Context, format string) ([]byte, error) {
	var raw bytes.Buffer
	err := c.do(ctx, http.MethodGet, "export?format="+url.QueryEscape(format), nil, &raw)
	return raw.Bytes(), err
}

// Import replaces the plan with an exported document.
func (c *Client) Import(ctx context.Context, data []byte, format string) (Plan, error) {
	var resp Plan
	err := c.do(ctx, http.MethodPost, "import?format="+url.QueryEscape(format), json.RawMessage(data), &resp)
	return resp, err
}

// Share issues a read-only link.
func (c *Client) Share(ctx context.Context) (ShareLink, error) {
	var resp ShareLink
	err := c.do(ctx, http.MethodPost, "share", map[string]any{}, &resp)
	return resp, err
}

// External reads the plan through the read-only route using ShareToken.
func (c *Client) External(ctx context.Context, planID string) (Plan, error) {
	var resp Plan
	err := c.do(ctx, http.MethodGet, "external/"+url.PathEscape(planID), nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case json.RawMessage:
		buf.Write(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.ShareToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.ShareToken)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(b)}
		var env struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		if json.Unmarshal(b, &env) == nil {
			apiErr.Code = env.Error.Code
		}
		return apiErr
	}
	switch o := out.(type) {
	case nil:
		return nil
	case *bytes.Buffer:
		_, err := io.Copy(o, resp.Body)
		return err
	default:
		return json.NewDecoder(resp.Body).Decode(out)
	}
}

func (c *Client) base() string {
	base := strings.TrimRight(c.BaseURL, "/")
	if p := strings.Trim(c.BasePath, "/"); p != "" {
		base += "/" + p
	}
	return base
}
