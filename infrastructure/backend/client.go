package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	domainActivity "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/activity"
	domainBackend "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/backend"
	domainBot "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/bot"
	domainPost "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/post"
	domainQuota "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/quota"
	pkgError "github.com/MasegoMashiane/Second-Sales-Automation-bot/pkg/error"
	"github.com/MasegoMashiane/Second-Sales-Automation-bot/pkg/timeutils"
	"github.com/sirupsen/logrus"
)

const (
	DefaultTimeout = 10 * time.Second
	maxBodyBytes   = 4 << 20
)

type client struct {
	baseURL    string
	httpClient *http.Client
	loc        *time.Location
}

type Option func(*client)

// WithHTTPClient replaces the underlying client. Its Timeout is left as given.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLocation sets the zone used to interpret the backend's date and time columns.
func WithLocation(loc *time.Location) Option {
	return func(c *client) {
		if loc != nil {
			c.loc = loc
		}
	}
}

func NewClient(baseURL string, timeout time.Duration, opts ...Option) domainBackend.IBackendClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		loc:        time.Local,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *client) BaseURL() string {
	return c.baseURL
}

// do runs one request. Transport errors become BackendUnreachableError and
// any status >= 400 becomes BackendRejectedError with the backend's message.
func (c *client) do(ctx context.Context, op, method, path string, body io.Reader, contentType string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &pkgError.BackendUnreachableError{Op: op, Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logrus.WithError(err).WithField("op", op).Debug("[BACKEND] request failed")
		return &pkgError.BackendUnreachableError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &pkgError.BackendUnreachableError{Op: op, Err: err}
	}

	if resp.StatusCode >= 400 {
		return &pkgError.BackendRejectedError{
			Op:      op,
			Status:  resp.StatusCode,
			Message: rejectionMessage(resp.StatusCode, data),
		}
	}

	if dest != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, dest); err != nil {
			return &pkgError.BackendRejectedError{
				Op:      op,
				Status:  http.StatusBadGateway,
				Message: fmt.Sprintf("invalid response from backend: %v", err),
			}
		}
	}
	return nil
}

func (c *client) doJSON(ctx context.Context, op, method, path string, payload any, dest any) error {
	if payload == nil {
		return c.do(ctx, op, method, path, nil, "", dest)
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.do(ctx, op, method, path, bytes.NewReader(b), "application/json", dest)
}

func rejectionMessage(status int, data []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &body) == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	if raw := strings.TrimSpace(string(data)); raw != "" && len(raw) <= 512 {
		return raw
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("status %d", status)
}

func (c *client) Health(ctx context.Context) error {
	return c.do(ctx, "health", http.MethodGet, "/health", nil, "", nil)
}

type statusResponse struct {
	Status          string  `json:"status"`
	LastSync        string  `json:"last_sync"`
	Uptime          float64 `json:"uptime"`
	UptimeFormatted string  `json:"uptime_formatted"`
}

func (c *client) Status(ctx context.Context) (domainBot.StatusReport, error) {
	var resp statusResponse
	if err := c.do(ctx, "status", http.MethodGet, "/api/status", nil, "", &resp); err != nil {
		return domainBot.StatusReport{}, err
	}
	report := domainBot.StatusReport{
		State:           domainBot.ParseRunState(resp.Status),
		LastSync:        resp.LastSync,
		UptimeSeconds:   int64(resp.Uptime),
		UptimeFormatted: resp.UptimeFormatted,
	}
	if report.UptimeFormatted == "" {
		report.UptimeFormatted = timeutils.FormatUptime(report.UptimeSeconds)
	}
	return report, nil
}

// flexString accepts a JSON string, number or null.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type postPayload struct {
	ID         flexString `json:"id"`
	Platform   string     `json:"platform"`
	Caption    string     `json:"caption"`
	Hashtags   string     `json:"hashtags"`
	Date       string     `json:"date"`
	Time       string     `json:"time"`
	Status     string     `json:"status"`
	Media      flexString `json:"media"`
	PostedTime flexString `json:"posted_time"`
	PostID     flexString `json:"post_id"`
}

func (c *client) toPost(p postPayload) domainPost.ScheduledPost {
	platform, ok := domainPost.ParsePlatform(p.Platform)
	if !ok {
		platform = domainPost.Platform(p.Platform)
	}
	out := domainPost.ScheduledPost{
		ID:             string(p.ID),
		Platform:       platform,
		Caption:        p.Caption,
		Hashtags:       p.Hashtags,
		Date:           p.Date,
		Time:           p.Time,
		Status:         domainPost.ParseStatus(p.Status),
		Media:          string(p.Media),
		PostedTime:     string(p.PostedTime),
		PlatformPostID: string(p.PostID),
	}
	if at, err := timeutils.ParseSchedule(p.Date, p.Time, c.loc); err == nil {
		out.ScheduledAt = at
	}
	return out
}

func (c *client) ListPosts(ctx context.Context) ([]domainPost.ScheduledPost, error) {
	var payload []postPayload
	if err := c.do(ctx, "list posts", http.MethodGet, "/api/posts", nil, "", &payload); err != nil {
		return nil, err
	}
	posts := make([]domainPost.ScheduledPost, 0, len(payload))
	for _, p := range payload {
		posts = append(posts, c.toPost(p))
	}
	return posts, nil
}

type createResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    postPayload `json:"data"`
}

// CreatePost submits the form as multipart, with the staged media as the file part.
func (c *client) CreatePost(ctx context.Context, req domainPost.ScheduleRequest) (domainPost.ScheduledPost, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := []struct{ key, value string }{
		{"platform", string(req.Platform)},
		{"caption", req.Caption},
		{"hashtags", req.Hashtags},
		{"scheduleDate", req.ScheduleDate},
		{"scheduleTime", req.ScheduleTime},
	}
	for _, f := range fields {
		if err := w.WriteField(f.key, f.value); err != nil {
			return domainPost.ScheduledPost{}, err
		}
	}
	if req.Media != nil {
		part, err := w.CreateFormFile("file", req.Media.Name)
		if err != nil {
			return domainPost.ScheduledPost{}, err
		}
		if _, err := part.Write(req.Media.Content); err != nil {
			return domainPost.ScheduledPost{}, err
		}
	}
	if err := w.Close(); err != nil {
		return domainPost.ScheduledPost{}, err
	}

	var resp createResponse
	if err := c.do(ctx, "create post", http.MethodPost, "/api/posts", &buf, w.FormDataContentType(), &resp); err != nil {
		return domainPost.ScheduledPost{}, err
	}

	data := resp.Data
	if data.Platform == "" {
		data.Platform = string(req.Platform)
	}
	if data.Caption == "" {
		data.Caption = req.Caption
	}
	if data.Hashtags == "" {
		data.Hashtags = req.Hashtags
	}
	if data.Date == "" {
		data.Date = req.ScheduleDate
	}
	if data.Time == "" {
		data.Time = req.ScheduleTime
	}
	return c.toPost(data), nil
}

func (c *client) UpdatePost(ctx context.Context, id string, req domainPost.UpdateRequest) error {
	path := "/api/posts/" + url.PathEscape(id)
	return c.doJSON(ctx, "update post", http.MethodPut, path, req, nil)
}

func (c *client) DeletePost(ctx context.Context, id string) error {
	path := "/api/posts/" + url.PathEscape(id)
	return c.do(ctx, "delete post", http.MethodDelete, path, nil, "", nil)
}

func (c *client) Quotas(ctx context.Context) (domainQuota.Snapshot, error) {
	var snapshot domainQuota.Snapshot
	if err := c.do(ctx, "quotas", http.MethodGet, "/api/quotas", nil, "", &snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

type activityPayload struct {
	Time     string `json:"time"`
	DateTime string `json:"datetime"`
	Type     string `json:"type"`
	Status   string `json:"status"`
	Details  string `json:"details"`
}

func (c *client) RecentActivity(ctx context.Context, limit int) ([]domainActivity.Entry, error) {
	if limit <= 0 {
		limit = domainActivity.DefaultLimit
	}
	var payload []activityPayload
	path := "/api/activity/recent?limit=" + strconv.Itoa(limit)
	if err := c.do(ctx, "recent activity", http.MethodGet, path, nil, "", &payload); err != nil {
		return nil, err
	}
	if len(payload) > limit {
		payload = payload[:limit]
	}
	entries := make([]domainActivity.Entry, 0, len(payload))
	for _, p := range payload {
		entries = append(entries, domainActivity.Entry{
			Time:     p.Time,
			DateTime: p.DateTime,
			Channel:  domainActivity.Channel(p.Type),
			Status:   domainActivity.NormalizeStatus(p.Status),
			Details:  p.Details,
		})
	}
	return entries, nil
}

type dayPayload struct {
	Day    string `json:"day"`
	Data   string `json:"data"`
	Date   string `json:"date"`
	Emails int    `json:"emails"`
	Posts  int    `json:"posts"`
}

func (c *client) WeeklyStats(ctx context.Context) ([]domainActivity.DayStats, error) {
	var payload []dayPayload
	if err := c.do(ctx, "weekly stats", http.MethodGet, "/api/stats/weekly", nil, "", &payload); err != nil {
		return nil, err
	}
	stats := make([]domainActivity.DayStats, 0, len(payload))
	for _, p := range payload {
		date := p.Date
		if date == "" {
			date = p.Data
		}
		stats = append(stats, domainActivity.DayStats{Day: p.Day, Date: date, Emails: p.Emails, Posts: p.Posts})
	}
	return stats, nil
}

func (c *client) botAction(ctx context.Context, action string) (domainBot.ActionResult, error) {
	var result domainBot.ActionResult
	err := c.do(ctx, action+" bot", http.MethodPost, "/api/bot/"+action, nil, "", &result)
	return result, err
}

func (c *client) StartBot(ctx context.Context) (domainBot.ActionResult, error) {
	return c.botAction(ctx, "start")
}

func (c *client) StopBot(ctx context.Context) (domainBot.ActionResult, error) {
	return c.botAction(ctx, "stop")
}

func (c *client) RestartBot(ctx context.Context) (domainBot.ActionResult, error) {
	return c.botAction(ctx, "restart")
}

func (c *client) Backup(ctx context.Context) (domainBackend.BackupResult, error) {
	var result domainBackend.BackupResult
	err := c.do(ctx, "backup", http.MethodPost, "/api/backup", nil, "", &result)
	return result, err
}

// IsUnreachable reports whether err means the backend could not be reached at all.
func IsUnreachable(err error) bool {
	var target *pkgError.BackendUnreachableError
	return errors.As(err, &target)
}

// IsNotFound reports whether the backend rejected the call with 404.
func IsNotFound(err error) bool {
	var target *pkgError.BackendRejectedError
	return errors.As(err, &target) && target.IsNotFound()
}
