package scores

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// 成绩服务的请求体与响应体
type (
	// ScoreRequest PUT /api/players/{id}/scores/{slot}
	ScoreRequest struct {
		Score int `json:"score"`
	}
	// ScoreResponse UpdateBestScore 的结果
	ScoreResponse struct {
		Updated bool `json:"updated"`
	}
	// ErrorResponse 错误响应
	ErrorResponse struct {
		Error string `json:"error"`
	}
)

// Client 访问成绩服务的 HTTP 客户端
type Client struct {
	baseURL string
	http    *http.Client
}

var _ Store = (*Client)(nil)

// NewClient 创建客户端
//
// 参数：
//   - baseURL: 服务地址，例如 http://localhost:8080
//   - httpClient: 可为 nil，默认 10 秒超时
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// CreatePlayer POST /api/players
func (c *Client) CreatePlayer(ctx context.Context, p NewPlayer) (Player, error) {
	if err := ValidateNewPlayer(p); err != nil {
		return Player{}, err
	}
	var player Player
	if err := c.do(ctx, http.MethodPost, "/api/players", p, &player); err != nil {
		return Player{}, err
	}
	return player, nil
}

// GetPlayer GET /api/players/{id}
func (c *Client) GetPlayer(ctx context.Context, id string) (Player, error) {
	var player Player
	if err := c.do(ctx, http.MethodGet, "/api/players/"+url.PathEscape(id), nil, &player); err != nil {
		return Player{}, err
	}
	return player, nil
}

// UpdateBestScore PUT /api/players/{id}/scores/{slot}
func (c *Client) UpdateBestScore(ctx context.Context, id string, slot, score int) (bool, error) {
	if err := ValidateSlot(slot); err != nil {
		return false, err
	}
	var resp ScoreResponse
	p := "/api/players/" + url.PathEscape(id) + "/scores/" + strconv.Itoa(slot)
	if err := c.do(ctx, http.MethodPut, p, ScoreRequest{Score: score}, &resp); err != nil {
		return false, err
	}
	return resp.Updated, nil
}

// CompleteSession POST /api/players/{id}/complete
func (c *Client) CompleteSession(ctx context.Context, id string) (LeaderboardEntry, error) {
	if id == "" {
		return LeaderboardEntry{}, ErrNoSession
	}
	var entry LeaderboardEntry
	if err := c.do(ctx, http.MethodPost, "/api/players/"+url.PathEscape(id)+"/complete", nil, &entry); err != nil {
		return LeaderboardEntry{}, err
	}
	return entry, nil
}

// Leaderboard GET /api/leaderboard?limit=N
func (c *Client) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	var entries []LeaderboardEntry
	p := "/api/leaderboard?limit=" + strconv.Itoa(normalizeLimit(limit))
	if err := c.do(ctx, http.MethodGet, p, nil, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []LeaderboardEntry{}
	}
	return entries, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach score server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// decodeError 按状态码还原哨兵错误
func decodeError(resp *http.Response) error {
	var e ErrorResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&e)
	if e.Error == "" {
		e.Error = http.StatusText(resp.StatusCode)
	}
	switch resp.StatusCode {
	case http.StatusNotFound:
		return ErrPlayerNotFound
	case http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", ErrInvalidSlot, e.Error)
	}
	return fmt.Errorf("score server returned %d: %s", resp.StatusCode, e.Error)
}
