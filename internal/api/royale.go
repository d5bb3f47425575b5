// Package api is the Clash Royale API client. By default requests go
// through the RoyaleAPI proxy, which does not require IP whitelisting.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"

	"royale-wrapped/internal/config"
)

const (
	proxyBaseURL  = "https://proxy.royaleapi.dev/v1"
	directBaseURL = "https://api.clashroyale.com/v1"
)

var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrForbidden      = errors.New("api access forbidden, check the api token")
	ErrRateLimited    = errors.New("api rate limit exceeded")
)

type Client struct {
	token   string
	baseURL string
	client  *fasthttp.Client
}

func NewClient(cfg *config.Config) *Client {
	baseURL := directBaseURL
	if cfg.UseProxy {
		baseURL = proxyBaseURL
	}
	return &Client{
		token:   cfg.APIToken,
		baseURL: baseURL,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

// PlayerResponse is the subset of the /players/{tag} payload the
// service cares about.
type PlayerResponse struct {
	Tag            string `json:"tag"`
	Name           string `json:"name"`
	ExpLevel       int    `json:"expLevel"`
	Trophies       int    `json:"trophies"`
	BestTrophies   int    `json:"bestTrophies"`
	Wins           int    `json:"wins"`
	Losses         int    `json:"losses"`
	BattleCount    int    `json:"battleCount"`
	ThreeCrownWins int    `json:"threeCrownWins"`
	Arena          struct {
		Name string `json:"name"`
	} `json:"arena"`
	Clan struct {
		Tag  string `json:"tag"`
		Name string `json:"name"`
	} `json:"clan"`
}

func (c *Client) GetPlayer(ctx context.Context, tag string) (*PlayerResponse, error) {
	url := fmt.Sprintf("%s/players/%s", c.baseURL, EncodeTag(tag))
	body, status, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := statusToError(status); err != nil {
		return nil, err
	}
	var player PlayerResponse
	if err := json.Unmarshal(body, &player); err != nil {
		return nil, fmt.Errorf("decode player response: %w", err)
	}
	return &player, nil
}

// GetBattleLog returns the raw battle log JSON. Battle logs can be
// private or missing upstream, so any non-200 degrades to an empty log
// instead of failing the whole request.
func (c *Client) GetBattleLog(ctx context.Context, tag string) ([]byte, error) {
	url := fmt.Sprintf("%s/players/%s/battlelog", c.baseURL, EncodeTag(tag))
	body, status, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	if status != fasthttp.StatusOK {
		return []byte("[]"), nil
	}
	return body, nil
}

func statusToError(status int) error {
	switch status {
	case fasthttp.StatusOK:
		return nil
	case fasthttp.StatusNotFound:
		return ErrPlayerNotFound
	case fasthttp.StatusForbidden:
		return ErrForbidden
	case fasthttp.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return fmt.Errorf("clash royale api: unexpected status %d", status)
	}
}

func (c *Client) get(ctx context.Context, url string) ([]byte, int, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, 0, err
		}
	} else {
		if err := c.client.Do(req, resp); err != nil {
			return nil, 0, err
		}
	}

	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return body, resp.StatusCode(), nil
}
