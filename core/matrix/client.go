// Package matrix is a small client for the parts of the Matrix client-server
// API the bot needs: login, sync, sending and redacting room events, and
// member and profile lookups.
package matrix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"CoinBot/core"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const clientAPI = "/_matrix/client/v3"

type Config struct {
	// Homeserver is the base URL, e.g. https://matrix.example.org
	Homeserver  string
	AccessToken string
	// SendRate limits outgoing sends and redactions per second. Zero disables the limit.
	SendRate   float64
	HTTPClient *http.Client
}

type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
	limiter     *rate.Limiter

	mu     sync.RWMutex
	userID string
}

func NewClient(config Config) *Client {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 90 * time.Second}
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if config.SendRate > 0 {
		burst := int(config.SendRate)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(config.SendRate), burst)
	}
	return &Client{
		baseURL:     strings.TrimRight(config.Homeserver, "/"),
		accessToken: config.AccessToken,
		httpClient:  httpClient,
		limiter:     limiter,
	}
}

// UserID is the bot's own id, known after Login or WhoAmI.
func (c *Client) UserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

func (c *Client) setSession(userID, accessToken string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = userID
	if accessToken != "" {
		c.accessToken = accessToken
	}
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

type loginRequest struct {
	Type                     string          `json:"type"`
	Identifier               loginIdentifier `json:"identifier"`
	Password                 string          `json:"password"`
	InitialDeviceDisplayName string          `json:"initial_device_display_name,omitempty"`
}

type loginIdentifier struct {
	Type string `json:"type"`
	User string `json:"user"`
}

// Login performs a password login and keeps the returned access token.
func (c *Client) Login(ctx context.Context, username, password string) (*core.Credentials, error) {
	body, err := c.doRequest(ctx, http.MethodPost, clientAPI+"/login", false, loginRequest{
		Type:                     "m.login.password",
		Identifier:               loginIdentifier{Type: "m.id.user", User: username},
		Password:                 password,
		InitialDeviceDisplayName: "CoinBot",
	})
	if err != nil {
		return nil, fmt.Errorf("login as %s: %w", username, err)
	}
	var response struct {
		UserID      string `json:"user_id"`
		AccessToken string `json:"access_token"`
		DeviceID    string `json:"device_id"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	c.setSession(response.UserID, response.AccessToken)
	return &core.Credentials{UserID: response.UserID, AccessToken: response.AccessToken, DeviceID: response.DeviceID}, nil
}

// WhoAmI resolves the user id behind the access token.
func (c *Client) WhoAmI(ctx context.Context) (string, error) {
	body, err := c.doRequest(ctx, http.MethodGet, clientAPI+"/account/whoami", true, nil)
	if err != nil {
		return "", fmt.Errorf("whoami: %w", err)
	}
	var response struct {
		UserID string `json:"user_id"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("decode whoami response: %w", err)
	}
	c.setSession(response.UserID, "")
	return response.UserID, nil
}

func roomPath(roomID string, parts ...string) string {
	path := clientAPI + "/rooms/" + url.PathEscape(roomID)
	for _, part := range parts {
		path += "/" + url.PathEscape(part)
	}
	return path
}

// SendEvent sends a room event and returns its event id.
func (c *Client) SendEvent(ctx context.Context, roomID, eventType string, content any) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	body, err := c.doRequest(ctx, http.MethodPut, roomPath(roomID, "send", eventType, uuid.NewString()), true, content)
	if err != nil {
		return "", fmt.Errorf("send %s to %s: %w", eventType, roomID, err)
	}
	var response struct {
		EventID string `json:"event_id"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("decode send response: %w", err)
	}
	return response.EventID, nil
}

// SendState sets a state event and returns its event id.
func (c *Client) SendState(ctx context.Context, roomID, eventType, stateKey string, content any) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	body, err := c.doRequest(ctx, http.MethodPut, roomPath(roomID, "state", eventType, stateKey), true, content)
	if err != nil {
		return "", fmt.Errorf("set %s state in %s: %w", eventType, roomID, err)
	}
	var response struct {
		EventID string `json:"event_id"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("decode state response: %w", err)
	}
	return response.EventID, nil
}

// SetRoomProfile changes the bot's display name and avatar in one room only.
func (c *Client) SetRoomProfile(ctx context.Context, roomID string, profile Profile) error {
	_, err := c.SendState(ctx, roomID, EventRoomMember, c.UserID(), MemberContent{
		Membership:  "join",
		DisplayName: profile.DisplayName,
		AvatarURL:   profile.AvatarURL,
	})
	return err
}

func (c *Client) GetEvent(ctx context.Context, roomID, eventID string) (*RawEvent, error) {
	body, err := c.doRequest(ctx, http.MethodGet, roomPath(roomID, "event", eventID), true, nil)
	if err != nil {
		return nil, fmt.Errorf("get event %s: %w", eventID, err)
	}
	event := &RawEvent{}
	if err := json.Unmarshal(body, event); err != nil {
		return nil, fmt.Errorf("decode event %s: %w", eventID, err)
	}
	if event.RoomID == "" {
		event.RoomID = roomID
	}
	return event, nil
}

func (c *Client) Redact(ctx context.Context, roomID, eventID, reason string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	var request struct {
		Reason string `json:"reason,omitempty"`
	}
	request.Reason = reason
	_, err := c.doRequest(ctx, http.MethodPut, roomPath(roomID, "redact", eventID, uuid.NewString()), true, request)
	if err != nil {
		return fmt.Errorf("redact %s: %w", eventID, err)
	}
	return nil
}

func (c *Client) Profile(ctx context.Context, userID string) (*Profile, error) {
	body, err := c.doRequest(ctx, http.MethodGet, clientAPI+"/profile/"+url.PathEscape(userID), true, nil)
	if err != nil {
		return nil, fmt.Errorf("profile of %s: %w", userID, err)
	}
	profile := &Profile{}
	if err := json.Unmarshal(body, profile); err != nil {
		return nil, fmt.Errorf("decode profile of %s: %w", userID, err)
	}
	return profile, nil
}

// RoomMembers lists the joined members of a room.
func (c *Client) RoomMembers(ctx context.Context, roomID string) ([]Member, error) {
	path := core.MakeURL(roomPath(roomID, "members"), []core.URLParams{{Key: "membership", Val: "join"}})
	body, err := c.doRequest(ctx, http.MethodGet, path, true, nil)
	if err != nil {
		return nil, fmt.Errorf("members of %s: %w", roomID, err)
	}
	var response struct {
		Chunk []struct {
			StateKey string        `json:"state_key"`
			Content  MemberContent `json:"content"`
		} `json:"chunk"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("decode members of %s: %w", roomID, err)
	}
	members := make([]Member, 0, len(response.Chunk))
	for _, event := range response.Chunk {
		if event.Content.Membership != "join" {
			continue
		}
		members = append(members, Member{UserID: event.StateKey, DisplayName: event.Content.DisplayName})
	}
	return members, nil
}

func (c *Client) JoinRoom(ctx context.Context, roomID string) error {
	_, err := c.doRequest(ctx, http.MethodPost, clientAPI+"/join/"+url.PathEscape(roomID), true, struct{}{})
	if err != nil {
		return fmt.Errorf("join %s: %w", roomID, err)
	}
	return nil
}

type SyncOptions struct {
	Since   string
	Timeout time.Duration
	Filter  string
}

func (c *Client) Sync(ctx context.Context, options SyncOptions) (*SyncResponse, error) {
	path := core.MakeURL(clientAPI+"/sync", []core.URLParams{
		{Key: "since", Val: options.Since},
		{Key: "timeout", Val: fmt.Sprint(options.Timeout.Milliseconds())},
		{Key: "filter", Val: options.Filter},
	})
	body, err := c.doRequest(ctx, http.MethodGet, path, true, nil)
	if err != nil {
		return nil, fmt.Errorf("sync: %w", err)
	}
	response := &SyncResponse{}
	if err := json.Unmarshal(body, response); err != nil {
		return nil, fmt.Errorf("decode sync response: %w", err)
	}
	return response, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, authenticated bool, requestBody any) ([]byte, error) {
	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		request.Header.Set("Authorization", "Bearer "+c.token())
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("request to %s %s failed: %w", method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(io.LimitReader(response.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, nil
	}

	matrixErr := &MatrixError{}
	if err := json.Unmarshal(responseBody, matrixErr); err != nil {
		return nil, fmt.Errorf("unexpected %d response from %s %s: %s", response.StatusCode, method, path, responseBody)
	}
	matrixErr.StatusCode = response.StatusCode
	return nil, matrixErr
}
