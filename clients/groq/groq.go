package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
)

const (
	DefaultURL   = "https://api.groq.com/openai/v1/chat/completions"
	DefaultModel = "llama3-8b-8192"
)

var ErrNoChoices = errors.New("completion returned no choices")

type Client struct {
	apiKey string
	URL    string
	Model  string
	Client *http.Client
}

type APIError struct {
	Response *http.Response `json:"-"`
	Message  string
}

func (err APIError) Error() string {
	return fmt.Sprintf("%v %v: %d %v",
		err.Response.Request.Method, err.Response.Request.URL,
		err.Response.StatusCode, err.Message)
}

// NewClient returns a chat-completions client. The API key is attached as a
// bearer token by the oauth2 transport.
func NewClient(apiKey, url, model string) *Client {
	if url == "" {
		url = DefaultURL
	}
	if model == "" {
		model = DefaultModel
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiKey})
	return &Client{
		apiKey: apiKey,
		URL:    url,
		Model:  model,
		Client: oauth2.NewClient(context.Background(), ts),
	}
}

// Configured reports whether an API key was supplied.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

func (c *Client) newGroqRequest(ctx context.Context, body any) (*http.Request, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("error encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// Complete sends one chat request and returns the first choice's content.
// There is no retry.
func (c *Client) Complete(ctx context.Context, chat ChatRequest) (string, error) {
	if chat.Model == "" {
		chat.Model = c.Model
	}
	req, err := c.newGroqRequest(ctx, chat)
	if err != nil {
		return "", err
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("unable to perform request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := APIError{Response: resp, Message: string(body)}
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil && eb.Error.Message != "" {
			apiErr.Message = eb.Error.Message
		}
		return "", apiErr
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("error decoding response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return chatResp.Choices[0].Message.Content, nil
}
