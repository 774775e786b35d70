package client

import (
	"context"
	"net/http"
)

type ChatRequest struct {
	Message     string `json:"message"`
	SessionID   string `json:"session_id,omitempty"`
	ContextType string `json:"context_type,omitempty"` // general, packages, exhibitors, technical, navigation
}

type ChatResponse struct {
	Response    string  `json:"response"`
	SessionID   string  `json:"session_id"`
	ContextType string  `json:"context_type"`
	Confidence  float64 `json:"confidence"`
	Timestamp   string  `json:"timestamp,omitempty"`
}

// Chat sends a message to the event assistant
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if req.ContextType == "" {
		req.ContextType = "general"
	}

	res, err := Do[ChatResponse](ctx, c, Request{
		Method: http.MethodPost,
		Path:   "/api/chatbot/chat",
		Body:   req,
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}
