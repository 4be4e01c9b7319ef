package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"homehelper-backend/internal/models"
)

const (
	probeTimeout = 5 * time.Second
	// Model responses can take a while on modest hardware.
	chatTimeout = 120 * time.Second

	// Returned when the server answers without the expected reply field.
	fallbackReply = "No response from model"
)

// GenerationOptions is the options block sent on every completion call.
// Temperature, top_p and num_predict come from config; the rest are fixed.
type GenerationOptions struct {
	Temperature   float64 `json:"temperature"`
	TopP          float64 `json:"top_p"`
	NumPredict    int     `json:"num_predict"`
	NumCtx        int     `json:"num_ctx"`
	RepeatPenalty float64 `json:"repeat_penalty"`
	TopK          int     `json:"top_k"`
	TfsZ          float64 `json:"tfs_z"`
	Mirostat      int     `json:"mirostat"`
	MirostatTau   float64 `json:"mirostat_tau"`
	MirostatEta   float64 `json:"mirostat_eta"`
}

// OllamaService talks to a locally running Ollama server. It is a plain
// request/response boundary: one probe call, one completion call, no retries.
type OllamaService struct {
	baseURL     string
	options     GenerationOptions
	probeClient *http.Client
	chatClient  *http.Client
}

func NewOllamaService(baseURL string, temperature, topP float64, maxTokens int) *OllamaService {
	return &OllamaService{
		baseURL: baseURL,
		options: GenerationOptions{
			Temperature:   temperature,
			TopP:          topP,
			NumPredict:    maxTokens,
			NumCtx:        2048,
			RepeatPenalty: 1.1,
			TopK:          40,
			TfsZ:          0.7,
			Mirostat:      0,
			MirostatTau:   5.0,
			MirostatEta:   0.1,
		},
		probeClient: &http.Client{Timeout: probeTimeout},
		chatClient:  &http.Client{Timeout: chatTimeout},
	}
}

// Ping checks that the Ollama server is reachable and answering.
func (s *OllamaService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}

	resp, err := s.probeClient.Do(req)
	if err != nil {
		return fmt.Errorf("ollama is not reachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}
	return nil
}

// ListModels returns the names of the models the server has pulled, in the
// order the server reports them.
func (s *OllamaService) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.probeClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var body struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode model list: %w", err)
	}

	names := make([]string, 0, len(body.Models))
	for _, m := range body.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// Chat sends one non-streamed completion request and returns the reply text.
func (s *OllamaService) Chat(ctx context.Context, model string, messages []models.ChatMessage) (string, error) {
	payload := struct {
		Model    string               `json:"model"`
		Messages []models.ChatMessage `json:"messages"`
		Stream   bool                 `json:"stream"`
		Options  GenerationOptions    `json:"options"`
	}{
		Model:    model,
		Messages: messages,
		Stream:   false,
		Options:  s.options,
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/chat", bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.chatClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var body struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}

	if body.Message.Content == "" {
		return fallbackReply, nil
	}
	return body.Message.Content, nil
}
