// Package relay forwards chat conversations to an OpenAI-compatible gateway
// and streams the server-sent events back to the caller unchanged.
package relay

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/dialectdeck/ledger/internal/api/respond"
)

// Message is one turn of the conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages []Message `json:"messages"`
}

type gatewayRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

// Options configure the gateway the relay talks to.
type Options struct {
	URL          string
	APIKey       string
	Model        string
	SystemPrompt string
}

// Handler serves POST /api/chat.
type Handler struct {
	client *resty.Client
	opts   Options
	log    zerolog.Logger
}

// New returns a relay handler. The client carries no timeout: the stream
// lives as long as the caller's request context.
func New(opts Options, log zerolog.Logger) *Handler {
	return &Handler{
		client: resty.New().SetHeader("Content-Type", "application/json"),
		opts:   opts,
		log:    log,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.opts.APIKey == "" {
		respond.WriteError(w, http.StatusServiceUnavailable, "chat gateway key is not configured")
		return
	}
	var in chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if len(in.Messages) == 0 {
		respond.WriteBadRequest(w, "messages are required")
		return
	}

	msgs := make([]Message, 0, len(in.Messages)+1)
	if strings.TrimSpace(h.opts.SystemPrompt) != "" {
		msgs = append(msgs, Message{Role: "system", Content: h.opts.SystemPrompt})
	}
	msgs = append(msgs, in.Messages...)

	resp, err := h.client.R().
		SetContext(r.Context()).
		SetAuthToken(h.opts.APIKey).
		SetBody(gatewayRequest{Model: h.opts.Model, Messages: msgs, Stream: true}).
		SetDoNotParseResponse(true).
		Post(h.opts.URL)
	if err != nil {
		h.log.Error().Err(err).Msg("chat gateway unreachable")
		respond.WriteInternalError(w, "chat gateway error")
		return
	}
	body := resp.RawBody()
	defer func() { _ = body.Close() }()

	switch code := resp.StatusCode(); {
	case code == http.StatusTooManyRequests:
		respond.WriteError(w, code, "rate limits exceeded, please try again later")
		return
	case code == http.StatusPaymentRequired:
		respond.WriteError(w, code, "payment required, please add credits")
		return
	case code < 200 || code > 299:
		detail, _ := io.ReadAll(io.LimitReader(body, 4096))
		h.log.Error().Int("status", code).Str("body", string(detail)).Msg("chat gateway error")
		respond.WriteInternalError(w, "chat gateway error")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if err := stream(w, body); err != nil && !errors.Is(err, r.Context().Err()) {
		h.log.Warn().Err(err).Msg("chat stream interrupted")
	}
}

// stream copies src to w, flushing after every read so events reach the
// client as they arrive.
func stream(w http.ResponseWriter, src io.Reader) error {
	flusher, _ := w.(http.Flusher)
	buf := make([]byte, 4096)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return werr
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
