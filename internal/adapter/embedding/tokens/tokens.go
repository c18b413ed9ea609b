// Package tokens bounds embedding inputs by model token count.
//
// Encodings come from tiktoken-go with the offline BPE loader, so counting
// never reaches the network.
package tokens

import (
	"log/slog"
	"strings"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

const fallbackEncoding = "cl100k_base"

// approxCharsPerToken is used only when no encoding can be loaded.
const approxCharsPerToken = 4

// Counter caches encodings per model. It is safe for concurrent use.
type Counter struct {
	mu        sync.RWMutex
	encodings map[string]*tiktoken.Tiktoken
}

var loaderOnce sync.Once

// NewCounter creates a new token counter instance.
func NewCounter() *Counter {
	loaderOnce.Do(func() { tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader()) })
	return &Counter{encodings: make(map[string]*tiktoken.Tiktoken)}
}

// DefaultCounter is a global token counter instance.
var DefaultCounter = NewCounter()

func (c *Counter) encodingFor(model string) (*tiktoken.Tiktoken, error) {
	model = normalizeModelName(model)

	c.mu.RLock()
	if enc, ok := c.encodings[model]; ok {
		c.mu.RUnlock()
		return enc, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if enc, ok := c.encodings[model]; ok {
		return enc, nil
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		slog.Debug("falling back to cl100k_base encoding", slog.String("model", model), slog.Any("error", err))
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return nil, err
		}
	}
	c.encodings[model] = enc
	return enc, nil
}

// normalizeModelName strips provider prefixes such as "openai/".
func normalizeModelName(model string) string {
	model = strings.ToLower(strings.TrimSpace(model))
	if i := strings.LastIndex(model, "/"); i >= 0 {
		model = model[i+1:]
	}
	return model
}

// Count returns the number of tokens text encodes to for model.
func (c *Counter) Count(text, model string) (int, error) {
	enc, err := c.encodingFor(model)
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}

// Truncate cuts text to at most maxTokens tokens. maxTokens <= 0 disables
// truncation. Without an encoding it falls back to a character estimate.
func (c *Counter) Truncate(text, model string, maxTokens int) string {
	if maxTokens <= 0 || text == "" {
		return text
	}
	enc, err := c.encodingFor(model)
	if err != nil {
		slog.Warn("token encoding unavailable; truncating by characters", slog.Any("error", err))
		r := []rune(text)
		if limit := maxTokens * approxCharsPerToken; len(r) > limit {
			return string(r[:limit])
		}
		return text
	}
	toks := enc.Encode(text, nil, nil)
	if len(toks) <= maxTokens {
		return text
	}
	return enc.Decode(toks[:maxTokens])
}

// Truncate uses DefaultCounter.
func Truncate(text, model string, maxTokens int) string {
	return DefaultCounter.Truncate(text, model, maxTokens)
}

// Count uses DefaultCounter.
func Count(text, model string) (int, error) {
	return DefaultCounter.Count(text, model)
}
