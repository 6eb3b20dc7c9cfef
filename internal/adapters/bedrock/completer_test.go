package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap/zaptest"
)

type fakeInvoker struct {
	body  []byte
	err   error
	input *bedrockruntime.InvokeModelInput
}

func (f *fakeInvoker) InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: f.body}, nil
}

func newTestCompleter(t *testing.T, modelID string, invoker modelInvoker) *Completer {
	return &Completer{
		client:      invoker,
		modelID:     modelID,
		maxTokens:   512,
		temperature: 0.1,
		topP:        0.9,
		logger:      zaptest.NewLogger(t),
	}
}

func TestCompleteClaude(t *testing.T) {
	invoker := &fakeInvoker{body: []byte(`{"content": [{"type": "text", "text": "{\"is_spam\": "}, {"type": "text", "text": "true}"}]}`)}
	c := newTestCompleter(t, "anthropic.claude-3-haiku-20240307-v1:0", invoker)

	answer, err := c.Complete(context.Background(), "check this")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if answer != `{"is_spam": true}` {
		t.Errorf("unexpected answer %q", answer)
	}

	if aws.ToString(invoker.input.ModelId) != "anthropic.claude-3-haiku-20240307-v1:0" {
		t.Errorf("unexpected model id %q", aws.ToString(invoker.input.ModelId))
	}
	var payload struct {
		Version   string `json:"anthropic_version"`
		MaxTokens int    `json:"max_tokens"`
		Messages  []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(invoker.input.Body, &payload); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if payload.Version != "bedrock-2023-05-31" || payload.MaxTokens != 512 {
		t.Errorf("unexpected payload %+v", payload)
	}
	if len(payload.Messages) != 1 || payload.Messages[0].Content != "check this" {
		t.Errorf("unexpected messages %+v", payload.Messages)
	}
}

func TestCompleteTitan(t *testing.T) {
	invoker := &fakeInvoker{body: []byte(`{"results": [{"outputText": "{\"is_spam\": false}"}]}`)}
	c := newTestCompleter(t, "amazon.titan-text-express-v1", invoker)

	answer, err := c.Complete(context.Background(), "check this")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if answer != `{"is_spam": false}` {
		t.Errorf("unexpected answer %q", answer)
	}

	var payload map[string]any
	if err := json.Unmarshal(invoker.input.Body, &payload); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if payload["inputText"] != "check this" {
		t.Errorf("unexpected payload %v", payload)
	}
	if _, ok := payload["textGenerationConfig"]; !ok {
		t.Error("missing textGenerationConfig")
	}
}

func TestCompleteGeneric(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"output field", `{"output": "a"}`, "a"},
		{"text field", `{"text": "b"}`, "b"},
		{"response field", `{"response": "c"}`, "c"},
		{"unknown shape", `{"generation": "d"}`, `{"generation": "d"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCompleter(t, "meta.llama3-8b-instruct-v1:0", &fakeInvoker{body: []byte(tt.body)})
			answer, err := c.Complete(context.Background(), "check this")
			if err != nil {
				t.Fatalf("Complete failed: %v", err)
			}
			if answer != tt.want {
				t.Errorf("expected %q, got %q", tt.want, answer)
			}
		})
	}
}

func TestCompleteErrors(t *testing.T) {
	tests := []struct {
		name    string
		modelID string
		invoker *fakeInvoker
	}{
		{"invoke failure", "anthropic.claude-v2", &fakeInvoker{err: errors.New("throttled")}},
		{"empty claude content", "anthropic.claude-v2", &fakeInvoker{body: []byte(`{"content": []}`)}},
		{"empty titan results", "amazon.titan-text-lite-v1", &fakeInvoker{body: []byte(`{"results": []}`)}},
		{"invalid body", "meta.llama3-8b-instruct-v1:0", &fakeInvoker{body: []byte(`not json`)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCompleter(t, tt.modelID, tt.invoker)
			if _, err := c.Complete(context.Background(), "check this"); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
