// Package extractor turns free-text reimbursement queries into the
// structured shapes the evaluators consume, using an LLM. It is an
// optional collaborator: agents work without it and fall back to
// missing-information results for text they cannot parse.
package extractor

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/garyjia/expense-compliance-agent/internal/models"
)

// Extractor extracts structured reimbursement fields from free text.
type Extractor struct {
	client *openai.Client
	model  string
	temp   float32
	logger *zap.Logger
}

// New creates an extractor backed by the OpenAI chat API.
func New(apiKey, model string, temperature float32, logger *zap.Logger) *Extractor {
	return &Extractor{
		client: openai.NewClient(apiKey),
		model:  model,
		temp:   temperature,
		logger: logger,
	}
}

const expensesSystemPrompt = "You are a data-entry assistant for a Chinese enterprise finance department. " +
	"Extract reimbursement items from the user's text. Always respond with ONLY a valid JSON object."

const expensesPromptTemplate = `从下面的文本中提取报销项目，输出JSON对象，结构如下（不要输出任何解释）：
{
  "expenses": [
    {"类别": "交通费|餐饮费|住宿费|办公用品|其他", "金额": number, "日期": "YYYY-MM-DD", "是否有发票": boolean}
  ]
}
无法确定的字段可以省略。

文本：
%s`

// ExtractExpenses pulls an expense batch out of free text. The model
// must return an object with an expenses field; anything else is an
// extraction failure.
func (x *Extractor) ExtractExpenses(ctx context.Context, text string) (*models.ExpenseBatch, error) {
	content, err := x.complete(ctx, expensesSystemPrompt, fmt.Sprintf(expensesPromptTemplate, text))
	if err != nil {
		return nil, err
	}

	var batch models.ExpenseBatch
	if err := x.decodeJSON(content, &batch); err != nil {
		return nil, err
	}
	if batch.Expenses == nil {
		return nil, fmt.Errorf("extraction produced no expenses field")
	}

	x.logger.Info("Extracted expense batch from text",
		zap.Int("item_count", len(batch.Expenses)))
	return &batch, nil
}

const taxiSystemPrompt = "You are a data-entry assistant for a Chinese enterprise finance department. " +
	"Extract taxi reimbursement fields from the user's text. Always respond with ONLY a valid JSON object."

const taxiPromptTemplate = `从下面的文本中提取打车费报销字段，输出JSON对象，结构如下（不要输出任何解释）：
{
  "request_id": string,
  "pickup_location": string,
  "pickup_time": string,
  "date": string,
  "amount": string
}
文本中没有提到的字段输出空字符串。

文本：
%s`

// ExtractTaxiQuery pulls taxi request fields out of free text. Fields
// the text does not mention come back empty.
func (x *Extractor) ExtractTaxiQuery(ctx context.Context, text string) (*models.TaxiQuery, error) {
	content, err := x.complete(ctx, taxiSystemPrompt, fmt.Sprintf(taxiPromptTemplate, text))
	if err != nil {
		return nil, err
	}

	var query models.TaxiQuery
	if err := x.decodeJSON(content, &query); err != nil {
		return nil, err
	}
	return &query, nil
}

// complete runs one chat completion and returns the raw response text.
func (x *Extractor) complete(ctx context.Context, system, user string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       x.model,
		Temperature: x.temp,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}

	resp, err := x.client.CreateChatCompletion(ctx, req)
	if err != nil {
		x.logger.Error("OpenAI API call failed", zap.Error(err))
		return "", fmt.Errorf("OpenAI API call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	return resp.Choices[0].Message.Content, nil
}

// decodeJSON parses the model output as JSON, falling back to the
// first balanced JSON object embedded in the text for models that wrap
// their answer in prose or code fences.
func (x *Extractor) decodeJSON(content string, out any) error {
	if err := json.Unmarshal([]byte(content), out); err == nil {
		return nil
	}

	if start := findJSONStart(content); start >= 0 {
		if end := findJSONEnd(content, start); end > start {
			if err := json.Unmarshal([]byte(content[start:end]), out); err == nil {
				x.logger.Debug("Extracted embedded JSON from model response")
				return nil
			}
		}
	}

	x.logger.Warn("Failed to parse model response as JSON",
		zap.String("content", content))
	return fmt.Errorf("failed to parse model response as JSON")
}

// findJSONStart finds the first '{' in the content.
func findJSONStart(content string) int {
	for i := 0; i < len(content); i++ {
		if content[i] == '{' {
			return i
		}
	}
	return -1
}

// findJSONEnd returns the index just past the brace matching the one
// at start, honoring string literals and escapes.
func findJSONEnd(content string, start int) int {
	if start < 0 || start >= len(content) || content[start] != '{' {
		return -1
	}

	braceCount := 0
	inString := false
	escapeNext := false

	for i := start; i < len(content); i++ {
		char := content[i]

		if escapeNext {
			escapeNext = false
			continue
		}
		if char == '\\' {
			escapeNext = true
			continue
		}
		if char == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		if char == '{' {
			braceCount++
		} else if char == '}' {
			braceCount--
			if braceCount == 0 {
				return i + 1
			}
		}
	}

	return -1
}
