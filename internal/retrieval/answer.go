package retrieval

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/mqin/repoql/pkg/models"
)

// Answerer generates answers from an assembled retrieval context. It is
// the generation collaborator the Retriever hands its output to.
type Answerer struct {
	client *openai.Client
	model  string
}

// NewAnswerer creates an Answerer backed by the OpenAI chat API.
func NewAnswerer(apiKey, model string) (*Answerer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("answer generation requires an OpenAI API key")
	}
	if model == "" {
		model = "gpt-4-turbo-preview"
	}
	return &Answerer{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

// BuildMessages assembles the chat messages for one question: a system
// message carrying repository info and the retrieval context, the
// forwarded history turns, then the question itself.
func BuildMessages(question, retrievalContext string, history []models.Turn, info *models.RepositoryInfo) []openai.ChatCompletionMessage {
	var repoContext string
	if info != nil {
		repoContext = fmt.Sprintf("Repository Information:\n- Name: %s\n- Description: %s\n- Main Language: %s\n",
			orDefault(info.Name, "Unknown"),
			orDefault(info.Description, "No description"),
			orDefault(info.Language, "Unknown"))
	}

	systemMessage := fmt.Sprintf(`You are an expert code assistant helping users understand a specific repository.

%s
Your task is to answer questions about this codebase using the provided context.

Guidelines:
- Provide accurate, helpful answers based on the code context
- Reference specific files and functions when relevant
- If you're not sure about something, say so clearly
- Provide code examples when helpful
- Be concise but thorough
- If the context doesn't contain enough information, acknowledge this

Context from the repository:
%s`, repoContext, retrievalContext)

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemMessage},
	}
	for _, turn := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    turn.Role,
			Content: turn.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: question,
	})
	return messages
}

// Answer generates an answer for the question given an assembled context
// and forwarded history.
func (a *Answerer) Answer(ctx context.Context, question, retrievalContext string, history []models.Turn, info *models.RepositoryInfo) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    BuildMessages(question, retrievalContext, history, info),
		Temperature: 0.1,
		MaxTokens:   1000,
	})
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("generate answer: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

// fallbackQuestions is returned when question generation fails.
var fallbackQuestions = []string{
	"What is the main purpose of this repository?",
	"How do I set up and run this project?",
	"What are the key components or modules?",
	"How does the main functionality work?",
	"What dependencies does this project have?",
}

// SuggestQuestions proposes questions a developer might ask about the
// repository, based on a small content sample. On any generation failure
// it falls back to a generic set rather than erroring.
func (a *Answerer) SuggestQuestions(ctx context.Context, sample string, info *models.RepositoryInfo) []string {
	name, language := "Unknown", "Unknown"
	if info != nil {
		name = orDefault(info.Name, "Unknown")
		language = orDefault(info.Language, "Unknown")
	}
	prompt := fmt.Sprintf(`Based on this repository sample, generate 5-7 relevant questions that developers might ask about this codebase.

Repository: %s
Language: %s

Sample code:
%s

Generate practical questions about:
- How to use key functions/classes
- Architecture and design patterns
- Configuration and setup
- API endpoints (if applicable)
- Common workflows

Return as a simple list of questions, one per line.`, name, language, sample)

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You are a helpful assistant generating relevant questions about code repositories."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   400,
	})
	if err != nil || len(resp.Choices) == 0 {
		return fallbackQuestions
	}

	var questions []string
	for _, line := range strings.Split(resp.Choices[0].Message.Content, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*0123456789. ")
		if line == "" || !strings.Contains(line, "?") {
			continue
		}
		questions = append(questions, line)
		if len(questions) == 7 {
			break
		}
	}
	if len(questions) == 0 {
		return fallbackQuestions
	}
	return questions
}

func orDefault(val, fallback string) string {
	if strings.TrimSpace(val) == "" {
		return fallback
	}
	return val
}
