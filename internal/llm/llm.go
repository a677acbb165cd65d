// Package llm defines the chat completion boundary and shared prompt
// assembly. Concrete clients live in the ollama and openai subpackages.
package llm

import (
	"fmt"
	"strings"

	"pdfchat/internal/domain"
)

// PromptTemplate is the fixed instruction scaffold for grounded answers.
// Retrieved context comes first, then the running history, then the question.
const PromptTemplate = `Answer based on this context:
%s

Chat history:
%s

Question: %s
Answer:`

// BuildPrompt assembles a single completion request from retrieved
// fragments (already in rank order), the conversation history, and the
// user's question.
func BuildPrompt(fragments []string, history []domain.Message, question string) string {
	var hist strings.Builder
	for _, m := range history {
		label := "Assistant"
		if m.Role == domain.RoleUser {
			label = "User"
		}
		hist.WriteString(label)
		hist.WriteString(": ")
		hist.WriteString(m.Content)
		hist.WriteString("\n")
	}
	return fmt.Sprintf(PromptTemplate, strings.Join(fragments, "\n\n"), strings.TrimRight(hist.String(), "\n"), question)
}
