package services

import "fmt"

const (
	// systemPrompt frames every generation request.
	systemPrompt = "You are a helpful assistant that answers questions based on the provided context. If the context doesn't contain relevant information, say so clearly."

	// noContextAnswer is returned without calling the model when retrieval
	// finds nothing.
	noContextAnswer = "I don't have enough information to answer this question."
)

// buildUserPrompt assembles the retrieved context and the question into the
// user turn sent to the chat model.
func buildUserPrompt(context, question string) string {
	return fmt.Sprintf("Context:\n%s\n\nQuestion: %s\n\nProvide a clear and concise answer based on the context above.", context, question)
}
