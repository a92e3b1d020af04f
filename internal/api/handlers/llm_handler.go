package handlers

import (
	"net/http"
	"strings"

	"github.com/markdave123-py/docfields/internal/core"
)

type LLMHandler struct {
	llm core.LLMProvider
}

func NewLLMHandler(llm core.LLMProvider) *LLMHandler {
	return &LLMHandler{llm: llm}
}

// Playground sends a raw prompt to the configured model and returns its text.
func (h *LLMHandler) Playground(w http.ResponseWriter, r *http.Request) {
	prompt := r.FormValue("prompt")
	if strings.TrimSpace(prompt) == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	answer, err := h.llm.Complete(r.Context(), prompt)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(answer))
}
