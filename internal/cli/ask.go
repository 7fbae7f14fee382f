// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot questions.
//
// Examples:
//
//	askmydocs ask "What is the refund policy?"
//	askmydocs ask --model openai summarize the onboarding guide
//	askmydocs ask "Who approves travel?" --no-sources --json
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"

	"github.com/askmydocs/askmydocs-tui/internal/auth"
	"github.com/askmydocs/askmydocs-tui/internal/config"
	"github.com/askmydocs/askmydocs-tui/internal/util"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

var (
	markdownMu       sync.Mutex
	markdownRenderer *glamour.TermRenderer
	markdownWidth    int
)

// renderMarkdown renders content for the terminal at width columns, or at
// the terminal's own width when width is not positive. It returns content
// unchanged when rendering fails.
func renderMarkdown(content string, width int) string {
	if width <= 0 {
		width = GetTerminalWidth()
	}
	markdownMu.Lock()
	defer markdownMu.Unlock()
	if markdownRenderer == nil || markdownWidth != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return content
		}
		markdownRenderer, markdownWidth = r, width
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// displayAnswer prints an answer, rendering markdown only on a terminal so
// piped output stays plain.
func displayAnswer(w io.Writer, reply *auth.Reply, showSources bool, wrap int) {
	fmt.Fprintln(w, DimStyle.Render(reply.Message))
	if IsStdoutTTY() {
		fmt.Fprint(w, renderMarkdown(reply.Answer.Answer, wrap))
	} else {
		fmt.Fprintln(w, reply.Answer.Answer)
	}
	if !showSources || len(reply.Sources) == 0 {
		return
	}
	fmt.Fprintln(w, TitleStyle.Render("Sources"))
	for i, src := range reply.Sources {
		name := src.Filename
		if name == "" {
			name = src.DocID
		}
		fmt.Fprintf(w, "  %d. %s %s\n", i+1, name,
			DimStyle.Render(fmt.Sprintf("(%.2f)", src.RelevanceScore)))
		if excerpt := util.FirstLine(src.Content); excerpt != "" {
			fmt.Fprintf(w, "     %s\n", DimStyle.Render(util.Truncate(excerpt, 72)))
		}
	}
}

func answerData(question string, reply *auth.Reply) AnswerData {
	data := AnswerData{
		Question: question,
		Answer:   reply.Answer.Answer,
		Model:    reply.Model,
		LLMUsed:  reply.LLMUsed,
		Sources:  make([]SourceData, 0, len(reply.Sources)),
	}
	for _, src := range reply.Sources {
		data.Sources = append(data.Sources, SourceData{
			DocID:    src.DocID,
			Filename: src.Filename,
			Content:  src.Content,
			Score:    src.RelevanceScore,
		})
	}
	return data
}

// HandleAsk submits one question and prints the answer.
func HandleAsk(env *Env, args Args) error {
	p := NewArgParser(args.Rest, "sources", "no-sources")
	question := strings.TrimSpace(p.Joined(0))

	model := p.Flag("model", "m")
	if model != "" && !config.IsValidModel(model) {
		return NewValidationErrorWithExample("model", model, "unknown model",
			"askmydocs ask --model openai \"question\"")
	}

	reply, err := env.Ctrl.Ask(context.Background(), question, model)
	if err != nil {
		return err
	}

	showSources := env.Config.Query.ShowSources
	if p.BoolFlag("sources") {
		showSources = true
	}
	if p.BoolFlag("no-sources") {
		showSources = false
	}

	return env.result(args, "ask", answerData(question, reply), func(w io.Writer) {
		displayAnswer(w, reply, showSources && !args.Quiet, env.Config.UI.WordWrap)
	})
}
