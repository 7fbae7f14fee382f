// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/askmydocs/askmydocs-tui/internal/auth"
	"github.com/askmydocs/askmydocs-tui/internal/router"
	"github.com/askmydocs/askmydocs-tui/internal/ui/components"
	"github.com/askmydocs/askmydocs-tui/internal/ui/styles"
	"github.com/askmydocs/askmydocs-tui/internal/util"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the current route.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.overlay.IsVisible() {
		return m.overlay.View()
	}

	header := m.header.View()
	bar := *m.status
	bar.Hints = m.hints()
	status := bar.View()
	toasts := m.toasts.View(m.width)

	var body string
	switch m.route {
	case router.Dashboard:
		body = m.dashboardView()
	case router.Register:
		body = m.authView(m.register, "Already have an account? ", "Login")
	default:
		body = m.authView(m.login, "Don't have an account? ", "Sign up")
	}

	used := lipgloss.Height(header) + lipgloss.Height(status)
	if toasts != "" {
		used += lipgloss.Height(toasts)
	}
	bodyHeight := max(m.height-used, 1)
	if m.route == router.Dashboard {
		body = lipgloss.Place(m.width, bodyHeight, lipgloss.Left, lipgloss.Top, body)
	} else {
		body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, body)
	}

	parts := []string{header}
	if toasts != "" {
		parts = append(parts, lipgloss.PlaceHorizontal(m.width, lipgloss.Right, toasts))
	}
	parts = append(parts, body, status)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// authView renders a login or sign up card with a link to the other one.
func (m Model) authView(form *components.Form, prompt, link string) string {
	footer := m.theme.FormSubtitle.Render(prompt) +
		m.theme.Link.Render(link) + " " +
		m.theme.Hint.Render("("+m.keys.SwitchAuth.Help().Key+")")
	return m.theme.FormCard.Render(lipgloss.JoinVertical(lipgloss.Left,
		form.View(),
		"",
		footer,
	))
}

func (m Model) tabsView() string {
	narrow := m.theme.GetLayoutMode() == styles.LayoutNarrow
	tabs := make([]string, 0, len(tabNames))
	for i, name := range tabNames {
		style := m.theme.Tab
		if Tab(i) == m.tab {
			style = m.theme.TabActive
		}
		label := fmt.Sprintf("F%d %s", i+1, name)
		if narrow {
			label = name
		}
		tabs = append(tabs, style.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) dashboardView() string {
	var panel string
	switch m.tab {
	case TabUpload:
		panel = m.uploadView()
	case TabText:
		panel = m.textView()
	case TabAccount:
		panel = m.accountView()
	default:
		panel = m.askView()
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.tabsView(),
		m.theme.Panel.Width(max(m.width-2, 20)).Render(panel),
	)
}

func (m Model) modelPicker() string {
	opts := make([]string, 0, len(queryModels))
	for i, name := range queryModels {
		if i == m.queryModel {
			opts = append(opts, m.theme.RadioActive.Render("(•) "+name))
		} else {
			opts = append(opts, m.theme.Radio.Render("( ) "+name))
		}
	}
	return m.theme.FieldLabel.Render("Model ") + strings.Join(opts, "  ") + "  " +
		m.theme.Hint.Render(m.keys.Model.Help().Key)
}

func (m Model) askView() string {
	parts := []string{m.modelPicker(), "", m.ask.View()}
	if m.reply != nil {
		parts = append(parts, "",
			m.theme.AnswerHeader.Render("Q: "+util.Truncate(m.question, max(m.width-12, 20))),
			m.answer.View(),
		)
		if m.answer.TotalLineCount() > m.answer.Height {
			parts = append(parts, m.theme.Hint.Render(fmt.Sprintf("%3.f%%  PgUp/PgDn to scroll", m.answer.ScrollPercent()*100)))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) uploadView() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.theme.PanelTitle.Render("Upload a document"),
		m.theme.Hint.Render(auth.MsgUnsupportedFile),
		"",
		m.upload.View(),
	)
}

func (m Model) textView() string {
	parts := []string{
		m.theme.PanelTitle.Render("Add text"),
		"",
		m.text.View(),
		"",
	}
	label := "Add Text"
	if m.textBusy {
		label += "..."
	}
	parts = append(parts, m.theme.Button.Render(label)+" "+m.theme.Hint.Render(m.keys.SaveText.Help().Key))
	switch {
	case m.textError != "":
		parts = append(parts, "", m.theme.NoticeError.Render(m.textError))
	case m.textNotice != "":
		parts = append(parts, "", m.theme.Notice.Render(m.textNotice))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) accountView() string {
	name, email := "...", "..."
	if m.user != nil {
		name, email = m.user.Name, m.user.Email
	}
	profile := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.PanelTitle.Render("Profile"),
		m.theme.FieldLabel.Render("Name  ")+name,
		m.theme.FieldLabel.Render("Email ")+email,
	)
	return lipgloss.JoinVertical(lipgloss.Left, profile, "", m.password.View())
}

// hints returns the key hints for the status bar.
func (m Model) hints() []components.KeyHint {
	var hs []components.KeyHint
	switch m.route {
	case router.Dashboard:
		hs = append(hs,
			components.KeyHint{Key: "F1-F4", Action: "tabs"},
			toHint(m.keys.Logout),
		)
		if m.tab == TabText {
			hs = append(hs, toHint(m.keys.SaveText))
		}
	case router.Register:
		hs = append(hs, components.KeyHint{Key: "tab", Action: "next field"}, toHint(m.keys.Back))
	default:
		hs = append(hs, components.KeyHint{Key: "tab", Action: "next field"}, toHint(m.keys.SwitchAuth))
	}
	return append(hs, toHint(m.keys.Quit))
}

func toHint(b key.Binding) components.KeyHint {
	h := b.Help()
	return components.KeyHint{Key: h.Key, Action: h.Desc}
}

// =============================================================================
// ANSWER RENDERING
// =============================================================================

// renderReply fills the answer viewport with the rendered answer and its
// sources.
func (m *Model) renderReply() {
	if m.reply == nil || m.reply.Answer == nil {
		m.answer.SetContent("")
		return
	}
	var b strings.Builder
	b.WriteString(m.markdown(m.reply.Answer.Answer))

	if m.cfg.Query.ShowSources && len(m.reply.Sources) > 0 {
		b.WriteString("\n")
		b.WriteString(m.theme.AnswerHeader.Render("Sources"))
		b.WriteString("\n")
		for i, src := range m.reply.Sources {
			name := src.Filename
			if name == "" {
				name = src.DocID
			}
			fmt.Fprintf(&b, "%d. %s %s\n", i+1, name,
				m.theme.Source.Render(fmt.Sprintf("(%.2f)", src.RelevanceScore)))
			if excerpt := util.FirstLine(src.Content); excerpt != "" {
				b.WriteString("   " + m.theme.Source.Render(util.Truncate(excerpt, max(m.answer.Width-4, 20))) + "\n")
			}
		}
	}
	m.answer.SetContent(b.String())
	m.answer.GotoTop()
}

// markdown renders content at the viewport width, falling back to the
// plain text when glamour fails.
func (m *Model) markdown(content string) string {
	width := m.answer.Width
	if m.cfg.UI.WordWrap > 0 && m.cfg.UI.WordWrap < width {
		width = m.cfg.UI.WordWrap
	}
	if m.md == nil || m.mdWidth != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			m.logger.Debug("markdown renderer unavailable", "error", err)
			return content
		}
		m.md, m.mdWidth = r, width
	}
	out, err := m.md.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}
