package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/studiowebux/postboard/internal/board"
	"github.com/studiowebux/postboard/internal/keybinds"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"} // Dark green / Bright green
	colorRed    = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"} // Dark red / Bright red
	colorYellow = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "#ffff00"} // Dark goldenrod / Yellow
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"} // Dark gray / Light gray
	colorCyan   = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"} // Dark cyan / Cyan
)

// Style definitions
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleSelected = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#d3d3d3", Dark: "#3a3a3a"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"})

	stylePostTitle = lipgloss.NewStyle().
			Bold(true)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorYellow)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)

	styleButton = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorCyan)
)

// renderMain renders the post list, the form, and the status bar
func (m Model) renderMain() string {
	listWidth, formWidth := m.panelWidths()
	panelHeight := m.height - StatusBarHeight - PanelBorderWidth

	list := m.renderList(listWidth-PanelBorderWidth, panelHeight)
	form := m.renderForm(formWidth-PanelBorderWidth, panelHeight)

	// Highlight the focused panel
	listBorderColor := colorGray
	formBorderColor := colorGray
	if m.focus == focusList {
		listBorderColor = colorGreen
	} else {
		formBorderColor = colorGreen
	}

	listBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(listBorderColor).
		Width(listWidth - PanelBorderWidth).
		Height(panelHeight).
		Render(list)

	formBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(formBorderColor).
		Width(formWidth - PanelBorderWidth).
		Height(panelHeight).
		Render(form)

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, listBox, formBox)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		mainView,
		m.renderStatusBar(),
	)
}

// panelWidths splits the screen between the list and the form
func (m Model) panelWidths() (int, int) {
	listWidth := max(MinListWidth, m.width*ListWidthPercent/100)
	if m.width < 2*MinListWidth {
		listWidth = m.width / 2
	}
	return listWidth, m.width - listWidth
}

// renderList renders the "Posts" heading and one item per visible post
func (m Model) renderList(width, height int) string {
	var lines []string

	lines = append(lines, styleTitle.Render("Posts"))
	lines = append(lines, "")

	posts := m.board.Posts()
	if len(posts) == 0 {
		if m.loading {
			lines = append(lines, styleSubtle.Render("Loading posts..."))
		} else {
			lines = append(lines, styleSubtle.Render("No posts"))
		}
		return strings.Join(lines, "\n")
	}

	editingID, editing := m.board.Editing()
	visible := max(1, (height-ListHeaderHeight)/ListItemHeight)
	end := min(len(posts), m.offset+visible)

	for i := m.offset; i < end; i++ {
		p := posts[i]

		title := truncateText(p.Title, width-2)
		marker := "  "
		if i == m.cursor {
			marker = "> "
		}

		titleLine := marker + stylePostTitle.Render(title)
		if i == m.cursor && m.focus == focusList {
			titleLine = styleSelected.Render(marker + title)
		}
		lines = append(lines, titleLine)
		lines = append(lines, "  "+truncateText(firstLine(p.Body), width-2))

		affordances := "  [e] Edit  [d] Delete"
		switch {
		case m.pendingDeletes[p.ID]:
			affordances += styleWarning.Render("  deleting...")
		case editing && editingID == p.ID:
			affordances += styleWarning.Render("  editing")
		}
		lines = append(lines, styleSubtle.Render(affordances))
		lines = append(lines, "")
	}

	if len(posts) > visible {
		lines = append(lines, styleSubtle.Render(fmt.Sprintf("%d-%d of %d", m.offset+1, end, len(posts))))
	}

	return strings.Join(lines, "\n")
}

// renderForm renders the single create/edit form
func (m Model) renderForm(width, _ int) string {
	heading := "Create a New Post"
	submitLabel := "Add Post"
	if m.board.Mode() == board.ModeEdit {
		heading = "Edit Post"
		submitLabel = "Update Post"
	}

	var lines []string
	lines = append(lines, styleTitle.Render(heading))
	lines = append(lines, "")
	lines = append(lines, fieldLabel("Title", m.focus == focusTitle))
	lines = append(lines, m.titleInput.View())
	lines = append(lines, "")
	lines = append(lines, fieldLabel("Body", m.focus == focusBody))
	lines = append(lines, m.bodyInput.View())
	lines = append(lines, "")

	button := styleButton.Render(submitLabel)
	if m.submitting {
		button = lipgloss.JoinHorizontal(lipgloss.Center, button, styleWarning.Render("  saving..."))
	}
	lines = append(lines, button)

	hint := fmt.Sprintf("%s submit | %s next field | %s cancel",
		m.keybinds.GetBindingString(keybinds.ContextForm, keybinds.ActionSubmit),
		m.keybinds.GetBindingString(keybinds.ContextForm, keybinds.ActionNextField),
		m.keybinds.GetBindingString(keybinds.ContextForm, keybinds.ActionCancelEdit),
	)
	lines = append(lines, "")
	lines = append(lines, styleSubtle.Render(truncateText(hint, width)))

	return strings.Join(lines, "\n")
}

func fieldLabel(name string, focused bool) string {
	label := name + " " + styleError.Render("*")
	if focused {
		return styleSuccess.Render("> ") + label
	}
	return "  " + label
}

// renderStatusBar renders the status bar at the bottom
func (m Model) renderStatusBar() string {
	// Left side - endpoint and activity
	left := fmt.Sprintf("API: %s", m.baseURL)
	if m.loading || m.submitting || len(m.pendingDeletes) > 0 {
		left += styleWarning.Render(" [working]")
	}

	right := ""

	switch m.mode {
	case ModeSearch:
		right = fmt.Sprintf("Jump: %s", m.searchInput.View())
		if len(m.searchMatches) > 0 {
			right += styleWarning.Render(fmt.Sprintf(" (%d matches)", len(m.searchMatches)))
		}
	default:
		if m.errorMsg != "" {
			right = styleError.Render(m.errorMsg)
		} else if m.statusMsg != "" {
			// Make success messages green
			if strings.HasPrefix(m.statusMsg, "Created") || strings.HasPrefix(m.statusMsg, "Updated") ||
				strings.HasPrefix(m.statusMsg, "Deleted") || strings.Contains(m.statusMsg, "copied") {
				right = styleSuccess.Render(m.statusMsg)
			} else {
				right = m.statusMsg
			}
		} else {
			right = styleSubtle.Render("Press / to jump | ? for help | q to quit")
		}
	}

	// Center spacing
	spacing := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if spacing < 1 {
		spacing = 1
	}

	return left + strings.Repeat(" ", spacing) + right
}

// renderHelp renders the keybinding help modal
func (m Model) renderHelp() string {
	footer := styleSubtle.Render("ESC/q/? to close | up/down to scroll")
	content := lipgloss.JoinVertical(
		lipgloss.Left,
		styleTitle.Render("Keybindings"),
		"",
		m.helpView.View(),
		"",
		footer,
	)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorCyan).
		Padding(1, 2).
		Width(m.width - HelpViewMarginW).
		Render(content)
}

// updateHelpView fills the help viewport from the keybind registry
func (m *Model) updateHelpView() {
	sections := []struct {
		title   string
		context keybinds.Context
		actions []keybinds.Action
	}{
		{"Post list", keybinds.ContextList, []keybinds.Action{
			keybinds.ActionNavigateUp, keybinds.ActionNavigateDown,
			keybinds.ActionPageUp, keybinds.ActionPageDown,
			keybinds.ActionGoToTop, keybinds.ActionGoToBottom,
			keybinds.ActionEditPost, keybinds.ActionDeletePost,
			keybinds.ActionRefresh, keybinds.ActionCopyPost,
			keybinds.ActionOpenSearch, keybinds.ActionFocusForm,
			keybinds.ActionOpenHelp, keybinds.ActionQuit,
		}},
		{"Form", keybinds.ContextForm, []keybinds.Action{
			keybinds.ActionNextField, keybinds.ActionPrevField,
			keybinds.ActionSubmit, keybinds.ActionCancelEdit,
		}},
		{"Jump to post", keybinds.ContextSearch, []keybinds.Action{
			keybinds.ActionSearchConfirm, keybinds.ActionSearchCancel,
		}},
		{"Anywhere", keybinds.ContextGlobal, []keybinds.Action{
			keybinds.ActionQuitForce,
		}},
	}

	var b strings.Builder
	for i, section := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(styleWarning.Render(section.title) + "\n")
		for _, action := range section.actions {
			keys := m.keybinds.GetBindingString(section.context, action)
			b.WriteString(fmt.Sprintf("  %-16s %s\n", keys, strings.ReplaceAll(string(action), "_", " ")))
		}
	}

	m.helpView.SetContent(b.String())
	m.helpView.GotoTop()
}

// updateViewport resizes the viewports after a window change
func (m *Model) updateViewport() {
	m.helpView.Width = max(1, m.width-HelpViewMarginW-4)
	m.helpView.Height = max(1, m.height-HelpViewOverhead-4)

	_, formWidth := m.panelWidths()
	inputWidth := max(1, formWidth-PanelBorderWidth-formInputPaddingW)
	m.titleInput.Width = inputWidth
	m.bodyInput.SetWidth(inputWidth)
	m.adjustScrollOffset()
}

// visibleItems returns how many posts fit in the list panel
func (m Model) visibleItems() int {
	panelHeight := m.height - StatusBarHeight - PanelBorderWidth
	return max(1, (panelHeight-ListHeaderHeight)/ListItemHeight)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}

// truncateText shortens text to width runes, marking the cut with "..."
func truncateText(text string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= width {
		return text
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
