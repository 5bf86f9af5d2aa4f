package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

func (m *Model) renderLogin() string {
	var b strings.Builder

	b.WriteString(styles.title.Render("marquee — sign in"))
	b.WriteString("\n\n")
	if m.login.errText != "" {
		b.WriteString(styles.err.Render(m.login.errText))
		b.WriteString("\n\n")
	}
	for i := range m.login.inputs {
		b.WriteString(m.login.inputs[i].View())
		b.WriteString("\n")
	}
	if m.login.busy {
		b.WriteString("\nSigning in...\n")
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(helpKeys))

	return b.String()
}

func (m *Model) renderBrowse() string {
	var b strings.Builder

	b.WriteString(m.renderCategoryNav())
	b.WriteString("\n")
	if m.browse.searchFocused {
		b.WriteString(m.browse.searchInput.View())
		b.WriteString("\n")
	}

	b.WriteString(m.browse.movieList.View())
	b.WriteString("\n")

	if m.browse.searchVisible {
		b.WriteString(m.renderSearchResults())
	}

	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}

	helpKeys := []key.Binding{m.keys.search, m.keys.category, m.keys.rate, m.keys.profile, m.keys.logout, m.keys.quit}
	b.WriteString(m.help.ShortHelpView(helpKeys))

	return b.String()
}

// renderCategoryNav renders the category bar with the highlighted selection.
func (m *Model) renderCategoryNav() string {
	if len(m.browse.categories) == 0 {
		return styles.nav.Render("(no categories)")
	}

	parts := make([]string, len(m.browse.categories))
	for i, category := range m.browse.categories {
		if i == m.browse.catIndex {
			parts[i] = styles.navOn.Render(category.Name)
		} else {
			parts[i] = styles.nav.Render(category.Name)
		}
	}
	return strings.Join(parts, "  ")
}

// renderSearchResults renders the secondary, independently visible result
// set below the active grid.
func (m *Model) renderSearchResults() string {
	var b strings.Builder

	b.WriteString(styles.title.Render(fmt.Sprintf("Search results (%s)", m.browse.searchResults.Label)))
	b.WriteString("\n")
	if len(m.browse.searchResults.Movies) == 0 {
		b.WriteString(styles.help.Render("no matches"))
		b.WriteString("\n")
	}
	for _, movie := range m.browse.searchResults.Movies {
		b.WriteString(fmt.Sprintf("  • %s  ★ %.1f\n", movie.Title, movie.Rating))
	}
	b.WriteString(styles.help.Render("press x to hide"))
	b.WriteString("\n")

	return b.String()
}

func (m *Model) renderProfile() string {
	var b strings.Builder

	b.WriteString(styles.title.Render("Edit profile"))
	b.WriteString("\n\n")
	if m.profile.errText != "" {
		b.WriteString(styles.err.Render(m.profile.errText))
		b.WriteString("\n\n")
	}
	for i := range m.profile.inputs {
		b.WriteString(m.profile.inputs[i].View())
		b.WriteString("\n")
	}
	if m.profile.busy {
		b.WriteString("\nSaving...\n")
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.back, m.keys.quit}
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(helpKeys))

	return b.String()
}
