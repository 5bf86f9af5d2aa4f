package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ferntree/marquee/internal/models"
)

// loginForm holds the unauthenticated entry point's inputs.
type loginForm struct {
	inputs  [2]textinput.Model // email, password
	focus   int
	busy    bool
	errText string
}

func newLoginForm() loginForm {
	email := textinput.New()
	email.Placeholder = "Email"
	email.Focus()

	password := textinput.New()
	password.Placeholder = "Password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return loginForm{inputs: [2]textinput.Model{email, password}}
}

func (f *loginForm) cycle() {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + 1) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

func (f *loginForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *loginForm) email() string    { return strings.TrimSpace(f.inputs[0].Value()) }
func (f *loginForm) password() string { return f.inputs[1].Value() }

// indices into profileForm.inputs
const (
	profileName = iota
	profileAddress
	profileDOB
	profileImage
	profileCategories
	profileFieldCount
)

// profileForm holds the profile editor's inputs, prefilled from the current
// identity when the view opens.
type profileForm struct {
	inputs  [profileFieldCount]textinput.Model
	focus   int
	busy    bool
	errText string
}

func newProfileForm(identity models.Identity) profileForm {
	var f profileForm
	placeholders := [profileFieldCount]string{"Name", "Address", "Date of birth (YYYY-MM-DD)", "Image URL", "Categories (comma separated)"}
	values := [profileFieldCount]string{
		identity.Name,
		identity.Address,
		identity.DOB,
		identity.Image,
		strings.Join(identity.Categories, ", "),
	}

	for i := range f.inputs {
		input := textinput.New()
		input.Placeholder = placeholders[i]
		input.SetValue(values[i])
		f.inputs[i] = input
	}
	f.inputs[0].Focus()

	return f
}

func (f *profileForm) cycle(backward bool) {
	f.inputs[f.focus].Blur()
	if backward {
		f.focus = (f.focus - 1 + len(f.inputs)) % len(f.inputs)
	} else {
		f.focus = (f.focus + 1) % len(f.inputs)
	}
	f.inputs[f.focus].Focus()
}

func (f *profileForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *profileForm) categories() []string {
	raw := strings.Split(f.inputs[profileCategories].Value(), ",")
	var categories []string
	for _, c := range raw {
		if c = strings.TrimSpace(c); c != "" {
			categories = append(categories, c)
		}
	}
	return categories
}

// patch builds a typed partial update holding only the fields that differ
// from the given identity.
func (f *profileForm) patch(identity models.Identity) models.IdentityPatch {
	var patch models.IdentityPatch

	if v := strings.TrimSpace(f.inputs[profileName].Value()); v != identity.Name {
		patch.Name = &v
	}
	if v := strings.TrimSpace(f.inputs[profileAddress].Value()); v != identity.Address {
		patch.Address = &v
	}
	if v := strings.TrimSpace(f.inputs[profileDOB].Value()); v != identity.DOB {
		patch.DOB = &v
	}
	if v := strings.TrimSpace(f.inputs[profileImage].Value()); v != identity.Image {
		patch.Image = &v
	}
	if categories := f.categories(); !equalStrings(categories, identity.Categories) {
		patch.Categories = &categories
	}

	return patch
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
