package confirm

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmAndCancel(t *testing.T) {
	tests := []struct {
		key  string
		want tea.Msg
	}{
		{"y", ConfirmedMsg{Tag: "delete"}},
		{"n", CancelledMsg{Tag: "delete"}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			m := New()
			m.Activate("delete", "Delete 2 item(s)?", "/a", "/b")

			m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(tt.key)})
			assert.False(t, m.Active)
			require.NotNil(t, cmd)
			assert.Equal(t, tt.want, cmd())
		})
	}
}

func TestInactiveIgnoresKeys(t *testing.T) {
	m := New()
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	assert.Nil(t, cmd)
	assert.Empty(t, m.View())
}

func TestViewTruncatesDetails(t *testing.T) {
	m := New()
	var details []string
	for range maxDetails + 3 {
		details = append(details, "/item")
	}
	m.Activate("delete", "Delete?", details...)

	view := m.View()
	assert.Contains(t, view, "Delete?")
	assert.Contains(t, view, "and 3 more")
}
