package clipboard

import (
	"fyne.io/fyne/v2"
	"github.com/rotisserie/eris"
)

// ErrUnavailable is returned when the toolkit exposes no clipboard.
var ErrUnavailable = eris.New("clipboard is not available")

// Copier defines the interface for putting text on the system clipboard.
type Copier interface {
	Copy(text string) error
}

// FyneCopier implements Copier on top of the toolkit clipboard.
type FyneCopier struct {
	clipboard fyne.Clipboard
}

// NewFyneCopier creates a FyneCopier. A nil clipboard makes every Copy fail with ErrUnavailable.
func NewFyneCopier(clipboard fyne.Clipboard) *FyneCopier {
	return &FyneCopier{clipboard: clipboard}
}

// Copy replaces the clipboard content with text.
func (c *FyneCopier) Copy(text string) error {
	if c.clipboard == nil {
		return ErrUnavailable
	}
	c.clipboard.SetContent(text)
	return nil
}
