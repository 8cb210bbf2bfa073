package utils

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// NewSpinner returns a spinner writing to w, finishing with "[Done]".
func NewSpinner(prefix string, w io.Writer) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(w))
	s.Prefix = prefix
	s.FinalMSG = fmt.Sprintf("%s [Done]\n", prefix)
	return s
}
