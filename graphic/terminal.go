package graphic

import (
	"os"
	"strings"

	"github.com/pkg/errors"
)

// ErrNoTerminal is returned when TERM cannot drive a full screen display.
var ErrNoTerminal = errors.New("terminal cannot draw heatmaps")

// normalizeTerminal checks TERM and works around settings termbox trips
// over: under tmux a TERMINFO pointing elsewhere makes Init fail, so it is
// unset for the life of the display.
//
// The returned function restores the environment.
func normalizeTerminal() (func(), error) {
	term := os.Getenv("TERM")

	switch term {
	case "", "dumb":
		return nil, errors.Wrapf(ErrNoTerminal, "TERM=%q, try -o text or -o png", term)
	}

	prevTERMINFO, hadTERMINFO := os.LookupEnv("TERMINFO")

	if hadTERMINFO && strings.HasPrefix(term, "tmux") {
		if err := os.Unsetenv("TERMINFO"); err != nil {
			return nil, err
		}
	}

	restore := func() {
		if hadTERMINFO {
			os.Setenv("TERMINFO", prevTERMINFO)
		}
	}

	return restore, nil
}
