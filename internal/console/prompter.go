package console

import (
	"errors"

	"github.com/cqroot/prompt"
	"github.com/cqroot/prompt/choose"
	"github.com/cqroot/prompt/input"
)

// ErrQuit is returned by a Prompter when the user aborts a prompt.
var ErrQuit = errors.New("quit")

// Prompter asks the user questions. Terminal is the interactive
// implementation; tests script the answers.
type Prompter interface {
	Choose(message string, choices []string) (string, error)
	Input(message, defaultValue string) (string, error)
}

// Terminal prompts on the controlling terminal.
type Terminal struct{}

func (Terminal) Choose(message string, choices []string) (string, error) {
	answer, err := prompt.New().Ask(message).Choose(choices, choose.WithHelp(false))
	return answer, translate(err)
}

func (Terminal) Input(message, defaultValue string) (string, error) {
	answer, err := prompt.New().Ask(message).Input(defaultValue, input.WithCharLimit(2048))
	return answer, translate(err)
}

func translate(err error) error {
	if errors.Is(err, prompt.ErrUserQuit) {
		return ErrQuit
	}
	return err
}
