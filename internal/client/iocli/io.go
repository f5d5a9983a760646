// Package iocli задает вопросы пользователю в терминале
package iocli

//go:generate moq -out prompter_mock.go . Prompter

// Prompter reads answers from the user
type Prompter interface {
	// ReadInput prints prompt and returns the next line without surrounding spaces
	ReadInput(prompt string) (string, error)

	// Confirm asks a yes/no question. Anything but y or yes is a no.
	Confirm(question string) (bool, error)

	// Interactive reports whether input comes from a terminal
	Interactive() bool
}
