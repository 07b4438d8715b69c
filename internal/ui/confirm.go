package ui

import (
	"fmt"

	"github.com/eiannone/keyboard"
)

// Confirm prompts for a single y/n keypress. Escape, Ctrl+C and any key
// other than y/Y answer no.
func Confirm(prompt string) (bool, error) {
	fmt.Printf("%s [y/N] ", prompt)
	char, key, err := keyboard.GetSingleKey()
	if err != nil {
		return false, err
	}
	if key == keyboard.KeyEsc || key == keyboard.KeyCtrlC {
		fmt.Println("n")
		return false, nil
	}
	yes := char == 'y' || char == 'Y'
	if yes {
		fmt.Println("y")
	} else {
		fmt.Println("n")
	}
	return yes, nil
}
