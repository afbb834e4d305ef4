package cmd

import (
	"fmt"
	"os"
	"sync"
	"time"

	"modmeta/cli/internal/terminal"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// startSpinner shows an animated spinner followed by text until the returned
// function is called. Nothing is drawn when out is not a terminal, so piped
// output (for example `meta show --json`) stays clean.
func startSpinner(out *os.File, text string) func() {
	if !terminal.IsInteractive(out) {
		return func() {}
	}

	cursor.Hide()
	area, err := pterm.DefaultArea.WithRemoveWhenDone(true).Start()
	if err != nil {
		cursor.Show()
		return func() {}
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		i := 0
		t := time.NewTicker(120 * time.Millisecond)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				i++
				area.Update(fmt.Sprintf("%s %s", pterm.FgCyan.Sprint(spinnerFrames[i%len(spinnerFrames)]), text))
			case <-stop:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			wg.Wait()
			_ = area.Stop()
			cursor.Show()
		})
	}
}
