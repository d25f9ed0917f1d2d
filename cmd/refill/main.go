// Command refill triggers a bulk BPM recompute against a running Set
// Workshop server and renders the streamed progress in the terminal.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"

	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"

	"github.com/jaki95/set-workshop/internal/refill"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "Set Workshop server URL")
	flag.Parse()

	resp, err := http.Post(*serverURL+"/api/v1/workshop/refill", "application/json", nil)
	if err != nil {
		log.Fatalf("refill request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Fatalf("refill request returned status %d", resp.StatusCode)
	}

	var bar *progressbar.ProgressBar
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var progress refill.Progress
		if err := json.Unmarshal(line, &progress); err != nil || progress.Total == 0 {
			// Terminal marker or error line.
			var tail struct {
				Done  bool   `json:"done"`
				Error string `json:"error"`
			}
			if json.Unmarshal(line, &tail) == nil && tail.Error != "" {
				log.Fatalf("refill failed: %s", tail.Error)
			}
			continue
		}

		if bar == nil {
			bar = progressbar.NewOptions(
				progress.Total,
				progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionSetTheme(progressbar.ThemeASCII),
				progressbar.OptionFullWidth(),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Refilling slots...[reset]"),
			)
		}
		bar.Set(progress.Applied)
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("stream read failed: %v", err)
	}

	if bar != nil {
		bar.Finish()
	}
	fmt.Println()
	fmt.Println("Refill complete")
}
