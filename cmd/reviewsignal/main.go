// Command reviewsignal is the pipeline CLI: run the full pipeline, or run a
// single analysis (markers, evolution, keywords) over a review CSV.
package main

import (
	"github.com/medlens/reviewsignal/internal/interfaces/cli"
)

func main() {
	cli.Execute()
}
