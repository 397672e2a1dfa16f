package common

import "fmt"

// Warning records a per-item problem that was skipped rather than failing the frame.
type Warning struct {
	// Pass is the pass that skipped the item.
	Pass string
	// Item names the draw item or stage.
	Item string
	// Reason describes why it was skipped.
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s: %s", w.Pass, w.Item, w.Reason)
}
