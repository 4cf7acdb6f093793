// Command test-emit is a manual test for HID emission.
// It waits 3 seconds, then types test text, wiggles the pointer, and
// taps play/pause through the chosen backend.
// Focus a text editor before the countdown finishes.
//
// Usage:
//
//	go run ./cmd/test-emit [--backend desktop|gadget]
package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/blewig/blewig/internal/gadget"
	"github.com/blewig/blewig/internal/hid"
)

func main() {
	backend := flag.String("backend", "desktop", "output backend: desktop or gadget")
	keyboardDev := flag.String("keyboard", "/dev/hidg0", "gadget keyboard device")
	mouseDev := flag.String("mouse", "/dev/hidg1", "gadget mouse device")
	consumerDev := flag.String("consumer", "/dev/hidg2", "gadget consumer device")
	flag.Parse()

	text := "Hello from blewig!"

	fmt.Printf("Will emit %q via the %q backend in 3 seconds...\n", text, *backend)
	fmt.Println("Focus a text editor now!")

	for i := 3; i > 0; i-- {
		fmt.Printf("%d...\n", i)
		time.Sleep(time.Second)
	}

	var out hid.Output
	switch *backend {
	case "desktop":
		out = hid.NewDesktop()
	case "gadget":
		emitter, closeFn, err := gadget.Open(*keyboardDev, *mouseDev, *consumerDev)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		defer closeFn()
		out = emitter
	default:
		fmt.Printf("Error: unknown backend %q\n", *backend)
		return
	}

	player := hid.NewPlayer(out)
	err := player.Perform([]hid.Action{
		hid.EmitText{Text: text},
		hid.PressKey{Key: hid.KeyEnter},
		hid.MoveRel{DX: 10, DY: 0},
		hid.MoveRel{DX: -10, DY: 0},
		hid.ConsumerTap{Usage: hid.UsagePlayPause},
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Println("\nDone!")
}
