package main

import (
	"fmt"
	"time"

	"github.com/bskari/go-mazebot/mazebot"
	"github.com/nsf/termbox-go"
)

func dumpSensors(configuration mazebot.Configuration) {
	board, watch, err := mazebot.OpenBoard(configuration)
	if err != nil {
		panic(err)
	}
	defer board.Close()

	shared := &mazebot.LoopContext{}
	pair := mazebot.NewUltrasonicPair(board, watch, shared)
	buttons := mazebot.NewButtonEdges(board)

	err = termbox.Init()
	if err != nil {
		panic(err)
	}
	defer termbox.Close()

	eventQueue := make(chan termbox.Event)
	go func() {
		for {
			eventQueue <- termbox.PollEvent()
		}
	}()

	readings := 0
	pressed := ""
	updated := time.Now()
loop:
	for {
		select {
		case event := <-eventQueue:
			// Check for any key presses
			if event.Type == termbox.EventKey {
				break loop
			}
		default:
			if pair.Step() {
				readings++
			}
			if b := buttons.Sample(); b != (mazebot.Buttons{}) {
				pressed = fmt.Sprintf("%+v", b)
			}

			// Polling has to stay tight for the echo timing, so only redraw
			// every so often
			if time.Since(updated) < 250*time.Millisecond {
				continue
			}
			updated = time.Now()

			termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
			writeString(fmt.Sprintf("Front: %4d cm (raw %5d ticks)", shared.Readings.FrontCm, pair.Front.RawEchoTicks), 0)
			writeString(fmt.Sprintf("Left:  %4d cm (raw %5d ticks)", shared.Readings.LeftCm, pair.Left.RawEchoTicks), 1)
			writeString(fmt.Sprintf("Walls: %v", mazebot.ClassifyWalls(shared.Readings)), 2)
			writeString(fmt.Sprintf("Readings: %d", readings), 3)
			writeString(fmt.Sprintf("Last buttons: %s", pressed), 4)
			writeString("Press any key to quit", 6)
			termbox.Flush()
		}
	}
}

func writeString(str string, y int) {
	for x := 0; x < len(str); x++ {
		termbox.SetCell(x, y, rune(str[x]), termbox.ColorWhite, termbox.ColorBlack)
	}
}
