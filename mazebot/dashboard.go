package mazebot

import (
	"container/list"
	"fmt"
	"time"

	"github.com/nsf/termbox-go"
)

type StringWriter struct {
	Line int
}

func (writer *StringWriter) WriteLine(str string) {
	for x := 0; x < len(str); x++ {
		termbox.SetCell(x, writer.Line, rune(str[x]), termbox.ColorWhite, termbox.ColorBlack)
	}
	writer.Line++
}

func (writer *StringWriter) IndentLine(str string) {
	for x := 0; x < len(str); x++ {
		termbox.SetCell(x+3, writer.Line, rune(str[x]), termbox.ColorWhite, termbox.ColorBlack)
	}
	writer.Line++
}

// Terminal view of the robot. Needs termbox.Init to have been called.
type Dashboard struct {
	updated  time.Time
	messages *list.List
	previous Snapshot
}

func NewDashboard() *Dashboard {
	return &Dashboard{messages: list.New()}
}

func (dashboard *Dashboard) logMessage(message string) {
	formatted := fmt.Sprintf("%s %s", time.Now().Format("15:04:05.000"), message)
	dashboard.messages.PushFront(formatted)
	if dashboard.messages.Len() > 5 {
		dashboard.messages.Remove(dashboard.messages.Back())
	}
}

func (dashboard *Dashboard) Publish(snapshot Snapshot) error {
	if snapshot.State != dashboard.previous.State {
		dashboard.logMessage(fmt.Sprintf("%s -> %s", dashboard.previous.State, snapshot.State))
	}
	dashboard.previous = snapshot

	// Only update this often
	if time.Since(dashboard.updated) < 500*time.Millisecond {
		return nil
	}
	dashboard.updated = time.Now()

	writer := &StringWriter{Line: 0}
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)

	writer.WriteLine("=== State ===")
	writer.IndentLine(fmt.Sprintf("Maze: %s", snapshot.State))
	writer.IndentLine(fmt.Sprintf("Walls: %s", snapshot.Walls))
	writer.IndentLine(fmt.Sprintf("Motion: %s", snapshot.Motion))

	writer.WriteLine("=== Ultrasonic ===")
	writer.IndentLine(fmt.Sprintf("Front:%4d cm Left:%4d cm", snapshot.FrontCm, snapshot.LeftCm))

	writer.WriteLine("=== Drive ===")
	writer.IndentLine(fmt.Sprintf("Duty L:%02X R:%02X", snapshot.LeftDuty, snapshot.RightDuty))
	writer.IndentLine(fmt.Sprintf("Encoder L:%5d R:%5d", snapshot.LeftCount, snapshot.RightCount))

	writer.WriteLine("=== Messages ===")
	for e := dashboard.messages.Front(); e != nil; e = e.Next() {
		writer.IndentLine(e.Value.(string))
	}
	return termbox.Flush()
}

func (*Dashboard) Close() error {
	return nil
}
