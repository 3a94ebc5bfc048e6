package main

import (
	"fmt"
	"time"

	"github.com/bskari/go-mazebot/mazebot"
	"github.com/fatih/color"
)

func testMotors(configuration mazebot.Configuration) {
	if configuration.Backend == mazebot.BACKEND_RPIO && !mazebot.IsPi() {
		fmt.Println("Not a Pi")
		return
	}
	board, watch, err := mazebot.OpenBoard(configuration)
	if err != nil {
		panic(err)
	}
	defer board.Close()
	motorTest(board, watch)
}

// Drive a foot, turn around both ways, and report what the encoders saw
func motorTest(board mazebot.Board, watch mazebot.Stopwatch) {
	duty := &mazebot.DutyCycles{}
	train := mazebot.NewDrivetrain(board, duty)
	drive := mazebot.NewDriveController(train)
	turn := mazebot.NewTurnController(train)
	defer func() {
		train.Halt()
		train.SetMotion(mazebot.Idle)
	}()

	fmt.Println("Driving 12 inches")
	report("drive", mazebot.Complete(drive.FixedDistance(12), watch), train, 12*mazebot.GetConfiguration().CountsPerInch)
	time.Sleep(time.Second)

	for _, direction := range []mazebot.TurnDirection{mazebot.Right, mazebot.Left} {
		fmt.Printf("Turning %v 90 degrees\n", direction)
		report("turn", mazebot.Complete(turn.Turn(direction, 90), watch), train, mazebot.ArcTarget(90))
		time.Sleep(time.Second)
	}

	fmt.Println("Turning around")
	report("turn", mazebot.Complete(turn.Turn(mazebot.Right, 180), watch), train, mazebot.ArcTarget(180))
}

func report(name string, finished bool, train *mazebot.Drivetrain, target uint32) {
	left := train.LeftEncoder.Count()
	right := train.RightEncoder.Count()
	if !finished {
		color.Red("%s: watchdog stopped it at %d/%d of %d counts", name, left, right, target)
		return
	}
	duty := train.Duty()
	color.Green("%s: left %d right %d of %d counts, last duty %02X/%02X", name, left, right, target, duty.Left, duty.Right)
}
