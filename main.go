package main

import (
	"context"
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/bskari/go-mazebot/mazebot"
	"github.com/fatih/color"
	"github.com/nsf/termbox-go"
)

func main() {
	configPtr := flag.String("config", "", "TOML or YAML configuration file")
	runPtr := flag.Bool("run", false, "Run the maze on the robot")
	simulatePtr := flag.Bool("simulate", false, "Run the maze in simulation")
	mazePtr := flag.String("maze", "", "Maze map for -simulate, '#' walls and 'S' start")
	iterationsPtr := flag.Int("iterations", 20000000, "Loop iterations before -simulate gives up")
	dumpSensorsPtr := flag.Bool("dump", false, "Dump the ultrasonic readings")
	motorsPtr := flag.Bool("motors", false, "Drive and turn once to check the motors and encoders")
	dashboardPtr := flag.Bool("dashboard", false, "Show a terminal dashboard while running")
	flag.Parse()

	configuration := mazebot.GetConfiguration()
	if *configPtr != "" {
		loaded, err := mazebot.LoadConfiguration(*configPtr)
		if err != nil {
			panic(err)
		}
		configuration = loaded
	}
	if *simulatePtr {
		configuration.Backend = mazebot.BACKEND_SIMULATED
	}
	if err := mazebot.SetConfiguration(configuration); err != nil {
		panic(err)
	}

	os.Mkdir("logs", 0755)
	fileLog, err := os.OpenFile(getLogName(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		panic(err)
	}
	defer fileLog.Close()
	if err := mazebot.ConfigureLogger(fileLog, configuration.LogLevel); err != nil {
		panic(err)
	}

	if *dumpSensorsPtr {
		dumpSensors(configuration)
	} else if *motorsPtr {
		testMotors(configuration)
	} else if *simulatePtr {
		runSimulation(*mazePtr, *iterationsPtr, *dashboardPtr)
	} else if *runPtr {
		runMaze(configuration, *dashboardPtr)
	} else {
		fmt.Println("Nothing to do")
	}
}

func runMaze(configuration mazebot.Configuration, dashboard bool) {
	if configuration.Backend == mazebot.BACKEND_RPIO && !mazebot.IsPi() {
		color.Red("Not a Pi, try -simulate")
		return
	}
	board, watch, err := mazebot.OpenBoard(configuration)
	if err != nil {
		mazebot.Logger.Criticalf("Couldn't open board: %v", err)
		os.Exit(1)
	}
	defer board.Close()

	robot := mazebot.NewRobot(board, watch)
	addSinks(robot, configuration, dashboard)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	color.Green("Press the up button to start, Ctrl-C to quit")
	robot.Run(ctx)
}

func addSinks(robot *mazebot.Robot, configuration mazebot.Configuration, dashboard bool) {
	robot.AddSink(&mazebot.LogSink{})
	if configuration.TelemetrySerialDevice != "" {
		sink, err := mazebot.NewSerialSink(configuration.TelemetrySerialDevice, configuration.TelemetrySerialBaud)
		if err != nil {
			mazebot.Logger.Errorf("No serial telemetry: %v", err)
		} else {
			robot.AddSink(sink)
		}
	}
	if configuration.TelemetryWebsocket != "" {
		hub := mazebot.NewWebsocketHub()
		if err := hub.ListenAndServe(configuration.TelemetryWebsocket); err != nil {
			mazebot.Logger.Errorf("No websocket telemetry: %v", err)
		} else {
			robot.AddSink(hub)
		}
	}
	if dashboard {
		if err := termbox.Init(); err != nil {
			panic(err)
		}
		robot.AddSink(&termboxSink{mazebot.NewDashboard()})
	}
}

// Restores the terminal when the robot shuts down
type termboxSink struct {
	*mazebot.Dashboard
}

func (sink *termboxSink) Close() error {
	termbox.Close()
	return nil
}

func runSimulation(mazePath string, iterations int, dashboard bool) {
	text := mazebot.DefaultMaze
	if mazePath != "" {
		data, err := ioutil.ReadFile(mazePath)
		if err != nil {
			panic(err)
		}
		text = string(data)
	}
	world, err := mazebot.ParseGridWorld(text, mazebot.DEFAULT_CELL_INCHES)
	if err != nil {
		panic(err)
	}
	clock := mazebot.NewSimulatedClock()
	board := mazebot.NewSimulatedBoard(clock, world)
	robot := mazebot.NewRobot(board, clock)
	addSinks(robot, mazebot.GetConfiguration(), dashboard)
	defer robot.Shutdown()

	board.Press(mazebot.ButtonUp)
	robot.Step()
	board.Release(mazebot.ButtonUp)

	solved := robot.RunFor(iterations)
	row, col, compass := world.Cell()
	elapsed := time.Duration(clock.Now()) * time.Microsecond
	if solved {
		color.Green("Solved in %v of simulated time, ended at row %d col %d facing %s", elapsed, row, col, compass)
	} else {
		color.Yellow("Gave up after %v of simulated time in %v at row %d col %d facing %s", elapsed, robot.State(), row, col, compass)
	}
}

func getLogName() string {
	now := time.Now()
	name := fmt.Sprintf("%04d-%02d-%02d-%02d-%02d-%02d-mazebot.log", now.Year(), now.Month(), now.Day(), now.Hour(), now.Minute(), now.Second())
	if now.Year() < 2000 {
		// No RTC and no network, so the clock is wrong. Just number them.
		entries, err := ioutil.ReadDir("logs")
		if err != nil {
			fmt.Printf("Unable to list directory contents: %v\n", err)
		}
		count := 0
		for _, entry := range entries {
			if strings.HasSuffix(entry.Name(), ".log") {
				count++
			}
		}
		name = fmt.Sprintf("%d.log", count+1)
	}
	return "logs/" + name
}
