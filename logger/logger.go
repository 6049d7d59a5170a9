package logger

import (
	"fmt"
	"time"

	"github.com/fatih/color"
)

var (
	gray   = color.New(color.FgHiBlack).SprintFunc()
	blue   = color.New(color.FgBlue).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
)

func stamp() string {
	return gray("[" + time.Now().Format("15:04:05") + "]")
}

// Info logs general information.
func Info(message string, args ...interface{}) {
	fmt.Printf("%s %s\n", stamp(), blue(fmt.Sprintf(message, args...)))
}

// Success logs a completed operation.
func Success(message string, args ...interface{}) {
	fmt.Printf("%s %s\n", stamp(), green("✓ "+fmt.Sprintf(message, args...)))
}

// Warning logs something recoverable.
func Warning(message string, args ...interface{}) {
	fmt.Printf("%s %s\n", stamp(), yellow("⚠ "+fmt.Sprintf(message, args...)))
}

// Error logs a failure.
func Error(message string, args ...interface{}) {
	fmt.Printf("%s %s\n", stamp(), red("✗ "+fmt.Sprintf(message, args...)))
}
