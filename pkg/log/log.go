// Package log prints the status lines of the saslframe command line.
package log

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/fatih/color"
)

const (
	windowsOS = "windows"
)

// Colors of term style.
var (
	Yellow = color.New(color.FgHiYellow, color.Bold).SprintFunc()
	Green  = color.New(color.FgHiGreen, color.Bold).SprintFunc()
	Cyan   = color.New(color.FgCyan, color.Bold).SprintFunc()
	Red    = color.New(color.FgHiRed, color.Bold).SprintFunc()
	White  = color.New(color.FgWhite).SprintFunc()
)

var logAsJSON bool

// EnableJSONFormat enables JSON logging.
func EnableJSONFormat() {
	logAsJSON = true
}

// DisableColor turns term styles off, e.g. when output is not a terminal.
func DisableColor() {
	color.NoColor = true
}

// SuccessStatusEvent reports on a success event.
func SuccessStatusEvent(w io.Writer, fmtstr string, a ...interface{}) {
	statusEvent(w, "success", "✅ ", fmtstr, a...)
}

// FailureStatusEvent reports on a failure event.
func FailureStatusEvent(w io.Writer, fmtstr string, a ...interface{}) {
	statusEvent(w, "failure", "❌ ", fmtstr, a...)
}

// WarningStatusEvent reports on a warning event.
func WarningStatusEvent(w io.Writer, fmtstr string, a ...interface{}) {
	statusEvent(w, "warning", "⚠️ ", fmtstr, a...)
}

// InfoStatusEvent reports status information on an event.
func InfoStatusEvent(w io.Writer, fmtstr string, a ...interface{}) {
	statusEvent(w, "info", "ℹ️ ", fmtstr, a...)
}

func statusEvent(w io.Writer, status, icon, fmtstr string, a ...interface{}) {
	msg := fmt.Sprintf(fmtstr, a...)
	if logAsJSON {
		logJSON(w, status, msg)
	} else if runtime.GOOS == windowsOS {
		fmt.Fprintf(w, "%s\n", msg)
	} else {
		fmt.Fprintf(w, "%s %s\n", icon, msg)
	}
}

func logJSON(w io.Writer, status, message string) {
	type jsonLog struct {
		Time    time.Time `json:"time"`
		Status  string    `json:"status"`
		Message string    `json:"msg"`
	}

	l := jsonLog{
		Time:    time.Now().UTC(),
		Status:  status,
		Message: message,
	}
	jsonBytes, err := json.Marshal(&l)
	if err != nil {
		fmt.Fprintln(w, message)
		return
	}

	fmt.Fprintf(w, "%s\n", string(jsonBytes))
}
