// Package main is a simple example app to write logs to see trigger-driven
// log rotation in action.
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golift.io/triggerr"
	"golift.io/triggerr/archive"
	"golift.io/triggerr/compressor"
	"golift.io/triggerr/trigger"
)

// ///////////////////////////////////////////////////////////////////////// //

/* This is a simple example app to write logs and watch triggers fire. */

// Usage, cron trigger (fires every minute) with compression:
//   go run ./cmd/exampleapp cron compress
//
// Usage, daily trigger (fires at the next midnight, be patient):
//   go run ./cmd/exampleapp daily
//
// Usage, client trigger (send SIGHUP to rotate):
//   go run ./cmd/exampleapp client

const (
	logFilePath     = "/tmp/myfolder/myfile.log"
	timeBetweenLogs = 100 * time.Millisecond
	fileCount       = 10
)

// ///////////////////////////////////////////////////////////////////////// //

func main() {
	var (
		policy trigger.Trigger
		err    error
	)

	switch {
	case isArg("daily"):
		policy = trigger.NewDaily(&trigger.DailyConfig{TimeOfDay: 0, SkipDays: 0})
	case isArg("cron"):
		policy, err = trigger.NewCron("* * * * *", nil)
	case isArg("client"):
		policy = hupTrigger()
	default:
		fmt.Println("pass a trigger arg: daily, cron or client")
		os.Exit(1)
	}

	if err != nil {
		panic(err)
	}

	logger, err := triggerr.New(&triggerr.Config{
		Filepath: logFilePath,
		Trigger:  policy,
		Archiver: &archive.Layout{
			FileCount:  fileCount,
			PostRotate: getPost(),
		},
	})
	if err != nil {
		panic(err)
	}

	log.SetFlags(log.LstdFlags)
	log.SetOutput(logger)
	makeLogs()
}

// Write fake logs!
func makeLogs() {
	ticker := time.NewTicker(timeBetweenLogs)
	for range ticker.C {
		fmt.Print(".")

		err := log.Output(0, "a log line, how exciting")
		if err != nil {
			panic(err)
		}
	}
}

// hupTrigger arms a client trigger every time the process receives SIGHUP,
// the way an admin or logrotate postscript would ask for a rotation.
func hupTrigger() *trigger.Client {
	client := trigger.NewClient()
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGHUP)

	go func() {
		for range sigs {
			fmt.Println("\nSIGHUP! rotating on next append")
			client.Arm()
		}
	}()

	return client
}

func getPost() func(string, string) {
	if isArg("compress") {
		return func(fileName, newFile string) {
			fmt.Printf("\nfile rotated: %s -> %s\n", fileName, newFile)
			compressor.CompressBackgroundWithLog(newFile, func(s string, v ...any) { fmt.Printf(s, v...) })
		}
	}

	return func(fileName, newFile string) {
		fmt.Printf("\nfile rotated: %s -> %s\n", fileName, newFile)
	}
}

// seems easy, but flag is better.
func isArg(arg string) bool {
	for _, a := range os.Args {
		if strings.EqualFold(a, arg) {
			return true
		}
	}

	return false
}
