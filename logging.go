package main

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

var log *logrus.Logger

func initLog() {
	log = logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)

	err := os.MkdirAll("logs", 0700)
	if err == nil {
		setLoggingFile()
	} else {
		log.SetOutput(os.Stderr)
		log.Info("Failed to log to file, using default stderr")
	}
}

// setLoggingFile switches the logging output to a file for the current day.
func setLoggingFile() {
	dt := time.Now()
	day := dt.Format("01022006")

	logFileName := "logs/engine_" + day + "_log.txt"

	file, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)

	if err == nil {
		log.SetOutput(file)
	} else {
		log.SetOutput(os.Stderr)
		log.Info("Failed to log to file, using default stderr")
	}
}
