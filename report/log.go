//
// Copyright 2018 The Rsviz Authors. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package report

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

func init() {
	log.SetPrefix(fmt.Sprintf("[%d] ", os.Getpid()))
}

var timeNow = func() time.Time {
	return time.Now()
}

var osRename = func(a, b string) error {
	return os.Rename(a, b)
}

// renameLogFile archives a previous log file under a timestamped
// name.
var renameLogFile = func(logPath string) {
	logDir, logFile := filepath.Split(logPath)
	filename := timeNow().Format(logFile + "-20060102_150405")
	fullpath := filepath.Join(logDir, filename)
	log.Printf("Starting new log file, previous log archived as: '%s'", fullpath)
	osRename(logPath, fullpath)
}

// setupLogFile redirects the standard logger to logPath, archiving
// whatever log file a previous run left there. A batch run is short
// lived, so there is no periodic cycling, just the one cycle at
// startup.
var setupLogFile = func(logPath string) error {
	logDir, _ := filepath.Split(logPath)
	if logDir != "" {
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return fmt.Errorf("unable to create log directory %q: %v", logDir, err)
		}
	}

	if _, err := os.Stat(logPath); err == nil {
		renameLogFile(logPath)
	}

	file, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("unable to open log file %q: %v", logPath, err)
	}

	log.Printf("All further status messages will be written to '%s'.", logPath)
	log.SetOutput(file)
	return nil
}
