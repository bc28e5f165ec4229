// Copyright 2021 Jack Bister
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/jackbister/jobsuck/internal/fakelog"
)

func main() {
	numJobs := flag.Int("jobs", 100, "The number of jobs to generate.")
	numCores := flag.Int("cores", 4, "The number of CPU cores the jobs are spread over.")
	out := flag.String("out", "logs/job_log.csv", "The file the log will be written to. Its directory is created if it does not exist.")
	seed := flag.Int64("seed", 0, "Seed for the random generator. 0 means a new log every run.")
	startAgo := flag.Duration("startAgo", time.Hour, "How long before now the first job is submitted.")

	flag.Parse()

	err := os.MkdirAll(filepath.Dir(*out), 0o755)
	if err != nil {
		log.Fatal("Got error when creating directory for "+*out+":", err)
	}
	file, err := os.Create(*out)
	if err != nil {
		log.Fatal("Got error when creating file "+*out+":", err)
	}
	defer file.Close()
	err = fakelog.Generate(file, fakelog.GeneratorConfig{
		Jobs:  *numJobs,
		Cores: *numCores,
		Start: time.Now().Add(-*startAgo),
		Seed:  *seed,
	})
	if err != nil {
		log.Fatal("Got error when generating log:", err)
	}
}
