// The MIT License (MIT)
//
// # Copyright (c) 2016 xtaci
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/s184222/cola-structure/cola"
)

// VERSION is injected by buildflags.
var VERSION = "SELFBUILD"

func main() {
	if VERSION == "SELFBUILD" {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	myApp := cli.NewApp()
	myApp.Name = "colabench"
	myApp.Usage = "exercise and time the COLA container variants"
	myApp.Version = VERSION
	myApp.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "variant",
			Value: "basic",
			Usage: "basic, deamortized, lookahead, vbasic, vdeamortized, all",
		},
		cli.IntFlag{
			Name:  "ops",
			Value: 100000,
			Usage: "number of Add operations to perform",
		},
		cli.IntFlag{
			Name:  "reads",
			Value: 100000,
			Usage: "number of Contains probes to perform after the inserts",
		},
		cli.IntFlag{
			Name:  "seed",
			Value: 1,
			Usage: "PRNG seed, for reproducible runs",
		},
		cli.IntFlag{
			Name:  "initialcap",
			Value: 0,
			Usage: "initial capacity hint, 0 lets each variant pick its default",
		},
		cli.BoolFlag{
			Name:  "quiet",
			Usage: "suppress the per-variant progress line",
		},
		cli.StringFlag{
			Name:  "c",
			Value: "",
			Usage: "config from json file, which will override the command from shell",
		},
	}
	myApp.Action = func(c *cli.Context) error {
		config := Config{}
		config.Variant = c.String("variant")
		config.Ops = c.Int("ops")
		config.Reads = c.Int("reads")
		config.Seed = int64(c.Int("seed"))
		config.InitialCap = c.Int("initialcap")
		config.Quiet = c.Bool("quiet")

		if conf := c.String("c"); conf != "" {
			if err := parseJSONConfig(&config, conf); err != nil {
				return errors.Wrap(err, "parseJSONConfig")
			}
		}

		return run(config)
	}
	myApp.Action = addCheckedAction(myApp.Action)

	if err := myApp.Run(os.Args); err != nil {
		log.Println(err)
	}
}

func addCheckedAction(action cli.ActionFunc) cli.ActionFunc {
	return func(c *cli.Context) error {
		if err := action(c); err != nil {
			return errors.Wrap(err, "colabench")
		}
		return nil
	}
}

func run(config Config) error {
	variants := []string{config.Variant}
	if config.Variant == "all" {
		variants = []string{"basic", "deamortized", "lookahead", "vbasic", "vdeamortized"}
	}

	for _, name := range variants {
		report, err := benchVariant(name, config)
		if err != nil {
			return err
		}
		if !config.Quiet {
			fmt.Println(report)
		}
	}
	return nil
}

func benchVariant(name string, config Config) (string, error) {
	rng := rand.New(rand.NewSource(config.Seed))

	switch name {
	case "basic":
		b := newBasic(config.InitialCap)
		values := int64Values(rng, config.Ops)
		insertStart := time.Now()
		for _, v := range values {
			b.Add(v)
		}
		insertElapsed := time.Since(insertStart)

		hits := 0
		readStart := time.Now()
		for i := 0; i < config.Reads; i++ {
			if b.Contains(values[i%len(values)]) {
				hits++
			}
		}
		readElapsed := time.Since(readStart)
		return formatReport(name, config, insertElapsed, readElapsed, hits), nil

	case "deamortized":
		d := newDeamortized(config.InitialCap)
		values := int64Values(rng, config.Ops)
		var worst uint64
		insertStart := time.Now()
		for _, v := range values {
			d.Add(v)
			if m := d.LastInsertMoves(); m > worst {
				worst = m
			}
		}
		insertElapsed := time.Since(insertStart)

		hits := 0
		readStart := time.Now()
		for i := 0; i < config.Reads; i++ {
			if d.Contains(values[i%len(values)]) {
				hits++
			}
		}
		readElapsed := time.Since(readStart)
		return formatReport(name, config, insertElapsed, readElapsed, hits) +
			fmt.Sprintf(" worst-insert-moves=%d", worst), nil

	case "lookahead":
		l := newLookahead(config.InitialCap)
		values := int64Values(rng, config.Ops)
		insertStart := time.Now()
		for _, v := range values {
			l.Add(v)
		}
		insertElapsed := time.Since(insertStart)

		hits := 0
		readStart := time.Now()
		for i := 0; i < config.Reads; i++ {
			if l.Contains(values[i%len(values)]) {
				hits++
			}
		}
		readElapsed := time.Since(readStart)
		return formatReport(name, config, insertElapsed, readElapsed, hits), nil

	case "vbasic":
		v := newVectorizedBasic(config.InitialCap)
		values := int32Values(rng, config.Ops)
		insertStart := time.Now()
		for _, val := range values {
			v.Add(val)
		}
		insertElapsed := time.Since(insertStart)

		hits := 0
		readStart := time.Now()
		for i := 0; i < config.Reads; i++ {
			if v.Contains(values[i%len(values)]) {
				hits++
			}
		}
		readElapsed := time.Since(readStart)
		return formatReport(name, config, insertElapsed, readElapsed, hits), nil

	case "vdeamortized":
		v := newVectorizedDeamortized(config.InitialCap)
		values := int32Values(rng, config.Ops)
		var worst uint32
		insertStart := time.Now()
		for _, val := range values {
			v.Add(val)
			if m := v.LastInsertMoves(); m > worst {
				worst = m
			}
		}
		insertElapsed := time.Since(insertStart)

		hits := 0
		readStart := time.Now()
		for i := 0; i < config.Reads; i++ {
			if v.Contains(values[i%len(values)]) {
				hits++
			}
		}
		readElapsed := time.Since(readStart)
		return formatReport(name, config, insertElapsed, readElapsed, hits) +
			fmt.Sprintf(" worst-insert-moves=%d", worst), nil
	}

	return "", errors.Errorf("unknown variant %q", name)
}

func newBasic(initialCap int) *cola.Basic {
	if initialCap <= 0 {
		return cola.NewBasic()
	}
	return cola.NewBasicWithCapacity(uint64(initialCap))
}

func newDeamortized(initialCap int) *cola.Deamortized {
	if initialCap <= 0 {
		return cola.NewDeamortized()
	}
	return cola.NewDeamortizedWithCapacity(uint64(initialCap))
}

func newLookahead(initialCap int) *cola.Lookahead {
	if initialCap <= 0 {
		return cola.NewLookahead()
	}
	return cola.NewLookaheadWithCapacity(uint64(initialCap))
}

func newVectorizedBasic(initialCap int) *cola.VectorizedBasic {
	if initialCap <= 0 {
		return cola.NewVectorizedBasic()
	}
	return cola.NewVectorizedBasicWithCapacity(uint32(initialCap))
}

func newVectorizedDeamortized(initialCap int) *cola.VectorizedDeamortized {
	if initialCap <= 0 {
		return cola.NewVectorizedDeamortized()
	}
	return cola.NewVectorizedDeamortizedWithCapacity(uint32(initialCap))
}

func int64Values(rng *rand.Rand, n int) []int64 {
	values := make([]int64, n)
	for i := range values {
		values[i] = rng.Int63n(int64(n) * 4)
	}
	return values
}

func int32Values(rng *rand.Rand, n int) []int32 {
	values := make([]int32, n)
	for i := range values {
		values[i] = rng.Int31n(int32(n) * 4)
	}
	return values
}

func formatReport(name string, config Config, insertElapsed, readElapsed time.Duration, hits int) string {
	return fmt.Sprintf("variant=%s ops=%d reads=%d insert=%s read=%s hits=%d",
		name, config.Ops, config.Reads, insertElapsed, readElapsed, hits)
}
