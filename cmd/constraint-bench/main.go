// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// This is a minimum demo of the constraint core: it builds a small model
// with a single hinge joint riding past its limit, steps the four-stage
// pipeline a fixed number of times per worker, and reports how many
// goroutines can share one read-only Model concurrently.
// For the package implementing the pipeline itself see package constraint.
package main

import (
	"flag"
	"fmt"
	"sync"
	"time"

	"github.com/gorigid/constraint/constraint"
	"github.com/gorigid/constraint/model"
	"github.com/gorigid/constraint/xlog"
)

func demoModel() *model.Model {
	return &model.Model{
		NV:   1,
		Dofs: []model.Dof{{ParentID: -1, InvWeight: 0.5}},
		Joints: []model.Joint{
			{Type: model.JointHinge, DofAdr: 0, QposAdr: 0, Limited: true,
				Range: [2]float64{-1, 1}, Margin: 0.05,
				SolRefLim: model.DefaultSolRef, SolImpLim: model.DefaultSolImp},
		},
		QLD:           []float64{0},
		QLDiagSqrtInv: []float64{0.70710678},
		Opt: model.Option{
			Timestep: 0.002,
			Jacobian: model.JacobianAuto,
		},
	}
}

func worker(m *model.Model, steps int) {
	d := constraint.New(m, 8)
	qpos := []float64{1.02}
	vel := []float64{0}
	jar := []float64{0}

	for i := 0; i < steps; i++ {
		if err := d.MakeConstraint(qpos, nil, nil); err != nil {
			xlog.Error("step %d: %s", i, err)
			return
		}
		d.ReferenceConstraint(vel)
		d.ProjectConstraint()
		d.ConstraintUpdate(jar)
	}
}

func main() {

	workers := flag.Int("workers", 4, "number of goroutines sharing one Model")
	steps := flag.Int("steps", 100000, "pipeline iterations per worker")
	flag.Parse()

	m := demoModel()

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker(m, *steps)
		}()
	}
	wg.Wait()

	elapsed := time.Since(start)
	total := *workers * *steps
	fmt.Printf("%d workers x %d steps = %d pipeline runs in %s (%.0f runs/sec)\n",
		*workers, *steps, total, elapsed, float64(total)/elapsed.Seconds())
}
