// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads a model.Option from YAML, the same
// declarative-configuration approach the reference engine's gui package
// uses for widget layouts (gui/builder.go's yaml.Unmarshal-based loader),
// applied here to solver options instead of UI trees. It does not load
// bodies, joints, tendons, equalities or contacts.
package config

import (
	"fmt"
	"io"
	"io/ioutil"

	"github.com/gorigid/constraint/model"
	"gopkg.in/yaml.v2"
)

// optionDoc mirrors model.Option with yaml tags and string enum spellings,
// the same indirection gui/builder.go uses between its YAML attribute
// strings and the typed values it builds.
type optionDoc struct {
	Cone             string  `yaml:"cone"`
	Jacobian         string  `yaml:"jacobian"`
	Solver           string  `yaml:"solver"`
	Impratio         float64 `yaml:"impratio"`
	Timestep         float64 `yaml:"timestep"`
	NoslipIterations int     `yaml:"noslip_iterations"`

	DisableConstraint   bool `yaml:"disable_constraint"`
	DisableEquality     bool `yaml:"disable_equality"`
	DisableFrictionLoss bool `yaml:"disable_frictionloss"`
	DisableLimit        bool `yaml:"disable_limit"`
	DisableContact      bool `yaml:"disable_contact"`
	DisableRefSafe      bool `yaml:"disable_refsafe"`
	EnableOverride      bool `yaml:"enable_override"`

	OSolRef []float64 `yaml:"o_solref"`
	OSolImp []float64 `yaml:"o_solimp"`
	OMargin float64   `yaml:"o_margin"`
}

// LoadOptions reads a YAML document from r and returns the model.Option it
// describes.
func LoadOptions(r io.Reader) (model.Option, error) {

	data, err := ioutil.ReadAll(r)
	if err != nil {
		return model.Option{}, fmt.Errorf("config: reading options: %w", err)
	}

	var doc optionDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return model.Option{}, fmt.Errorf("config: parsing options: %w", err)
	}
	return doc.toOption()
}

func (doc optionDoc) toOption() (model.Option, error) {

	var opt model.Option
	opt.Impratio = doc.Impratio
	opt.Timestep = doc.Timestep
	opt.NoslipIterations = doc.NoslipIterations
	opt.OMargin = doc.OMargin

	switch doc.Cone {
	case "", "pyramidal":
		opt.Cone = model.ConePyramidal
	case "elliptic":
		opt.Cone = model.ConeElliptic
	default:
		return opt, fmt.Errorf("config: unknown cone %q", doc.Cone)
	}

	switch doc.Jacobian {
	case "", "auto":
		opt.Jacobian = model.JacobianAuto
	case "dense":
		opt.Jacobian = model.JacobianDense
	case "sparse":
		opt.Jacobian = model.JacobianSparse
	default:
		return opt, fmt.Errorf("config: unknown jacobian mode %q", doc.Jacobian)
	}

	switch doc.Solver {
	case "", "pgs":
		opt.Solver = model.SolverPGS
	case "cg":
		opt.Solver = model.SolverPrimalCG
	case "newton":
		opt.Solver = model.SolverPrimalNewton
	default:
		return opt, fmt.Errorf("config: unknown solver %q", doc.Solver)
	}

	if doc.DisableConstraint {
		opt.Disable |= model.DisableConstraint
	}
	if doc.DisableEquality {
		opt.Disable |= model.DisableEquality
	}
	if doc.DisableFrictionLoss {
		opt.Disable |= model.DisableFrictionLoss
	}
	if doc.DisableLimit {
		opt.Disable |= model.DisableLimit
	}
	if doc.DisableContact {
		opt.Disable |= model.DisableContact
	}
	if doc.DisableRefSafe {
		opt.Disable |= model.DisableRefSafe
	}
	if doc.EnableOverride {
		opt.Disable |= model.EnableOverride
	}

	if len(doc.OSolRef) == 2 {
		opt.OSolRef = model.SolRef{doc.OSolRef[0], doc.OSolRef[1]}
	} else {
		opt.OSolRef = model.DefaultSolRef
	}
	if len(doc.OSolImp) == 5 {
		opt.OSolImp = model.SolImp{doc.OSolImp[0], doc.OSolImp[1], doc.OSolImp[2], doc.OSolImp[3], doc.OSolImp[4]}
	} else {
		opt.OSolImp = model.DefaultSolImp
	}

	return opt, nil
}
