/*
Copyright © 2026 the OMIX authors.
This file is part of OMIX.

OMIX is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

OMIX is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with OMIX.  If not, see <http://www.gnu.org/licenses/>.
*/

package omixutil

import (
	"fmt"
	"os"

	"github.com/oceanmodel/omix"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/stat"
)

func version() string { return omix.Version }

// Describe loads the mesh at meshFile and logs its dimensions and
// derived statistics.
func Describe(meshFile string) error {
	m, err := omix.ReadMeshFile(meshFile)
	if err != nil {
		return err
	}
	boundaryEdges := 0
	for _, cells := range m.CellsOnEdge {
		if cells[0] == m.Ghost() || cells[1] == m.Ghost() {
			boundaryEdges++
		}
	}
	logger.WithFields(logrus.Fields{
		"nCells":        m.NCells,
		"nEdges":        m.NEdges,
		"nVertLevels":   m.NVertLevels,
		"boundaryEdges": boundaryEdges,
		"meanDcEdge":    stat.Mean(m.DcEdge, nil),
	}).Info("mesh summary")
	return nil
}

// Run carries out a tracer mixing simulation as configured in cfg.
func Run(cfg *viper.Viper) error {
	mesh, err := omix.ReadMeshFile(cfg.GetString("MeshFile"))
	if err != nil {
		return err
	}
	if refWidth := cast.ToFloat64(cfg.Get("RefWidth")); refWidth > 0 {
		mesh.ComputeMeshScaling(refWidth, 3)
	}

	mixer := omix.NewDel4(cast.ToFloat64(cfg.Get("TracerDel4")), cfg.GetBool("UseTracerDel4"))
	if !mixer.Enabled {
		logger.Warn("biharmonic tracer mixing is disabled; tendencies will be zero")
	}

	m := &omix.Model{
		Mesh:  mesh,
		Mixer: mixer,
		Dt:    cast.ToFloat64(cfg.Get("Dt")),
		InitFuncs: []omix.DomainManipulator{
			omix.InitState(1),
			omix.PointAnomaly(0, cfg.GetInt("AnomalyCell"), 1),
		},
		RunFuncs: []omix.DomainManipulator{
			omix.ResetTendency(),
			omix.HorizontalMixing(),
			omix.ForwardStep(),
			omix.Log(logger),
			omix.StepLimit(cfg.GetInt("NumSteps")),
		},
	}
	if err := m.Init(); err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"mesh":  cfg.GetString("MeshFile"),
		"kappa": mixer.Kappa,
		"dt":    m.Dt,
		"steps": cfg.GetInt("NumSteps"),
	}).Info("starting simulation")
	if err := m.Run(); err != nil {
		return err
	}

	outFile := cfg.GetString("OutputFile")
	f, err := os.Create(outFile)
	if err != nil {
		return fmt.Errorf("omix: creating output file: %v", err)
	}
	defer f.Close()
	if err := m.SaveResults(f); err != nil {
		return err
	}
	logger.WithField("file", outFile).Info("wrote results")
	return nil
}
