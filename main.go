/*
 * This file is part of the Go Cesium Point Cloud Tiler distribution (https://github.com/mfbonfigli/gocesiumtiler).
 * Copyright (c) 2019 Massimo Federico Bonfigli - m.federico.bonfigli@gmail.com
 *
 * This program is free software; you can redistribute it and/or modify it
 * under the terms of the GNU Lesser General Public License Version 3 as
 * published by the Free Software Foundation;
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
 * Lesser General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public License
 * along with this program. If not, see <http://www.gnu.org/licenses/>.
 *
 * This software also uses third party components. You can find information
 * on their credits and licensing in the file LICENSE-3RD-PARTIES.md that
 * you should have received togheter with the source code.
 */

package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ecopia-map/surface_mesher/internal/io"
	"github.com/ecopia-map/surface_mesher/internal/mesher"
	"github.com/ecopia-map/surface_mesher/pkg"
	"github.com/ecopia-map/surface_mesher/pkg/algorithm_manager/std_algorithm_manager"
	"github.com/ecopia-map/surface_mesher/tools"
	"github.com/golang/glog"
)

const VERSION = "0.3.0"

const logo = `
 surface_mesher
 Surface reconstruction of point clouds written in golang
 Copyright YYYY
`

func main() {
	_ = flag.Set("logtostderr", "true")

	flagsGlobal := tools.ParseFlagsGlobal()
	defer glog.Flush()

	if *flagsGlobal.Version {
		printVersion()
		return
	}

	args := flag.Args()
	if len(args) == 0 || *flagsGlobal.Help {
		showHelp()
		if len(args) == 0 && !*flagsGlobal.Help {
			os.Exit(2)
		}
		return
	}
	cmd, args := args[0], args[1:]

	switch cmd {
	case tools.CommandReconstruct:
		mainCommandReconstruct(args)
	case tools.CommandNormals:
		mainCommandNormals(args)
	case tools.CommandInfo:
		mainCommandInfo(args)
	default:
		glog.Exitf("Unrecognized command [%q]. Command must be one of [%s]", cmd, commands())
	}
}

func commands() string {
	return strings.Join([]string{tools.CommandReconstruct, tools.CommandNormals, tools.CommandInfo}, "|")
}

func mainCommandReconstruct(args []string) {
	flags := tools.ParseFlagsForCommandReconstruct(args)

	if *flags.Help {
		showHelp()
		return
	}

	if *flags.Silent {
		tools.DisableLogger()
	} else {
		printLogo()
	}
	if *flags.LogTimestamp {
		tools.EnableLoggerTimestamp()
	}

	opts, err := flags.PipelineOptions()
	if err != nil {
		glog.Exitf("Error parsing input parameters: %v", err)
	}
	glog.V(1).Infof("options: %s", tools.FmtJSONString(opts))

	if msg, res := validateOptionsForCommandReconstruct(opts); !res {
		glog.Exitf("Error parsing input parameters: %s", msg)
	}

	defer tools.TimeTrack(time.Now(), "reconstruction")
	finder := tools.NewStandardFileFinder(io.PointCloudExtensions...)
	err = pkg.NewReconstructor(finder, std_algorithm_manager.NewAlgorithmManager(opts)).RunReconstructor(opts)

	if err != nil {
		glog.Exitf("Error while reconstructing: %v", err)
	}
	tools.LogOutput("Reconstruction Completed")
}

// Validates the input options provided to the command line tool checking
// that input and output are given and that the input exists
func validateOptionsForCommandReconstruct(opts *mesher.PipelineOptions) (string, bool) {
	if opts.Input == "" {
		return "Input file/folder not specified", false
	}
	if _, err := os.Stat(opts.Input); os.IsNotExist(err) {
		return "Input file/folder not found", false
	}
	if opts.Output == "" {
		return "Output folder not specified", false
	}
	if err := opts.Validate(); err != nil {
		return err.Error(), false
	}
	return "", true
}

func mainCommandNormals(args []string) {
	flags := tools.ParseFlagsForCommandNormals(args)

	if *flags.Help {
		showHelp()
		return
	}
	if *flags.Silent {
		tools.DisableLogger()
	}
	if *flags.Input == "" || *flags.Output == "" {
		glog.Exit("Error parsing input parameters: both -input and -output are required")
	}

	err := pkg.RunNormals(&pkg.NormalsOptions{
		Input:             *flags.Input,
		Output:            *flags.Output,
		Kn:                *flags.Kn,
		NormalOrientation: mesher.NormalOrientation(*flags.NormalOrientation),
		NumThreads:        *flags.NumThreads,
		Format:            mesher.OutputFormat(*flags.Format),
		Precision:         *flags.Precision,
	})
	if err != nil {
		glog.Exitf("Error while estimating normals: %v", err)
	}
}

func mainCommandInfo(args []string) {
	flags := tools.ParseFlagsForCommandInfo(args)

	if *flags.Help || *flags.Input == "" {
		showHelp()
		return
	}

	info, err := pkg.RunInfo(*flags.Input)
	if err != nil {
		glog.Exitf("Error reading %s: %v", *flags.Input, err)
	}
	fmt.Println(tools.FmtJSONIndent(info))
}

func printLogo() {
	fmt.Println(strings.ReplaceAll(logo, "YYYY", strconv.Itoa(time.Now().Year())))
}

func showHelp() {
	printLogo()
	fmt.Println("***")
	fmt.Println("Surface mesher reconstructs triangle meshes from PLY, PTS and XYZ point clouds")
	printVersion()
	fmt.Println("***")
	fmt.Println("")
	fmt.Printf("Usage: surface_mesher [global flags] <%s> [command flags]\n", commands())
	fmt.Println("Run a command with -help to list its flags.")
	fmt.Println("")
	fmt.Println("Global flags: ")
	flag.CommandLine.SetOutput(os.Stdout)
	flag.PrintDefaults()
}

func printVersion() {
	fmt.Println("v." + VERSION)
}
