package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/asocio/deskplan/internal/config"
	"github.com/asocio/deskplan/internal/mip"
	"github.com/asocio/deskplan/internal/plan"
	"github.com/asocio/deskplan/internal/report"
)

var (
	validSolvers = []string{"cbc", "glpsol", "branch"}
	solvers      = map[string]func(mip.Options) mip.Solver{
		"cbc":    mip.NewCBCSolver,
		"glpsol": mip.NewGlpsolSolver,
		"branch": mip.NewBranchSolver,
	}
)

func main() {
	filePathPtr := flag.String("file", "", "Path to the instance JSON file")
	solverPtr := flag.String("solver", "cbc", `MILP backend to use. Allowed values are: "cbc", "glpsol", "branch", where "cbc" is the default`)
	outFilePathPtr := flag.String("out", "", "Path to the file where the solution JSON will be written; if empty, it'll be written into the Standard Output")
	reportPtr := flag.Bool("report", false, "Write a human-readable analysis of the solution to the Standard Error")
	flag.Parse()
	filePath := *filePathPtr
	solverStr := strings.ToLower(*solverPtr)

	if filePath == "" {
		log.Fatal("an instance file must be specified")
	} else if !slices.Contains(validSolvers, solverStr) {
		log.Fatalf("%v is not a valid solver", solverStr)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("cannot read configuration: %v", err)
	}

	instance, err := plan.LoadInstance(filePath)
	if err != nil {
		log.Fatalf("cannot parse instance file: %v", err)
	}
	if err := instance.Validate(); err != nil {
		log.Fatalf("rejected instance: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	logger.Info("instance loaded",
		slog.String("file", filePath),
		slog.Int("employees", len(instance.Employees)),
		slog.Int("desks", len(instance.Desks)),
		slog.Int("groups", len(instance.Groups)),
		slog.Int("zones", len(instance.Zones)),
	)

	solver := solvers[solverStr](mip.Options{TimeLimit: cfg.TimeLimit(), Gap: cfg.SolveGap})
	controller := plan.NewController(instance, *cfg, solver, logger)

	solution, stats, err := controller.Run()
	switch {
	case errors.Is(err, plan.ErrScheduleInfeasible):
		log.Fatalf("the weekly schedule has no feasible solution: %v", err)
	case errors.Is(err, plan.ErrNoFeasibleSolution):
		log.Fatalf("no iteration produced a usable week: %v", err)
	case err != nil:
		log.Fatalf("an error occurred during planning: %v", err)
	}

	logger.Info("planning finished",
		slog.String("status", solution.Status),
		slog.Int("iterations", len(stats)),
		slog.Float64("totalCost", solution.TotalCost),
		slog.Int("cuts", len(controller.Cuts())),
	)

	output := struct {
		plan.Solution
		Iterations []plan.IterationStats `json:"iterationStats"`
	}{Solution: solution, Iterations: stats}

	solutionJson, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		log.Fatalf("an error occurred while building output json: %v", err)
	}
	if *outFilePathPtr == "" {
		fmt.Println(string(solutionJson))
	} else if err := os.WriteFile(*outFilePathPtr, solutionJson, 0666); err != nil {
		log.Fatalf("an error occurred while writing to the output file: %v", err)
	}

	if *reportPtr {
		report.Write(os.Stderr, instance, solution)
	}
}
