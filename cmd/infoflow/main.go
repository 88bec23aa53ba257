package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-infoflow/pkg/flow"
	"github.com/dd0wney/cluso-infoflow/pkg/graph"
	"github.com/dd0wney/cluso-infoflow/pkg/logging"
	"github.com/dd0wney/cluso-infoflow/pkg/metrics"
	"github.com/dd0wney/cluso-infoflow/pkg/netio"
	"github.com/dd0wney/cluso-infoflow/pkg/optimize"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	moduleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func main() {
	configPath := flag.String("config", "", "YAML config file")
	input := flag.String("input", "", "Network file (edge list or Pajek; .snappy supported)")
	format := flag.String("format", "edgelist", "Input format: edgelist or pajek")
	model := flag.String("model", "undirected", "Flow model: undirected, undirdir, directed, rawdir, outdirdir")
	trials := flag.Int("trials", 1, "Independent optimizer trials")
	seed := flag.Uint64("seed", 0, "Base seed for the optimizer")
	output := flag.String("output", "", "Clustering output file (.snappy supported)")
	flag.Parse()

	cfg := netio.DefaultConfig()
	if *configPath != "" {
		loaded, err := netio.LoadConfig(*configPath)
		if err != nil {
			fatal(err)
		}
		cfg = loaded
	}
	if *input != "" {
		cfg.Input = *input
	}
	if cfg.Input == "" {
		fatal(fmt.Errorf("no input file; use -input or a config file"))
	}
	applyFlagOverrides(cfg, format, model, trials, seed, output)
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}

	log := logging.NewDefaultLogger()
	reg := metrics.DefaultRegistry()

	network, err := netio.ReadFile(cfg.Input, netio.Format(cfg.Format))
	if err != nil {
		fatal(err)
	}
	g, err := graph.FromSource(network)
	if err != nil {
		fatal(err)
	}
	fmt.Println(titleStyle.Render("infoflow"))
	fmt.Printf("  %d nodes, %d links, total weight %.4g\n", g.NumNodes(), g.NumLinks(), g.SumLinkWeight())

	flowOpts, err := cfg.FlowOptions()
	if err != nil {
		fatal(err)
	}
	calc := &flow.Calculator{Log: log, Metrics: reg}
	if _, err := calc.Calculate(g, flowOpts); err != nil {
		fatal(err)
	}

	opt := &optimize.Optimizer{Log: log, Metrics: reg}
	best, runs, err := opt.RunTrials(g, cfg.TrialsOptions())
	if err != nil {
		fatal(err)
	}

	printSummary(g, best, runs)

	if cfg.Output != "" {
		if err := netio.WriteClusteringFile(cfg.Output, g, best.Modules, best.Codelength); err != nil {
			fatal(err)
		}
		fmt.Printf("\nClustering written to %s\n", cfg.Output)
	}
}

func applyFlagOverrides(cfg *netio.Config, format, model *string, trials *int, seed *uint64, output *string) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "format":
			cfg.Format = *format
		case "model":
			cfg.FlowModel = *model
		case "trials":
			cfg.Trials = *trials
		case "seed":
			cfg.Seed = *seed
		case "output":
			cfg.Output = *output
		}
	})
}

func printSummary(g *graph.Model, best *optimize.Result, runs []optimize.Trial) {
	fmt.Printf("\nBest of %d trial(s): %s\n", len(runs),
		moduleStyle.Render(fmt.Sprintf("%.6f bits in %d modules", best.Codelength, best.NumModules)))
	fmt.Printf("  index %.6f + modules %.6f, %d levels, %d moves\n",
		best.IndexCodelength, best.ModuleCodelength, best.Levels, best.Moves)

	// Largest modules by flow
	type moduleAgg struct {
		id    uint32
		flow  float64
		count int
	}
	agg := make(map[uint32]*moduleAgg)
	nodes := g.Nodes()
	for i := range nodes {
		m := best.Modules[i]
		a, ok := agg[m]
		if !ok {
			a = &moduleAgg{id: m}
			agg[m] = a
		}
		a.flow += nodes[i].Flow
		a.count++
	}
	sorted := make([]*moduleAgg, 0, len(agg))
	for _, a := range agg {
		sorted = append(sorted, a)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].flow > sorted[j].flow })
	show := len(sorted)
	if show > 10 {
		show = 10
	}
	fmt.Println(dimStyle.Render("\n  module  nodes   flow"))
	for _, a := range sorted[:show] {
		fmt.Printf("  %6d  %5d   %.4f\n", a.id, a.count, a.flow)
	}
	if len(sorted) > show {
		fmt.Println(dimStyle.Render(fmt.Sprintf("  ... and %d more", len(sorted)-show)))
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "infoflow: %v\n", err)
	os.Exit(1)
}
