package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/kbukum/graphx/algorithms"
	"github.com/kbukum/graphx/dag"
	"github.com/kbukum/graphx/errors"
	"github.com/kbukum/graphx/version"
)

// runFlags are shared by run and job.
type runFlags struct {
	inputs []string
	output string
	nodes  bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.inputs, "input", "i", nil, "bind an input: name=path, or just path for single-input graphs; - reads stdin")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "write result records to this file instead of stdout")
	cmd.Flags().BoolVar(&f.nodes, "nodes", false, "print per-chain results in the summary")
}

func newRunCmd(a *app) *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run <algorithm>",
		Short: "Run a built-in algorithm",
		Long:  "Run a built-in algorithm. See \"graphx list\" for the algorithms and their inputs.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alg, ok := algorithms.Lookup(args[0])
			if !ok {
				return unknownAlgorithm(args[0])
			}
			return a.execute(cmd, alg.Build(dag.NewGraph()), alg.Name, &f)
		},
	}
	f.register(cmd)
	return cmd
}

func newJobCmd(a *app) *cobra.Command {
	var (
		f    runFlags
		dirs []string
	)
	cmd := &cobra.Command{
		Use:   "job <file.yaml|name>",
		Short: "Run a YAML job",
		Long: "Run a YAML job given as a file path, a job name found in --jobs-dir, " +
			"or the name of a bundled job.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := loadJob(args[0], dirs)
			if err != nil {
				return err
			}
			target, err := dag.BuildJob(job, algorithms.NewRegistry())
			if err != nil {
				return err
			}
			return a.execute(cmd, target, job.Name, &f)
		},
	}
	f.register(cmd)
	cmd.Flags().StringSliceVar(&dirs, "jobs-dir", nil, "directories searched for <name>.yaml")
	return cmd
}

func newPlanCmd() *cobra.Command {
	var dirs []string
	cmd := &cobra.Command{
		Use:   "plan <algorithm|file.yaml|job>",
		Short: "Print the execution plan of an algorithm or a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := resolveTarget(args[0], dirs)
			if err != nil {
				return err
			}
			plan, err := dag.Explain(target)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), plan.String())
			return err
		},
	}
	cmd.Flags().StringSliceVar(&dirs, "jobs-dir", nil, "directories searched for <name>.yaml")
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built-in algorithms, bundled jobs and registered functions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ALGORITHM\tINPUTS\tDESCRIPTION")
			for _, alg := range algorithms.Catalog() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", alg.Name, strings.Join(alg.Inputs, ","), alg.Description)
			}
			fmt.Fprintln(tw)
			fmt.Fprintf(tw, "jobs:\t%s\n", strings.Join(algorithms.JobNames(), ", "))
			reg := algorithms.NewRegistry()
			for _, kind := range []string{dag.FuncMapper, dag.FuncReducer, dag.FuncFolder} {
				fmt.Fprintf(tw, "%ss:\t%s\n", kind, strings.Join(reg.List(kind), ", "))
			}
			return tw.Flush()
		},
	}
}

func newVersionCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// Skips config loading.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Get()
			if !asJSON {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), info.String())
				return err
			}
			data, err := json.Marshal(info)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

// execute runs target, writes its records and prints the summary.
func (a *app) execute(cmd *cobra.Command, target dag.Chain, job string, f *runFlags) (err error) {
	ctx := cmd.Context()
	defer func() {
		if cerr := a.close(ctx); err == nil {
			err = cerr
		}
	}()

	plan, err := dag.Explain(target)
	if err != nil {
		return err
	}
	fallback := ""
	if len(plan.Inputs) == 1 {
		fallback = plan.Inputs[0]
	}
	inputs, err := bindInputs(ctx, f.inputs, fallback, cmd.InOrStdin())
	if err != nil {
		return err
	}
	opts, err := a.runOptions(job)
	if err != nil {
		return err
	}

	res, err := a.engine().Run(ctx, target, inputs, opts...)
	if err != nil {
		if res != nil {
			printSummary(cmd.ErrOrStderr(), res, 0, err, f.nodes)
		}
		return err
	}

	written, err := writeResult(cmd, res, f.output)
	if err != nil {
		return err
	}
	printSummary(cmd.ErrOrStderr(), res, written, nil, f.nodes)
	return nil
}

func writeResult(cmd *cobra.Command, res *dag.Result, path string) (int64, error) {
	if path == "" {
		return res.WriteTo(cmd.OutOrStdout())
	}
	out, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("creating output: %w", err)
	}
	n, err := res.WriteTo(out)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// loadJob resolves a job reference: a file path, a name in dirs, then a
// bundled job.
func loadJob(ref string, dirs []string) (*dag.Job, error) {
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		return dag.LoadJob(ref)
	}
	if len(dirs) > 0 {
		job, err := dag.NewFileJobLoader(dirs...).Load(ref)
		if err == nil || errors.CodeOf(err) != "" {
			return job, err
		}
	}
	job, err := algorithms.EmbeddedJobLoader{}.Load(ref)
	if err != nil {
		return nil, errors.InvalidInput("job", fmt.Sprintf("%q is neither a job file nor a known job", ref))
	}
	return job, nil
}

func resolveTarget(ref string, dirs []string) (dag.Chain, error) {
	if alg, ok := algorithms.Lookup(ref); ok {
		return alg.Build(dag.NewGraph()), nil
	}
	job, err := loadJob(ref, dirs)
	if err != nil {
		return dag.Chain{}, err
	}
	return dag.BuildJob(job, algorithms.NewRegistry())
}

func unknownAlgorithm(name string) error {
	var names []string
	for _, alg := range algorithms.Catalog() {
		names = append(names, alg.Name)
	}
	return errors.InvalidInput("algorithm", fmt.Sprintf("unknown algorithm %q (known: %s)", name, strings.Join(names, ", ")))
}
