package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"osdisim"
	"osdisim/debug"
	"osdisim/osdi"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	deckPath  string // 电路文件
	logLevel  string // 日志级别
	useCSC    bool   // 强制启用列压缩存储
	chartPath string // 拓扑网络图输出
	spyPath   string // 矩阵分布图输出
	jsonPath  string // 拓扑快照输出
	temps     []float64
	addr      string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "osdisim",
		Short:        "Device model setup and circuit topology assembly",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level: %s", logLevel)
			}
			logrus.SetLevel(level)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")

	setup := &cobra.Command{
		Use:   "setup",
		Short: "Set up every device in a deck, run temperature updates, then release internal nodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := load()
			if err != nil {
				return err
			}
			if err := s.Setup(); err != nil {
				if osdi.IsFatal(err) {
					return err
				}
				logrus.WithError(err).Warn("setup finished with errors")
			}
			if err := export(s.Record()); err != nil {
				return err
			}
			summary(cmd.OutOrStdout(), s)
			for _, t := range temps {
				if err := s.Temp(t); err != nil {
					if osdi.IsFatal(err) {
						return err
					}
					logrus.WithError(err).Warn("temperature update finished with errors")
				}
			}
			return s.Unsetup()
		},
	}
	setup.Flags().StringVar(&deckPath, "deck", "", "Circuit deck (YAML)")
	setup.Flags().BoolVar(&useCSC, "csc", false, "Bind instances to reordering solver storage")
	setup.Flags().StringVar(&chartPath, "chart", "", "Write topology chart (HTML)")
	setup.Flags().StringVar(&spyPath, "spy", "", "Write matrix spy plot (SVG)")
	setup.Flags().StringVar(&jsonPath, "json", "", "Write topology record (JSON)")
	setup.Flags().Float64SliceVar(&temps, "temp", nil, "Circuit temperatures (K) for temperature updates after setup")
	_ = setup.MarkFlagRequired("deck")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Set up a deck and serve its topology chart over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := load()
			if err != nil {
				return err
			}
			if err := s.Setup(); osdi.IsFatal(err) {
				return err
			}
			charts := &debug.Charts{Record: s.Record()}
			http.HandleFunc("/", charts.Handler)
			logrus.WithField("addr", addr).Info("serving topology chart")
			return http.ListenAndServe(addr, nil)
		},
	}
	serve.Flags().StringVar(&deckPath, "deck", "", "Circuit deck (YAML)")
	serve.Flags().StringVar(&addr, "addr", ":8081", "Listen address")
	_ = serve.MarkFlagRequired("deck")

	devices := &cobra.Command{
		Use:   "devices",
		Short: "List registered device models and their parameters",
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			for _, name := range osdi.Names() {
				d, _ := osdi.Lookup(name)
				fmt.Fprintf(w, "%s: %d nodes (%d terminals), %d jacobian entries, %d states\n",
					d.Name, d.NumNodes, d.NumTerminals, d.NumJacobianEntries(), d.InstanceStates())
				for _, p := range d.Params {
					kind := map[uint32]string{osdi.ParaKindModel: "model", osdi.ParaKindInst: "instance", osdi.ParaKindOpvar: "opvar"}[p.Kind()]
					fmt.Fprintf(w, "  %-10s %-8s %-6s %s\n", strings.Join(p.Name, "|"), kind, p.Units, p.Description)
				}
			}
		},
	}

	root.AddCommand(setup, serve, devices)
	return root
}

func load() (*osdisim.Simulator, error) {
	s, err := osdisim.Load(deckPath)
	if err != nil {
		return nil, err
	}
	if useCSC {
		s.Circuit.Options.CSC = true
	}
	return s, nil
}

// export 按参数输出拓扑快照、网络图和矩阵分布图
func export(r debug.Record) error {
	outputs := []struct {
		path string
		r    interface{ Render(io.Writer) error }
	}{
		{jsonPath, &r},
		{chartPath, &debug.Charts{Record: r}},
		{spyPath, &debug.Spy{Record: r}},
	}
	for _, o := range outputs {
		if o.path == "" {
			continue
		}
		f, err := os.Create(o.path)
		if err != nil {
			return err
		}
		err = o.r.Render(f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("writing %s: %w", o.path, err)
		}
	}
	return nil
}

func summary(w io.Writer, s *osdisim.Simulator) {
	fmt.Fprintf(w, "nodes: %d (internal %d)\n", s.Circuit.LastNode(), s.Circuit.LastNode()-s.Circuit.PrevLastNode())
	fmt.Fprintf(w, "states: %d\n", s.States.Next)
	fmt.Fprintf(w, "non-zeros: %d\n", s.Matrix.NonZeroCount())
	for _, l := range s.Lists {
		for _, inst := range l.Instances() {
			status := "failed"
			if inst.Bound() {
				status = fmt.Sprintf("nodes %v state %d", inst.Data.NodeMappings(), inst.State)
			}
			fmt.Fprintf(w, "  %s %s: %s\n", l.Descriptor.Name, inst.Name, status)
		}
	}
}
