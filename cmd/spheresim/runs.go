package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/spheresim/internal/analysis"
	"github.com/san-kum/spheresim/internal/export"
	"github.com/san-kum/spheresim/internal/storage"
	"github.com/spf13/cobra"
)

var (
	columns      []string
	column       string
	phase        []string
	perturbation float64
	outFile      string
	svgSize      int
	svgExtent    float64
)

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// output returns stdout when path is empty.
func output(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tFRAMES\tDT\tMODE\tLAW\tFINAL")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4fs\t%s\t%s\t%s\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Frames,
			run.Dt,
			run.Mode,
			run.ForceLaw,
			run.Final,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	header, rows, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("final: %s\n", meta.Final)
	fmt.Printf("samples: %d\n\n", len(rows))

	for _, name := range columns {
		data, err := storage.Column(header, rows, name)
		if err != nil {
			return err
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	header, rows, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	data, err := storage.Column(header, rows, column)
	if err != nil {
		return err
	}
	if len(data) < 4 {
		return fmt.Errorf("too few samples (%d) to analyze", len(data))
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("column: %s\n\n", column)

	// Samples may be sparser than frames.
	sampleDt := meta.Dt
	if times, err := storage.Column(header, rows, "time"); err == nil && len(times) > 1 && times[1] > times[0] {
		sampleDt = times[1] - times[0]
	}

	ps := analysis.PowerSpectrum(data)
	plotData := ps
	if len(ps) > 8 {
		plotData = ps[:len(ps)/2]
	}
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum ("+column+")"),
	)
	fmt.Println(graph)
	fmt.Println()

	freq, power := analysis.DominantFrequency(data, sampleDt)
	fmt.Printf("dominant frequency: %.4f hz (power %.4g)\n", freq, power)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}

	if perturbation > 0 && meta.Config != nil {
		sc, err := meta.Config.SimConfig()
		if err != nil {
			return err
		}
		rate, err := analysis.Divergence(sc, meta.Dt, meta.Frames, perturbation)
		if err != nil {
			return err
		}
		fmt.Printf("divergence rate: %.4f /s (perturbation %g)\n", rate, perturbation)
	}

	if len(phase) == 2 {
		xs, err := storage.Column(header, rows, phase[0])
		if err != nil {
			return err
		}
		ys, err := storage.Column(header, rows, phase[1])
		if err != nil {
			return err
		}
		p := analysis.NewPhasePortrait(phase[0], xs, phase[1], ys)
		fmt.Printf("\n%s vs %s\n", phase[1], phase[0])
		fmt.Println(p.ASCII(70, 20))
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	data, err := st.Export(args[0])
	if err != nil {
		return err
	}

	w, err := output(outFile)
	if err != nil {
		return err
	}
	defer w.Close()
	if err := data.Encode(w); err != nil {
		return err
	}
	if outFile != "" {
		fmt.Printf("exported to %s\n", outFile)
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	header, rows, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}

	w, err := output(outFile)
	if err != nil {
		return err
	}
	defer w.Close()
	if err := storage.WriteRows(w, header, rows); err != nil {
		return err
	}
	if outFile != "" {
		fmt.Printf("exported %d rows to %s\n", len(rows), outFile)
	}
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	var svg string
	if len(phase) == 2 {
		header, rows, err := st.LoadSeries(runID)
		if err != nil {
			return err
		}
		xs, err := storage.Column(header, rows, phase[0])
		if err != nil {
			return err
		}
		ys, err := storage.Column(header, rows, phase[1])
		if err != nil {
			return err
		}
		p := analysis.NewPhasePortrait(phase[0], xs, phase[1], ys)
		svg = export.PortraitToSVG(p, svgSize, svgSize*3/4, "#ffd700")
	} else {
		f, err := st.LoadFinal(runID)
		if err != nil {
			return err
		}
		svg = export.FrameToSVG(f, svgSize, svgExtent)
	}

	w, err := output(outFile)
	if err != nil {
		return err
	}
	defer w.Close()
	if _, err := io.WriteString(w, svg); err != nil {
		return err
	}
	if outFile != "" {
		fmt.Printf("exported to %s\n", outFile)
	}
	return nil
}
