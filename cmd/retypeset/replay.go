package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"sync"

	"github.com/delaneyj/retypeset/dom"
	"github.com/delaneyj/retypeset/mathtex"
	"github.com/delaneyj/retypeset/typeset"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"
)

func replay(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return errors.New("replay needs a trace file")
	}
	t, err := loadTrace(path)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd.String(configKey))
	if err != nil {
		return err
	}

	doc := dom.NewDocument()
	ns := names{"body": doc.Body()}
	for _, spec := range t.Document {
		n, err := ns.build(doc, spec)
		if err != nil {
			return err
		}
		if err := doc.Body().AppendChild(n); err != nil {
			return err
		}
	}

	ts := mathtex.New(doc, cfg)
	if cmd.Bool(initialKey) {
		if err := ts.Render(ctx, []typeset.Node{doc.Body()}); err != nil {
			return fmt.Errorf("initial typeset: %w", err)
		}
	}

	var (
		mu     sync.Mutex
		cycles []typeset.Cycle
		diags  int
	)
	reg := prometheus.NewRegistry()
	sched := typeset.New(dom.NewTypesetObserver(doc), ts,
		typeset.WithContext(ctx),
		typeset.WithMetrics(typeset.NewMetrics(reg, "retypeset")),
		typeset.WithOnRender(func(c typeset.Cycle) {
			mu.Lock()
			defer mu.Unlock()
			cycles = append(cycles, c)
		}),
		typeset.WithOnError(func(_ *typeset.Scheduler, err error) {
			mu.Lock()
			diags++
			mu.Unlock()
			log.Printf("diagnostic: %v", err)
		}),
	)
	if err := sched.Start(doc.Body()); err != nil {
		return err
	}
	defer sched.Close()

	batches := 0
	settle := func() {
		batches += doc.Flush()
		sched.Wait()
	}
	for i, s := range t.Steps {
		switch s.Op {
		case "flush":
			batches += doc.Flush()
		case "wait":
			sched.Wait()
		default:
			if err := ns.apply(doc, s); err != nil {
				return fmt.Errorf("step %d (%s): %w", i+1, s.Op, err)
			}
			if cmd.Bool(autoFlushKey) {
				settle()
			}
		}
	}
	settle()

	mu.Lock()
	defer mu.Unlock()

	tbl := tablewriter.NewWriter(os.Stdout)
	tbl.SetHeader([]string{"cycle", "nodes", "result", "duration"})
	for _, c := range cycles {
		result := "ok"
		if c.Err != nil {
			result = c.Err.Error()
		}
		tbl.Append([]string{
			strconv.FormatUint(c.Seq, 10),
			humanize.Comma(int64(len(c.Nodes))),
			result,
			c.Duration.String(),
		})
	}
	tbl.Render()

	stats := ts.Stats()
	markup := doc.String()
	fmt.Printf(
		"%s steps, %s batches, %s renders, %s formulas typeset, %s text nodes skipped, %s diagnostics, document %s\n",
		humanize.Comma(int64(len(t.Steps))),
		humanize.Comma(int64(batches)),
		humanize.Comma(int64(len(cycles))),
		humanize.Comma(int64(stats.Formulas)),
		humanize.Comma(int64(stats.Skipped)),
		humanize.Comma(int64(diags)),
		humanize.Bytes(uint64(len(markup))),
	)

	if cmd.Bool(metricsKey) {
		if err := printMetrics(reg); err != nil {
			return err
		}
	}
	if cmd.Bool(printKey) {
		fmt.Println(markup)
	}
	return nil
}

func printMetrics(reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	sort.Slice(families, func(i, j int) bool {
		return families[i].GetName() < families[j].GetName()
	})

	tbl := tablewriter.NewWriter(os.Stdout)
	tbl.SetHeader([]string{"metric", "labels", "value"})
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := ""
			for _, lp := range m.GetLabel() {
				labels += lp.GetName() + "=" + lp.GetValue() + " "
			}
			var value string
			switch {
			case m.GetCounter() != nil:
				value = humanize.Ftoa(m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				value = fmt.Sprintf("count=%s sum=%s", humanize.Comma(int64(h.GetSampleCount())), humanize.Ftoa(h.GetSampleSum()))
			case m.GetGauge() != nil:
				value = humanize.Ftoa(m.GetGauge().GetValue())
			}
			tbl.Append([]string{mf.GetName(), labels, value})
		}
	}
	tbl.Render()
	return nil
}
