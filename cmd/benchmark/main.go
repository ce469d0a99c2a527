package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/delaneyj/retypeset/dom"
	"github.com/delaneyj/retypeset/mathtex"
	"github.com/delaneyj/retypeset/typeset"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
)

var (
	cpuProfile = flag.String("cpuprofile", "", "write a CPU profile to this file")
	iters      = flag.Int("iters", 100, "iterations per configuration")

	widths  = []int{1, 10, 100, 1_000}
	repeats = []int{1, 4, 16}
)

func main() {
	flag.Parse()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	log.Printf("warming up")
	benchmarkCoalesce(false)
	benchmarkCoalesce(true)
	benchmarkTypeset(true)
}

type nopRenderer struct{}

func (nopRenderer) Invalidate([]typeset.Node)                    {}
func (nopRenderer) Render(context.Context, []typeset.Node) error { return nil }

// benchmarkCoalesce measures delivery plus coalescing of batches where each
// of w text nodes changes r times, so every batch collapses to w dirty nodes.
func benchmarkCoalesce(shouldRender bool) {
	tbl := table.NewWriter()
	tbl.SetTitle("Coalescing")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})

	for _, w := range widths {
		for _, r := range repeats {
			tach := tachymeter.New(&tachymeter.Config{Size: *iters})

			doc := dom.NewDocument()
			texts := make([]*dom.Node, w)
			for i := range texts {
				texts[i] = doc.CreateText("x")
				if err := doc.Body().AppendChild(texts[i]); err != nil {
					log.Panic(err)
				}
			}
			sched := typeset.New(dom.NewTypesetObserver(doc), nopRenderer{},
				typeset.WithOnError(func(_ *typeset.Scheduler, err error) {
					log.Panic(err)
				}),
			)
			if err := sched.Start(doc.Body()); err != nil {
				log.Panic(err)
			}

			for i := 0; i < *iters; i++ {
				for j := 0; j < r; j++ {
					for _, t := range texts {
						if err := t.SetText(fmt.Sprintf("x%d", j)); err != nil {
							log.Panic(err)
						}
					}
				}
				start := time.Now()
				doc.Flush()
				tach.AddTime(time.Since(start))
				sched.Wait()
			}
			sched.Close()

			calc := tach.Calc()
			tbl.AppendRow(table.Row{
				fmt.Sprintf("coalesce: %d nodes * %d changes", w, r),
				calc.Time.Avg,
				calc.Time.Min,
				calc.Time.P75,
				calc.Time.P99,
				calc.Time.Max,
			})
		}
	}

	if shouldRender {
		tbl.Render()
	}
}

// benchmarkTypeset measures full cycles, from flush until observation is
// restored, with the stand-in typesetter rewriting every changed node.
func benchmarkTypeset(shouldRender bool) {
	tbl := table.NewWriter()
	tbl.SetTitle("Typeset cycles")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})

	for _, w := range widths {
		tach := tachymeter.New(&tachymeter.Config{Size: *iters})

		doc := dom.NewDocument()
		paras := make([]*dom.Node, w)
		for i := range paras {
			paras[i] = doc.CreateElement("p")
			if err := doc.Body().AppendChild(paras[i]); err != nil {
				log.Panic(err)
			}
		}
		sched := typeset.New(dom.NewTypesetObserver(doc), mathtex.New(doc, mathtex.DefaultConfig()),
			typeset.WithOnError(func(_ *typeset.Scheduler, err error) {
				log.Panic(err)
			}),
		)
		if err := sched.Start(doc.Body()); err != nil {
			log.Panic(err)
		}

		for i := 0; i < *iters; i++ {
			for _, p := range paras {
				if err := p.ReplaceChildren(doc.CreateText(fmt.Sprintf("step %d: $x_{%d}^2$", i, i))); err != nil {
					log.Panic(err)
				}
			}
			start := time.Now()
			doc.Flush()
			sched.Wait()
			tach.AddTime(time.Since(start))
		}
		sched.Close()

		calc := tach.Calc()
		tbl.AppendRow(table.Row{
			fmt.Sprintf("typeset: %d paragraphs", w),
			calc.Time.Avg,
			calc.Time.Min,
			calc.Time.P75,
			calc.Time.P99,
			calc.Time.Max,
		})
	}

	if shouldRender {
		tbl.Render()
	}
}
