package renderer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type TracerStat struct {
	// The tracer id.
	Id string

	// The block height and the percentage of total frame area it represents.
	BlockH       uint32
	FramePercent float32

	// Render time for the assigned block in the last pass.
	RenderTime time.Duration

	// Rays traced by this tracer across all passes.
	Rays uint64
}

type FrameStats struct {
	// Individual tracer stats.
	Tracers []TracerStat

	// Number of completed sample passes.
	Passes uint32

	// Totals across all passes and tracers.
	Rays       uint64
	Misses     uint64
	Terminated uint64
	Exhausted  uint64

	// Total render time for entire frame.
	RenderTime time.Duration
}

// Render the frame statistics as a table.
func (fs FrameStats) Table() string {
	p := message.NewPrinter(language.English)

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetHeader([]string{"Tracer", "Block height", "% of frame", "Last pass", "Rays"})
	for _, stat := range fs.Tracers {
		table.Append([]string{
			stat.Id,
			fmt.Sprintf("%d", stat.BlockH),
			fmt.Sprintf("%02.1f %%", stat.FramePercent),
			stat.RenderTime.String(),
			p.Sprintf("%d", stat.Rays),
		})
	}
	table.SetFooter([]string{
		fmt.Sprintf("%d passes", fs.Passes),
		"",
		"",
		fs.RenderTime.String(),
		p.Sprintf("%d", fs.Rays),
	})
	table.Render()

	var paths bytes.Buffer
	pathTable := tablewriter.NewWriter(&paths)
	pathTable.SetAutoFormatHeaders(false)
	pathTable.SetHeader([]string{"Path state", "Paths"})
	pathTable.Append([]string{"miss", p.Sprintf("%d", fs.Misses)})
	pathTable.Append([]string{"terminated", p.Sprintf("%d", fs.Terminated)})
	pathTable.Append([]string{"max bounce", p.Sprintf("%d", fs.Exhausted)})
	pathTable.Render()

	return buf.String() + paths.String()
}
