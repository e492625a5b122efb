package back

import (
	"bytes"
	"context"
	"io"
	"math"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	emptySVG = `<svg xmlns="http://www.w3.org/2000/svg"/>`

	// ratingBinWidth is the width in rating units of each histogram bar.
	ratingBinWidth = 100
)

// GetRatingsDistributionGraph renders the share of players per rating bin
// of a mode as SVG.
func (b *Back) GetRatingsDistributionGraph(ctx context.Context, shortcode string) ([]byte, error) {
	start := time.Now()
	defer func() { log.Debugf("computed ratings stats in %s", time.Since(start)) }()

	ratings, err := b.GetPlayerRatings(ctx, shortcode)
	if err != nil {
		return nil, err
	}

	bars, maxValue := ratingsHistogram(ratings, chart.Style{
		FontColor:   drawing.ColorBlack,
		FillColor:   drawing.ColorFromHex("285577"),
		StrokeColor: drawing.ColorFromHex("4c7899"),
		StrokeWidth: 1,
	})
	if len(bars) == 0 || maxValue == 0 {
		// go-chart does not like it when all values are 0
		return []byte(emptySVG), nil
	}

	graph := chart.BarChart{
		Height:     300,
		Width:      600,
		Canvas:     chart.Style{FillColor: chart.ColorTransparent},
		Background: chart.Style{FillColor: chart.ColorTransparent},
		YAxis: chart.YAxis{
			Ticks: []chart.Tick{
				{Value: 0},
				{Value: maxValue},
			},
		},
		Bars: bars,
	}
	graph.BarWidth = (graph.Width - (len(bars) * graph.BarSpacing)) / len(bars)

	return renderChart(graph)
}

// ratingsHistogram returns one bar per bin between the lowest and highest
// rating, each holding the share of players rounded to that bin.
func ratingsHistogram(ratings []PlayerRating, barStyle chart.Style) ([]chart.Value, float64) {
	if len(ratings) == 0 {
		return nil, 0
	}

	bins := make(map[int]int, 20)
	minBin, maxBin := math.MaxInt64, math.MinInt64
	maxValue := 0

	for k := range ratings {
		r := int(math.Round(ratings[k].Rating/ratingBinWidth) * ratingBinWidth)
		bins[r]++
		if r < minBin {
			minBin = r
		}
		if r > maxBin {
			maxBin = r
		}

		if bins[r] > maxValue {
			maxValue = bins[r]
		}
	}

	total := float64(len(ratings))
	bars := make([]chart.Value, 0, (maxBin-minBin)/ratingBinWidth+1)
	for i := minBin; i <= maxBin; i += ratingBinWidth {
		bars = append(bars, chart.Value{
			Value: float64(bins[i]) / total,
			Label: strconv.Itoa(i),
			Style: barStyle,
		})
	}

	return bars, float64(maxValue) / total
}

type renderable interface {
	Render(chart.RendererProvider, io.Writer) error
}

func renderChart(r renderable) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(chart.SVG, &buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
