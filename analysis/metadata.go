package analysis

import (
	"math"
	"sort"

	"github.com/halcyard/visimil/core"
)

const (
	// maxSamples bounds how many pixels a single analysis pass visits.
	// Larger images are walked on a coarser grid.
	maxSamples = 65536

	// edgeThreshold is the normalized luminance difference between
	// neighboring samples that counts as an edge.
	edgeThreshold = 0.1

	// quantBits per channel for the color histogram. Three channels at
	// four bits each give 4096 bins.
	quantBits = 4
)

// ComputeVisualMetadata reduces a pixel buffer to its visual signature.
// All derived values are in [0,1].
func ComputeVisualMetadata(buf *PixelBuffer) *core.VisualMetadata {
	if buf == nil || buf.Width == 0 || buf.Height == 0 {
		return nil
	}

	stride := sampleStride(buf.Width, buf.Height)

	lum := sampleLuminance(buf, stride)
	brightness := meanOf(lum.values)
	contrast := clamp01(stddevOf(lum.values, brightness) * 2)

	return &core.VisualMetadata{
		DominantColors: dominantColors(buf, stride),
		Brightness:     brightness,
		Contrast:       contrast,
		ColorEntropy:   colorEntropy(buf, stride),
		EdgeDensity:    edgeDensity(lum),
	}
}

// AnalyzeImage decodes image bytes and derives their visual metadata in one
// step.
func AnalyzeImage(data []byte) (*core.VisualMetadata, error) {
	buf, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return ComputeVisualMetadata(buf), nil
}

// sampleStride picks the grid spacing that keeps the visited pixel count at
// or below maxSamples.
func sampleStride(width, height int) int {
	total := width * height
	if total <= maxSamples {
		return 1
	}
	stride := int(math.Ceil(math.Sqrt(float64(total) / float64(maxSamples))))
	if stride < 1 {
		stride = 1
	}
	return stride
}

// luminanceGrid holds sampled luminance values together with the grid shape
// so edge detection can find each sample's neighbors.
type luminanceGrid struct {
	values []float64
	cols   int
	rows   int
}

func sampleLuminance(buf *PixelBuffer, stride int) luminanceGrid {
	cols := (buf.Width + stride - 1) / stride
	rows := (buf.Height + stride - 1) / stride

	grid := luminanceGrid{
		values: make([]float64, 0, cols*rows),
		cols:   cols,
		rows:   rows,
	}
	for y := 0; y < buf.Height; y += stride {
		for x := 0; x < buf.Width; x += stride {
			r, g, b := buf.At(x, y)
			grid.values = append(grid.values, luminance(r, g, b))
		}
	}
	return grid
}

// luminance maps RGB to perceptual brightness using the BT.601 weights.
func luminance(r, g, b uint8) float64 {
	return (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 255.0
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddevOf(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// edgeDensity is the fraction of horizontal and vertical neighbor pairs in
// the sample grid whose luminance differs by more than edgeThreshold.
func edgeDensity(grid luminanceGrid) float64 {
	if grid.cols < 2 && grid.rows < 2 {
		return 0
	}

	edges := 0
	pairs := 0
	for row := 0; row < grid.rows; row++ {
		for col := 0; col < grid.cols; col++ {
			i := row*grid.cols + col
			if col+1 < grid.cols {
				pairs++
				if math.Abs(grid.values[i]-grid.values[i+1]) > edgeThreshold {
					edges++
				}
			}
			if row+1 < grid.rows {
				pairs++
				if math.Abs(grid.values[i]-grid.values[i+grid.cols]) > edgeThreshold {
					edges++
				}
			}
		}
	}
	if pairs == 0 {
		return 0
	}
	return float64(edges) / float64(pairs)
}

// colorEntropy measures color diversity as the Shannon entropy of the
// quantized color histogram, normalized by the maximum attainable entropy.
func colorEntropy(buf *PixelBuffer, stride int) float64 {
	histogram := make(map[uint16]int)
	total := 0
	for y := 0; y < buf.Height; y += stride {
		for x := 0; x < buf.Width; x += stride {
			r, g, b := buf.At(x, y)
			histogram[quantizeColor(r, g, b)]++
			total++
		}
	}
	if total == 0 {
		return 0
	}

	var entropy float64
	for _, count := range histogram {
		p := float64(count) / float64(total)
		entropy -= p * math.Log2(p)
	}

	maxEntropy := float64(3 * quantBits)
	return clamp01(entropy / maxEntropy)
}

// dominantColors returns up to core.MaxDominantColors representative colors,
// the mean color of each of the most populated histogram bins.
func dominantColors(buf *PixelBuffer, stride int) []core.Color {
	type bin struct {
		count int
		sumR  uint64
		sumG  uint64
		sumB  uint64
	}

	bins := make(map[uint16]*bin)
	for y := 0; y < buf.Height; y += stride {
		for x := 0; x < buf.Width; x += stride {
			r, g, b := buf.At(x, y)
			key := quantizeColor(r, g, b)
			entry := bins[key]
			if entry == nil {
				entry = &bin{}
				bins[key] = entry
			}
			entry.count++
			entry.sumR += uint64(r)
			entry.sumG += uint64(g)
			entry.sumB += uint64(b)
		}
	}
	if len(bins) == 0 {
		return nil
	}

	type rankedBin struct {
		key uint16
		bin *bin
	}
	ranked := make([]rankedBin, 0, len(bins))
	for key, entry := range bins {
		ranked = append(ranked, rankedBin{key: key, bin: entry})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].bin.count != ranked[j].bin.count {
			return ranked[i].bin.count > ranked[j].bin.count
		}
		return ranked[i].key < ranked[j].key
	})

	limit := core.MaxDominantColors
	if len(ranked) < limit {
		limit = len(ranked)
	}

	colors := make([]core.Color, limit)
	for i := 0; i < limit; i++ {
		entry := ranked[i].bin
		n := uint64(entry.count)
		colors[i] = core.Color{
			R: uint8(entry.sumR / n),
			G: uint8(entry.sumG / n),
			B: uint8(entry.sumB / n),
		}
	}
	return colors
}

// quantizeColor reduces a color to its histogram bin, quantBits per channel.
func quantizeColor(r, g, b uint8) uint16 {
	shift := 8 - quantBits
	return uint16(r>>shift)<<(2*quantBits) |
		uint16(g>>shift)<<quantBits |
		uint16(b>>shift)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
