package main

import (
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/spf13/cobra"

	"breedd/internal/manager"
	"breedd/internal/saliency"
	"breedd/pkg/types"
)

type predictOptions struct {
	heatmapDir  string
	concurrency int
	output      string
}

// fileResult is one line of `breedd predict` output.
type fileResult struct {
	File                 string                `json:"file"`
	AnimalType           string                `json:"animal_type,omitempty"`
	AnimalTypeConfidence float64               `json:"animal_type_confidence,omitempty"`
	Breed                string                `json:"breed,omitempty"`
	BreedConfidence      float64               `json:"breed_confidence,omitempty"`
	TopPredictions       []types.TopPrediction `json:"top_predictions,omitempty"`
	ImageHash            string                `json:"image_hash,omitempty"`
	Heatmap              string                `json:"heatmap,omitempty"`
	ProcessingTimeMS     float64               `json:"processing_time_ms,omitempty"`
	ModelLoaded          bool                  `json:"model_loaded"`
	Error                string                `json:"error,omitempty"`
}

func newPredictCmd(o *rootOptions) *cobra.Command {
	po := &predictOptions{}
	cmd := &cobra.Command{
		Use:   "predict IMAGE...",
		Short: "Identify the breed of one or more images",
		Example: `  breedd predict cow.jpg
  breedd predict --heatmap-dir out/ --output table photos/*.jpg`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPredict(cmd.Context(), o, po, args, cmd.OutOrStdout())
		},
	}
	f := cmd.Flags()
	f.StringVar(&po.heatmapDir, "heatmap-dir", "", "write a Grad-CAM overlay PNG per image into this directory")
	f.IntVarP(&po.concurrency, "concurrency", "j", runtime.NumCPU(), "images identified in parallel")
	f.StringVarP(&po.output, "output", "o", "json", "output format: json or table")
	f.Float64("gradcam-opacity", 0, "heatmap opacity in [0,1]")
	return cmd
}

func runPredict(ctx context.Context, o *rootOptions, po *predictOptions, files []string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if po.output != "json" && po.output != "table" {
		return fmt.Errorf("--output must be json or table, got %q", po.output)
	}
	if po.heatmapDir != "" {
		if o.cfg.DisableGradCAM {
			return fmt.Errorf("--heatmap-dir cannot be used with --disable-gradcam")
		}
		if err := os.MkdirAll(po.heatmapDir, 0o755); err != nil {
			return fmt.Errorf("create heatmap dir: %w", err)
		}
	}
	mgr := newManager(o.cfg, o.log)
	defer mgr.Close()
	if err := loadModels(mgr, o.log, func() error { return mgr.Load(ctx) }); err != nil {
		return err
	}

	n := po.concurrency
	if n < 1 {
		n = 1
	}
	results := make([]fileResult, len(files))
	wp := workerpool.New(n)
	for i, path := range files {
		i, path := i, path
		wp.Submit(func() {
			results[i] = identifyFile(ctx, mgr, path, po.heatmapDir)
		})
	}
	wp.StopWait()

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	if err := writeResults(out, po.output, results); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d images failed", failed, len(files))
	}
	return nil
}

func identifyFile(ctx context.Context, mgr *manager.Manager, path, heatmapDir string) fileResult {
	res := fileResult{File: path}
	data, err := os.ReadFile(path)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	id, err := mgr.Identify(ctx, data, manager.IdentifyOptions{Heatmap: heatmapDir != ""})
	if err != nil {
		res.Error = err.Error()
		return res
	}
	p := id.Prediction
	res.AnimalType = p.AnimalType
	res.AnimalTypeConfidence = p.AnimalTypeConfidence
	res.Breed = p.Breed
	res.BreedConfidence = p.BreedConfidence
	res.ImageHash = id.ImageHash
	res.ModelLoaded = p.ModelLoaded
	res.ProcessingTimeMS = float64(p.ProcessingTime.Microseconds()) / 1000
	for _, c := range p.TopK {
		res.TopPredictions = append(res.TopPredictions, types.TopPrediction{Breed: c.Label, Confidence: c.Confidence})
	}
	if id.Heatmap != nil {
		dst := filepath.Join(heatmapDir, heatmapName(path))
		if err := writePNG(dst, id.Heatmap); err != nil {
			res.Error = err.Error()
			return res
		}
		res.Heatmap = dst
	}
	return res
}

// heatmapName maps photos/cow.jpg to cow.gradcam.png.
func heatmapName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".gradcam.png"
}

func writePNG(path string, ov *saliency.Overlay) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create heatmap: %w", err)
	}
	if err := png.Encode(f, ov.Image); err != nil {
		f.Close()
		return fmt.Errorf("encode heatmap: %w", err)
	}
	return f.Close()
}

func writeResults(w io.Writer, format string, results []fileResult) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tTYPE\tBREED\tCONFIDENCE\tTIME\tHEATMAP")
	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\terror: %s\n", r.File, r.Error)
			continue
		}
		heat := r.Heatmap
		if heat == "" {
			heat = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f%%\t%s\t%s\n", r.File, r.AnimalType, r.Breed, r.BreedConfidence,
			time.Duration(r.ProcessingTimeMS*float64(time.Millisecond)).Round(time.Microsecond), heat)
	}
	return tw.Flush()
}
