package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"breedd/internal/registry"
)

func newModelsCmd(o *rootOptions) *cobra.Command {
	var load bool
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List classifier artifacts and their load status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runModels(ctx, o, load, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&load, "load", false, "load the configured classifiers and report how each resolved")
	return cmd
}

func runModels(ctx context.Context, o *rootOptions, load bool, out io.Writer) error {
	arts, err := registry.Scan(o.cfg.ModelsDir)
	if err != nil {
		o.log.Warn().Err(err).Str("dir", o.cfg.ModelsDir).Msg("scan models dir")
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ARTIFACT\tSIZE\tMETADATA\tPATH\n")
	for _, a := range arts {
		md := "no"
		if a.HasMetadata {
			md = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.Name, humanize.IBytes(uint64(a.Size)), md, a.Path)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if !load {
		return nil
	}

	mgr := newManager(o.cfg, o.log)
	defer mgr.Close()
	if err := loadModels(mgr, o.log, func() error { return mgr.Load(ctx) }); err != nil {
		return err
	}
	fmt.Fprintln(out)
	tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "CLASSIFIER\tSTAGE\tTYPE\tSTATUS\tVOCABULARY\tSALIENCY\tSOURCE\n")
	for _, m := range mgr.Status().Models {
		typ := m.AnimalType
		if typ == "" {
			typ = "-"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%d (%s)\t%t\t%s\n", m.Name, m.Stage, typ, m.Status,
			len(m.Vocabulary), m.VocabularySource, m.Saliency, m.Source)
		if m.Error != "" {
			fmt.Fprintf(tw, "\t\t\t\terror: %s\t\t\n", strings.TrimSpace(m.Error))
		}
	}
	return tw.Flush()
}
