package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/parkhang/parkhang/internal/store"
)

type seedFile struct {
	Texts []store.Text `yaml:"texts"`
}

// readSeed decodes texts with nested witnesses and annotations:
//
//	texts:
//	  - name: Heart Sutra
//	    witnesses:
//	      - name: Derge
//	        base: true
//	        content: "..."
//	        annotations:
//	          - {start: 0, length: 4, type: variant, content: "..."}
func readSeed(r io.Reader) ([]store.Text, error) {
	var f seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	for i, t := range f.Texts {
		if t.Name == "" {
			return nil, fmt.Errorf("text %d: name is required", i+1)
		}
		for j, w := range t.Witnesses {
			if w.Name == "" {
				return nil, fmt.Errorf("text %q witness %d: name is required", t.Name, j+1)
			}
			for k, a := range w.Annotations {
				if a.Start < 0 || a.Length < 0 || a.Start+a.Length > len([]rune(w.Content)) {
					return nil, fmt.Errorf("text %q witness %q annotation %d: span [%d,+%d) outside content",
						t.Name, w.Name, k+1, a.Start, a.Length)
				}
			}
		}
	}
	return f.Texts, nil
}

func (a *app) seedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import texts from a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()
			texts, err := readSeed(f)
			if err != nil {
				return err
			}

			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Import(cmd.Context(), texts); err != nil {
				return err
			}
			a.log.Info("seeded", zap.Int("texts", len(texts)), zap.String("file", file))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with texts")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
