// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bibseek/pkg/types"
)

func targetTestCmd(t *testing.T) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "fetch"}
	cmd.Flags().String("out", "", "")
	cmd.Flags().String("doc", "", "")
	return cmd
}

func TestResolveTargetDefaultIsNotExplicit(t *testing.T) {
	cmd := targetTestCmd(t)

	target, explicit := resolveTarget(cmd, types.WriterConfig{DefaultFile: "refs.bib"})
	if target != "refs.bib" {
		t.Errorf("target = %q, want refs.bib", target)
	}
	if explicit {
		t.Error("config default must not count as an explicit target")
	}
}

func TestResolveTargetOutFlag(t *testing.T) {
	cmd := targetTestCmd(t)
	if err := cmd.Flags().Set("out", "mine.bib"); err != nil {
		t.Fatal(err)
	}

	target, explicit := resolveTarget(cmd, types.WriterConfig{DefaultFile: "refs.bib"})
	if target != "mine.bib" || !explicit {
		t.Errorf("resolveTarget() = (%q, %v), want (mine.bib, true)", target, explicit)
	}
}

func TestResolveTargetDocDiscovery(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "paper.tex")
	if err := os.WriteFile(doc, []byte("\\addbibresource{cited.bib}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := targetTestCmd(t)
	if err := cmd.Flags().Set("doc", doc); err != nil {
		t.Fatal(err)
	}

	target, explicit := resolveTarget(cmd, types.WriterConfig{DefaultFile: "refs.bib"})
	if target != filepath.Join(dir, "cited.bib") || !explicit {
		t.Errorf("resolveTarget() = (%q, %v), want discovered cited.bib, true", target, explicit)
	}
}

func TestResolveTargetDocWithoutBibliographyFallsBack(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "notes.tex")
	if err := os.WriteFile(doc, []byte("no bibliography here\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := targetTestCmd(t)
	if err := cmd.Flags().Set("doc", doc); err != nil {
		t.Fatal(err)
	}

	target, explicit := resolveTarget(cmd, types.WriterConfig{DefaultFile: "refs.bib"})
	if target != "refs.bib" || explicit {
		t.Errorf("resolveTarget() = (%q, %v), want (refs.bib, false)", target, explicit)
	}
}
